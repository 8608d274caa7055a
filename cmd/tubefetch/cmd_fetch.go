package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/tubefetch/internal/artifact"
	"github.com/user/tubefetch/internal/download"
	"github.com/user/tubefetch/internal/types"
	"github.com/user/tubefetch/internal/videoid"
)

var (
	fetchFormat string
	fetchOutDir string
)

func init() {
	fetchCmd.Flags().StringVarP(&fetchFormat, "format", "f", "video", "video or audio")
	fetchCmd.Flags().StringVarP(&fetchOutDir, "out", "o", ".", "directory to copy the result into")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download one link from the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		logCloser := setupLogging(cfg)
		defer logCloser.Close()

		id, err := videoid.Normalize(args[0])
		if err != nil {
			return err
		}
		format, err := types.ParseFormat(fetchFormat)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.DownloadDir(), 0755); err != nil {
			return fmt.Errorf("create download dir: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		orch := download.New(downloadConfig(cfg), nil)
		a, err := orch.Fetch(ctx, id, format)
		if err != nil {
			var runErr *download.RunError
			if errors.As(err, &runErr) && runErr.Diagnostic != "" {
				fmt.Fprintln(os.Stderr, runErr.Diagnostic)
			}
			return err
		}

		dst := filepath.Join(fetchOutDir, string(id)+format.Ext())
		return artifact.WithArtifact(ctx, a, func(_ context.Context, a types.Artifact) error {
			if err := copyFile(a.Path, dst); err != nil {
				return err
			}
			fmt.Printf("Saved %s (%d bytes)\n", dst, a.SizeBytes)
			return nil
		})
	},
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
