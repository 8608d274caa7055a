package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/tubefetch/internal/state"
	"github.com/user/tubefetch/internal/status"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the bot status report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		src := status.Source{
			DataDir:  cfg.DataDir,
			Token:    cfg.Telegram.Token,
			Profiles: state.NewProfileStore(cfg.ProfilesPath()),
			Cursors:  state.NewCursorFile(cfg.CursorPath()),
			Running: func() bool {
				_, err := readPID(cfg)
				return err == nil
			},
		}
		// The in-memory backend lives only inside the serving process.
		if cfg.Session.Backend == "sqlite" {
			sessions, closer, err := openSessions(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()
			src.Sessions = sessions
		}

		fmt.Print(status.Collect(context.Background(), src).Text())
		return nil
	},
}
