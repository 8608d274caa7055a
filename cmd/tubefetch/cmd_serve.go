package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/tubefetch/internal/artifact"
	"github.com/user/tubefetch/internal/config"
	"github.com/user/tubefetch/internal/dispatch"
	"github.com/user/tubefetch/internal/download"
	"github.com/user/tubefetch/internal/gateway"
	"github.com/user/tubefetch/internal/ratelimit"
	"github.com/user/tubefetch/internal/scheduler"
	"github.com/user/tubefetch/internal/state"
	"github.com/user/tubefetch/internal/status"
	"github.com/user/tubefetch/internal/telegram"
	"github.com/user/tubefetch/internal/types"
	"github.com/user/tubefetch/internal/updates"
)

const (
	sessionSweepSchedule = "@every 5m"
	fileJanitorSchedule  = "@every 10m"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func writePIDFile(cfg *config.Config) (string, error) {
	pidPath := cfg.PIDPath()
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logCloser := setupLogging(cfg)
	defer logCloser.Close()

	if cfg.Telegram.Token == "" {
		return errors.New("telegram.token is not set (run `tubefetch setup` or set TELEGRAM_BOT_TOKEN)")
	}
	if err := os.MkdirAll(cfg.DownloadDir(), 0755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Stores
	sessions, sessionsCloser, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer sessionsCloser.Close()
	profiles := state.NewProfileStore(cfg.ProfilesPath())
	cursors := state.NewCursorFile(cfg.CursorPath())

	client, err := telegram.New(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}

	orch := download.New(downloadConfig(cfg), nil)
	disp := dispatch.New(dispatch.Deps{
		Sessions:  sessions,
		Profiles:  profiles,
		Messenger: client,
		Fetcher:   orch,
		Limiter: ratelimit.New(ratelimit.Config{
			PerMinute: cfg.RateLimit.PerMinute,
			Burst:     cfg.RateLimit.Burst,
		}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Gateway
	gw := gateway.New(disp.Handle, int64(cfg.MaxConcurrent))
	gw.Start(ctx)
	defer gw.Stop()

	loop := updates.New(client, gw.HandleInbound, cursors, updates.Config{
		TimeoutSeconds: cfg.Telegram.PollTimeoutSeconds,
		Limit:          cfg.Telegram.PollLimit,
		Backoff:        cfg.PollBackoff(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })

	// Scheduler
	sched := scheduler.New(
		scheduler.SessionSweep(sessionSweepSchedule, sessions),
		scheduler.FileJanitor(fileJanitorSchedule, artifact.NewJanitor(orch.Dir(), cfg.StaleAfter())),
	)
	if err := sched.Start(gctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	// Status HTTP server
	if cfg.HTTP.Enabled {
		srv := status.NewServer(status.Source{
			DataDir:   cfg.DataDir,
			Token:     cfg.Telegram.Token,
			Profiles:  profiles,
			Sessions:  sessions,
			Cursor:    loop.Cursor,
			LoopState: func() string { return loop.State().String() },
			Running:   func() bool { return true },
		})
		g.Go(func() error { return srv.ListenAndServe(gctx, cfg.HTTP.Listen) })
	}

	slog.Info("tubefetch started",
		"bot", client.Username(),
		"data_dir", cfg.DataDir,
		"download_dir", orch.Dir(),
		"max_concurrent", cfg.MaxConcurrent,
		"session_backend", cfg.Session.Backend,
		"pid_file", pidPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

wait:
	for {
		select {
		case <-gctx.Done():
			break wait
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				slog.Info("received SIGHUP, restarting")
				execPath, err := os.Executable()
				if err != nil {
					slog.Error("failed to get executable path", "error", err)
					continue
				}
				// Clean up PID file before re-exec
				os.Remove(pidPath)
				if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
					slog.Error("failed to re-exec", "error", err)
					if _, writeErr := writePIDFile(cfg); writeErr != nil {
						slog.Error("failed to re-write PID file", "error", writeErr)
					}
				}
				continue
			}
			slog.Info("shutting down", "signal", sig)
			break wait
		}
	}

	cancel()
	if err := g.Wait(); err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			slog.Error("bot token rejected, stopping", "error", err)
		}
		return err
	}
	return nil
}
