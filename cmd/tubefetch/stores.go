package main

import (
	"fmt"
	"io"

	"github.com/user/tubefetch/internal/config"
	"github.com/user/tubefetch/internal/download"
	"github.com/user/tubefetch/internal/state"
	"github.com/user/tubefetch/internal/types"
)

// openSessions opens the session backend selected by session.backend.
func openSessions(cfg *config.Config) (types.SessionStore, io.Closer, error) {
	switch cfg.Session.Backend {
	case "sqlite":
		s, err := state.NewSQLiteSessionStore(cfg.SessionDBPath(), cfg.SessionTTL())
		if err != nil {
			return nil, nil, fmt.Errorf("open session db: %w", err)
		}
		return s, s, nil
	default:
		return state.NewSessionStore(cfg.SessionTTL()), nopCloser{}, nil
	}
}

func downloadConfig(cfg *config.Config) download.Config {
	return download.Config{
		Binary:          cfg.Download.Binary,
		Dir:             cfg.DownloadDir(),
		MaxBytes:        cfg.Download.MaxBytes,
		Timeout:         cfg.DownloadTimeout(),
		VideoMaxHeight:  cfg.Download.VideoMaxHeight,
		AudioCodec:      cfg.Download.AudioCodec,
		AudioBitrate:    cfg.Download.AudioBitrate,
		DiscoveryWindow: cfg.DiscoveryWindow(),
	}
}
