// Package status reports the health of a running bot.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/user/tubefetch/internal/config"
	"github.com/user/tubefetch/internal/types"
)

// Report is a snapshot of the bot's state.
type Report struct {
	Service         string    `json:"service"`
	Status          string    `json:"status"`
	ServerTime      time.Time `json:"server_time"`
	Token           string    `json:"token"`
	DataDir         string    `json:"data_dir"`
	DataDirWritable bool      `json:"data_dir_writable"`
	Users           int       `json:"users"`
	PendingSessions int       `json:"pending_sessions"`
	Cursor          int64     `json:"cursor"`
	LoopState       string    `json:"loop_state,omitempty"`
	Running         bool      `json:"running"`
}

// Source is where a Report is gathered from. Any field may be left unset.
type Source struct {
	DataDir  string
	Token    string
	Profiles types.ProfileStore
	Sessions types.SessionStore
	Cursors  types.CursorStore

	// Cursor and LoopState read the live update loop when the report is
	// produced inside the serving process.
	Cursor    func() int64
	LoopState func() string
	Running   func() bool
}

const serviceName = "Telegram YouTube Downloader Bot"

// Collect builds a Report. Lookup failures are logged and leave zero values.
func Collect(ctx context.Context, src Source) Report {
	r := Report{
		Service:    serviceName,
		Status:     "online",
		ServerTime: time.Now(),
		Token:      config.MaskToken(src.Token),
		DataDir:    src.DataDir,
	}
	if src.DataDir != "" {
		r.DataDirWritable = writable(src.DataDir)
	}
	if src.Profiles != nil {
		n, err := src.Profiles.Count(ctx)
		if err != nil {
			slog.Warn("status: count users failed", "error", err)
		}
		r.Users = n
	}
	if src.Sessions != nil {
		n, err := src.Sessions.Len(ctx)
		if err != nil {
			slog.Warn("status: count sessions failed", "error", err)
		}
		r.PendingSessions = n
	}
	switch {
	case src.Cursor != nil:
		r.Cursor = src.Cursor()
	case src.Cursors != nil:
		c, err := src.Cursors.Load(ctx)
		if err != nil {
			slog.Warn("status: load cursor failed", "error", err)
		}
		r.Cursor = c
	}
	if src.LoopState != nil {
		r.LoopState = src.LoopState()
	}
	if src.Running != nil {
		r.Running = src.Running()
	}
	return r
}

// Text renders the report as plain text, one field per line.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Service)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Server Time: %s\n", r.ServerTime.Format("2006-01-02 15:04:05"))
	if r.Token == "" {
		fmt.Fprintf(&b, "Bot Token: not configured\n")
	} else {
		fmt.Fprintf(&b, "Bot Token: %s\n", r.Token)
	}
	if r.DataDirWritable {
		fmt.Fprintf(&b, "Data directory: %s (writable)\n", r.DataDir)
	} else {
		fmt.Fprintf(&b, "Data directory: %s (not writable)\n", r.DataDir)
	}
	fmt.Fprintf(&b, "Total users: %d\n", r.Users)
	fmt.Fprintf(&b, "Pending sessions: %d\n", r.PendingSessions)
	fmt.Fprintf(&b, "Update cursor: %d\n", r.Cursor)
	if r.LoopState != "" {
		fmt.Fprintf(&b, "Update loop: %s\n", r.LoopState)
	}
	if r.Running {
		fmt.Fprintf(&b, "Bot process: Running\n")
	} else {
		fmt.Fprintf(&b, "Bot process: Not running\n")
	}
	return b.String()
}

// writable checks dir by creating and removing a temp file.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".writecheck-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
