// Package dispatch turns inbound updates into session changes, downloads
// and outbound messages.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/user/tubefetch/internal/artifact"
	"github.com/user/tubefetch/internal/download"
	"github.com/user/tubefetch/internal/metrics"
	"github.com/user/tubefetch/internal/types"
	"github.com/user/tubefetch/internal/videoid"
)

// Fetcher produces an artifact for a source in the requested format.
type Fetcher interface {
	Fetch(ctx context.Context, id types.SourceID, format types.Format) (types.Artifact, error)
}

// Limiter decides whether a chat may start another download.
type Limiter interface {
	Allow(chatID types.ChatID) bool
}

// Deps are the collaborators of a Dispatcher. Profiles and Limiter are optional.
type Deps struct {
	Sessions  types.SessionStore
	Profiles  types.ProfileStore
	Messenger types.Messenger
	Fetcher   Fetcher
	Limiter   Limiter
}

// Dispatcher handles one update at a time per call. It holds no per-chat
// state of its own; pending URLs live in the SessionStore.
type Dispatcher struct {
	sessions  types.SessionStore
	profiles  types.ProfileStore
	messenger types.Messenger
	fetcher   Fetcher
	limiter   Limiter
	now       func() time.Time
}

func New(deps Deps) *Dispatcher {
	return &Dispatcher{
		sessions:  deps.Sessions,
		profiles:  deps.Profiles,
		messenger: deps.Messenger,
		fetcher:   deps.Fetcher,
		limiter:   deps.Limiter,
		now:       time.Now,
	}
}

// Handle processes u to completion. Chat-scoped failures, panics included,
// end here as an Outcome and never propagate to the caller.
func (d *Dispatcher) Handle(ctx context.Context, u types.Update) {
	d.HandleResult(ctx, u)
}

// HandleResult is Handle returning the Outcome reached.
func (d *Dispatcher) HandleResult(ctx context.Context, u types.Update) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatch panicked", "update_id", u.ID, "chat_id", u.ChatID(), "panic", r)
			res = Result{Outcome: OutcomeInternalError}
		}
		metrics.RecordOutcome(res.Outcome.String())
	}()

	switch {
	case u.Message != nil:
		return d.handleText(ctx, u.Message)
	case u.Callback != nil:
		return d.handleCallback(ctx, u.Callback)
	}
	slog.Debug("ignoring update without payload", "update_id", u.ID)
	return Result{Outcome: OutcomeIgnored}
}

func (d *Dispatcher) handleText(ctx context.Context, msg *types.TextMessage) Result {
	if msg.Command != "" {
		d.handleCommand(ctx, msg)
		return Result{Outcome: OutcomeCommand}
	}

	id, err := videoid.Normalize(msg.Text)
	if err != nil {
		slog.Debug("rejected link", "chat_id", msg.ChatID, "error", err)
		d.reply(ctx, msg.ChatID, invalidURLText)
		return Result{Outcome: OutcomeInvalidURL}
	}

	if err := d.sessions.Put(ctx, msg.ChatID, msg.Text); err != nil {
		slog.Error("failed to store session", "chat_id", msg.ChatID, "error", err)
		d.reply(ctx, msg.ChatID, storeFailedText)
		return Result{Outcome: OutcomeInternalError, SourceID: id}
	}
	slog.Info("link received", "chat_id", msg.ChatID, "source_id", string(id))

	if _, err := d.messenger.SendText(ctx, msg.ChatID, promptText, formatChoices...); err != nil {
		slog.Error("failed to send format prompt", "chat_id", msg.ChatID, "error", err)
	}
	return Result{Outcome: OutcomePrompted, SourceID: id}
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg *types.TextMessage) {
	switch msg.Command {
	case "start":
		d.recordProfile(ctx, msg)
		d.reply(ctx, msg.ChatID, welcomeText)
	case "help":
		d.reply(ctx, msg.ChatID, welcomeText)
	default:
		d.reply(ctx, msg.ChatID, unknownCommandText)
	}
}

func (d *Dispatcher) recordProfile(ctx context.Context, msg *types.TextMessage) {
	if d.profiles == nil || msg.From.UserID == 0 {
		return
	}
	at := msg.At
	if at.IsZero() {
		at = d.now()
	}
	created, err := d.profiles.Record(ctx, types.UserProfile{
		UserID:    msg.From.UserID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		StartedAt: at,
	})
	if err != nil {
		slog.Error("failed to record user", "user_id", msg.From.UserID, "error", err)
		return
	}
	if created {
		slog.Info("new user", "user_id", msg.From.UserID, "username", msg.From.Username)
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *types.CallbackAction) Result {
	if err := d.messenger.AckAction(ctx, cb.ID, ""); err != nil {
		slog.Warn("failed to acknowledge action", "chat_id", cb.ChatID, "error", err)
	}

	res := d.runCallback(ctx, cb)
	if err := d.messenger.EditText(ctx, cb.ChatID, cb.MessageID, callbackText(res)); err != nil {
		slog.Error("failed to edit message", "chat_id", cb.ChatID, "outcome", res.Outcome.String(), "error", err)
	}
	return res
}

// runCallback does everything for a format choice except the final edit.
func (d *Dispatcher) runCallback(ctx context.Context, cb *types.CallbackAction) Result {
	format, err := types.ParseFormat(cb.Choice)
	if err != nil {
		slog.Debug("unknown format choice", "chat_id", cb.ChatID, "choice", cb.Choice)
		return Result{Outcome: OutcomeUnknownFormat}
	}

	url, err := d.sessions.TakeAndClear(ctx, cb.ChatID)
	if err != nil {
		if errors.Is(err, types.ErrSessionNotFound) {
			return Result{Outcome: OutcomeSessionNotFound, Format: format}
		}
		slog.Error("failed to read session", "chat_id", cb.ChatID, "error", err)
		return Result{Outcome: OutcomeInternalError, Format: format}
	}

	// Only a press that would start a download is charged. A limited chat
	// gets its pending URL back so the button still works later.
	if d.limiter != nil && !d.limiter.Allow(cb.ChatID) {
		slog.Info("download rate limited", "chat_id", cb.ChatID)
		if err := d.sessions.Put(ctx, cb.ChatID, url); err != nil {
			slog.Error("failed to restore session", "chat_id", cb.ChatID, "error", err)
			return Result{Outcome: OutcomeInternalError, Format: format}
		}
		return Result{Outcome: OutcomeRateLimited, Format: format}
	}

	id, err := videoid.Normalize(url)
	if err != nil {
		return Result{Outcome: OutcomeInvalidURL, Format: format}
	}

	if err := d.messenger.EditText(ctx, cb.ChatID, cb.MessageID, downloadingText(format)); err != nil {
		slog.Warn("failed to show progress", "chat_id", cb.ChatID, "error", err)
	}

	started := d.now()
	art, err := d.fetcher.Fetch(ctx, id, format)
	metrics.RecordDownload(string(format), d.now().Sub(started), art.SizeBytes)
	if err != nil {
		return d.fetchFailure(cb.ChatID, id, format, err)
	}

	err = artifact.WithArtifact(ctx, art, func(ctx context.Context, a types.Artifact) error {
		return d.messenger.SendFile(ctx, cb.ChatID, a.Path, string(id))
	})
	if err != nil {
		slog.Error("delivery failed", "chat_id", cb.ChatID, "source_id", string(id), "error", err)
		return Result{Outcome: OutcomeDeliveryFailed, Format: format, SourceID: id}
	}
	slog.Info("delivered", "chat_id", cb.ChatID, "source_id", string(id), "format", string(format), "size_bytes", art.SizeBytes)
	return Result{Outcome: OutcomeDelivered, Format: format, SourceID: id, Size: art.SizeBytes}
}

func (d *Dispatcher) fetchFailure(chatID types.ChatID, id types.SourceID, format types.Format, err error) Result {
	var oversize *download.OversizeError
	if errors.As(err, &oversize) {
		slog.Warn("artifact over size limit", "chat_id", chatID, "source_id", string(id), "size_bytes", oversize.Size, "limit", oversize.Limit)
		return Result{Outcome: OutcomeOversize, Format: format, SourceID: id, Size: oversize.Size, Limit: oversize.Limit}
	}

	var diag string
	var runErr *download.RunError
	if errors.As(err, &runErr) {
		diag = runErr.Diagnostic
	}
	slog.Error("download failed", "chat_id", chatID, "source_id", string(id), "format", string(format), "error", err, "diagnostic", diag)
	return Result{Outcome: OutcomeDownloadFailed, Format: format, SourceID: id, Diagnostic: shortDiagnostic(diag, err)}
}

func (d *Dispatcher) reply(ctx context.Context, chatID types.ChatID, text string) {
	if _, err := d.messenger.SendText(ctx, chatID, text); err != nil {
		slog.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}
