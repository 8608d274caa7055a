// Package telegram connects the bot to the Telegram Bot API: it is both the
// inbound update source and the outbound messenger.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/tubefetch/internal/types"
)

// botAPI is the subset of *tgbotapi.BotAPI the client uses.
type botAPI interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client implements types.UpdateSource and types.Messenger.
type Client struct {
	api      botAPI
	retry    *RetryPolicy
	username string
}

// New connects to the Bot API with token. A rejected token is reported as
// types.ErrUnauthorized.
func New(token string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: empty bot token", types.ErrUnauthorized)
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && (apiErr.Code == 401 || apiErr.Code == 404) {
			return nil, fmt.Errorf("%w: %v", types.ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("create bot: %w", err)
	}
	c := newClient(bot)
	c.username = bot.Self.UserName
	return c, nil
}

func newClient(api botAPI) *Client {
	return &Client{api: api, retry: DefaultRetryPolicy()}
}

// Username returns the bot's own username.
func (c *Client) Username() string {
	return c.username
}

type fetchResult struct {
	updates []tgbotapi.Update
	err     error
}

// Fetch long-polls for updates starting at offset. The underlying request
// cannot be cancelled, so on ctx cancellation Fetch returns at once and the
// in-flight poll finishes on its own within timeoutSeconds.
func (c *Client) Fetch(ctx context.Context, offset int64, timeoutSeconds, limit int) ([]types.Update, error) {
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = timeoutSeconds
	cfg.Limit = limit
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	done := make(chan fetchResult, 1)
	go func() {
		updates, err := c.api.GetUpdates(cfg)
		done <- fetchResult{updates, err}
	}()

	var res fetchResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if apiErr, ok := asAPIError(res.err); ok && apiErr.Code == 401 {
			return nil, fmt.Errorf("%w: %v", types.ErrUnauthorized, res.err)
		}
		return nil, fmt.Errorf("get updates: %w", res.err)
	}

	out := make([]types.Update, 0, len(res.updates))
	for _, u := range res.updates {
		out = append(out, convertUpdate(u))
	}
	return out, nil
}

// SendText sends text, split into several messages when it is too long. The
// keyboard goes on the last part, whose message ID is returned.
func (c *Client) SendText(ctx context.Context, chatID types.ChatID, text string, choices ...types.Choice) (int, error) {
	parts := splitMessage(text)
	var sent tgbotapi.Message
	for i, part := range parts {
		msg := tgbotapi.NewMessage(int64(chatID), part)
		if i == len(parts)-1 {
			if kb := keyboard(choices); kb != nil {
				msg.ReplyMarkup = kb
			}
		}
		err := c.retry.Do(ctx, "send_text", func() error {
			var err error
			sent, err = c.api.Send(msg)
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("send message: %w", err)
		}
	}
	return sent.MessageID, nil
}

// EditText replaces the text of a message the bot sent earlier and drops its
// keyboard. Editing to identical text is not an error.
func (c *Client) EditText(ctx context.Context, chatID types.ChatID, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(int64(chatID), messageID, truncate(text))
	err := c.retry.Do(ctx, "edit_text", func() error {
		_, err := c.api.Request(edit)
		return err
	})
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && strings.Contains(apiErr.Message, "message is not modified") {
			return nil
		}
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// AckAction answers a callback query so the client stops showing a spinner.
// It is tried once: a late answer is useless.
func (c *Client) AckAction(ctx context.Context, actionID, text string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(actionID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// SendFile uploads the file at path as a document.
func (c *Client) SendFile(ctx context.Context, chatID types.ChatID, path, caption string) error {
	doc := tgbotapi.NewDocument(int64(chatID), tgbotapi.FilePath(path))
	doc.Caption = caption
	err := c.retry.Do(ctx, "send_file", func() error {
		_, err := c.api.Send(doc)
		return err
	})
	if err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	slog.Debug("document sent", "chat_id", chatID, "path", path)
	return nil
}
