// internal/types/models.go
package types

import (
	"fmt"
	"strings"
	"time"
)

// Format is the output kind requested for a download.
type Format string

const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
)

// ParseFormat maps a callback choice token onto a Format.
func ParseFormat(choice string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(choice))) {
	case FormatVideo:
		return FormatVideo, nil
	case FormatAudio:
		return FormatAudio, nil
	}
	return "", fmt.Errorf("unknown format %q", choice)
}

// Ext returns the file extension, including the dot, of the target container.
func (f Format) Ext() string {
	if f == FormatAudio {
		return ".mp3"
	}
	return ".mp4"
}

// Sender carries the optional identity fields of the user behind an update.
type Sender struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// TextMessage is a plain text message sent to the bot.
type TextMessage struct {
	ChatID    ChatID    `json:"chat_id"`
	MessageID int       `json:"message_id"`
	From      Sender    `json:"from"`
	Text      string    `json:"text"`
	Command   string    `json:"command,omitempty"`
	At        time.Time `json:"at"`
}

// CallbackAction is a press on one of the inline keyboard buttons.
type CallbackAction struct {
	ID        string `json:"id"`
	ChatID    ChatID `json:"chat_id"`
	MessageID int    `json:"message_id"`
	From      Sender `json:"from"`
	Choice    string `json:"choice"`
}

// Update is one inbound event. Exactly one of Message and Callback is set.
type Update struct {
	ID       int64           `json:"id"`
	Message  *TextMessage    `json:"message,omitempty"`
	Callback *CallbackAction `json:"callback,omitempty"`
}

// ChatID returns the chat the update belongs to, or 0 when it carries no payload.
func (u Update) ChatID() ChatID {
	switch {
	case u.Message != nil:
		return u.Message.ChatID
	case u.Callback != nil:
		return u.Callback.ChatID
	}
	return 0
}

// Kind names the payload type for logs and metrics.
func (u Update) Kind() string {
	switch {
	case u.Message != nil:
		return "message"
	case u.Callback != nil:
		return "callback"
	}
	return "unknown"
}

// ChatSession is a pending URL awaiting a format choice.
type ChatSession struct {
	ChatID    ChatID    `json:"chat_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Artifact is a produced media file on disk.
type Artifact struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Format    Format `json:"format"`
}

// UserProfile records a user the first time they start the bot.
type UserProfile struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Choice is one inline keyboard button: the label shown and the token sent back.
type Choice struct {
	Label string
	Token string
}
