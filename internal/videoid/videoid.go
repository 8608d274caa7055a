// Package videoid turns the link forms users paste into a canonical source ID.
package videoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/user/tubefetch/internal/types"
)

// ErrInvalidURL is returned for anything that is not a recognized video link.
var ErrInvalidURL = errors.New("invalid video url")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Normalize accepts the watch (youtube.com/watch?v=ID), short (youtu.be/ID)
// and embed (youtube.com/embed/ID) link forms and returns the ID they name.
// Every other query parameter is dropped.
func Normalize(raw string) (types.SourceID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}

	var id string
	switch host(u) {
	case "youtube.com":
		switch {
		case u.Path == "/watch" || u.Path == "/watch/":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = pathSegment(u.Path, "/embed/")
		}
	case "youtube-nocookie.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			id = pathSegment(u.Path, "/embed/")
		}
	case "youtu.be":
		id = pathSegment(u.Path, "/")
	}

	if !idPattern.MatchString(id) {
		return "", ErrInvalidURL
	}
	return types.SourceID(id), nil
}

// Canonical returns the canonical watch link for raw.
func Canonical(raw string) (string, error) {
	id, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	return id.URL(), nil
}

func host(u *url.URL) string {
	h := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "music."} {
		if strings.HasPrefix(h, prefix) {
			return strings.TrimPrefix(h, prefix)
		}
	}
	return h
}

// pathSegment returns the single segment following prefix, or "" when the
// remaining path has more than one segment.
func pathSegment(path, prefix string) string {
	rest := strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
	if strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
