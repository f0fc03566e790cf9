// Package ytvideoid extracts the 11-character video id from the YouTube
// URL shapes users paste when creating a room.
package ytvideoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidURL = errors.New("invalid youtube url")

var videoIdRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

func Parse(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrInvalidURL
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		return validate(id)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return validate(id)
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				return validate(id)
			}
		}
	}

	return "", ErrInvalidURL
}

func validate(id string) (string, error) {
	if !videoIdRegexp.MatchString(id) {
		return "", ErrInvalidURL
	}

	return id, nil
}
