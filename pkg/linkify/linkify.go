// Package linkify classifies and renders raw chat message text. The
// transcript stores raw text only; rendering is a read-time projection.
package linkify

import (
	"html"
	"regexp"
	"strings"
)

type Kind int

const (
	// KindText renders as text with bare URLs turned into links.
	KindText Kind = iota
	// KindImage renders as an inline image (uploaded image asset).
	KindImage
	// KindFile renders as a download link (uploaded non-image asset).
	KindFile
)

var urlRegexp = regexp.MustCompile(`https?://[^\s]+`)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif"}

// Classify reports how a raw message should be rendered. assetPrefix is
// the base URL under which uploaded chat assets are served; a message
// that is itself a link to such an asset renders as an inline image or a
// download link instead of plain linkified text.
func Classify(message, assetPrefix string) Kind {
	if assetPrefix == "" || !strings.Contains(message, assetPrefix) {
		return KindText
	}

	lower := strings.ToLower(strings.TrimSpace(message))
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return KindImage
		}
	}

	return KindFile
}

// Autolink escapes the message and wraps every bare http(s) URL in an
// anchor tag.
func Autolink(message string) string {
	var b strings.Builder

	last := 0
	for _, loc := range urlRegexp.FindAllStringIndex(message, -1) {
		b.WriteString(html.EscapeString(message[last:loc[0]]))

		url := message[loc[0]:loc[1]]
		escaped := html.EscapeString(url)
		b.WriteString(`<a href="` + escaped + `" target="_blank" rel="noopener noreferrer">` + escaped + `</a>`)

		last = loc[1]
	}
	b.WriteString(html.EscapeString(message[last:]))

	return b.String()
}
