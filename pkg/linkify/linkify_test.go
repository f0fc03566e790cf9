package linkify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const assetPrefix = "http://localhost:8080/uploads/"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected Kind
	}{
		{"plain text", "hello there", KindText},
		{"bare url", "look at https://example.com/page", KindText},
		{"uploaded png", assetPrefix + "01J3ZK.png", KindImage},
		{"uploaded jpeg uppercase", assetPrefix + "01J3ZK.JPEG", KindImage},
		{"uploaded gif", assetPrefix + "01J3ZK.gif", KindImage},
		{"uploaded pdf", assetPrefix + "01J3ZK.pdf", KindFile},
		{"foreign image url", "https://example.com/cat.png", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.message, assetPrefix))
		})
	}
}

func TestClassifyEmptyPrefix(t *testing.T) {
	assert.Equal(t, KindText, Classify(assetPrefix+"a.png", ""))
}

func TestAutolink(t *testing.T) {
	got := Autolink("see https://example.com/a?b=1 now")
	assert.Equal(t, `see <a href="https://example.com/a?b=1" target="_blank" rel="noopener noreferrer">https://example.com/a?b=1</a> now`, got)
}

func TestAutolinkEscapesMarkup(t *testing.T) {
	got := Autolink(`<script>alert("x")</script>`)
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
}

func TestAutolinkPlainText(t *testing.T) {
	assert.Equal(t, "no links here", Autolink("no links here"))
}
