package client

import (
	"sort"
	"sync"
	"time"

	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/linkify"
)

// Mirror is the best-effort local copy of the room's chat transcript,
// active poll and typing set. A join snapshot fully replaces its state;
// incremental events append or update it. It never merges a snapshot
// with what it already holds, which is what makes rejoining safe.
type Mirror struct {
	mu         sync.Mutex
	chatLog    []room.ChatMessage
	activePoll *room.Poll
	typing     map[string]struct{}
}

func NewMirror() *Mirror {
	return &Mirror{typing: make(map[string]struct{})}
}

// ApplySnapshot replaces all mirrored state with the join snapshot.
func (m *Mirror) ApplySnapshot(state room.FullRoomState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chatLog = append([]room.ChatMessage(nil), state.ChatHistory...)
	m.activePoll = state.ActivePoll
	m.typing = make(map[string]struct{})
}

// AppendMessage appends one broadcast message in arrival order.
func (m *Mirror) AppendMessage(msg room.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chatLog = append(m.chatLog, msg)
}

// SetPoll installs a created or updated poll, replacing the previous
// one wholesale.
func (m *Mirror) SetPoll(poll *room.Poll) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activePoll = poll
}

func (m *Mirror) AddTyping(displayName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.typing[displayName] = struct{}{}
}

func (m *Mirror) RemoveTyping(displayName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.typing, displayName)
}

func (m *Mirror) ChatLog() []room.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := make([]room.ChatMessage, len(m.chatLog))
	copy(log, m.chatLog)

	return log
}

// RenderedMessage is a chat message projected for display. The
// transcript itself stays raw; Kind and HTML are derived at read time.
type RenderedMessage struct {
	Author string
	SentAt time.Time
	Kind   linkify.Kind
	// HTML is the escaped, autolinked message body. For image and file
	// kinds it is the raw asset URL instead.
	HTML string
}

// RenderedChatLog projects the transcript for display. assetPrefix is
// the URL prefix under which uploaded chat assets are served.
func (m *Mirror) RenderedChatLog(assetPrefix string) []RenderedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	rendered := make([]RenderedMessage, len(m.chatLog))
	for i, msg := range m.chatLog {
		kind := linkify.Classify(msg.Message, assetPrefix)
		body := msg.Message
		if kind == linkify.KindText {
			body = linkify.Autolink(msg.Message)
		}
		rendered[i] = RenderedMessage{
			Author: msg.Author,
			SentAt: msg.SentAt,
			Kind:   kind,
			HTML:   body,
		}
	}

	return rendered
}

func (m *Mirror) ActivePoll() *room.Poll {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.activePoll
}

// TypingNames returns the display names currently typing, sorted for
// stable presentation.
func (m *Mirror) TypingNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.typing))
	for name := range m.typing {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
