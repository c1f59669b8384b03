// Package assistant is a stub chat that acknowledges user messages locally.
// Nothing is sent to a model or a server.
package assistant

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxMessageLength caps user input, in runes.
const MaxMessageLength = 400

const (
	WelcomeID      = "welcome"
	WelcomeMessage = "Hi! I can summarize live sessions, explain alerts, or guide you toward the right action."
)

var ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLength)

type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

type Message struct {
	ID   string
	Role Role
	Text string
}

// Conversation is safe for concurrent use.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
	newID    func() string
}

func NewConversation() *Conversation {
	return &Conversation{
		messages: []Message{{ID: WelcomeID, Role: RoleAssistant, Text: WelcomeMessage}},
		newID:    uuid.NewString,
	}
}

// Send appends text and the stub reply. Blank text is ignored and reports
// false.
func (c *Conversation) Send(text string) (bool, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return false, ErrMessageTooLong
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages,
		Message{ID: c.newID(), Role: RoleUser, Text: trimmed},
		Message{ID: c.newID(), Role: RoleAssistant, Text: Reply(trimmed)},
	)
	return true, nil
}

// Reply is the canned acknowledgement for a user message.
func Reply(text string) string {
	return fmt.Sprintf("Got it — \"%s\". I will route that to the strategy playbook. (Stub response)", text)
}

// Messages returns a copy of the transcript in order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

