package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one transcript turn
type Message struct {
	ID          string         `json:"id"`
	Role        string         `json:"role"`
	Content     string         `json:"content"`
	Timestamp   time.Time      `json:"timestamp"`
	Regen       bool           `json:"regen"`
	ElapsedTime *time.Duration `json:"elapsedTime,omitempty"`
}

const (
	RoleHuman = "Human"
	RoleAI    = "AI"
)

func NewHumanMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleHuman,
		Content:   strings.TrimSpace(content),
		Timestamp: time.Now(),
	}
}

func NewAIMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAI,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAIMessageWithElapsed creates an answer that records how long the
// exchange took
func NewAIMessageWithElapsed(content string, elapsed time.Duration) Message {
	msg := NewAIMessage(content)
	msg.ElapsedTime = &elapsed
	return msg
}

func (m Message) IsHuman() bool {
	return m.Role == RoleHuman
}

func (m Message) IsAI() bool {
	return m.Role == RoleAI
}

// Elapsed returns the recorded exchange duration, if any
func (m Message) Elapsed() (time.Duration, bool) {
	if m.ElapsedTime == nil {
		return 0, false
	}
	return *m.ElapsedTime, true
}
