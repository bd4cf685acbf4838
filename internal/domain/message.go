package domain

import (
	"errors"
	"strings"
	"time"
)

// ChatMessage is one exchanged message scoped to a single deal. Messages are
// appended to a view-ordered sequence and never edited or removed locally.
type ChatMessage struct {
	DealID    string    `json:"dealId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidateMessageContent rejects empty or whitespace-only message bodies.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message content cannot be empty")
	}
	return nil
}
