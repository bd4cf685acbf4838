package events

import (
	"time"

	"github.com/spec-kit/dealroom-client/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionLogin        EventType = "session_login"
	EventSessionLogout       EventType = "session_logout"
	EventSessionExpired      EventType = "session_expired"
	EventDealStatusChanged   EventType = "deal_status_changed"
	EventChatMessageReceived EventType = "chat_message_received"
)

// Event is published by the session manager, deal service and live channel
// so views can react to state changes without ambient global access.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// SessionPayload accompanies session lifecycle events. The token itself is
// never carried on events.
type SessionPayload struct {
	Subject string
	Role    domain.Role
}

// DealStatusChangedPayload accompanies deal_status_changed.
type DealStatusChangedPayload struct {
	DealID    string
	OldStatus domain.DealStatus
	NewStatus domain.DealStatus
}

// ChatMessagePayload accompanies chat_message_received.
type ChatMessagePayload struct {
	Message domain.ChatMessage
}
