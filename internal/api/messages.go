package api

import (
	"context"
	"net/http"

	"github.com/spec-kit/dealroom-client/internal/domain"
)

// MessagesAPI talks to the messages collaborator.
type MessagesAPI struct {
	client *Client
}

// NewMessagesAPI constructs the messages collaborator client.
func NewMessagesAPI(client *Client) *MessagesAPI {
	return &MessagesAPI{client: client}
}

type sendMessageRequest struct {
	DealID  string `json:"dealId"`
	Content string `json:"content"`
}

// List fetches the message history for a deal, in view order.
func (m *MessagesAPI) List(ctx context.Context, dealID string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	if err := m.client.do(ctx, http.MethodGet, "/messages/"+dealID, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send posts a message to a deal and returns the stored representation.
func (m *MessagesAPI) Send(ctx context.Context, dealID, content string) (*domain.ChatMessage, error) {
	var msg domain.ChatMessage
	if err := m.client.do(ctx, http.MethodPost, "/messages", sendMessageRequest{DealID: dealID, Content: content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
