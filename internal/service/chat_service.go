package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/dealroom-client/internal/api"
	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

// ChatService handles per-deal message history and sending. History order is
// whatever the backend returns; locally the sequence is append-only.
type ChatService struct {
	messages api.MessagesClient
	logger   *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(messages api.MessagesClient, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{messages: messages, logger: logger}
}

// History fetches the messages for a deal.
func (s *ChatService) History(ctx context.Context, dealID string) ([]domain.ChatMessage, error) {
	if strings.TrimSpace(dealID) == "" {
		return nil, util.NewValidationError("deal id is required", nil)
	}
	return s.messages.List(ctx, dealID)
}

// Send posts a message after the non-empty content check. Empty content
// never reaches the network.
func (s *ChatService) Send(ctx context.Context, dealID, content string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(dealID) == "" {
		return nil, util.NewValidationError("deal id is required", nil)
	}
	if err := domain.ValidateMessageContent(content); err != nil {
		return nil, util.NewValidationError(err.Error(), nil)
	}
	msg, err := s.messages.Send(ctx, dealID, content)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("message sent", zap.String("deal_id", dealID))
	return msg, nil
}
