package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

// MockMessagesClient is a mock implementation of api.MessagesClient.
type MockMessagesClient struct {
	mock.Mock
}

func (m *MockMessagesClient) List(ctx context.Context, dealID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *MockMessagesClient) Send(ctx context.Context, dealID, content string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, dealID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	messages := new(MockMessagesClient)
	svc := NewChatService(messages, nil)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.Send(context.Background(), "d1", content)
		require.Error(t, err)
		assert.True(t, util.IsCode(err, util.CodeValidationFailed))
	}
	messages.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendPassesContentThrough(t *testing.T) {
	messages := new(MockMessagesClient)
	messages.On("Send", mock.Anything, "d1", "hello there").
		Return(&domain.ChatMessage{DealID: "d1", Sender: "u1", Content: "hello there"}, nil)

	svc := NewChatService(messages, nil)

	msg, err := svc.Send(context.Background(), "d1", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)
	messages.AssertExpectations(t)
}

func TestHistoryRequiresDealID(t *testing.T) {
	messages := new(MockMessagesClient)
	svc := NewChatService(messages, nil)

	_, err := svc.History(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeValidationFailed))
	messages.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestHistoryPreservesOrder(t *testing.T) {
	ordered := []domain.ChatMessage{
		{DealID: "d1", Sender: "u1", Content: "first"},
		{DealID: "d1", Sender: "u2", Content: "second"},
	}
	messages := new(MockMessagesClient)
	messages.On("List", mock.Anything, "d1").Return(ordered, nil)

	svc := NewChatService(messages, nil)

	history, err := svc.History(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, ordered, history)
}
