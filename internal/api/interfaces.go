package api

import (
	"context"

	"github.com/spec-kit/dealroom-client/internal/domain"
)

// DealsClient is the deals collaborator surface consumed by services.
type DealsClient interface {
	List(ctx context.Context) ([]domain.Deal, error)
	Get(ctx context.Context, id string) (*domain.Deal, error)
	Create(ctx context.Context, req CreateDealRequest) (*domain.Deal, error)
	UpdateStatus(ctx context.Context, id string, status domain.DealStatus) (*domain.Deal, error)
}

// MessagesClient is the messages collaborator surface consumed by services.
type MessagesClient interface {
	List(ctx context.Context, dealID string) ([]domain.ChatMessage, error)
	Send(ctx context.Context, dealID, content string) (*domain.ChatMessage, error)
}

var (
	_ DealsClient    = (*DealsAPI)(nil)
	_ MessagesClient = (*MessagesAPI)(nil)
)
