package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/dealroom-client/internal/api"
	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/internal/events"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

// SessionReader exposes the cached session to services. The session manager
// satisfies this; services never mutate the session.
type SessionReader interface {
	Current() (*domain.Session, bool)
}

// DealService coordinates deal reads and status transitions. It is the deal
// status controller: illegal transitions are refused locally, legal ones are
// submitted and the backend's answer is adopted verbatim.
type DealService struct {
	deals      api.DealsClient
	sessions   SessionReader
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// DealDependencies bundles collaborators for the deal service.
type DealDependencies struct {
	Deals      api.DealsClient
	Sessions   SessionReader
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewDealService constructs the service.
func NewDealService(deps DealDependencies) *DealService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DealService{
		deals:      deps.Deals,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateDealInput describes a deal creation form.
type CreateDealInput struct {
	Title       string
	Description string
	Price       float64
}

// List fetches all deals visible to the current session.
func (s *DealService) List(ctx context.Context) ([]domain.Deal, error) {
	return s.deals.List(ctx)
}

// Get fetches one deal for display.
func (s *DealService) Get(ctx context.Context, id string) (*domain.Deal, error) {
	if strings.TrimSpace(id) == "" {
		return nil, util.NewValidationError("deal id is required", nil)
	}
	return s.deals.Get(ctx, id)
}

// Create submits a new deal. The seller field comes from the current
// session's subject, never from the caller.
func (s *DealService) Create(ctx context.Context, input CreateDealInput) (*domain.Deal, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return nil, util.NewAuthError("login required to create a deal")
	}

	draft := domain.Deal{Title: input.Title, Price: input.Price}
	if err := draft.Validate(); err != nil {
		return nil, util.NewValidationError(err.Error(), nil)
	}

	deal, err := s.deals.Create(ctx, api.CreateDealRequest{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Seller:      sess.Subject,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("deal created", zap.String("deal_id", deal.ID))
	return deal, nil
}

// ApplyTransition submits a status transition for a deal. The target must be
// reachable from current per the transition table; otherwise a validation
// error is returned without touching the network. On success the returned
// deal is the backend's representation; its status is authoritative even if
// it differs from the requested target. Concurrent transitions for the same
// deal are not coordinated; the last response wins.
func (s *DealService) ApplyTransition(ctx context.Context, dealID string, current, target domain.DealStatus) (*domain.Deal, error) {
	if !target.Valid() {
		return nil, util.NewValidationError(fmt.Sprintf("unknown deal status %q", target), nil)
	}
	if !domain.CanTransition(current, target) {
		return nil, util.NewValidationError(
			fmt.Sprintf("deal cannot move from %s to %s", current, target),
			map[string]any{"current": current, "target": target},
		)
	}

	updated, err := s.deals.UpdateStatus(ctx, dealID, target)
	if err != nil {
		return nil, err
	}

	s.logger.Info("deal status updated",
		zap.String("deal_id", dealID),
		zap.String("from", string(current)),
		zap.String("to", string(updated.Status)))
	if s.dispatcher != nil {
		s.dispatcher.Publish(ctx, events.EventDealStatusChanged, events.DealStatusChangedPayload{
			DealID:    dealID,
			OldStatus: current,
			NewStatus: updated.Status,
		})
	}
	return updated, nil
}
