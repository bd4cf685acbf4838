package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealroom-client/internal/api"
	"github.com/spec-kit/dealroom-client/internal/collabtest"
	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/internal/events"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

// MockDealsClient is a mock implementation of api.DealsClient.
type MockDealsClient struct {
	mock.Mock
}

func (m *MockDealsClient) List(ctx context.Context) ([]domain.Deal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deal), args.Error(1)
}

func (m *MockDealsClient) Get(ctx context.Context, id string) (*domain.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockDealsClient) Create(ctx context.Context, req api.CreateDealRequest) (*domain.Deal, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockDealsClient) UpdateStatus(ctx context.Context, id string, status domain.DealStatus) (*domain.Deal, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

type staticSession struct {
	sess *domain.Session
}

func (s staticSession) Current() (*domain.Session, bool) {
	return s.sess, s.sess != nil
}

func newTestDealService(deals api.DealsClient, sess *domain.Session) (*DealService, events.Dispatcher) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewDealService(DealDependencies{
		Deals:      deals,
		Sessions:   staticSession{sess: sess},
		Dispatcher: dispatcher,
	})
	return svc, dispatcher
}

func TestApplyTransitionRefusesIllegalMovesLocally(t *testing.T) {
	all := []domain.DealStatus{
		domain.DealStatusPending, domain.DealStatusInProgress,
		domain.DealStatusCompleted, domain.DealStatusCancelled,
	}

	deals := new(MockDealsClient)
	svc, _ := newTestDealService(deals, nil)

	for _, from := range all {
		for _, to := range all {
			if domain.CanTransition(from, to) {
				continue
			}
			_, err := svc.ApplyTransition(context.Background(), "d1", from, to)
			require.Error(t, err, "%s -> %s", from, to)
			assert.True(t, util.IsCode(err, util.CodeValidationFailed))
		}
	}
	deals.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyTransitionSubmitsLegalMove(t *testing.T) {
	deals := new(MockDealsClient)
	deals.On("UpdateStatus", mock.Anything, "d1", domain.DealStatusInProgress).
		Return(&domain.Deal{ID: "d1", Status: domain.DealStatusInProgress}, nil)

	svc, dispatcher := newTestDealService(deals, nil)

	var changes []events.DealStatusChangedPayload
	dispatcher.Subscribe(events.EventDealStatusChanged, func(_ context.Context, e events.Event) {
		changes = append(changes, e.Payload.(events.DealStatusChangedPayload))
	})

	updated, err := svc.ApplyTransition(context.Background(), "d1", domain.DealStatusPending, domain.DealStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusInProgress, updated.Status)

	require.Len(t, changes, 1)
	assert.Equal(t, domain.DealStatusPending, changes[0].OldStatus)
	assert.Equal(t, domain.DealStatusInProgress, changes[0].NewStatus)
	deals.AssertExpectations(t)
}

func TestApplyTransitionAdoptsServerStatus(t *testing.T) {
	// the backend may apply its own rules; the requested target is not
	// assumed to have stuck
	deals := new(MockDealsClient)
	deals.On("UpdateStatus", mock.Anything, "d1", domain.DealStatusInProgress).
		Return(&domain.Deal{ID: "d1", Status: domain.DealStatusCancelled}, nil)

	svc, _ := newTestDealService(deals, nil)

	updated, err := svc.ApplyTransition(context.Background(), "d1", domain.DealStatusPending, domain.DealStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusCancelled, updated.Status)
}

func TestApplyTransitionServerRejectionSurfaces(t *testing.T) {
	// stale local copy: client-side the move looks legal, backend disagrees
	srv := collabtest.NewServer(t)
	sellerID := srv.SeedUser(t, "bob", "x", domain.RoleSeller)
	deal := srv.SeedDeal("Warehouse lease", 9000, sellerID, domain.DealStatusInProgress)

	client := api.NewClient(api.Options{
		BaseURL: srv.URL(),
		Timeout: 5 * time.Second,
		Tokens:  tokenFunc(srv.IssueToken(sellerID, domain.RoleSeller)),
	})
	svc, _ := newTestDealService(api.NewDealsAPI(client), nil)

	_, err := svc.ApplyTransition(context.Background(), deal.ID, domain.DealStatusPending, domain.DealStatusCancelled)
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeRequestFailed))
	assert.Contains(t, util.ToClientError(err).Message, "illegal status transition")
}

type tokenFunc string

func (f tokenFunc) Token() string { return string(f) }

func TestCreatePopulatesSellerFromSession(t *testing.T) {
	deals := new(MockDealsClient)
	deals.On("Create", mock.Anything, mock.MatchedBy(func(req api.CreateDealRequest) bool {
		return req.Seller == "u7" && req.Title == "Forklift"
	})).Return(&domain.Deal{ID: "d9", Status: domain.DealStatusPending}, nil)

	svc, _ := newTestDealService(deals, &domain.Session{Subject: "u7", Role: domain.RoleBuyer})

	deal, err := svc.Create(context.Background(), CreateDealInput{Title: "Forklift", Price: 300})
	require.NoError(t, err)
	assert.Equal(t, "d9", deal.ID)
	deals.AssertExpectations(t)
}

func TestCreateRequiresSession(t *testing.T) {
	deals := new(MockDealsClient)
	svc, _ := newTestDealService(deals, nil)

	_, err := svc.Create(context.Background(), CreateDealInput{Title: "Forklift", Price: 300})
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeAuthFailed))
	deals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	deals := new(MockDealsClient)
	svc, _ := newTestDealService(deals, &domain.Session{Subject: "u7", Role: domain.RoleBuyer})

	_, err := svc.Create(context.Background(), CreateDealInput{Title: "Forklift", Price: -5})
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeValidationFailed))
	deals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
