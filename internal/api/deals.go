package api

import (
	"context"
	"net/http"

	"github.com/spec-kit/dealroom-client/internal/domain"
)

// DealsAPI talks to the deals collaborator. All operations require an
// authenticated client.
type DealsAPI struct {
	client *Client
}

// NewDealsAPI constructs the deals collaborator client.
func NewDealsAPI(client *Client) *DealsAPI {
	return &DealsAPI{client: client}
}

// CreateDealRequest is the deal creation payload. Seller is populated from
// the current session by the deal service, not by callers.
type CreateDealRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Seller      string  `json:"seller"`
}

type statusUpdateRequest struct {
	Status domain.DealStatus `json:"status"`
}

// List fetches all deals visible to the caller.
func (d *DealsAPI) List(ctx context.Context) ([]domain.Deal, error) {
	var deals []domain.Deal
	if err := d.client.do(ctx, http.MethodGet, "/deals", nil, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

// Get fetches one deal by ID.
func (d *DealsAPI) Get(ctx context.Context, id string) (*domain.Deal, error) {
	var deal domain.Deal
	if err := d.client.do(ctx, http.MethodGet, "/deals/"+id, nil, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// Create submits a new deal and returns the backend's representation.
func (d *DealsAPI) Create(ctx context.Context, req CreateDealRequest) (*domain.Deal, error) {
	var deal domain.Deal
	if err := d.client.do(ctx, http.MethodPost, "/deals", req, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateStatus submits a status transition. The returned deal carries
// whatever status the backend actually applied.
func (d *DealsAPI) UpdateStatus(ctx context.Context, id string, status domain.DealStatus) (*domain.Deal, error) {
	var deal domain.Deal
	if err := d.client.do(ctx, http.MethodPut, "/deals/"+id, statusUpdateRequest{Status: status}, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}
