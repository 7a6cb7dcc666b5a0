package airwallex

import (
	"context"
	"fmt"
)

// Transfers exposes the payout transfer endpoints.
type Transfers struct {
	client *Client
}

// Create creates a transfer to a beneficiary.
//
// POST /api/v1/transfers/create
func (t *Transfers) Create(ctx context.Context, req CreateTransferRequest) (*Transfer, error) {
	var transfer Transfer
	if err := t.client.post(ctx, "/api/v1/transfers/create", req, &transfer); err != nil {
		return nil, fmt.Errorf("creating transfer: %w", err)
	}

	return &transfer, nil
}

// Get retrieves a transfer by ID.
//
// GET /api/v1/transfers/{id}
func (t *Transfers) Get(ctx context.Context, id string) (*Transfer, error) {
	var transfer Transfer
	if err := t.client.get(ctx, "/api/v1/transfers/"+id, nil, &transfer); err != nil {
		return nil, fmt.Errorf("getting transfer %s: %w", id, err)
	}

	return &transfer, nil
}

// List returns transfers matching the given filters.
//
// GET /api/v1/transfers
func (t *Transfers) List(ctx context.Context, params ListTransfersParams) (*ListTransfersResponse, error) {
	var resp ListTransfersResponse
	if err := t.client.get(ctx, "/api/v1/transfers", params.values(), &resp); err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}

	return &resp, nil
}
