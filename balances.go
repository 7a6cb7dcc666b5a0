package airwallex

import (
	"context"
	"fmt"
)

// Balances exposes the balance endpoints.
type Balances struct {
	client *Client
}

// Current returns available and pending balances for each currency in
// the account.
//
// GET /api/v1/balances/current
func (b *Balances) Current(ctx context.Context) ([]Balance, error) {
	var balances []Balance
	if err := b.client.get(ctx, "/api/v1/balances/current", nil, &balances); err != nil {
		return nil, fmt.Errorf("getting current balances: %w", err)
	}

	return balances, nil
}

// History returns balance changes matching the given filters.
//
// GET /api/v1/balances/history
func (b *Balances) History(ctx context.Context, params BalanceHistoryParams) (*BalanceHistoryResponse, error) {
	var resp BalanceHistoryResponse
	if err := b.client.get(ctx, "/api/v1/balances/history", params.values(), &resp); err != nil {
		return nil, fmt.Errorf("getting balance history: %w", err)
	}

	return &resp, nil
}
