package airwallex

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// Balance is the current balance for one currency.
type Balance struct {
	Currency         string  `json:"currency"`
	AvailableAmount  float64 `json:"available_amount"`
	PendingAmount    float64 `json:"pending_amount"`
	ReservedAmount   float64 `json:"reserved_amount"`
	TotalAmount      float64 `json:"total_amount"`
	PrepaymentAmount float64 `json:"prepayment_amount"`
}

// BalanceHistoryEntry is a single balance change.
type BalanceHistoryEntry struct {
	ID             string    `json:"id"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	OpeningBalance float64   `json:"opening_balance"`
	ClosingBalance float64   `json:"closing_balance"`
	Description    string    `json:"description"`
	Fee            float64   `json:"fee"`
	PostedAt       time.Time `json:"posted_at"`
}

// BalanceHistoryResponse is the paginated response from the balance
// history endpoint.
type BalanceHistoryResponse struct {
	Items         []BalanceHistoryEntry `json:"items"`
	PageAfter     string                `json:"page_after"`
	PageBefore    string                `json:"page_before"`
	HasMore       bool                  `json:"has_more"`
	TotalElements int                   `json:"total_elements"`
}

// BalanceHistoryParams filters the balance history listing.
// The zero value lists everything with server-side defaults.
type BalanceHistoryParams struct {
	Currency string
	FromDate time.Time
	ToDate   time.Time
	Page     string
	PageSize int
}

// values serializes the params as query parameters, omitting unset fields.
func (p BalanceHistoryParams) values() url.Values {
	q := url.Values{}

	if p.Currency != "" {
		q.Set("currency", p.Currency)
	}

	if !p.FromDate.IsZero() {
		q.Set("from_post_date", p.FromDate.Format(time.RFC3339))
	}

	if !p.ToDate.IsZero() {
		q.Set("to_post_date", p.ToDate.Format(time.RFC3339))
	}

	if p.Page != "" {
		q.Set("page", p.Page)
	}

	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}

	return q
}

// Transfer is a payout to a beneficiary.
type Transfer struct {
	ID                  string          `json:"id,omitempty"`
	RequestID           string          `json:"request_id,omitempty"`
	Status              string          `json:"status,omitempty"`
	ShortReferenceID    string          `json:"short_reference_id,omitempty"`
	SourceAmount        float64         `json:"source_amount,omitempty"`
	SourceCurrency      string          `json:"source_currency,omitempty"`
	TargetAmount        float64         `json:"target_amount,omitempty"`
	TargetCurrency      string          `json:"target_currency,omitempty"`
	FeeAmount           float64         `json:"fee_amount,omitempty"`
	FeeCurrency         string          `json:"fee_currency,omitempty"`
	FeePaidBy           string          `json:"fee_paid_by,omitempty"`
	PaymentMethod       string          `json:"payment_method,omitempty"`
	Reference           string          `json:"reference,omitempty"`
	Reason              string          `json:"reason,omitempty"`
	BeneficiaryID       string          `json:"beneficiary_id,omitempty"`
	Beneficiary         json.RawMessage `json:"beneficiary,omitempty"`
	SwiftChargeOption   string          `json:"swift_charge_option,omitempty"`
	CreatedAt           string          `json:"created_at,omitempty"`
	UpdatedAt           string          `json:"updated_at,omitempty"`
	CompletionDate      string          `json:"completion_date,omitempty"`
	PayoutFailureReason string          `json:"payout_failure_reason,omitempty"`
	Metadata            json.RawMessage `json:"metadata,omitempty"`
}

// CreateTransferRequest creates a new transfer. RequestID must be a
// caller-generated idempotency key.
type CreateTransferRequest struct {
	RequestID         string          `json:"request_id"`
	SourceCurrency    string          `json:"source_currency"`
	SourceAmount      float64         `json:"source_amount,omitempty"`
	TargetCurrency    string          `json:"target_currency,omitempty"`
	TargetAmount      float64         `json:"target_amount,omitempty"`
	FeePaidBy         string          `json:"fee_paid_by"`
	PaymentMethod     string          `json:"payment_method"`
	Reference         string          `json:"reference"`
	Reason            string          `json:"reason,omitempty"`
	BeneficiaryID     string          `json:"beneficiary_id,omitempty"`
	Beneficiary       json.RawMessage `json:"beneficiary,omitempty"`
	SwiftChargeOption string          `json:"swift_charge_option,omitempty"`
	Metadata          json.RawMessage `json:"metadata,omitempty"`
}

// ListTransfersResponse is the paginated transfer listing.
type ListTransfersResponse struct {
	Items   []Transfer `json:"items"`
	HasMore bool       `json:"has_more"`
}

// ListTransfersParams filters the transfer listing.
type ListTransfersParams struct {
	Status   string
	FromDate time.Time
	ToDate   time.Time
	PageNum  int
	PageSize int
}

func (p ListTransfersParams) values() url.Values {
	q := url.Values{}

	if p.Status != "" {
		q.Set("status", p.Status)
	}

	if !p.FromDate.IsZero() {
		q.Set("from_created_at", p.FromDate.Format(time.RFC3339))
	}

	if !p.ToDate.IsZero() {
		q.Set("to_created_at", p.ToDate.Format(time.RFC3339))
	}

	if p.PageNum > 0 {
		q.Set("page_num", strconv.Itoa(p.PageNum))
	}

	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}

	return q
}
