package dto

// ConfirmMatchRequest is the request body for pairing an expense with a sale.
type ConfirmMatchRequest struct {
	ExpenseID string `json:"expense_id"`
	SaleID    string `json:"sale_id"`
}

// UpdateSettingsRequest is the request body for PUT /api/settings.
// Omitted fields keep their current value.
type UpdateSettingsRequest struct {
	DateToleranceDays  *int    `json:"date_tolerance_days"`
	AutoMatchThreshold *int    `json:"auto_match_threshold"`
	Strategy           *string `json:"strategy"`
}

// TransactionListParams represents query parameters for listing transactions.
type TransactionListParams struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// DefaultTransactionListParams returns default values for transaction list params.
func DefaultTransactionListParams() TransactionListParams {
	return TransactionListParams{
		Limit:  100,
		Offset: 0,
	}
}

// MatchRunListParams represents query parameters for listing match runs.
type MatchRunListParams struct {
	Limit int `json:"limit"`
}

// DefaultMatchRunListParams returns default values for match run list params.
func DefaultMatchRunListParams() MatchRunListParams {
	return MatchRunListParams{
		Limit: 20,
	}
}
