package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TransactionResponse represents an expense or sale in API responses.
type TransactionResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Date         string `json:"date"`
	Amount       string `json:"amount"`
	Counterparty string `json:"counterparty"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	MatchedID    string `json:"matched_id,omitempty"`
	BatchID      string `json:"batch_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// TransactionListResponse is returned when listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// BatchResponse represents a CSV upload in API responses.
type BatchResponse struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	Kind          string `json:"kind"`
	TotalRows     int    `json:"total_rows"`
	ProcessedRows int    `json:"processed_rows"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
	UploadedAt    string `json:"uploaded_at"`
}

// BatchListResponse is returned when listing uploads.
type BatchListResponse struct {
	Batches []BatchResponse `json:"batches"`
	Count   int             `json:"count"`
}

// CandidateResponse is one scored sale offered for an expense.
type CandidateResponse struct {
	Sale      TransactionResponse `json:"sale"`
	Score     int                 `json:"score"`
	DaysApart int                 `json:"days_apart"`
}

// CandidateListResponse is returned for GET /api/expenses/{id}/candidates.
type CandidateListResponse struct {
	ExpenseID  string              `json:"expense_id"`
	Candidates []CandidateResponse `json:"candidates"`
}

// SuggestionResponse pairs a pending expense with its candidates.
type SuggestionResponse struct {
	Expense    TransactionResponse `json:"expense"`
	Candidates []CandidateResponse `json:"candidates"`
}

// SuggestionListResponse is returned for GET /api/suggestions.
type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
	Count       int                  `json:"count"`
}

// MatchResponse describes a committed pairing.
type MatchResponse struct {
	ExpenseID  string   `json:"expense_id"`
	SaleID     string   `json:"sale_id"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
}

// AutoMatchResponse is returned for POST /api/auto-match.
type AutoMatchResponse struct {
	RunID         string          `json:"run_id"`
	MatchedCount  int             `json:"matched_count"`
	SkippedCount  int             `json:"skipped_count"`
	TotalExpenses int             `json:"total_expenses"`
	TotalSales    int             `json:"total_sales"`
	Matches       []MatchResponse `json:"matches"`
	Error         string          `json:"error,omitempty"`
}

// SettingsResponse is the owner's match configuration.
type SettingsResponse struct {
	DateToleranceDays  int    `json:"date_tolerance_days"`
	AutoMatchThreshold int    `json:"auto_match_threshold"`
	Strategy           string `json:"strategy"`
}

// StatsResponse contains dashboard totals.
type StatsResponse struct {
	TotalTransactions int    `json:"total_transactions"`
	MatchedCount      int    `json:"matched_count"`
	MatchedPercentage int    `json:"matched_percentage"`
	PendingCount      int    `json:"pending_count"`
	IgnoredCount      int    `json:"ignored_count"`
	TotalAmount       string `json:"total_amount"`
}

// MatchRunResponse represents an auto-match run in API responses.
type MatchRunResponse struct {
	ID            string `json:"id"`
	Trigger       string `json:"trigger"`
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	TotalExpenses int    `json:"total_expenses"`
	TotalSales    int    `json:"total_sales"`
	MatchedCount  int    `json:"matched_count"`
	SkippedCount  int    `json:"skipped_count"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// MatchRunListResponse is returned when listing match runs.
type MatchRunListResponse struct {
	Runs  []MatchRunResponse `json:"runs"`
	Count int                `json:"count"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse(status string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
