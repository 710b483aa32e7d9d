package transaction

import "time"

// BatchStatus tracks the progress of a CSV upload.
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// Batch records where a group of transactions came from.
type Batch struct {
	ID            string
	OwnerID       string
	Filename      string
	Kind          Kind
	TotalRows     int
	ProcessedRows int
	Status        BatchStatus
	ErrorMessage  string
	UploadedAt    time.Time
}
