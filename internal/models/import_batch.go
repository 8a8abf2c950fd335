package models

import "time"

// ImportBatch records the outcome of one import run
type ImportBatch struct {
	ID      int64  `json:"id" db:"id"`
	BatchID string `json:"batchId" db:"batch_id"`
	Source  string `json:"source" db:"source"` // uploaded file name or path

	// Status
	Status       string `json:"status" db:"status"` // completed, failed
	ErrorMessage string `json:"errorMessage,omitempty" db:"error_message"`

	// Counts
	RowsRead    int `json:"rowsRead" db:"rows_read"`
	RowsStored  int `json:"rowsStored" db:"rows_stored"`
	RowsDropped int `json:"rowsDropped" db:"rows_dropped"`
	Invalid     int `json:"invalid" db:"invalid"`

	StartedAt  time.Time `json:"startedAt" db:"started_at"`
	FinishedAt time.Time `json:"finishedAt" db:"finished_at"`
}

// ImportStatus constants
const (
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// ImportBatchFilter represents filter parameters for the import history
type ImportBatchFilter struct {
	Status string `form:"status"` // completed, failed
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
