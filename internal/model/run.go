package model

import "time"

// RunStatus represents the outcome state of one row's enrichment run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is the persisted history of one organization's enrichment.
type Run struct {
	ID           string            `json:"id"`
	RowIndex     int               `json:"row_index"`
	Organization Organization      `json:"organization"`
	Status       RunStatus         `json:"status"`
	Record       *ExtractionRecord `json:"record,omitempty"`
	Error        string            `json:"error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// EvidenceCache is a cached evidence bundle for a website.
type EvidenceCache struct {
	Website   string    `json:"website"`
	Pages     []Page    `json:"pages"`
	CrawledAt time.Time `json:"crawled_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
