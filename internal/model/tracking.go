package model

// Phase labels the step a running job is in
type Phase string

const (
	PhaseExtract   Phase = "extract"
	PhaseTransform Phase = "transform"
	PhaseLoad      Phase = "load"
	PhaseCompleted Phase = "completed"
)

// Progress is the per-job snapshot recomputed after every phase
type Progress struct {
	TotalRecords           int   `json:"totalRecords"`
	ProcessedRecords       int   `json:"processedRecords"`
	SuccessfulRecords      int   `json:"successfulRecords"`
	FailedRecords          int   `json:"failedRecords"`
	Percentage             int   `json:"percentage"`
	EstimatedTimeRemaining *int  `json:"estimatedTimeRemaining,omitempty"` // seconds
	CurrentPhase           Phase `json:"currentPhase"`
}
