package models

// ============================================================
// Run Model
// ============================================================

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is the history record of one conversion.
type Run struct {
	ID         string    `json:"id"`
	InputName  string    `json:"input_name"`
	Status     RunStatus `json:"status"`
	Walls      int       `json:"walls"`
	Openings   int       `json:"openings"`
	OutputDir  string    `json:"output_dir"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  string    `json:"created_at"`
	FinishedAt string    `json:"finished_at,omitempty"`
}
