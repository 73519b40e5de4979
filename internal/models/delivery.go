package models

// Outcome is the result of processing a single message
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeDelivered
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// ScanReport summarizes one poll cycle
type ScanReport struct {
	Found     int
	Delivered int
	Skipped   int
	Failed    int
}

// Record counts the outcome of one message
func (r *ScanReport) Record(o Outcome) {
	switch o {
	case OutcomeDelivered:
		r.Delivered++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// ControlResult is returned by the lifecycle operations
type ControlResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WorkerStatus is returned by the status operation
type WorkerStatus struct {
	Configured    bool `json:"configured"`
	WorkerRunning bool `json:"worker_running"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)
