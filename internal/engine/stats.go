package engine

// StopReason tells why Run returned
type StopReason string

const (
	// ReasonHorizon means the next continuation lay at or beyond the horizon
	ReasonHorizon StopReason = "horizon"
	// ReasonStopped means Stop was called from inside a continuation
	ReasonStopped StopReason = "stopped"
	// ReasonDrained means no continuation was left to run
	ReasonDrained StopReason = "drained"
	// ReasonCancelled means the context was cancelled between events
	ReasonCancelled StopReason = "cancelled"
)

// RunStats summarizes one call to Run
type RunStats struct {
	Reason      StopReason `json:"reason"`
	FinalTime   float64    `json:"final_time"`
	Processed   uint64     `json:"processed"`
	PeakPending int        `json:"peak_pending"`
}
