package models

import "time"

// Source tells whether a value came from the AI backend or a local fallback
type Source string

const (
	SourceBackend  Source = "backend"
	SourceFallback Source = "fallback"
)

// FailureClass classifies why a dispatch did not yield a usable backend value
type FailureClass string

const (
	FailureNone      FailureClass = "none"
	FailureTransport FailureClass = "transport"
	FailureProtocol  FailureClass = "protocol"
	FailureNotFound  FailureClass = "not_found"
	FailureTimeout   FailureClass = "timeout"
	FailureDecode    FailureClass = "decode"
	// FailureSemantic is a well-formed backend answer that reports its own
	// failure (an error field, or not a plant). Source stays backend.
	FailureSemantic FailureClass = "semantic"
	// FailureSuperseded is a call abandoned because the same surface started
	// a newer one. It is not a backend failure and is never recorded.
	FailureSuperseded FailureClass = "superseded"
)

// FailureClasses lists every class in reporting order
var FailureClasses = []FailureClass{
	FailureNone, FailureTransport, FailureProtocol, FailureNotFound,
	FailureTimeout, FailureDecode, FailureSemantic, FailureSuperseded,
}

// Operation names used in logs, outcomes and the usage ledger
const (
	OpDiagnose      = "diagnose"
	OpSmartPlan     = "smart_plan"
	OpExecutionPlan = "execution_plan"
	OpMarketTrends  = "market_trends"
	OpCropAdvisory  = "crop_advisory"
	OpFarmPlan      = "farm_plan"
	OpHealth        = "health"
)

// Outcome is the per-dispatch metadata returned next to every value
type Outcome struct {
	Operation  string        `json:"operation"`
	RequestID  string        `json:"request_id"`
	Source     Source        `json:"source"`
	Failure    FailureClass  `json:"failure_class"`
	StatusCode int           `json:"status_code,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Latency    time.Duration `json:"latency"`
}

// FellBack reports whether the value was produced locally
func (o Outcome) FellBack() bool {
	return o.Source == SourceFallback
}

// Dispatched pairs a canonical value with how it was obtained
type Dispatched[T any] struct {
	Value   T
	Outcome Outcome
}
