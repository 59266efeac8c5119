package models

import (
	"time"

	"github.com/google/uuid"
)

// DispatchUsage records one dispatcher call. No result payload is kept.
type DispatchUsage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RequestID    string    `json:"request_id" db:"request_id"`
	Operation    string    `json:"operation" db:"operation"`         // 'diagnose', 'smart_plan', etc.
	Source       string    `json:"source" db:"source"`               // 'backend' or 'fallback'
	FailureClass string    `json:"failure_class" db:"failure_class"` // 'none', 'timeout', etc.
	StatusCode   int       `json:"status_code" db:"status_code"`     // 0 when no response arrived
	LatencyMS    int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UsageFromOutcome builds a ledger row for a finished dispatch
func UsageFromOutcome(o Outcome, at time.Time) *DispatchUsage {
	return &DispatchUsage{
		RequestID:    o.RequestID,
		Operation:    o.Operation,
		Source:       string(o.Source),
		FailureClass: string(o.Failure),
		StatusCode:   o.StatusCode,
		LatencyMS:    o.Latency.Milliseconds(),
		CreatedAt:    at,
	}
}

// UsageSummary provides aggregated dispatch statistics for a window
type UsageSummary struct {
	PeriodStart    time.Time                 `json:"period_start"`
	PeriodEnd      time.Time                 `json:"period_end"`
	RequestCount   int                       `json:"request_count"`
	FallbackCount  int                       `json:"fallback_count"`
	FallbackRate   float64                   `json:"fallback_rate"`
	ByFailureClass map[string]int            `json:"by_failure_class"`
	ByOperation    map[string]OperationUsage `json:"by_operation"`
	LatencyP50MS   float64                   `json:"latency_p50_ms"`
	LatencyP95MS   float64                   `json:"latency_p95_ms"`
}

// OperationUsage represents usage aggregated by operation
type OperationUsage struct {
	Operation     string `json:"operation"`
	RequestCount  int    `json:"request_count"`
	FallbackCount int    `json:"fallback_count"`
}
