package models

import "time"

// ChartSource tells where a chart computation was requested from.
type ChartSource string

const (
	SourceHTTP   ChartSource = "http"
	SourceBatch  ChartSource = "batch"
	SourceKafka  ChartSource = "kafka"
	SourceStream ChartSource = "stream"
)

// IsValidSource returns true if s is a known chart source.
func IsValidSource(s ChartSource) bool {
	switch s {
	case SourceHTTP, SourceBatch, SourceKafka, SourceStream:
		return true
	default:
		return false
	}
}

// NormalizeSource converts a raw string to a known source, defaulting to http.
func NormalizeSource(s string) ChartSource {
	src := ChartSource(s)
	if IsValidSource(src) {
		return src
	}
	return SourceHTTP
}

// ChartEvent is published after every successful computation.
type ChartEvent struct {
	ID         string      `json:"id"`
	Source     ChartSource `json:"source"`
	RequestID  string      `json:"request_id,omitempty"`
	ComputedAt time.Time   `json:"computed_at"`
	Key        string      `json:"key"`
	Chart      ChartResult `json:"chart"`
}
