package models

import "time"

// AnalysisEvent is published after an analysis or report run completes.
type AnalysisEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol,omitempty"`
	Kind      string    `json:"indicator_kind,omitempty"`
	ReportID  int       `json:"report_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
