package models

import "time"

// Report types.
const (
	ReportTypeTechnical     = "technical"
	ReportTypeSentiment     = "sentiment"
	ReportTypeComprehensive = "comprehensive"
)

// Report is a write-once rendered analysis report.
type Report struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Symbols     string    `json:"symbols"` // comma-separated
	ReportType  string    `json:"report_type"`
	ContentHTML string    `json:"content_html,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
