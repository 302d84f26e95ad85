package models

import (
	"encoding/json"
	"time"
)

const (
	AIReportSales   = "sales"
	AIReportStock   = "stock"
	AIReportAnomaly = "anomaly"
)

// AIReport — raw model output plus whatever JSON we managed to extract.
type AIReport struct {
	ID         string          `json:"id"`
	ReportType string          `json:"report_type"`
	Raw        string          `json:"raw"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
}

type AIAnomaly struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Level     string    `json:"level"` // warning, critical
	CreatedAt time.Time `json:"created_at"`
}
