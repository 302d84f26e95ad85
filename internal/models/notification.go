package models

import (
	"encoding/json"
	"time"
)

const (
	NotifyLowStock     = "low_stock"
	NotifyStockChanged = "stock_changed"
	NotifyAnomaly      = "anomaly"
)

// Notification — UserID == nil means shop-wide broadcast.
type Notification struct {
	ID        string          `json:"id"`
	UserID    *string         `json:"user_id,omitempty"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}
