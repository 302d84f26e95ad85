package models

import "time"

// StockLog — append-only journal of quantity changes.
type StockLog struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name,omitempty"`
	UserID            *string   `json:"user_id,omitempty"`
	Username          string    `json:"username,omitempty"`
	ChangeAmount      int       `json:"change_amount"` // positive add, negative remove
	ResultingQuantity int       `json:"resulting_quantity"`
	Reason            string    `json:"reason,omitempty"`
	Reference         string    `json:"reference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
