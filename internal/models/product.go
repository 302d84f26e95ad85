package models

import "time"

type Product struct {
	ID                string    `json:"id"`
	SKU               string    `json:"sku,omitempty"`
	Name              string    `json:"name"`
	Category          string    `json:"category,omitempty"`
	Description       string    `json:"description,omitempty"`
	PurchasePrice     float64   `json:"purchase_price"`
	SellingPrice      *float64  `json:"selling_price,omitempty"`
	Quantity          int       `json:"quantity"`
	Supplier          string    `json:"supplier,omitempty"`
	Barcode           string    `json:"barcode,omitempty"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	ReorderQty        int       `json:"reorder_qty"`
	LastPriceUpdateBy *string   `json:"last_price_updated_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (p *Product) TotalValue() float64 {
	return float64(p.Quantity) * p.PurchasePrice
}

func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// ProductFilter — list/report filters coming from query params.
type ProductFilter struct {
	Category string
	Supplier string
	Search   string
}
