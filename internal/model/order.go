package model

import (
	"github.com/shopspring/decimal"
)

// PurchaseOrder is the validated view of a customer purchase order.
type PurchaseOrder struct {
	Customer         string      `json:"customer"`
	Salesperson      string      `json:"salesperson"`
	Company          string      `json:"company,omitempty"`
	OrderDate        string      `json:"order_date"` // ISO 2006-01-02
	CustomerPONumber string      `json:"customer_po_number,omitempty"`
	Currency         string      `json:"currency,omitempty"`
	Lines            []OrderLine `json:"order_lines"`
}

// OrderLine is one ordered product. Quantity is positive, UnitPrice non-negative.
type OrderLine struct {
	Product      string          `json:"product"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
	DeliveryDate string          `json:"delivery_date,omitempty"`
}

// Total returns the sum of quantity times unit price over all lines.
func (po PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range po.Lines {
		total = total.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return total
}
