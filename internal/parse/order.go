package parse

import (
	"github.com/shopspring/decimal"

	"github.com/ampco/intake-cli/internal/model"
)

// Default required fields of a purchase order and of each of its lines.
var (
	DefaultPORequired   = []string{"customer", "order_date", "salesperson", "order_lines"}
	DefaultLineRequired = []string{"product", "quantity", "price"}
)

// Currencies accepted in the currency field.
var Currencies = []string{"USD", "EUR", "GBP", "HKD", "CNY", "CAD", "AUD", "JPY"}

// PurchaseOrderSchema builds the purchase-order schema. Nil sets fall back
// to the defaults.
func PurchaseOrderSchema(required, lineRequired []string) *Schema {
	if required == nil {
		required = DefaultPORequired
	}
	if lineRequired == nil {
		lineRequired = DefaultLineRequired
	}

	line := &Schema{
		Fields: []Field{
			{Name: "product", Kind: KindString},
			{Name: "quantity", Kind: KindDecimal, Positive: true},
			{Name: "price", Kind: KindDecimal, NonNegative: true},
			{Name: "delivery_date", Kind: KindDate},
		},
		Required: lineRequired,
		Aliases: map[string]string{
			"unit_price":             "price",
			"price_unit":             "price",
			"product_uom_qty":        "quantity",
			"x_studio_delivery_date": "delivery_date",
		},
	}

	return &Schema{
		Fields: []Field{
			{Name: "customer", Kind: KindString},
			{Name: "salesperson", Kind: KindString},
			{Name: "company", Kind: KindString},
			{Name: "order_date", Kind: KindDate},
			{Name: "customer_po_number", Kind: KindString},
			{Name: "currency", Kind: KindEnum, Values: Currencies},
			{Name: "delivery_date", Kind: KindDate},
			{Name: "order_lines", Kind: KindLines, Item: line},
		},
		Required: required,
		Aliases: map[string]string{
			"x_studio_customer_po_number": "customer_po_number",
			"client_order_ref":            "customer_po_number",
			"x_studio_delivery_date":      "delivery_date",
		},
	}
}

// DecodePurchaseOrder validates rec and maps it onto a PurchaseOrder.
func DecodePurchaseOrder(rec Record, s *Schema) (*model.PurchaseOrder, error) {
	v, err := s.Validate(rec)
	if err != nil {
		return nil, err
	}

	po := &model.PurchaseOrder{
		Customer:         str(v["customer"]),
		Salesperson:      str(v["salesperson"]),
		Company:          str(v["company"]),
		OrderDate:        str(v["order_date"]),
		CustomerPONumber: str(v["customer_po_number"]),
		Currency:         str(v["currency"]),
	}

	lines, _ := v["order_lines"].([]Record)
	// A delivery date stated once for the whole order applies to every line.
	orderDelivery := str(v["delivery_date"])
	for _, l := range lines {
		ol := model.OrderLine{
			Product:      str(l["product"]),
			Quantity:     dec(l["quantity"]),
			UnitPrice:    dec(l["price"]),
			DeliveryDate: str(l["delivery_date"]),
		}
		if ol.DeliveryDate == "" {
			ol.DeliveryDate = orderDelivery
		}
		po.Lines = append(po.Lines, ol)
	}
	return po, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func dec(v any) decimal.Decimal {
	d, _ := v.(decimal.Decimal)
	return d
}
