package dto

import "github.com/shopspring/decimal"

// SaleLineRequest línea solicitada en una venta.
// Si UnitPrice es cero se usa el precio de catálogo del producto.
type SaleLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// DiscountRequest descuento de la venta: percentage (0–100) o amount
// (tope = subtotal).
type DiscountRequest struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerName  string           `json:"customer_name,omitempty"`
	CustomerPhone string           `json:"customer_phone,omitempty"`
	LocationID    string           `json:"location_id"`
	Discount      *DiscountRequest `json:"discount,omitempty"`
	Lines         []SaleLineRequest `json:"lines"`
}

// SaleLineResponse línea de venta persistida.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleResponse venta con sus líneas y estado derivado.
type SaleResponse struct {
	ID             string             `json:"id"`
	CustomerName   string             `json:"customer_name,omitempty"`
	CustomerPhone  string             `json:"customer_phone,omitempty"`
	LocationID     string             `json:"location_id"`
	CashierID      string             `json:"cashier_id"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountType   string             `json:"discount_type,omitempty"`
	DiscountValue  decimal.Decimal    `json:"discount_value"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Total          decimal.Decimal    `json:"total"`
	Status         string             `json:"status"`
	CreatedAt      string             `json:"created_at"`
	Lines          []SaleLineResponse `json:"lines"`
}
