package dto

import "github.com/shopspring/decimal"

// ReturnLineRequest línea de devolución referida a una línea de venta.
type ReturnLineRequest struct {
	SaleLineID        string          `json:"sale_line_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	Condition         string          `json:"condition"` // PERFECT | GOOD | DAMAGED
	ExchangeProductID string          `json:"exchange_product_id,omitempty"`
}

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	SaleID       string              `json:"sale_id"`
	Type         string              `json:"type"` // REFUND | EXCHANGE
	RefundMethod string              `json:"refund_method,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	Lines        []ReturnLineRequest `json:"lines"`
}

// UpdateReturnStatusRequest body para PATCH /api/returns/:id/status.
type UpdateReturnStatusRequest struct {
	Status string `json:"status"`
}

// ReturnLineResponse línea de devolución persistida.
type ReturnLineResponse struct {
	ID                string          `json:"id"`
	SaleLineID        string          `json:"sale_line_id"`
	ProductID         string          `json:"product_id"`
	LocationID        string          `json:"location_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	Condition         string          `json:"condition"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	ExchangeProductID string          `json:"exchange_product_id,omitempty"`
}

// ReturnResponse devolución con sus líneas.
type ReturnResponse struct {
	ID                string               `json:"id"`
	SaleID            string               `json:"sale_id"`
	ProcessedBy       string               `json:"processed_by"`
	Type              string               `json:"type"`
	Status            string               `json:"status"`
	RefundMethod      string               `json:"refund_method,omitempty"`
	TotalRefundAmount decimal.Decimal      `json:"total_refund_amount"`
	Notes             string               `json:"notes,omitempty"`
	CreatedAt         string               `json:"created_at"`
	Lines             []ReturnLineResponse `json:"lines"`
}
