package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de devolución.
const (
	ReturnTypeRefund   = "REFUND"   // reembolso: acredita stock al crearse
	ReturnTypeExchange = "EXCHANGE" // cambio: el stock se resuelve al completar
)

// Estados de una devolución. PENDING→APPROVED→COMPLETED; PENDING→REJECTED.
const (
	ReturnStatusPending   = "PENDING"
	ReturnStatusApproved  = "APPROVED"
	ReturnStatusRejected  = "REJECTED"
	ReturnStatusCompleted = "COMPLETED"
)

// Condiciones del producto devuelto.
const (
	ConditionPerfect = "PERFECT"
	ConditionGood    = "GOOD"
	ConditionDamaged = "DAMAGED"
)

// Return representa una devolución sobre una venta.
type Return struct {
	ID                string
	SaleID            string
	ProcessedBy       string
	Type              string // REFUND | EXCHANGE
	Status            string
	RefundMethod      string // efectivo, tarjeta, crédito en tienda...
	TotalRefundAmount decimal.Decimal
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReturnLine es una línea de devolución referida a una línea de venta.
// Invariante: la cantidad devuelta acumulada (devoluciones no rechazadas)
// de una línea de venta nunca supera su cantidad original.
type ReturnLine struct {
	ID                string
	ReturnID          string
	SaleLineID        string
	ProductID         string
	LocationID        string
	Quantity          decimal.Decimal
	Condition         string // PERFECT | GOOD | DAMAGED
	RefundAmount      decimal.Decimal
	ExchangeProductID string // solo EXCHANGE; vacío si no aplica
}
