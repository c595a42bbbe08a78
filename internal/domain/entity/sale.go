package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de descuento aplicables a una venta.
const (
	DiscountTypePercentage = "percentage" // 0–100
	DiscountTypeAmount     = "amount"     // monto fijo, tope = subtotal
)

// Estados derivados de una venta (calculados desde sus devoluciones no rechazadas).
const (
	SaleStatusCompleted         = "completed"
	SaleStatusPartiallyReturned = "partially_returned"
	SaleStatusReturned          = "returned"
)

// Sale representa una venta confirmada. Inmutable después de creada: el único
// campo que cambia es el estado derivado, que se calcula y no se persiste.
type Sale struct {
	ID             string
	CustomerName   string
	CustomerPhone  string
	LocationID     string
	CashierID      string
	Subtotal       decimal.Decimal
	DiscountType   string // percentage | amount | "" sin descuento
	DiscountValue  decimal.Decimal
	DiscountAmount decimal.Decimal // monto efectivo descontado
	Total          decimal.Decimal // Subtotal - DiscountAmount
	CreatedAt      time.Time
}

// SaleLine es una línea de venta. Suma de LineTotal = Sale.Subtotal.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal // Quantity * UnitPrice
}
