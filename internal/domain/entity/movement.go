package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeInitial      = "initial"       // carga inicial de stock
	MovementTypeSale         = "sale"          // salida por venta
	MovementTypeReturnCredit = "return_credit" // entrada por devolución (reembolso)
	MovementTypeReturnDebit  = "return_debit"  // reverso de un crédito de devolución rechazada
	MovementTypeReceived     = "received"      // entrada por recepción de mercancía
	MovementTypeAdjusted     = "adjusted"      // ajuste manual (±)
	MovementTypeBroken       = "broken"        // baja por rotura/daño
)

// MovementRecord es la fila de auditoría inmutable de un cambio de balance.
// Nunca se actualiza ni se borra después de creada; PreviousQuantity y
// NewQuantity hacen que el libro sea autoverificable.
type MovementRecord struct {
	ID               string
	ReferenceID      string // venta, devolución o transacción que originó el cambio
	ProductID        string
	LocationID       string
	Type             string
	ChangeAmount     decimal.Decimal // con signo: positivo entrada, negativo salida
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	ActorID          string // vacío = movimiento generado por el sistema
	Notes            string
	CreatedAt        time.Time
}
