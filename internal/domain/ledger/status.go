package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// transiciones válidas del estado de una devolución.
// PENDING → APPROVED → COMPLETED; PENDING → REJECTED. REJECTED y COMPLETED son terminales.
var returnTransitions = map[string][]string{
	entity.ReturnStatusPending:  {entity.ReturnStatusApproved, entity.ReturnStatusRejected},
	entity.ReturnStatusApproved: {entity.ReturnStatusCompleted},
}

// CanTransition indica si el cambio de estado de devolución es válido.
func CanTransition(from, to string) bool {
	for _, next := range returnTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition devuelve ErrInvalidTransition si el cambio no es válido.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return domain.ErrInvalidTransition
	}
	return nil
}

// SaleStatus deriva el estado de una venta a partir de las cantidades
// devueltas (devoluciones no rechazadas) frente a las vendidas. La venta en
// sí es inmutable; este estado se calcula, no se persiste.
func SaleStatus(lines []*entity.SaleLine, returnedBySaleLine map[string]decimal.Decimal) string {
	anyReturned := false
	allReturned := len(lines) > 0
	for _, line := range lines {
		returned := returnedBySaleLine[line.ID]
		if returned.GreaterThan(decimal.Zero) {
			anyReturned = true
		}
		if returned.LessThan(line.Quantity) {
			allReturned = false
		}
	}
	switch {
	case allReturned && anyReturned:
		return entity.SaleStatusReturned
	case anyReturned:
		return entity.SaleStatusPartiallyReturned
	default:
		return entity.SaleStatusCompleted
	}
}
