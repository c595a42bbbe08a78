package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// DiscountAmount calcula el monto efectivo a descontar de un subtotal.
// percentage: 0–100 sobre el subtotal. amount: monto fijo con tope en el
// subtotal (el total nunca es negativo). Tipo vacío = sin descuento.
func DiscountAmount(subtotal decimal.Decimal, discountType string, value decimal.Decimal) (decimal.Decimal, error) {
	switch discountType {
	case "":
		return decimal.Zero, nil
	case entity.DiscountTypePercentage:
		if value.LessThan(decimal.Zero) || value.GreaterThan(hundred) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return subtotal.Mul(value).Div(hundred), nil
	case entity.DiscountTypeAmount:
		if value.LessThan(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		if value.GreaterThan(subtotal) {
			return subtotal, nil
		}
		return value, nil
	default:
		return decimal.Zero, domain.ErrInvalidInput
	}
}

// RefundAmount calcula el reembolso de una línea de devolución:
// proporción devuelta por el total de la línea original, equivalente a
// cantidad devuelta × precio unitario.
func RefundAmount(returnQty, unitPrice decimal.Decimal) decimal.Decimal {
	return returnQty.Mul(unitPrice)
}
