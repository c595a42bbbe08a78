package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance representa la existencia actual de un producto en una ubicación.
// Clave única (ProductID, LocationID). Invariante: Quantity nunca es negativa
// y siempre es igual a la suma de los ChangeAmount de sus movimientos.
type Balance struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}
