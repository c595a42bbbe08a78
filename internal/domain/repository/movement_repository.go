package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de auditoría.
// Solo inserta y consulta: las filas nunca se actualizan ni se borran.
type MovementRepository interface {
	Create(movement *entity.MovementRecord) error
	GetByID(id string) (*entity.MovementRecord, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error)
	ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error)
	// SumByBalance devuelve la suma de ChangeAmount para (producto, ubicación).
	// Base de la verificación balance == Σ movimientos.
	SumByBalance(productID, locationID string) (decimal.Decimal, error)
}
