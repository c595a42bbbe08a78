package repository

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para devoluciones.
// Cabecera y líneas se insertan una vez; solo el estado cambia después.
type ReturnRepository interface {
	Create(ret *entity.Return) error
	CreateLine(line *entity.ReturnLine) error
	GetByID(id string) (*entity.Return, error)
	// GetByIDForUpdate bloquea la cabecera para una transición de estado.
	GetByIDForUpdate(id string) (*entity.Return, error)
	GetLines(returnID string) ([]*entity.ReturnLine, error)
	ListBySale(saleID string) ([]*entity.Return, error)
	UpdateStatus(id, status string) error
	// ReturnedQuantityBySaleLine suma las cantidades devueltas por línea de
	// venta en devoluciones NO rechazadas de la venta dada.
	ReturnedQuantityBySaleLine(saleID string) (map[string]decimal.Decimal, error)
}
