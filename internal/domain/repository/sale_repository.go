package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
// Las ventas son inmutables: solo inserción y lectura.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateLine(line *entity.SaleLine) error
	GetByID(id string) (*entity.Sale, error)
	GetLines(saleID string) ([]*entity.SaleLine, error)
	GetLineByID(lineID string) (*entity.SaleLine, error)
	ListByLocation(locationID string, limit, offset int) ([]*entity.Sale, error)
}
