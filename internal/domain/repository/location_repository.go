package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// LocationRepository define el puerto del proveedor de ubicaciones.
type LocationRepository interface {
	Create(location *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	List(limit, offset int) ([]*entity.Location, error)
}
