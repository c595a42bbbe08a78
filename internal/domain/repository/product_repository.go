package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// ProductRepository define el puerto de lectura del catálogo (colaborador
// externo) más el alta mínima para poblarlo. El núcleo nunca muta productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
}
