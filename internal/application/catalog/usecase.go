// Package catalog expone el alta y consulta de productos y ubicaciones.
// El catálogo es un colaborador del motor de stock: el núcleo solo lo lee
// para resolver existencia, precio y punto de reorden.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// UseCase operaciones de catálogo.
type UseCase struct {
	products  repository.ProductRepository
	locations repository.LocationRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(products repository.ProductRepository, locations repository.LocationRepository) *UseCase {
	return &UseCase{products: products, locations: locations}
}

// CreateProduct registra un producto. SKU duplicado devuelve ErrDuplicate.
func (uc *UseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	verr := &domain.ValidationError{}
	if in.SKU == "" {
		verr.Add("sku", "requerido")
	}
	if in.Name == "" {
		verr.Add("name", "requerido")
	}
	if in.Price.LessThan(decimal.Zero) {
		verr.Add("price", "no puede ser negativo")
	}
	if in.ReorderPoint.LessThan(decimal.Zero) {
		verr.Add("reorder_point", "no puede ser negativo")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	now := time.Now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		UnitMeasure:  in.UnitMeasure,
		ReorderPoint: in.ReorderPoint,
		Attributes:   in.Attributes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.products.Create(p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetProduct obtiene un producto por ID.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// GetProductBySKU obtiene un producto por SKU.
func (uc *UseCase) GetProductBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	p, err := uc.products.GetBySKU(sku)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// ListProducts lista productos paginados.
func (uc *UseCase) ListProducts(ctx context.Context, limit, offset int) ([]*dto.ProductResponse, error) {
	products, err := uc.products.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// CreateLocation registra una tienda o bodega.
func (uc *UseCase) CreateLocation(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.Name == "" {
		return nil, (&domain.ValidationError{}).Add("name", "requerido")
	}
	now := time.Now()
	l := &entity.Location{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.locations.Create(l); err != nil {
		return nil, err
	}
	return toLocationResponse(l), nil
}

// GetLocation obtiene una ubicación por ID.
func (uc *UseCase) GetLocation(ctx context.Context, id string) (*dto.LocationResponse, error) {
	l, err := uc.locations.GetByID(id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return toLocationResponse(l), nil
}

// ListLocations lista ubicaciones paginadas.
func (uc *UseCase) ListLocations(ctx context.Context, limit, offset int) ([]*dto.LocationResponse, error) {
	locations, err := uc.locations.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.LocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, toLocationResponse(l))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		UnitMeasure:  p.UnitMeasure,
		ReorderPoint: p.ReorderPoint,
		Attributes:   p.Attributes,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:      l.ID,
		Name:    l.Name,
		Address: l.Address,
	}
}
