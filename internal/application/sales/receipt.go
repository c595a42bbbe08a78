package sales

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// ReceiptGenerator genera la representación imprimible (PDF) de una venta.
// La implementación vive en infrastructure.
type ReceiptGenerator interface {
	GenerateReceipt(
		ctx context.Context,
		sale *entity.Sale,
		lines []*entity.SaleLine,
		productsByID map[string]*entity.Product,
		location *entity.Location,
	) ([]byte, error)
}

// ReceiptUseCase arma los datos de una venta confirmada y delega el PDF.
type ReceiptUseCase struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	generator ReceiptGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{sales: sales, products: products, locations: locations, generator: generator}
}

// GetReceipt devuelve los bytes del PDF del recibo de la venta.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, saleID string) ([]byte, error) {
	sale, err := uc.sales.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.sales.GetLines(saleID)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[string]*entity.Product, len(lines))
	for _, line := range lines {
		if _, ok := productsByID[line.ProductID]; ok {
			continue
		}
		product, err := uc.products.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		productsByID[line.ProductID] = product
	}
	location, err := uc.locations.GetByID(sale.LocationID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateReceipt(ctx, sale, lines, productsByID, location)
}
