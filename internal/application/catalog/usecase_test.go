package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/catalog"
	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
)

func newCatalogUC() *catalog.UseCase {
	store := memory.NewStore(500)
	return catalog.NewUseCase(store.Products(), store.Locations())
}

func TestCreateProduct_YConsultaPorSKU(t *testing.T) {
	uc := newCatalogUC()

	created, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{
		SKU:          "CAM-001",
		Name:         "Camiseta básica",
		Price:        decimal.NewFromInt(15000),
		ReorderPoint: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	byID, err := uc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CAM-001", byID.SKU)

	bySKU, err := uc.GetProductBySKU(context.Background(), "CAM-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySKU.ID)
	assert.True(t, bySKU.Price.Equal(decimal.NewFromInt(15000)))
}

func TestCreateProduct_SKUDuplicado(t *testing.T) {
	uc := newCatalogUC()

	_, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{
		SKU: "CAM-001", Name: "Camiseta", Price: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = uc.CreateProduct(context.Background(), dto.CreateProductRequest{
		SKU: "CAM-001", Name: "Otra camiseta", Price: decimal.NewFromInt(200),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateProduct_Validacion(t *testing.T) {
	uc := newCatalogUC()

	_, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Price:        decimal.NewFromInt(-1),
		ReorderPoint: decimal.NewFromInt(-1),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make(map[string]bool, len(verr.Fields))
	for _, fe := range verr.Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["sku"])
	assert.True(t, fields["name"])
	assert.True(t, fields["price"])
	assert.True(t, fields["reorder_point"])
}

func TestGetProduct_NoExiste(t *testing.T) {
	uc := newCatalogUC()

	_, err := uc.GetProduct(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetProductBySKU(context.Background(), "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateLocation_YListado(t *testing.T) {
	uc := newCatalogUC()

	_, err := uc.CreateLocation(context.Background(), dto.CreateLocationRequest{
		Name: "Tienda Centro", Address: "Calle 10 #5-51",
	})
	require.NoError(t, err)
	_, err = uc.CreateLocation(context.Background(), dto.CreateLocationRequest{
		Name: "Bodega Norte",
	})
	require.NoError(t, err)

	list, err := uc.ListLocations(context.Background(), 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCreateLocation_NombreRequerido(t *testing.T) {
	uc := newCatalogUC()

	_, err := uc.CreateLocation(context.Background(), dto.CreateLocationRequest{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Fields[0].Field)
}
