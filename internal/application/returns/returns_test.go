package returns_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/application/ports"
	"github.com/tu-usuario/pos-pro/internal/application/returns"
	"github.com/tu-usuario/pos-pro/internal/application/sales"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

const (
	shirtID   = "aaaaaaaa-0000-0000-0000-000000000001"
	jacketID  = "aaaaaaaa-0000-0000-0000-000000000002"
	storeID   = "bbbbbbbb-0000-0000-0000-000000000001"
	cashierID = "cccccccc-0000-0000-0000-000000000001"
	managerID = "cccccccc-0000-0000-0000-000000000002"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type silentNotifier struct{}

func (silentNotifier) Publish(ctx context.Context, event ports.Event) error { return nil }

type returnFixture struct {
	store *memory.Store
	sales *sales.CreateSaleUseCase
	uc    *returns.UseCase
}

func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	store := memory.NewStore(500)
	now := time.Now()

	require.NoError(t, store.Products().Create(&entity.Product{
		ID: shirtID, SKU: "CAM-001", Name: "Camiseta básica",
		Price: d("1000"), CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: jacketID, SKU: "CHA-001", Name: "Chaqueta",
		Price: d("2500"), CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Locations().Create(&entity.Location{
		ID: storeID, Name: "Tienda Centro", CreatedAt: now, UpdatedAt: now,
	}))

	log := logger.New(logger.Config{Env: "test", Level: "error"})
	stockLedger := inventory.NewStockLedger()
	salesUC := sales.NewCreateSaleUseCase(
		store, stockLedger,
		store.Products(), store.Locations(), store.Sales(), store.Returns(),
		silentNotifier{}, log,
	)
	uc := returns.NewUseCase(
		store, stockLedger,
		store.Sales(), store.Returns(), store.Products(),
		silentNotifier{}, log,
	)
	return &returnFixture{store: store, sales: salesUC, uc: uc}
}

func (f *returnFixture) seedStock(t *testing.T, productID, qty string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.store.Balances().Upsert(&entity.Balance{
		ProductID: productID, LocationID: storeID,
		Quantity: d(qty), UpdatedAt: now,
	}))
	require.NoError(t, f.store.Movements().Create(&entity.MovementRecord{
		ID:          productID + "-seed",
		ReferenceID: productID + "-seed-ref",
		ProductID:   productID, LocationID: storeID,
		Type:             entity.MovementTypeInitial,
		ChangeAmount:     d(qty),
		PreviousQuantity: decimal.Zero,
		NewQuantity:      d(qty),
		CreatedAt:        now,
	}))
}

// sell crea una venta de una sola línea y devuelve la respuesta.
func (f *returnFixture) sell(t *testing.T, productID, qty, price string) *dto.SaleResponse {
	t.Helper()
	resp, err := f.sales.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		LocationID: storeID,
		Lines: []dto.SaleLineRequest{
			{ProductID: productID, Quantity: d(qty), UnitPrice: d(price)},
		},
	})
	require.NoError(t, err)
	return resp
}

func (f *returnFixture) balanceQty(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	bal, err := f.store.Balances().Get(productID, storeID)
	require.NoError(t, err)
	return bal.Quantity
}

// Reembolso completo: acredita el stock al crearse, el monto es cantidad ×
// precio unitario y la venta queda en estado returned.
func TestCreateReturn_ReembolsoCompleto(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	sale := f.sell(t, shirtID, "6", "1000")
	require.True(t, f.balanceQty(t, shirtID).Equal(d("4")))

	ret, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("6"), Condition: entity.ConditionGood},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ReturnStatusPending, ret.Status)
	assert.True(t, ret.TotalRefundAmount.Equal(d("6000")),
		"6 × 1000 debe reembolsar 6000, fue %s", ret.TotalRefundAmount)

	// El stock regresa al crearse el REFUND.
	assert.True(t, f.balanceQty(t, shirtID).Equal(d("10")))

	movs, err := f.store.Movements().ListByProduct(shirtID, nil, nil, 50, 0)
	require.NoError(t, err)
	var credit *entity.MovementRecord
	for _, m := range movs {
		if m.Type == entity.MovementTypeReturnCredit {
			credit = m
		}
	}
	require.NotNil(t, credit, "debe existir un movimiento return_credit")
	assert.Equal(t, ret.ID, credit.ReferenceID)
	assert.True(t, credit.ChangeAmount.Equal(d("6")))

	// La venta, inmutable, ahora deriva estado returned.
	got, err := f.sales.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusReturned, got.Status)
}

func TestCreateReturn_ReembolsoParcial_EstadoDeVenta(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	sale := f.sell(t, shirtID, "6", "1000")

	_, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("2"), Condition: entity.ConditionPerfect},
		},
	})
	require.NoError(t, err)

	got, err := f.sales.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPartiallyReturned, got.Status)
}

// EXCHANGE difiere el stock: nada cambia al crearse; al completarse entra
// lo devuelto y sale el producto de cambio.
func TestReturn_Cambio_StockDiferidoHastaCompletar(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	f.seedStock(t, jacketID, "5")
	sale := f.sell(t, shirtID, "2", "1000")
	require.True(t, f.balanceQty(t, shirtID).Equal(d("8")))

	ret, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeExchange,
		Lines: []dto.ReturnLineRequest{
			{
				SaleLineID:        sale.Lines[0].ID,
				Quantity:          d("2"),
				Condition:         entity.ConditionPerfect,
				ExchangeProductID: jacketID,
			},
		},
	})
	require.NoError(t, err)

	// Al crearse un EXCHANGE no hay movimiento de stock.
	assert.True(t, f.balanceQty(t, shirtID).Equal(d("8")))
	assert.True(t, f.balanceQty(t, jacketID).Equal(d("5")))

	require.NoError(t, f.uc.UpdateStatus(context.Background(), ret.ID, entity.ReturnStatusApproved, managerID))
	assert.True(t, f.balanceQty(t, shirtID).Equal(d("8")), "aprobar tampoco mueve stock")

	require.NoError(t, f.uc.UpdateStatus(context.Background(), ret.ID, entity.ReturnStatusCompleted, managerID))

	assert.True(t, f.balanceQty(t, shirtID).Equal(d("10")), "entra lo devuelto")
	assert.True(t, f.balanceQty(t, jacketID).Equal(d("3")), "sale el producto de cambio")

	got, err := f.uc.GetReturn(context.Background(), ret.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusCompleted, got.Status)
}

// Rechazar un REFUND revierte el crédito con un débito compensatorio.
func TestReturn_ReembolsoRechazado_DebitoCompensatorio(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	sale := f.sell(t, shirtID, "4", "1000")

	ret, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("4"), Condition: entity.ConditionDamaged},
		},
	})
	require.NoError(t, err)
	require.True(t, f.balanceQty(t, shirtID).Equal(d("10")))

	require.NoError(t, f.uc.UpdateStatus(context.Background(), ret.ID, entity.ReturnStatusRejected, managerID))

	assert.True(t, f.balanceQty(t, shirtID).Equal(d("6")),
		"el rechazo debe revertir exactamente lo acreditado")

	movs, err := f.store.Movements().ListByProduct(shirtID, nil, nil, 50, 0)
	require.NoError(t, err)
	var debit *entity.MovementRecord
	for _, m := range movs {
		if m.Type == entity.MovementTypeReturnDebit {
			debit = m
		}
	}
	require.NotNil(t, debit)
	assert.True(t, debit.ChangeAmount.Equal(d("-4")))
	assert.Equal(t, ret.ID, debit.ReferenceID)

	// Una devolución rechazada no cuenta para el estado de la venta.
	got, err := f.sales.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, got.Status)
}

// Si el stock acreditado ya se vendió, la no-negatividad gana: el rechazo
// falla y la devolución permanece PENDING.
func TestReturn_RechazoBloqueadoSiElStockYaSeVendio(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "6")
	sale := f.sell(t, shirtID, "6", "1000")
	require.True(t, f.balanceQty(t, shirtID).IsZero())

	ret, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("6"), Condition: entity.ConditionGood},
		},
	})
	require.NoError(t, err)
	require.True(t, f.balanceQty(t, shirtID).Equal(d("6")))

	// Las unidades acreditadas se venden de nuevo.
	f.sell(t, shirtID, "6", "1000")
	require.True(t, f.balanceQty(t, shirtID).IsZero())

	err = f.uc.UpdateStatus(context.Background(), ret.ID, entity.ReturnStatusRejected, managerID)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr,
		"la compensación dejaría el balance negativo y debe rechazarse")

	got, err := f.uc.GetReturn(context.Background(), ret.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusPending, got.Status,
		"la transición fallida no debe aplicarse")
	assert.True(t, f.balanceQty(t, shirtID).IsZero())
}

func TestUpdateStatus_TransicionInvalida(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	sale := f.sell(t, shirtID, "2", "1000")

	ret, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("1"), Condition: entity.ConditionGood},
		},
	})
	require.NoError(t, err)

	// PENDING → COMPLETED se salta APPROVED.
	err = f.uc.UpdateStatus(context.Background(), ret.ID, entity.ReturnStatusCompleted, managerID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Estado terminal: REJECTED no admite salidas.
	require.NoError(t, f.uc.UpdateStatus(context.Background(), ret.ID, entity.ReturnStatusRejected, managerID))
	err = f.uc.UpdateStatus(context.Background(), ret.ID, entity.ReturnStatusApproved, managerID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateStatus_EstadoDesconocido(t *testing.T) {
	f := newReturnFixture(t)

	err := f.uc.UpdateStatus(context.Background(), "cualquiera", "CANCELLED", managerID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

// Sobre-devolución dentro de la misma petición: dos líneas sobre la misma
// línea de venta se acumulan antes de validar.
func TestCreateReturn_SobreDevolucionIntraPeticion(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	sale := f.sell(t, shirtID, "4", "1000")

	_, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("3"), Condition: entity.ConditionGood},
			{SaleLineID: sale.Lines[0].ID, Quantity: d("2"), Condition: entity.ConditionGood},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr, "3 + 2 > 4 vendidas debe rechazarse")
}

// Sobre-devolución acumulada entre devoluciones: lo ya devuelto (no
// rechazado) reduce lo devolvible.
func TestCreateReturn_SobreDevolucionAcumulada(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	sale := f.sell(t, shirtID, "4", "1000")

	_, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("3"), Condition: entity.ConditionGood},
		},
	})
	require.NoError(t, err)

	_, err = f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("2"), Condition: entity.ConditionGood},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr, "solo queda 1 unidad devolvible")

	// Tras el rechazo de la primera devolución, el cupo se libera.
	rets, err := f.uc.ListBySale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, rets, 1)
	require.NoError(t, f.uc.UpdateStatus(context.Background(), rets[0].ID, entity.ReturnStatusRejected, managerID))

	_, err = f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("4"), Condition: entity.ConditionGood},
		},
	})
	assert.NoError(t, err, "las devoluciones rechazadas no consumen cupo")
}

func TestCreateReturn_Validacion(t *testing.T) {
	f := newReturnFixture(t)
	f.seedStock(t, shirtID, "10")
	sale := f.sell(t, shirtID, "2", "1000")

	// Tipo y condición inválidos, cantidad en cero.
	_, err := f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   "STORE_CREDIT",
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: sale.Lines[0].ID, Quantity: d("0"), Condition: "BROKEN"},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make(map[string]bool, len(verr.Fields))
	for _, fe := range verr.Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["type"])
	assert.True(t, fields["lines[0].quantity"])
	assert.True(t, fields["lines[0].condition"])

	// Línea que no pertenece a la venta.
	_, err = f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: sale.ID,
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: "dddddddd-0000-0000-0000-00000000000f", Quantity: d("1"), Condition: entity.ConditionGood},
		},
	})
	require.ErrorAs(t, err, &verr)

	// Venta inexistente.
	_, err = f.uc.CreateReturn(context.Background(), managerID, dto.CreateReturnRequest{
		SaleID: "dddddddd-0000-0000-0000-00000000000f",
		Type:   entity.ReturnTypeRefund,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: "x", Quantity: d("1"), Condition: entity.ConditionGood},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
