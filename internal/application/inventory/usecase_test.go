package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

const (
	testProductID  = "11111111-1111-1111-1111-111111111111"
	testLocationID = "22222222-2222-2222-2222-222222222222"
	testActorID    = "33333333-3333-3333-3333-333333333333"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// newInventoryUC arma el caso de uso sobre el almacenamiento en memoria,
// con un producto y una ubicación sembrados.
func newInventoryUC(t *testing.T) (*inventory.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore(500)

	now := time.Now()
	require.NoError(t, store.Products().Create(&entity.Product{
		ID:        testProductID,
		SKU:       "CAM-001",
		Name:      "Camiseta básica",
		Price:     d("15000"),
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, store.Locations().Create(&entity.Location{
		ID:        testLocationID,
		Name:      "Tienda Centro",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	log := logger.New(logger.Config{Env: "test", Level: "error"})
	uc := inventory.NewUseCase(
		store, inventory.NewStockLedger(),
		store.Balances(), store.Movements(), store.Products(), store.Locations(), log,
	)
	return uc, store
}

func adjust(t *testing.T, uc *inventory.UseCase, movType, qty string) error {
	t.Helper()
	return uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		ProductID:  testProductID,
		LocationID: testLocationID,
		Type:       movType,
		Quantity:   d(qty),
		ActorID:    testActorID,
	})
}

func balanceQty(t *testing.T, uc *inventory.UseCase) decimal.Decimal {
	t.Helper()
	bal, err := uc.GetBalance(context.Background(), testProductID, testLocationID)
	require.NoError(t, err)
	return bal.Quantity
}

func TestRegisterAdjustment_CargaInicial(t *testing.T) {
	uc, store := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "10"))

	assert.True(t, balanceQty(t, uc).Equal(d("10")))

	movs, err := store.Movements().ListByProduct(testProductID, nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeInitial, movs[0].Type)
	assert.True(t, movs[0].ChangeAmount.Equal(d("10")))
	assert.True(t, movs[0].PreviousQuantity.IsZero())
	assert.True(t, movs[0].NewQuantity.Equal(d("10")))
	assert.Equal(t, testActorID, movs[0].ActorID)
}

func TestRegisterAdjustment_RecepcionAcumula(t *testing.T) {
	uc, _ := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "10"))
	require.NoError(t, adjust(t, uc, entity.MovementTypeReceived, "5"))

	assert.True(t, balanceQty(t, uc).Equal(d("15")))
}

func TestRegisterAdjustment_BajaPorRotura(t *testing.T) {
	uc, store := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "10"))
	require.NoError(t, adjust(t, uc, entity.MovementTypeBroken, "3"))

	assert.True(t, balanceQty(t, uc).Equal(d("7")))

	// broken se registra con monto negativo aunque la entrada sea positiva.
	movs, err := store.Movements().ListByProduct(testProductID, nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	var broken *entity.MovementRecord
	for _, m := range movs {
		if m.Type == entity.MovementTypeBroken {
			broken = m
		}
	}
	require.NotNil(t, broken)
	assert.True(t, broken.ChangeAmount.Equal(d("-3")))
}

func TestRegisterAdjustment_RoturaSinStockSuficiente(t *testing.T) {
	uc, _ := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "2"))

	err := adjust(t, uc, entity.MovementTypeBroken, "5")
	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr, "debitar más del disponible debe fallar")
	require.Len(t, insufficientErr.Shortages, 1)
	assert.True(t, insufficientErr.Shortages[0].Available.Equal(d("2")))
	assert.True(t, insufficientErr.Shortages[0].Requested.Equal(d("5")))

	// La transacción fallida no deja mutación parcial.
	assert.True(t, balanceQty(t, uc).Equal(d("2")))
}

func TestRegisterAdjustment_AjusteConSigno(t *testing.T) {
	uc, _ := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "10"))
	require.NoError(t, adjust(t, uc, entity.MovementTypeAdjusted, "-4"))
	assert.True(t, balanceQty(t, uc).Equal(d("6")))

	require.NoError(t, adjust(t, uc, entity.MovementTypeAdjusted, "2"))
	assert.True(t, balanceQty(t, uc).Equal(d("8")))
}

func TestRegisterAdjustment_Validacion(t *testing.T) {
	uc, _ := newInventoryUC(t)

	// Cantidad negativa en tipos que solo admiten positivo.
	err := adjust(t, uc, entity.MovementTypeInitial, "-1")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Fields[0].Field)

	// Tipo desconocido.
	err = adjust(t, uc, "restock", "1")
	require.ErrorAs(t, err, &verr)

	// Producto inexistente.
	err = uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		ProductID:  "99999999-9999-9999-9999-999999999999",
		LocationID: testLocationID,
		Type:       entity.MovementTypeInitial,
		Quantity:   d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteBalance_SoloEnCero(t *testing.T) {
	uc, _ := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "5"))

	err := uc.DeleteBalance(context.Background(), testProductID, testLocationID)
	assert.ErrorIs(t, err, domain.ErrBalanceNotEmpty,
		"no debe eliminarse un balance con existencias")

	require.NoError(t, adjust(t, uc, entity.MovementTypeAdjusted, "-5"))
	require.NoError(t, uc.DeleteBalance(context.Background(), testProductID, testLocationID))

	// El historial de movimientos permanece tras eliminar el mapeo.
	movs, err := uc.ListMovementsByProduct(context.Background(), testProductID, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestVerifyLedger_Consistente(t *testing.T) {
	uc, _ := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "10"))
	require.NoError(t, adjust(t, uc, entity.MovementTypeBroken, "4"))
	require.NoError(t, adjust(t, uc, entity.MovementTypeReceived, "1"))

	assert.NoError(t, uc.VerifyLedger(context.Background(), testProductID, testLocationID),
		"balance == Σ movimientos después de cualquier secuencia de ajustes")
}

func TestVerifyLedger_DetectaInconsistencia(t *testing.T) {
	uc, store := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "10"))

	// Corromper el balance por fuera del libro.
	require.NoError(t, store.Balances().Upsert(&entity.Balance{
		ProductID:  testProductID,
		LocationID: testLocationID,
		Quantity:   d("12"),
		UpdatedAt:  time.Now(),
	}))

	err := uc.VerifyLedger(context.Background(), testProductID, testLocationID)
	var cerr *domain.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.Balance.Equal(d("12")))
	assert.True(t, cerr.MovementSum.Equal(d("10")))
}

func TestListMovements_FiltroDeFechas(t *testing.T) {
	uc, _ := newInventoryUC(t)

	require.NoError(t, adjust(t, uc, entity.MovementTypeInitial, "10"))

	future := time.Now().Add(time.Hour)
	movs, err := uc.ListMovementsByProduct(context.Background(), testProductID, &future, nil, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "un from en el futuro no debe devolver movimientos")

	movs, err = uc.ListMovementsByProduct(context.Background(), testProductID, nil, &future, 50, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}
