package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
)

const (
	productID  = "aaaaaaaa-0000-0000-0000-000000000001"
	locationID = "bbbbbbbb-0000-0000-0000-000000000001"
)

// Un error dentro de la transacción descarta todas las escrituras en
// búfer: nada se publica al almacén.
func TestRun_ErrorDescartaEscrituras(t *testing.T) {
	store := memory.NewStore(500)
	boom := errors.New("fallo a mitad de transacción")

	err := store.Run(context.Background(), func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		bal, err := balRepo.GetForUpdate(productID, locationID)
		if err != nil {
			return err
		}
		bal.Quantity = decimal.NewFromInt(10)
		bal.UpdatedAt = time.Now()
		if err := balRepo.Upsert(bal); err != nil {
			return err
		}
		if err := movRepo.Create(&entity.MovementRecord{
			ID: "m1", ProductID: productID, LocationID: locationID,
			Type: entity.MovementTypeInitial, ChangeAmount: decimal.NewFromInt(10),
			NewQuantity: decimal.NewFromInt(10), CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	bal, err := store.Balances().Get(productID, locationID)
	require.NoError(t, err)
	assert.True(t, bal.Quantity.IsZero(), "la transacción fallida no debe publicar el balance")

	movs, err := store.Movements().ListByProduct(productID, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "la transacción fallida no debe publicar movimientos")
}

func TestRun_CommitPublicaEscrituras(t *testing.T) {
	store := memory.NewStore(500)

	err := store.Run(context.Background(), func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		bal, err := balRepo.GetForUpdate(productID, locationID)
		if err != nil {
			return err
		}
		bal.Quantity = decimal.NewFromInt(7)
		bal.UpdatedAt = time.Now()
		return balRepo.Upsert(bal)
	})
	require.NoError(t, err)

	bal, err := store.Balances().Get(productID, locationID)
	require.NoError(t, err)
	assert.True(t, bal.Quantity.Equal(decimal.NewFromInt(7)))
}

// Dos transacciones sobre la misma fila: la segunda espera y expira si la
// primera no suelta el bloqueo a tiempo.
func TestRun_BloqueoDeFilaExpira(t *testing.T) {
	store := memory.NewStore(50) // 50ms de espera máxima

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- store.Run(context.Background(), func(
			balRepo repository.BalanceRepository,
			movRepo repository.MovementRepository,
		) error {
			if _, err := balRepo.GetForUpdate(productID, locationID); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	err := store.Run(context.Background(), func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		_, err := balRepo.GetForUpdate(productID, locationID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	close(release)
	require.NoError(t, <-done)
}

// La misma transacción puede releer una fila que ya bloqueó.
func TestRun_BloqueoReentrante(t *testing.T) {
	store := memory.NewStore(50)

	err := store.Run(context.Background(), func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		if _, err := balRepo.GetForUpdate(productID, locationID); err != nil {
			return err
		}
		_, err := balRepo.GetForUpdate(productID, locationID)
		return err
	})
	assert.NoError(t, err, "releer bajo el propio bloqueo no debe expirar")
}

// Tras expirar, el bloqueo liberado vuelve a estar disponible.
func TestRun_BloqueoSeLiberaAlTerminar(t *testing.T) {
	store := memory.NewStore(50)

	err := store.Run(context.Background(), func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		_, err := balRepo.GetForUpdate(productID, locationID)
		return err
	})
	require.NoError(t, err)

	err = store.Run(context.Background(), func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		_, err := balRepo.GetForUpdate(productID, locationID)
		return err
	})
	assert.NoError(t, err)
}
