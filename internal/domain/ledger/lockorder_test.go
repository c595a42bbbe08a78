package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
)

func TestLockOrder_OrdenaAscendente(t *testing.T) {
	keys := []ledger.BalanceKey{
		{ProductID: "p2", LocationID: "l1"},
		{ProductID: "p1", LocationID: "l2"},
		{ProductID: "p1", LocationID: "l1"},
	}

	got := ledger.LockOrder(keys)

	require.Len(t, got, 3)
	assert.Equal(t, ledger.BalanceKey{ProductID: "p1", LocationID: "l1"}, got[0])
	assert.Equal(t, ledger.BalanceKey{ProductID: "p1", LocationID: "l2"}, got[1])
	assert.Equal(t, ledger.BalanceKey{ProductID: "p2", LocationID: "l1"}, got[2])
}

func TestLockOrder_DeduplicaClaves(t *testing.T) {
	keys := []ledger.BalanceKey{
		{ProductID: "p1", LocationID: "l1"},
		{ProductID: "p1", LocationID: "l1"},
		{ProductID: "p2", LocationID: "l1"},
		{ProductID: "p1", LocationID: "l1"},
	}

	got := ledger.LockOrder(keys)

	require.Len(t, got, 2, "las claves repetidas se bloquean una sola vez")
	assert.Equal(t, "p1", got[0].ProductID)
	assert.Equal(t, "p2", got[1].ProductID)
}

func TestLockOrder_Vacio(t *testing.T) {
	assert.Empty(t, ledger.LockOrder(nil))
}

func TestLockOrder_MismoOrdenParaCualquierEntrada(t *testing.T) {
	// Dos transacciones con las mismas claves en distinto orden deben
	// adquirir bloqueos en el mismo orden: así no hay ciclos de espera.
	a := ledger.LockOrder([]ledger.BalanceKey{
		{ProductID: "p3", LocationID: "l1"},
		{ProductID: "p1", LocationID: "l1"},
		{ProductID: "p2", LocationID: "l2"},
	})
	b := ledger.LockOrder([]ledger.BalanceKey{
		{ProductID: "p2", LocationID: "l2"},
		{ProductID: "p3", LocationID: "l1"},
		{ProductID: "p1", LocationID: "l1"},
	})

	assert.Equal(t, a, b)
}
