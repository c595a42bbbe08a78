package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
)

func TestCanTransition_TransicionesValidas(t *testing.T) {
	cases := []struct {
		from, to string
	}{
		{entity.ReturnStatusPending, entity.ReturnStatusApproved},
		{entity.ReturnStatusPending, entity.ReturnStatusRejected},
		{entity.ReturnStatusApproved, entity.ReturnStatusCompleted},
	}
	for _, c := range cases {
		assert.True(t, ledger.CanTransition(c.from, c.to), "%s → %s debe ser válida", c.from, c.to)
	}
}

func TestCanTransition_TransicionesInvalidas(t *testing.T) {
	cases := []struct {
		from, to string
	}{
		{entity.ReturnStatusPending, entity.ReturnStatusCompleted}, // debe pasar por APPROVED
		{entity.ReturnStatusApproved, entity.ReturnStatusRejected},
		{entity.ReturnStatusApproved, entity.ReturnStatusPending},
		{entity.ReturnStatusRejected, entity.ReturnStatusApproved}, // terminal
		{entity.ReturnStatusCompleted, entity.ReturnStatusPending}, // terminal
		{entity.ReturnStatusPending, entity.ReturnStatusPending},
	}
	for _, c := range cases {
		assert.False(t, ledger.CanTransition(c.from, c.to), "%s → %s no debe ser válida", c.from, c.to)
	}
}

func TestValidateTransition_RetornaErrInvalidTransition(t *testing.T) {
	err := ledger.ValidateTransition(entity.ReturnStatusPending, entity.ReturnStatusCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.NoError(t, ledger.ValidateTransition(entity.ReturnStatusPending, entity.ReturnStatusApproved))
}

func saleLine(id string, qty string) *entity.SaleLine {
	return &entity.SaleLine{ID: id, Quantity: decimal.RequireFromString(qty)}
}

func TestSaleStatus_SinDevoluciones(t *testing.T) {
	lines := []*entity.SaleLine{saleLine("sl1", "2"), saleLine("sl2", "1")}
	got := ledger.SaleStatus(lines, map[string]decimal.Decimal{})
	assert.Equal(t, entity.SaleStatusCompleted, got)
}

func TestSaleStatus_DevolucionParcial(t *testing.T) {
	lines := []*entity.SaleLine{saleLine("sl1", "2"), saleLine("sl2", "1")}
	returned := map[string]decimal.Decimal{"sl1": decimal.NewFromInt(1)}
	got := ledger.SaleStatus(lines, returned)
	assert.Equal(t, entity.SaleStatusPartiallyReturned, got)
}

func TestSaleStatus_DevolucionTotal(t *testing.T) {
	lines := []*entity.SaleLine{saleLine("sl1", "2"), saleLine("sl2", "1")}
	returned := map[string]decimal.Decimal{
		"sl1": decimal.NewFromInt(2),
		"sl2": decimal.NewFromInt(1),
	}
	got := ledger.SaleStatus(lines, returned)
	assert.Equal(t, entity.SaleStatusReturned, got)
}

func TestSaleStatus_UnaLineaCompletaOtraIntacta(t *testing.T) {
	lines := []*entity.SaleLine{saleLine("sl1", "2"), saleLine("sl2", "3")}
	returned := map[string]decimal.Decimal{"sl1": decimal.NewFromInt(2)}
	got := ledger.SaleStatus(lines, returned)
	assert.Equal(t, entity.SaleStatusPartiallyReturned, got,
		"mientras quede una línea sin devolver por completo la venta es parcial")
}
