package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestDiscountAmount_SinDescuento(t *testing.T) {
	got, err := ledger.DiscountAmount(d("100"), "", d("0"))
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "sin tipo de descuento el monto debe ser cero")
}

func TestDiscountAmount_Porcentaje(t *testing.T) {
	// 10% de 21900 = 2190
	got, err := ledger.DiscountAmount(d("21900"), entity.DiscountTypePercentage, d("10"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("2190")), "10%% de 21900 debe ser 2190, fue %s", got)
}

func TestDiscountAmount_PorcentajeCien(t *testing.T) {
	got, err := ledger.DiscountAmount(d("500"), entity.DiscountTypePercentage, d("100"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("500")), "100%% descuenta el subtotal completo")
}

func TestDiscountAmount_PorcentajeFueraDeRango(t *testing.T) {
	_, err := ledger.DiscountAmount(d("100"), entity.DiscountTypePercentage, d("101"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "porcentaje > 100 es inválido")

	_, err = ledger.DiscountAmount(d("100"), entity.DiscountTypePercentage, d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "porcentaje negativo es inválido")
}

func TestDiscountAmount_MontoFijo(t *testing.T) {
	got, err := ledger.DiscountAmount(d("1000"), entity.DiscountTypeAmount, d("250"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("250")))
}

func TestDiscountAmount_MontoFijoConTope(t *testing.T) {
	// El descuento nunca deja el total en negativo: tope = subtotal.
	got, err := ledger.DiscountAmount(d("1000"), entity.DiscountTypeAmount, d("5000"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("1000")), "el monto fijo se limita al subtotal")
}

func TestDiscountAmount_MontoNegativo(t *testing.T) {
	_, err := ledger.DiscountAmount(d("1000"), entity.DiscountTypeAmount, d("-10"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDiscountAmount_TipoDesconocido(t *testing.T) {
	_, err := ledger.DiscountAmount(d("1000"), "coupon", d("10"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRefundAmount_EsCantidadPorPrecioUnitario(t *testing.T) {
	// 6 unidades a 1000 cada una → reembolso de 6000.
	got := ledger.RefundAmount(d("6"), d("1000"))
	assert.True(t, got.Equal(d("6000")), "el reembolso debe ser 6000, fue %s", got)
}

func TestRefundAmount_CantidadFraccionaria(t *testing.T) {
	got := ledger.RefundAmount(d("1.5"), d("800"))
	assert.True(t, got.Equal(d("1200")))
}
