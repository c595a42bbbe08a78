package inventory

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la frontera estructurada begin/commit/
// rollback que garantiza atomicidad del motor de stock: o todo se confirma
// (balances + movimientos + filas de venta/devolución) o nada.
type TxRunner interface {
	// Run abre una transacción con los repos del libro de inventario.
	Run(ctx context.Context, fn func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error) error

	// RunSale abre una transacción con los repos que necesita una venta.
	RunSale(ctx context.Context, fn func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
		saleRepo repository.SaleRepository,
	) error) error

	// RunReturn abre una transacción con los repos que necesita una devolución.
	RunReturn(ctx context.Context, fn func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
		saleRepo repository.SaleRepository,
		retRepo repository.ReturnRepository,
	) error) error
}
