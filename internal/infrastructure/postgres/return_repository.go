package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación de ReturnRepository sobre PostgreSQL.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador de devoluciones. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

const returnColumns = `
	id, sale_id, processed_by, return_type, status,
	refund_method, total_refund_amount, notes, created_at, updated_at`

// Create inserta la cabecera de una devolución.
func (r *ReturnRepo) Create(ret *entity.Return) error {
	query := `
		INSERT INTO returns (
			id, sale_id, processed_by, return_type, status,
			refund_method, total_refund_amount, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		ret.ID, ret.SaleID, ret.ProcessedBy, ret.Type, ret.Status,
		ret.RefundMethod, ret.TotalRefundAmount, ret.Notes, ret.CreatedAt, ret.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create return: %w", err)
	}
	return nil
}

// CreateLine inserta una línea de devolución.
func (r *ReturnRepo) CreateLine(line *entity.ReturnLine) error {
	query := `
		INSERT INTO return_lines (
			id, return_id, sale_line_id, product_id, location_id,
			quantity, condition, refund_amount, exchange_product_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.ReturnID, line.SaleLineID, line.ProductID, line.LocationID,
		line.Quantity, line.Condition, line.RefundAmount, line.ExchangeProductID,
	)
	if err != nil {
		return fmt.Errorf("create return line: %w", err)
	}
	return nil
}

// GetByID obtiene una devolución por ID. Devuelve nil si no existe.
func (r *ReturnRepo) GetByID(id string) (*entity.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`
	ret, err := scanReturn(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	return ret, nil
}

// GetByIDForUpdate obtiene la cabecera bloqueada para una transición de estado.
// Dos transiciones concurrentes sobre la misma devolución se serializan aquí.
func (r *ReturnRepo) GetByIDForUpdate(id string) (*entity.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1 FOR UPDATE`
	ret, err := scanReturn(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("get return for update: %w", err)
	}
	return ret, nil
}

// GetLines obtiene las líneas de una devolución.
func (r *ReturnRepo) GetLines(returnID string) ([]*entity.ReturnLine, error) {
	query := `
		SELECT id, return_id, sale_line_id, product_id, location_id,
		       quantity, condition, refund_amount, exchange_product_id
		FROM return_lines WHERE return_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, returnID)
	if err != nil {
		return nil, fmt.Errorf("get return lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.ReturnLine
	for rows.Next() {
		var l entity.ReturnLine
		if err := rows.Scan(
			&l.ID, &l.ReturnID, &l.SaleLineID, &l.ProductID, &l.LocationID,
			&l.Quantity, &l.Condition, &l.RefundAmount, &l.ExchangeProductID,
		); err != nil {
			return nil, fmt.Errorf("scan return line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// ListBySale lista las devoluciones de una venta, más antiguas primero.
func (r *ReturnRepo) ListBySale(saleID string) ([]*entity.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE sale_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()

	var rets []*entity.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		rets = append(rets, ret)
	}
	return rets, rows.Err()
}

// UpdateStatus actualiza el estado de una devolución.
func (r *ReturnRepo) UpdateStatus(id, status string) error {
	query := `UPDATE returns SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update return status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReturnedQuantityBySaleLine suma lo devuelto por línea de venta en las
// devoluciones no rechazadas de la venta. Base del tope de devolución.
func (r *ReturnRepo) ReturnedQuantityBySaleLine(saleID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT rl.sale_line_id, COALESCE(SUM(rl.quantity), 0)
		FROM return_lines rl
		JOIN returns ret ON ret.id = rl.return_id
		WHERE ret.sale_id = $1 AND ret.status <> $2
		GROUP BY rl.sale_line_id`
	rows, err := r.q.Query(context.Background(), query, saleID, entity.ReturnStatusRejected)
	if err != nil {
		return nil, fmt.Errorf("sum returned quantities: %w", err)
	}
	defer rows.Close()

	result := make(map[string]decimal.Decimal)
	for rows.Next() {
		var saleLineID string
		var qty decimal.Decimal
		if err := rows.Scan(&saleLineID, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		result[saleLineID] = qty
	}
	return result, rows.Err()
}

func scanReturn(row pgx.Row) (*entity.Return, error) {
	var ret entity.Return
	err := row.Scan(
		&ret.ID, &ret.SaleID, &ret.ProcessedBy, &ret.Type, &ret.Status,
		&ret.RefundMethod, &ret.TotalRefundAmount, &ret.Notes, &ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}
