package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL.
// La tabla es solo inserción: no hay UPDATE ni DELETE aquí.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de movimientos. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, reference_id, product_id, location_id, movement_type,
	change_amount, previous_quantity, new_quantity, actor_id, notes, created_at`

// Create inserta un registro de movimiento.
func (r *MovementRepo) Create(m *entity.MovementRecord) error {
	query := `
		INSERT INTO inventory_movements (
			id, reference_id, product_id, location_id, movement_type,
			change_amount, previous_quantity, new_quantity, actor_id, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ReferenceID, m.ProductID, m.LocationID, m.Type,
		m.ChangeAmount, m.PreviousQuantity, m.NewQuantity, m.ActorID, m.Notes, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movimiento duplicado %s", m.ID)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por su ID. Devuelve nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByProduct lista movimientos de un producto, opcionalmente acotados por fecha.
func (r *MovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return r.list(`product_id`, productID, from, to, limit, offset)
}

// ListByLocation lista movimientos de una ubicación, opcionalmente acotados por fecha.
func (r *MovementRepo) ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return r.list(`location_id`, locationID, from, to, limit, offset)
}

func (r *MovementRepo) list(column, value string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE ` + column + ` = $1`
	args := []any{value}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.MovementRecord
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// SumByBalance suma los ChangeAmount de un (producto, ubicación).
func (r *MovementRepo) SumByBalance(productID, locationID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM inventory_movements
		WHERE product_id = $1 AND location_id = $2`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

func scanMovement(row pgx.Row) (*entity.MovementRecord, error) {
	var m entity.MovementRecord
	err := row.Scan(
		&m.ID, &m.ReferenceID, &m.ProductID, &m.LocationID, &m.Type,
		&m.ChangeAmount, &m.PreviousQuantity, &m.NewQuantity, &m.ActorID, &m.Notes, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
