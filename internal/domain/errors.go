package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	// ErrLockTimeout: expiró la espera por un bloqueo de fila. Reintentable.
	ErrLockTimeout = errors.New("tiempo de espera de bloqueo agotado")
	// ErrBalanceNotEmpty: no se puede eliminar un balance con cantidad > 0.
	ErrBalanceNotEmpty = errors.New("el balance no está en cero")
)

// FieldError es un error de validación atribuido a un campo del request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa errores de validación campo a campo. Una petición
// que falla validación no toca el almacenamiento.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Add agrega un error de campo; devuelve el mismo puntero para encadenar.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors indica si hay al menos un campo inválido.
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// StockShortage detalla el faltante de una línea: disponible vs solicitado.
type StockShortage struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Available  decimal.Decimal `json:"available"`
	Requested  decimal.Decimal `json:"requested"`
}

// InsufficientStockError se produce cuando una o más líneas exceden el
// balance disponible. Incluye todas las líneas en falta; no se aplica
// ninguna mutación parcial.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("producto %s en %s: disponible %s, solicitado %s",
			s.ProductID, s.LocationID, s.Available.String(), s.Requested.String()))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// ConsistencyError: el balance no coincide con la suma de sus movimientos.
// Nunca debería ocurrir; se trata como fatal/alertante, no se corrige en silencio.
type ConsistencyError struct {
	ProductID   string
	LocationID  string
	Balance     decimal.Decimal
	MovementSum decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistencia del libro: producto %s en %s tiene balance %s pero la suma de movimientos es %s",
		e.ProductID, e.LocationID, e.Balance.String(), e.MovementSum.String())
}
