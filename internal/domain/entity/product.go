package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El catálogo es un colaborador
// externo: el núcleo lo consume solo lectura para resolver existencia y precio.
// Attributes es un payload opaco; el libro de inventario nunca lo interpreta.
type Product struct {
	ID           string
	SKU          string
	Name         string
	Description  string
	Price        decimal.Decimal // precio de venta unitario
	UnitMeasure  string
	ReorderPoint decimal.Decimal // umbral para low_stock_alert (0 = sin alerta)
	Attributes   json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
