package ports

import "context"

// Tipos de evento emitidos tras un commit exitoso.
const (
	EventInventoryUpdate = "inventory_update"
	EventNewSale         = "new_sale"
	EventLowStockAlert   = "low_stock_alert"
)

// Event es un evento de notificación con su payload.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier publica eventos hacia el exterior (webhook, bus, etc.).
// La entrega es best-effort: un fallo de publicación jamás revierte ni
// bloquea la transacción que lo originó; los casos de uso publican en una
// goroutine y registran el error.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}
