package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados tras un commit.
const (
	EventSaleCommitted    = "sale.committed"
	EventMovementReceived = "movement.received"
	EventMovementCreated  = "movement.created"
)

// Event notificación de dominio ya confirmada en la base de datos.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher puerto de salida para notificar a otros sistemas.
// Se invoca solo después del commit; un error aquí nunca revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
