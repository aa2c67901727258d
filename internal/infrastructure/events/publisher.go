// Package events publica eventos de dominio ya confirmados.
package events

import (
	"context"
	"sync"

	"github.com/adanjr/inventory-management-sub000/internal/application/ports"
)

var _ ports.EventPublisher = NopPublisher{}

// NopPublisher descarta los eventos. Se usa cuando no hay brokers configurados.
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, ports.Event) error { return nil }

// Recorder guarda los eventos en memoria; útil en tests.
type Recorder struct {
	mu     sync.Mutex
	events []ports.Event
}

// Publish agrega el evento.
func (r *Recorder) Publish(_ context.Context, ev ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events copia de los eventos recibidos.
func (r *Recorder) Events() []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.Event(nil), r.events...)
}
