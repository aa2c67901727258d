package repository

import (
	"context"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos.
type MovementFilter struct {
	Type       string
	Status     string
	LocationID string // origen o destino
	Limit      int
	Offset     int
}

// Reception datos de llegada que se registran al recibir un movimiento.
type Reception struct {
	ArrivalDate    time.Time
	ReceivedBy     string
	ReceptionNotes string
}

// MovementRepository define el puerto de persistencia para movimientos y sus líneas.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	CreateDetail(ctx context.Context, detail *entity.MovementDetail) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetForUpdate obtiene el movimiento (con líneas) y bloquea su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	SetApproved(ctx context.Context, id string) error
	MarkReceived(ctx context.Context, id string, r Reception) error
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, error)
}
