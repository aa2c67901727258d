package repository

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// AvailabilityStatusRepository lee la tabla de referencia de estados de disponibilidad.
type AvailabilityStatusRepository interface {
	List(ctx context.Context) ([]entity.AvailabilityStatusRow, error)
}
