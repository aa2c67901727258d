package repository

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// LocationRepository búsqueda de ubicaciones por ID.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}
