package repository

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// ProductRepository búsqueda de productos por ID.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
