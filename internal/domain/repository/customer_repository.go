package repository

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// CustomerRepository contrato mínimo sobre clientes que consume el núcleo.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
