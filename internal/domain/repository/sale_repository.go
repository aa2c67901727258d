package repository

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateDetail(ctx context.Context, detail *entity.SaleDetail) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// Update actualiza solo método de pago y banderas de entrega.
	Update(ctx context.Context, sale *entity.Sale) error
	// Delete elimina la venta y sus líneas; devuelve false si no existía.
	Delete(ctx context.Context, id string) (bool, error)
}
