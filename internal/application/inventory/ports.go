package inventory

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; el runner puede volver a invocar fn ante fallas de concurrencia.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error
}
