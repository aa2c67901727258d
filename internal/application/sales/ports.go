package sales

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/application/inventory"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error
}

// MovementRecorder integración ventas-inventario: registra el movimiento SALE
// con los repositorios del llamador (misma transacción). Si retorna error, el llamador hace rollback.
type MovementRecorder interface {
	CreateInTx(ctx context.Context, uow repository.UnitOfWork, in inventory.CreateMovementInput) (*entity.Movement, error)
}
