package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/adanjr/inventory-management-sub000/internal/application/inventory"
	"github.com/adanjr/inventory-management-sub000/internal/application/sales"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/txretry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure TxRunner implements inventory.TxRunner and sales.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con timeout por intento
// y reintento ante fallas de concurrencia.
type TxRunner struct {
	pool      *pgxpool.Pool
	policy    txretry.Policy
	isolation pgx.TxIsoLevel
}

// NewTxRunner construye el runner. isolation: "read_committed" (default) o "serializable".
func NewTxRunner(pool *pgxpool.Pool, policy txretry.Policy, isolation string) *TxRunner {
	return &TxRunner{pool: pool, policy: policy, isolation: ParseIsolation(isolation)}
}

// ParseIsolation traduce el nivel configurado; cualquier valor desconocido es read committed.
func ParseIsolation(s string) pgx.TxIsoLevel {
	switch strings.ToLower(strings.ReplaceAll(s, " ", "_")) {
	case "serializable":
		return pgx.Serializable
	case "repeatable_read":
		return pgx.RepeatableRead
	default:
		return pgx.ReadCommitted
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si el intento falla por contención se repite completo según la política.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	return txretry.Do(ctx, r.policy, IsRetryable, func(ctx context.Context) error {
		return r.runOnce(ctx, fn)
	})
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: r.isolation})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(ctx, NewUnitOfWork(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
