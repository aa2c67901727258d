// Package txretry acota la duración de cada transacción y reintenta con backoff
// las fallas de concurrencia antes de reportarlas como conflicto.
package txretry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/domain"
)

// Policy parámetros de reintento de una transacción.
type Policy struct {
	MaxRetries int           // reintentos adicionales al primer intento
	Backoff    time.Duration // espera base; se duplica en cada reintento
	Timeout    time.Duration // límite por intento (0 = sin límite)
}

// DefaultPolicy un reintento, 50ms de backoff y 5s por intento.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 1, Backoff: 50 * time.Millisecond, Timeout: 5 * time.Second}
}

// Do ejecuta attempt; si falla con un error para el que retryable devuelve true,
// espera backoff+jitter y vuelve a intentar hasta MaxRetries veces.
// El error final se normaliza a la taxonomía de dominio (ver Normalize).
func Do(ctx context.Context, p Policy, retryable func(error) bool, attempt func(ctx context.Context) error) error {
	backoff := p.Backoff
	var err error
	for i := 0; i <= p.MaxRetries; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Persistence("transaction", ctxErr)
		}
		err = runAttempt(ctx, p.Timeout, attempt)
		if err == nil {
			return nil
		}
		if !retryable(err) || i == p.MaxRetries {
			break
		}
		if backoff > 0 {
			sleep := backoff + time.Duration(rand.Int63n(int64(backoff/4)+1))
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return domain.Persistence("transaction", ctx.Err())
			}
			backoff *= 2
		}
	}
	return Normalize(err, retryable)
}

func runAttempt(ctx context.Context, timeout time.Duration, attempt func(ctx context.Context) error) error {
	if timeout <= 0 {
		return attempt(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return attempt(attemptCtx)
}

// Normalize garantiza que el error devuelto sea un *domain.Error:
// los de dominio pasan tal cual, los reintentables agotados se vuelven Conflict
// y el resto se reporta como falla de persistencia.
func Normalize(err error, retryable func(error) bool) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}
	if retryable(err) {
		return &domain.Error{Kind: domain.ErrConflict, Entity: "transaction", Msg: "conflicto de concurrencia, reintente", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.Error{Kind: domain.ErrPersistence, Entity: "transaction", Msg: "tiempo de transacción agotado", Err: err}
	}
	return domain.Persistence("transaction", err)
}
