package postgres

import (
	"context"
	"fmt"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

var _ repository.AvailabilityStatusRepository = (*AvailabilityStatusRepo)(nil)

// AvailabilityStatusRepo lee la tabla availability_statuses.
type AvailabilityStatusRepo struct {
	q Querier
}

// NewAvailabilityStatusRepository construye el adaptador.
func NewAvailabilityStatusRepository(q Querier) *AvailabilityStatusRepo {
	return &AvailabilityStatusRepo{q: q}
}

// List devuelve todas las filas de la tabla de referencia.
func (r *AvailabilityStatusRepo) List(ctx context.Context) ([]entity.AvailabilityStatusRow, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, name FROM availability_statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list availability statuses: %w", err)
	}
	defer rows.Close()
	var out []entity.AvailabilityStatusRow
	for rows.Next() {
		var s entity.AvailabilityStatusRow
		var code string
		if err := rows.Scan(&s.ID, &code, &s.Name); err != nil {
			return nil, fmt.Errorf("scan availability status: %w", err)
		}
		s.Code = entity.AvailabilityStatus(code)
		out = append(out, s)
	}
	return out, rows.Err()
}
