package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo implementación de VehicleRepository. Las escrituras son condicionadas y
// devuelven filas afectadas; la verificación del conteo la hace el paquete availability.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

const vehicleColumns = `id, vin, model_id, color_id, location_id, availability_status_id, created_at, updated_at`

func scanVehicle(row pgx.Row) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(&v.ID, &v.VIN, &v.ModelID, &v.ColorID, &v.LocationID, &v.AvailabilityStatusID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID obtiene un vehículo por ID.
func (r *VehicleRepo) GetByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	v, err := scanVehicle(r.q.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// ListByIDs obtiene los vehículos existentes entre ids.
func (r *VehicleRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Vehicle, error) {
	rows, err := r.q.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	var out []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindFirstAvailable primer vehículo (por antigüedad) con modelo, color, ubicación y estado,
// excluyendo los IDs ya tomados. No bloquea la fila.
func (r *VehicleRepo) FindFirstAvailable(ctx context.Context, q repository.VehicleQuery) (*entity.Vehicle, error) {
	exclude := q.ExcludeIDs
	if exclude == nil {
		exclude = []string{}
	}
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE model_id = $1 AND color_id = $2 AND location_id = $3 AND availability_status_id = $4
		  AND NOT (id = ANY($5))
		ORDER BY created_at, id
		LIMIT 1`
	v, err := scanVehicle(r.q.QueryRow(ctx, query, q.ModelID, q.ColorID, q.LocationID, q.StatusID, exclude))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find available vehicle: %w", err)
	}
	return v, nil
}

// SetSold UPDATE condicionado: solo filas que siguen en availableID.
func (r *VehicleRepo) SetSold(ctx context.Context, ids []string, availableID, soldID string) (int64, error) {
	query := `
		UPDATE vehicles
		SET location_id = NULL, availability_status_id = $2, updated_at = now()
		WHERE id = ANY($1) AND availability_status_id = $3`
	tag, err := r.q.Exec(ctx, query, ids, soldID, availableID)
	if err != nil {
		return 0, fmt.Errorf("mark vehicles sold: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetLocation UPDATE condicionado a estado y ubicación de origen.
func (r *VehicleRepo) SetLocation(ctx context.Context, ids []string, ch repository.LocationChange) (int64, error) {
	query := `
		UPDATE vehicles
		SET location_id = $2, availability_status_id = $3, updated_at = now()
		WHERE id = ANY($1) AND availability_status_id = $4
		  AND location_id IS NOT DISTINCT FROM $5::text`
	tag, err := r.q.Exec(ctx, query, ids, ch.ToLocation, ch.ToStatusID, ch.FromStatusID, ch.FromLocation)
	if err != nil {
		return 0, fmt.Errorf("relocate vehicles: %w", err)
	}
	return tag.RowsAffected(), nil
}
