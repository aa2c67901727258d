package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository (movements + movement_details).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, from_location_id, to_location_id, movement_type, status, approved, created_by,
	order_reference, movement_date, arrival_date, received_by, is_received, reception_notes, created_at, updated_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.FromLocationID, &m.ToLocationID, &m.Type, &m.Status, &m.Approved, &m.CreatedBy,
		&m.OrderReference, &m.MovementDate, &m.ArrivalDate, &m.ReceivedBy, &m.IsReceived, &m.ReceptionNotes,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserta la cabecera del movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.FromLocationID, m.ToLocationID, m.Type, m.Status, m.Approved, m.CreatedBy,
		m.OrderReference, m.MovementDate, m.ArrivalDate, m.ReceivedBy, m.IsReceived, m.ReceptionNotes,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// CreateDetail inserta una línea; line_no conserva el orden de inserción.
func (r *MovementRepo) CreateDetail(ctx context.Context, d *entity.MovementDetail) error {
	query := `
		INSERT INTO movement_details (id, movement_id, line_no, vehicle_id, product_id, quantity, inspection_status)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(line_no), 0) + 1 FROM movement_details WHERE movement_id = $2),
			$3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, d.ID, d.MovementID, d.VehicleID, d.ProductID, d.Quantity, d.InspectionStatus)
	if err != nil {
		return fmt.Errorf("insert movement detail: %w", err)
	}
	return nil
}

// GetByID obtiene el movimiento con sus líneas.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila del movimiento (SELECT FOR UPDATE).
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *MovementRepo) get(ctx context.Context, query, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.loadDetails(ctx, []*entity.Movement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// SetApproved marca approved = true.
func (r *MovementRepo) SetApproved(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE movements SET approved = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("approve movement: %w", err)
	}
	return nil
}

// MarkReceived cierra el tránsito con los datos de llegada.
func (r *MovementRepo) MarkReceived(ctx context.Context, id string, rc repository.Reception) error {
	query := `
		UPDATE movements
		SET status = $2, is_received = true, arrival_date = $3, received_by = $4, reception_notes = $5, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, entity.MovementStatusCompleted, rc.ArrivalDate, rc.ReceivedBy, rc.ReceptionNotes)
	if err != nil {
		return fmt.Errorf("receive movement: %w", err)
	}
	return nil
}

// List movimientos filtrados, más recientes primero, con sus líneas.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE ($1 = '' OR movement_type = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR from_location_id = $3 OR to_location_id = $3)
		ORDER BY movement_date DESC, id
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, f.Type, f.Status, f.LocationID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	out := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	if err := r.loadDetails(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MovementRepo) loadDetails(ctx context.Context, movements []*entity.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Movement, len(movements))
	ids := make([]string, 0, len(movements))
	for _, m := range movements {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}
	query := `
		SELECT id, movement_id, vehicle_id, product_id, quantity, inspection_status
		FROM movement_details WHERE movement_id = ANY($1)
		ORDER BY movement_id, line_no`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list movement details: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.MovementDetail
		if err := rows.Scan(&d.ID, &d.MovementID, &d.VehicleID, &d.ProductID, &d.Quantity, &d.InspectionStatus); err != nil {
			return fmt.Errorf("scan movement detail: %w", err)
		}
		if m := byID[d.MovementID]; m != nil {
			m.Details = append(m.Details, &d)
		}
	}
	return rows.Err()
}
