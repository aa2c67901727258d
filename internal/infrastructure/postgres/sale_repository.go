package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (sales + sale_details).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, sale_date, total_amount, payment_method, customer_id, location_id,
			ship_to_home, store_pickup, is_online, shipping_cost, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Date, s.TotalAmount, s.PaymentMethod, s.CustomerID, s.LocationID,
		s.Fulfillment.ShipToHome, s.Fulfillment.StorePickup, s.Fulfillment.Online, s.ShippingCost,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateDetail inserta una línea de venta ya resuelta.
func (r *SaleRepo) CreateDetail(ctx context.Context, d *entity.SaleDetail) error {
	query := `
		INSERT INTO sale_details (id, sale_id, line_no, product_id, vehicle_id, quantity, unit_price, subtotal,
			assembly_and_configuration_cost)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(line_no), 0) + 1 FROM sale_details WHERE sale_id = $2),
			$3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.SaleID, d.ProductID, d.VehicleID, d.Quantity, d.UnitPrice, d.Subtotal, d.AssemblyAndConfigurationCost,
	)
	if err != nil {
		return fmt.Errorf("insert sale detail: %w", err)
	}
	return nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query := `
		SELECT id, sale_date, total_amount, payment_method, customer_id, location_id,
			ship_to_home, store_pickup, is_online, shipping_cost, created_by, created_at, updated_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Date, &s.TotalAmount, &s.PaymentMethod, &s.CustomerID, &s.LocationID,
		&s.Fulfillment.ShipToHome, &s.Fulfillment.StorePickup, &s.Fulfillment.Online, &s.ShippingCost,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, vehicle_id, quantity, unit_price, subtotal, assembly_and_configuration_cost
		FROM sale_details WHERE sale_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list sale details: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.VehicleID, &d.Quantity, &d.UnitPrice, &d.Subtotal,
			&d.AssemblyAndConfigurationCost); err != nil {
			return nil, fmt.Errorf("scan sale detail: %w", err)
		}
		s.Details = append(s.Details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sale details: %w", err)
	}
	return &s, nil
}

// Update actualiza método de pago y banderas de entrega.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales
		SET payment_method = $2, ship_to_home = $3, store_pickup = $4, is_online = $5, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, s.ID, s.PaymentMethod, s.Fulfillment.ShipToHome, s.Fulfillment.StorePickup, s.Fulfillment.Online)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	return nil
}

// Delete elimina la venta; sale_details cae por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete sale: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
