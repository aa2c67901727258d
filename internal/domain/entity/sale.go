package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fulfillment banderas de entrega de la venta.
type Fulfillment struct {
	ShipToHome  bool
	StorePickup bool
	Online      bool
}

// Sale representa una transacción comercial. CustomerID nil = venta a invitado.
type Sale struct {
	ID            string
	Date          time.Time
	TotalAmount   decimal.Decimal
	PaymentMethod string
	CustomerID    *string
	LocationID    string
	Fulfillment   Fulfillment
	ShippingCost  decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Details       []*SaleDetail
}

// SaleDetail una unidad vendida (vehículo) o una cantidad de producto.
type SaleDetail struct {
	ID                           string
	SaleID                       string
	ProductID                    *string
	VehicleID                    *string
	Quantity                     int
	UnitPrice                    decimal.Decimal
	Subtotal                     decimal.Decimal
	AssemblyAndConfigurationCost decimal.Decimal
}

// DetailsTotal suma subtotales y costos de armado/configuración de las líneas.
func (s *Sale) DetailsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.Details {
		total = total.Add(d.Subtotal).Add(d.AssemblyAndConfigurationCost)
	}
	return total
}

// VehicleIDs devuelve los vehículos vendidos.
func (s *Sale) VehicleIDs() []string {
	ids := make([]string, 0, len(s.Details))
	for _, d := range s.Details {
		if d.VehicleID != nil {
			ids = append(ids, *d.VehicleID)
		}
	}
	return ids
}
