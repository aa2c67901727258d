package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales.
// customer_id referencia un cliente existente; customer_data crea uno nuevo; sin ambos = invitado.
type CreateSaleRequest struct {
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentMethod string              `json:"payment_method" validate:"required,max=50"`
	CustomerID    *string             `json:"customer_id,omitempty"`
	CustomerData  *CustomerData       `json:"customer_data,omitempty"`
	LocationID    string              `json:"location_id" validate:"required"`
	ShipToHome    bool                `json:"ship_to_home"`
	StorePickup   bool                `json:"store_pickup"`
	IsOnline      bool                `json:"is_online"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	CreatedBy     string              `json:"created_by,omitempty"`
	SaleDetails   []SaleDetailRequest `json:"sale_details" validate:"required,min=1,dive"`
}

// CustomerData datos de un cliente nuevo.
type CustomerData struct {
	Name       string `json:"name" validate:"required,max=150"`
	DocumentID string `json:"document_id,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
}

// SaleDetailRequest línea de venta. Con is_vehicle se indican model_id y color_id y el
// vehículo concreto se resuelve en el servidor; si no, product_id y quantity.
type SaleDetailRequest struct {
	ProductID                    *string         `json:"product_id,omitempty"`
	ModelID                      string          `json:"model_id,omitempty"`
	ColorID                      string          `json:"color_id,omitempty"`
	IsVehicle                    bool            `json:"is_vehicle"`
	Quantity                     int             `json:"quantity" validate:"min=0"`
	UnitPrice                    decimal.Decimal `json:"unit_price"`
	Subtotal                     decimal.Decimal `json:"subtotal"`
	AssemblyAndConfigurationCost decimal.Decimal `json:"assembly_and_configuration_cost"`
}

// UpdateSaleRequest body para PUT /api/sales/:id. Solo datos que no afectan inventario.
type UpdateSaleRequest struct {
	PaymentMethod *string `json:"payment_method,omitempty" validate:"omitempty,max=50"`
	ShipToHome    *bool   `json:"ship_to_home,omitempty"`
	StorePickup   *bool   `json:"store_pickup,omitempty"`
	IsOnline      *bool   `json:"is_online,omitempty"`
}

// SaleResponse venta con detalle.
type SaleResponse struct {
	ID            string               `json:"id"`
	Date          time.Time            `json:"date"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaymentMethod string               `json:"payment_method"`
	CustomerID    *string              `json:"customer_id"`
	LocationID    string               `json:"location_id"`
	ShipToHome    bool                 `json:"ship_to_home"`
	StorePickup   bool                 `json:"store_pickup"`
	IsOnline      bool                 `json:"is_online"`
	ShippingCost  decimal.Decimal      `json:"shipping_cost"`
	CreatedBy     string               `json:"created_by"`
	MovementID    string               `json:"movement_id,omitempty"`
	Details       []SaleDetailResponse `json:"sale_details"`
}

// SaleDetailResponse línea de venta resuelta.
type SaleDetailResponse struct {
	ID                           string          `json:"id"`
	ProductID                    *string         `json:"product_id,omitempty"`
	VehicleID                    *string         `json:"vehicle_id,omitempty"`
	Quantity                     int             `json:"quantity"`
	UnitPrice                    decimal.Decimal `json:"unit_price"`
	Subtotal                     decimal.Decimal `json:"subtotal"`
	AssemblyAndConfigurationCost decimal.Decimal `json:"assembly_and_configuration_cost"`
}
