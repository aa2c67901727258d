package dto

import "time"

// CreateMovementRequest body para POST /api/movements.
// from_location_id se omite en ENTRY; to_location_id se omite en EXIT.
type CreateMovementRequest struct {
	FromLocationID *string                 `json:"from_location_id,omitempty"`
	ToLocationID   *string                 `json:"to_location_id,omitempty"`
	MovementType   string                  `json:"movement_type" validate:"required,oneof=ENTRY EXIT TRANSFER"`
	MovementDate   *time.Time              `json:"movement_date,omitempty"`
	OrderReference string                  `json:"order_reference,omitempty" validate:"max=100"`
	CreatedBy      string                  `json:"created_by,omitempty"`
	Details        []MovementDetailRequest `json:"details" validate:"required,min=1,dive"`
}

// MovementDetailRequest línea del movimiento: vehicle_id o product_id (+quantity).
type MovementDetailRequest struct {
	VehicleID        *string `json:"vehicle_id,omitempty"`
	ProductID        *string `json:"product_id,omitempty"`
	Quantity         int     `json:"quantity,omitempty" validate:"min=0"`
	InspectionStatus string  `json:"inspection_status,omitempty" validate:"omitempty,oneof=PENDING PASSED FAILED"`
}

// ReceiveMovementRequest body para PUT /api/movements/:id (recepción).
type ReceiveMovementRequest struct {
	ArrivalDate    *time.Time `json:"arrival_date,omitempty"`
	ReceivedBy     string     `json:"received_by,omitempty"`
	IsReceived     bool       `json:"is_received"`
	ReceptionNotes string     `json:"reception_notes,omitempty" validate:"max=500"`
}

// MovementResponse movimiento con sus líneas.
type MovementResponse struct {
	ID             string                   `json:"id"`
	FromLocationID *string                  `json:"from_location_id"`
	ToLocationID   *string                  `json:"to_location_id"`
	MovementType   string                   `json:"movement_type"`
	Status         string                   `json:"status"`
	Approved       bool                     `json:"approved"`
	CreatedBy      string                   `json:"created_by"`
	OrderReference string                   `json:"order_reference,omitempty"`
	MovementDate   time.Time                `json:"movement_date"`
	ArrivalDate    *time.Time               `json:"arrival_date,omitempty"`
	ReceivedBy     string                   `json:"received_by,omitempty"`
	IsReceived     bool                     `json:"is_received"`
	ReceptionNotes string                   `json:"reception_notes,omitempty"`
	Details        []MovementDetailResponse `json:"details"`
}

// MovementDetailResponse línea del movimiento en la respuesta.
type MovementDetailResponse struct {
	ID               string  `json:"id"`
	VehicleID        *string `json:"vehicle_id,omitempty"`
	ProductID        *string `json:"product_id,omitempty"`
	Quantity         int     `json:"quantity"`
	InspectionStatus string  `json:"inspection_status"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Page  PageResponse       `json:"page"`
	Items []MovementResponse `json:"items"`
}
