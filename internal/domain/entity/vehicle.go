package entity

import "time"

// AvailabilityStatus es el ciclo de vida de un vehículo. Enumeración fija;
// su ID persistido se resuelve una sola vez al arrancar.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "AVAILABLE"
	StatusSold      AvailabilityStatus = "SOLD"
	StatusInTransit AvailabilityStatus = "IN_TRANSIT"
)

// AllAvailabilityStatuses lista los códigos que deben existir en availability_statuses.
var AllAvailabilityStatuses = []AvailabilityStatus{StatusAvailable, StatusSold, StatusInTransit}

// AvailabilityStatusRow fila de la tabla de referencia de estados.
type AvailabilityStatusRow struct {
	ID   string
	Code AvailabilityStatus
	Name string
}

// Vehicle unidad física identificada de forma única.
// LocationID nil = no está en ninguna ubicación (vendido o fuera del sistema).
type Vehicle struct {
	ID                   string
	VIN                  string
	ModelID              string
	ColorID              string
	LocationID           *string
	AvailabilityStatusID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
