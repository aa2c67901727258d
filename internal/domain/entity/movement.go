package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntry    = "ENTRY"    // ingreso al sistema (sin origen)
	MovementTypeExit     = "EXIT"     // salida del sistema (sin destino)
	MovementTypeTransfer = "TRANSFER" // traslado entre ubicaciones
	MovementTypeSale     = "SALE"     // salida generada por una venta
)

// Estados del movimiento.
const (
	MovementStatusInTransit = "IN_TRANSIT"
	MovementStatusCompleted = "COMPLETED"
)

// Estados de inspección de una línea de movimiento.
const (
	InspectionPending = "PENDING"
	InspectionPassed  = "PASSED"
	InspectionFailed  = "FAILED"
)

// Movement representa una solicitud de reubicación de unidades entre ubicaciones.
// FromLocationID es nil en ENTRY; ToLocationID es nil en EXIT y SALE.
type Movement struct {
	ID             string
	FromLocationID *string
	ToLocationID   *string
	Type           string
	Status         string
	Approved       bool
	CreatedBy      string
	OrderReference string // en SALE, el ID de la venta
	MovementDate   time.Time
	ArrivalDate    *time.Time
	ReceivedBy     string
	IsReceived     bool
	ReceptionNotes string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Details        []*MovementDetail
}

// MovementDetail es una línea del movimiento: un vehículo o un producto con cantidad, nunca ambos.
type MovementDetail struct {
	ID               string
	MovementID       string
	VehicleID        *string
	ProductID        *string
	Quantity         int
	InspectionStatus string
}

// IsValidMovementType indica si t es uno de los tipos conocidos.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeEntry, MovementTypeExit, MovementTypeTransfer, MovementTypeSale:
		return true
	}
	return false
}

// IsValidInspectionStatus indica si s es un estado de inspección conocido.
func IsValidInspectionStatus(s string) bool {
	switch s {
	case InspectionPending, InspectionPassed, InspectionFailed:
		return true
	}
	return false
}

// RequiresFrom indica si el tipo exige ubicación de origen.
func RequiresFrom(t string) bool { return t != MovementTypeEntry }

// RequiresTo indica si el tipo exige ubicación de destino.
func RequiresTo(t string) bool { return t != MovementTypeExit && t != MovementTypeSale }

// VehicleIDs devuelve los IDs de vehículo referenciados por las líneas.
func (m *Movement) VehicleIDs() []string {
	ids := make([]string, 0, len(m.Details))
	for _, d := range m.Details {
		if d.VehicleID != nil {
			ids = append(ids, *d.VehicleID)
		}
	}
	return ids
}
