package inventory

import (
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// validateMovementInput reglas que no requieren leer la base de datos.
func validateMovementInput(in CreateMovementInput) error {
	if !entity.IsValidMovementType(in.Type) {
		return domain.Validation("movement", "movement_type", "tipo de movimiento %q inválido", in.Type)
	}
	hasFrom := in.FromLocationID != nil && *in.FromLocationID != ""
	hasTo := in.ToLocationID != nil && *in.ToLocationID != ""
	if entity.RequiresFrom(in.Type) && !hasFrom {
		return domain.Validation("movement", "from_location_id", "%s requiere ubicación de origen", in.Type)
	}
	if !entity.RequiresFrom(in.Type) && hasFrom {
		return domain.Validation("movement", "from_location_id", "%s no admite ubicación de origen", in.Type)
	}
	if entity.RequiresTo(in.Type) && !hasTo {
		return domain.Validation("movement", "to_location_id", "%s requiere ubicación de destino", in.Type)
	}
	if !entity.RequiresTo(in.Type) && hasTo {
		return domain.Validation("movement", "to_location_id", "%s no admite ubicación de destino", in.Type)
	}
	if hasFrom && hasTo && *in.FromLocationID == *in.ToLocationID {
		return domain.Validation("movement", "to_location_id", "origen y destino deben ser distintos")
	}
	if len(in.Details) == 0 {
		return domain.Validation("movement_detail", "details", "el movimiento requiere al menos una línea")
	}
	seen := make(map[string]bool, len(in.Details))
	for _, d := range in.Details {
		hasVehicle := d.VehicleID != nil && *d.VehicleID != ""
		hasProduct := d.ProductID != nil && *d.ProductID != ""
		if hasVehicle == hasProduct {
			return domain.Validation("movement_detail", "vehicle_id", "cada línea lleva vehicle_id o product_id, no ambos")
		}
		if hasProduct && d.Quantity <= 0 {
			return domain.Validation("movement_detail", "quantity", "la cantidad del producto %s debe ser mayor a 0", *d.ProductID)
		}
		if hasVehicle {
			if d.Quantity > 1 {
				return domain.Validation("movement_detail", "quantity", "una línea de vehículo mueve una sola unidad")
			}
			if seen[*d.VehicleID] {
				return domain.Validation("movement_detail", "vehicle_id", "vehículo %s repetido", *d.VehicleID)
			}
			seen[*d.VehicleID] = true
		}
		if d.InspectionStatus != "" && !entity.IsValidInspectionStatus(d.InspectionStatus) {
			return domain.Validation("movement_detail", "inspection_status", "estado de inspección %q inválido", d.InspectionStatus)
		}
	}
	return nil
}
