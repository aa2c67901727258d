package memory

import (
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/seed"
)

// LoadInventory siembra las ubicaciones y los vehículos del inventario inicial.
// Los vehículos quedan AVAILABLE en su ubicación, igual que el script de cmd/seed_inventory.
func (s *Store) LoadInventory(inv *seed.Inventory) {
	now := time.Now()
	for _, id := range inv.LocationIDs() {
		s.AddLocation(entity.Location{ID: id, Name: inv.Locations[id]})
	}
	for _, v := range inv.Vehicles {
		loc := v.LocationID
		s.AddVehicle(entity.Vehicle{
			ID:                   v.ID,
			VIN:                  v.VIN,
			ModelID:              v.ModelID,
			ColorID:              v.ColorID,
			LocationID:           &loc,
			AvailabilityStatusID: statusID(entity.StatusAvailable),
			CreatedAt:            now,
			UpdatedAt:            now,
		})
	}
}
