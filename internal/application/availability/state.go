package availability

import (
	"context"
	"strings"

	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

// MarkSold deja los vehículos sin ubicación y en SOLD.
// La escritura está condicionada a que cada vehículo siga AVAILABLE; si se afectan menos
// filas que IDs recibidos, otra transacción ganó la carrera y se devuelve un Conflict
// reintentable para que el llamador haga rollback.
func MarkSold(ctx context.Context, vehicles repository.VehicleRepository, catalog *Catalog, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := vehicles.SetSold(ctx, ids, catalog.Available(), catalog.Sold())
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return domain.StaleConflict("vehicle", "availability_status",
			"%d de %d vehículos ya no están disponibles (%s)", int64(len(ids))-n, len(ids), strings.Join(ids, ","))
	}
	return nil
}

// MarkInTransit reserva los vehículos de un movimiento recién creado: pasan de AVAILABLE
// en fromLocation (nil = sin ubicación) a IN_TRANSIT sin ubicación. Quedan fuera del
// alcance de ventas y de otros movimientos hasta la recepción.
// Las lecturas previas ya validaron el estado, así que un conteo corto es una carrera
// y se devuelve un Conflict reintentable.
func MarkInTransit(ctx context.Context, vehicles repository.VehicleRepository, catalog *Catalog, ids []string, fromLocation *string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := vehicles.SetLocation(ctx, ids, repository.LocationChange{
		FromLocation: fromLocation,
		FromStatusID: catalog.Available(),
		ToStatusID:   catalog.InTransit(),
	})
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return domain.StaleConflict("vehicle", "availability_status",
			"%d de %d vehículos ya no están disponibles en origen (%s)", int64(len(ids))-n, len(ids), strings.Join(ids, ","))
	}
	return nil
}

// Relocate cierra el tránsito: los vehículos IN_TRANSIT pasan a AVAILABLE en toLocation
// (nil = fuera de toda ubicación, como en una salida).
// El movimiento está bloqueado y sus vehículos reservados, de modo que un conteo corto
// no se arregla reintentando: se devuelve un Conflict simple.
func Relocate(ctx context.Context, vehicles repository.VehicleRepository, catalog *Catalog, ids []string, toLocation *string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := vehicles.SetLocation(ctx, ids, repository.LocationChange{
		ToLocation:   toLocation,
		FromStatusID: catalog.InTransit(),
		ToStatusID:   catalog.Available(),
	})
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return domain.Conflict("vehicle", "availability_status",
			"%d de %d vehículos no están en tránsito", int64(len(ids))-n, len(ids))
	}
	return nil
}
