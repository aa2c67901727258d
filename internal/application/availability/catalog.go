// Package availability es el único punto de escritura sobre la ubicación y el
// estado de disponibilidad de los vehículos.
package availability

import (
	"context"
	"fmt"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

// Catalog mapea la enumeración fija de estados a sus IDs persistidos.
// Se resuelve una vez al arrancar y se inyecta; nunca se consulta por nombre en cada venta.
type Catalog struct {
	ids map[entity.AvailabilityStatus]string
}

// NewCatalog construye el catálogo a partir de un mapeo explícito. Exige todos los códigos.
func NewCatalog(ids map[entity.AvailabilityStatus]string) (*Catalog, error) {
	c := &Catalog{ids: make(map[entity.AvailabilityStatus]string, len(ids))}
	for _, code := range entity.AllAvailabilityStatuses {
		id, ok := ids[code]
		if !ok || id == "" {
			return nil, fmt.Errorf("estado de disponibilidad %q sin ID persistido", code)
		}
		c.ids[code] = id
	}
	return c, nil
}

// LoadCatalog lee la tabla de referencia y arma el catálogo. Falla si falta algún código.
func LoadCatalog(ctx context.Context, repo repository.AvailabilityStatusRepository) (*Catalog, error) {
	rows, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar estados de disponibilidad: %w", err)
	}
	ids := make(map[entity.AvailabilityStatus]string, len(rows))
	for _, r := range rows {
		ids[r.Code] = r.ID
	}
	return NewCatalog(ids)
}

// ID devuelve el ID persistido del estado.
func (c *Catalog) ID(code entity.AvailabilityStatus) string { return c.ids[code] }

// Available atajo para el ID de AVAILABLE.
func (c *Catalog) Available() string { return c.ids[entity.StatusAvailable] }

// Sold atajo para el ID de SOLD.
func (c *Catalog) Sold() string { return c.ids[entity.StatusSold] }

// InTransit atajo para el ID de IN_TRANSIT.
func (c *Catalog) InTransit() string { return c.ids[entity.StatusInTransit] }

// Code resuelve el código a partir de un ID persistido.
func (c *Catalog) Code(id string) (entity.AvailabilityStatus, bool) {
	for code, v := range c.ids {
		if v == id {
			return code, true
		}
	}
	return "", false
}
