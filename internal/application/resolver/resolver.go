// Package resolver contiene las búsquedas de referencias que consume el núcleo
// transaccional. No abre transacciones: recibe repositorios ya atados a una.
package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/application/availability"
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/google/uuid"
)

// CustomerDraft datos para crear un cliente nuevo durante la venta.
type CustomerDraft struct {
	Name       string
	DocumentID string
	Email      string
	Phone      string
	Address    string
}

// ResolveOrCreateCustomer devuelve el cliente referenciado, crea uno desde el borrador,
// o (nil, nil) si no hay ninguno de los dos (venta a invitado).
func ResolveOrCreateCustomer(ctx context.Context, customers repository.CustomerRepository, ref *string, draft *CustomerDraft) (*entity.Customer, error) {
	if ref != nil && *ref != "" {
		c, err := customers.GetByID(ctx, *ref)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.NotFound("customer", "customer_id", "cliente %s no existe", *ref)
		}
		return c, nil
	}
	if draft == nil {
		return nil, nil
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, domain.Validation("customer", "name", "el nombre del cliente es requerido")
	}
	now := time.Now()
	c := &entity.Customer{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(draft.Name),
		DocumentID: draft.DocumentID,
		Email:      draft.Email,
		Phone:      draft.Phone,
		Address:    draft.Address,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ResolveLocation busca una ubicación por ID.
func ResolveLocation(ctx context.Context, locations repository.LocationRepository, id string) (*entity.Location, error) {
	if id == "" {
		return nil, domain.Validation("location", "location_id", "la ubicación es requerida")
	}
	loc, err := locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.NotFound("location", "location_id", "ubicación %s no existe", id)
	}
	return loc, nil
}

// ResolveVehicleByAttributes elige el primer vehículo AVAILABLE con ese modelo y color en la
// ubicación, ignorando los IDs de exclude. No bloquea la fila: la escritura condicionada de
// availability.MarkSold es la que detecta si otro lo vendió antes.
func ResolveVehicleByAttributes(
	ctx context.Context,
	vehicles repository.VehicleRepository,
	catalog *availability.Catalog,
	modelID, colorID, locationID string,
	exclude []string,
) (*entity.Vehicle, error) {
	v, err := vehicles.FindFirstAvailable(ctx, repository.VehicleQuery{
		ModelID:    modelID,
		ColorID:    colorID,
		LocationID: locationID,
		StatusID:   catalog.Available(),
		ExcludeIDs: exclude,
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("vehicle", "model_id",
			"no hay vehículo disponible en stock (modelo %s, color %s, ubicación %s)", modelID, colorID, locationID)
	}
	return v, nil
}
