package repository

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

// VehicleQuery atributos para buscar un vehículo disponible.
type VehicleQuery struct {
	ModelID    string
	ColorID    string
	LocationID string
	StatusID   string   // ID persistido de AVAILABLE
	ExcludeIDs []string // ya tomados por la misma operación
}

// LocationChange transición condicionada: solo cambian las filas que siguen en
// FromLocation (nil = sin ubicación) con estado FromStatusID.
type LocationChange struct {
	FromLocation *string
	ToLocation   *string
	FromStatusID string
	ToStatusID   string
}

// VehicleRepository acceso a vehículos. No existe un Update genérico:
// ubicación y disponibilidad solo cambian por las dos escrituras condicionadas.
type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Vehicle, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Vehicle, error)
	// FindFirstAvailable devuelve el primer vehículo que cumple la consulta (sin bloqueo), o nil.
	FindFirstAvailable(ctx context.Context, q VehicleQuery) (*entity.Vehicle, error)
	// SetSold pone location=NULL y status=soldID en los ids cuyo status sigue siendo availableID.
	// Devuelve la cantidad de filas afectadas.
	SetSold(ctx context.Context, ids []string, availableID, soldID string) (int64, error)
	// SetLocation aplica ch a los ids que cumplen su guarda. Devuelve la cantidad de filas afectadas.
	SetLocation(ctx context.Context, ids []string, ch LocationChange) (int64, error)
}
