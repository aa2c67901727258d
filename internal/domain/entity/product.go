package entity

import "time"

// Product artículo a granel (accesorios, repuestos); su stock se lleva por ubicación en Stock.
type Product struct {
	ID        string
	SKU       string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
