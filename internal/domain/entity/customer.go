package entity

import "time"

// Customer representa un cliente de la concesionaria.
type Customer struct {
	ID         string
	Name       string
	DocumentID string // cédula, NIT o pasaporte
	Email      string
	Phone      string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
