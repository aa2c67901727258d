package entity

import "time"

// Stock representa la cantidad actual de un producto en una ubicación.
type Stock struct {
	ProductID  string
	LocationID string
	Quantity   int
	UpdatedAt  time.Time
}
