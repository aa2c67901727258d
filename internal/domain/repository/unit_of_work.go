package repository

// UnitOfWork agrupa los repositorios atados a una misma transacción.
type UnitOfWork interface {
	Movements() MovementRepository
	Sales() SaleRepository
	Vehicles() VehicleRepository
	Customers() CustomerRepository
	Locations() LocationRepository
	Products() ProductRepository
	Stock() StockRepository
}
