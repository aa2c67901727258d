package postgres

import "github.com/adanjr/inventory-management-sub000/internal/domain/repository"

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork repositorios atados a un mismo Querier (normalmente una pgx.Tx).
type UnitOfWork struct {
	q Querier
}

// NewUnitOfWork construye la unidad sobre q.
func NewUnitOfWork(q Querier) *UnitOfWork {
	return &UnitOfWork{q: q}
}

func (u *UnitOfWork) Movements() repository.MovementRepository { return NewMovementRepository(u.q) }
func (u *UnitOfWork) Sales() repository.SaleRepository         { return NewSaleRepository(u.q) }
func (u *UnitOfWork) Vehicles() repository.VehicleRepository   { return NewVehicleRepository(u.q) }
func (u *UnitOfWork) Customers() repository.CustomerRepository { return NewCustomerRepository(u.q) }
func (u *UnitOfWork) Locations() repository.LocationRepository { return NewLocationRepository(u.q) }
func (u *UnitOfWork) Products() repository.ProductRepository   { return NewProductRepository(u.q) }
func (u *UnitOfWork) Stock() repository.StockRepository        { return NewStockRepository(u.q) }
