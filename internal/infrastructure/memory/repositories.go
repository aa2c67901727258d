package memory

import (
	"context"
	"sort"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

type unitOfWork struct {
	tx *tx
}

func (u *unitOfWork) Movements() repository.MovementRepository { return &movementRepo{tx: u.tx} }
func (u *unitOfWork) Sales() repository.SaleRepository         { return &saleRepo{tx: u.tx} }
func (u *unitOfWork) Vehicles() repository.VehicleRepository   { return &vehicleRepo{tx: u.tx} }
func (u *unitOfWork) Customers() repository.CustomerRepository { return &customerRepo{tx: u.tx} }
func (u *unitOfWork) Locations() repository.LocationRepository { return &locationRepo{tx: u.tx} }
func (u *unitOfWork) Products() repository.ProductRepository   { return &productRepo{tx: u.tx} }
func (u *unitOfWork) Stock() repository.StockRepository        { return &stockRepo{tx: u.tx} }

// StatusRepository lee los estados de disponibilidad sembrados.
type StatusRepository struct {
	store *Store
}

// List implementa repository.AvailabilityStatusRepository.
func (r *StatusRepository) List(_ context.Context) ([]entity.AvailabilityStatusRow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]entity.AvailabilityStatusRow(nil), r.store.data.statuses...), nil
}

type customerRepo struct{ tx *tx }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.tx.data.customers[c.ID] = *c
	r.tx.touch(tableCustomer, c.ID)
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := r.tx.data.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type locationRepo struct{ tx *tx }

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	l, ok := r.tx.data.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

type productRepo struct{ tx *tx }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.tx.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type stockRepo struct{ tx *tx }

func (r *stockRepo) Get(_ context.Context, productID, locationID string) (*entity.Stock, error) {
	s, ok := r.tx.data.stock[stockKey{productID, locationID}]
	if !ok {
		return &entity.Stock{ProductID: productID, LocationID: locationID}, nil
	}
	return &s, nil
}

func (r *stockRepo) GetForUpdate(_ context.Context, productID, locationID string) (*entity.Stock, error) {
	r.tx.touch(tableStock, productID+"|"+locationID)
	s, ok := r.tx.data.stock[stockKey{productID, locationID}]
	if !ok {
		return &entity.Stock{ProductID: productID, LocationID: locationID}, nil
	}
	return &s, nil
}

func (r *stockRepo) Upsert(_ context.Context, s *entity.Stock) error {
	r.tx.data.stock[stockKey{s.ProductID, s.LocationID}] = *s
	r.tx.touch(tableStock, s.ProductID+"|"+s.LocationID)
	return nil
}

type vehicleRepo struct{ tx *tx }

func (r *vehicleRepo) GetByID(_ context.Context, id string) (*entity.Vehicle, error) {
	v, ok := r.tx.data.vehicles[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *vehicleRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Vehicle, error) {
	out := make([]*entity.Vehicle, 0, len(ids))
	for _, id := range ids {
		if v, ok := r.tx.data.vehicles[id]; ok {
			out = append(out, &v)
		}
	}
	return out, nil
}

// FindFirstAvailable ordena por fecha de alta e ID para que la elección sea determinista.
func (r *vehicleRepo) FindFirstAvailable(_ context.Context, q repository.VehicleQuery) (*entity.Vehicle, error) {
	excluded := make(map[string]bool, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}
	var candidates []entity.Vehicle
	for _, v := range r.tx.data.vehicles {
		if excluded[v.ID] || v.ModelID != q.ModelID || v.ColorID != q.ColorID || v.AvailabilityStatusID != q.StatusID {
			continue
		}
		if v.LocationID == nil || *v.LocationID != q.LocationID {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	return &candidates[0], nil
}

func (r *vehicleRepo) SetSold(_ context.Context, ids []string, availableID, soldID string) (int64, error) {
	var n int64
	for _, id := range ids {
		v, ok := r.tx.data.vehicles[id]
		if !ok || v.AvailabilityStatusID != availableID {
			continue
		}
		v.LocationID = nil
		v.AvailabilityStatusID = soldID
		r.tx.data.vehicles[id] = v
		r.tx.touch(tableVehicle, id)
		n++
	}
	return n, nil
}

func (r *vehicleRepo) SetLocation(_ context.Context, ids []string, ch repository.LocationChange) (int64, error) {
	var n int64
	for _, id := range ids {
		v, ok := r.tx.data.vehicles[id]
		if !ok || v.AvailabilityStatusID != ch.FromStatusID || !sameLocation(v.LocationID, ch.FromLocation) {
			continue
		}
		if ch.ToLocation != nil {
			loc := *ch.ToLocation
			v.LocationID = &loc
		} else {
			v.LocationID = nil
		}
		v.AvailabilityStatusID = ch.ToStatusID
		r.tx.data.vehicles[id] = v
		r.tx.touch(tableVehicle, id)
		n++
	}
	return n, nil
}

func sameLocation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type movementRepo struct{ tx *tx }

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	row := *m
	row.Details = nil
	r.tx.data.movements[m.ID] = row
	r.tx.touch(tableMovement, m.ID)
	return nil
}

func (r *movementRepo) CreateDetail(_ context.Context, d *entity.MovementDetail) error {
	r.tx.data.movementDetails[d.MovementID] = append(r.tx.data.movementDetails[d.MovementID], *d)
	r.tx.touch(tableMovement, d.MovementID)
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	m, ok := r.tx.data.movements[id]
	if !ok {
		return nil, nil
	}
	return r.withDetails(m), nil
}

func (r *movementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := r.GetByID(ctx, id)
	if m != nil {
		r.tx.touch(tableMovement, id)
	}
	return m, err
}

func (r *movementRepo) SetApproved(_ context.Context, id string) error {
	m, ok := r.tx.data.movements[id]
	if !ok {
		return nil
	}
	m.Approved = true
	r.tx.data.movements[id] = m
	r.tx.touch(tableMovement, id)
	return nil
}

func (r *movementRepo) MarkReceived(_ context.Context, id string, rc repository.Reception) error {
	m, ok := r.tx.data.movements[id]
	if !ok {
		return nil
	}
	arrival := rc.ArrivalDate
	m.Status = entity.MovementStatusCompleted
	m.IsReceived = true
	m.ArrivalDate = &arrival
	m.ReceivedBy = rc.ReceivedBy
	m.ReceptionNotes = rc.ReceptionNotes
	r.tx.data.movements[id] = m
	r.tx.touch(tableMovement, id)
	return nil
}

// List ordena por fecha de movimiento descendente, como el listado SQL.
func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var rows []entity.Movement
	for _, m := range r.tx.data.movements {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.LocationID != "" && !sameLocation(m.FromLocationID, &f.LocationID) && !sameLocation(m.ToLocationID, &f.LocationID) {
			continue
		}
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].MovementDate.Equal(rows[j].MovementDate) {
			return rows[i].MovementDate.After(rows[j].MovementDate)
		}
		return rows[i].ID < rows[j].ID
	})
	if f.Offset >= len(rows) {
		return []*entity.Movement{}, nil
	}
	rows = rows[f.Offset:]
	if f.Limit > 0 && f.Limit < len(rows) {
		rows = rows[:f.Limit]
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, m := range rows {
		out = append(out, r.withDetails(m))
	}
	return out, nil
}

func (r *movementRepo) withDetails(m entity.Movement) *entity.Movement {
	for _, d := range r.tx.data.movementDetails[m.ID] {
		m.Details = append(m.Details, &d)
	}
	return &m
}

type saleRepo struct{ tx *tx }

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	row := *s
	row.Details = nil
	r.tx.data.sales[s.ID] = row
	r.tx.touch(tableSale, s.ID)
	return nil
}

func (r *saleRepo) CreateDetail(_ context.Context, d *entity.SaleDetail) error {
	r.tx.data.saleDetails[d.SaleID] = append(r.tx.data.saleDetails[d.SaleID], *d)
	r.tx.touch(tableSale, d.SaleID)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.tx.data.sales[id]
	if !ok {
		return nil, nil
	}
	for _, d := range r.tx.data.saleDetails[id] {
		s.Details = append(s.Details, &d)
	}
	return &s, nil
}

func (r *saleRepo) Update(_ context.Context, s *entity.Sale) error {
	row, ok := r.tx.data.sales[s.ID]
	if !ok {
		return nil
	}
	row.PaymentMethod = s.PaymentMethod
	row.Fulfillment = s.Fulfillment
	row.UpdatedAt = time.Now()
	r.tx.data.sales[s.ID] = row
	r.tx.touch(tableSale, s.ID)
	return nil
}

func (r *saleRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.tx.data.sales[id]; !ok {
		return false, nil
	}
	delete(r.tx.data.sales, id)
	delete(r.tx.data.saleDetails, id)
	r.tx.touch(tableSale, id)
	return true, nil
}
