// Package memory implementa los repositorios sobre estructuras en memoria con la misma
// semántica transaccional que PostgreSQL: cada transacción trabaja sobre una copia,
// el commit verifica versiones por fila y una fila modificada por otra transacción
// devuelve domain.ErrStaleState.
package memory

import (
	"sync"

	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
)

type stockKey struct {
	productID  string
	locationID string
}

// data es el contenido completo de la base. Las filas se guardan por valor.
type data struct {
	locations       map[string]entity.Location
	customers       map[string]entity.Customer
	products        map[string]entity.Product
	statuses        []entity.AvailabilityStatusRow
	vehicles        map[string]entity.Vehicle
	stock           map[stockKey]entity.Stock
	movements       map[string]entity.Movement
	movementDetails map[string][]entity.MovementDetail
	sales           map[string]entity.Sale
	saleDetails     map[string][]entity.SaleDetail
}

func newData() *data {
	return &data{
		locations:       make(map[string]entity.Location),
		customers:       make(map[string]entity.Customer),
		products:        make(map[string]entity.Product),
		vehicles:        make(map[string]entity.Vehicle),
		stock:           make(map[stockKey]entity.Stock),
		movements:       make(map[string]entity.Movement),
		movementDetails: make(map[string][]entity.MovementDetail),
		sales:           make(map[string]entity.Sale),
		saleDetails:     make(map[string][]entity.SaleDetail),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.locations {
		c.locations[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	c.statuses = append(c.statuses, d.statuses...)
	for k, v := range d.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range d.stock {
		c.stock[k] = v
	}
	for k, v := range d.movements {
		c.movements[k] = v
	}
	for k, v := range d.movementDetails {
		c.movementDetails[k] = append([]entity.MovementDetail(nil), v...)
	}
	for k, v := range d.sales {
		c.sales[k] = v
	}
	for k, v := range d.saleDetails {
		c.saleDetails[k] = append([]entity.SaleDetail(nil), v...)
	}
	return c
}

// Store base de datos en memoria. Segura para uso concurrente.
type Store struct {
	mu         sync.Mutex
	data       *data
	versions   map[rowKey]uint64
	commitHook func()
}

// NewStore crea un store vacío con los estados de disponibilidad sembrados.
func NewStore() *Store {
	s := &Store{data: newData(), versions: make(map[rowKey]uint64)}
	for _, code := range entity.AllAvailabilityStatuses {
		s.data.statuses = append(s.data.statuses, entity.AvailabilityStatusRow{
			ID:   statusID(code),
			Code: code,
			Name: string(code),
		})
	}
	return s
}

func statusID(code entity.AvailabilityStatus) string { return "status-" + string(code) }

// SetCommitHook registra una función que se invoca antes de cada commit, fuera del lock.
// Permite forzar intercalados entre transacciones concurrentes en tests.
func (s *Store) SetCommitHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitHook = fn
}

// AddLocation siembra una ubicación.
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.locations[l.ID] = l
}

// AddCustomer siembra un cliente.
func (s *Store) AddCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.ID] = c
	s.versions[rowKey{table: tableCustomer, id: c.ID}]++
}

// AddProduct siembra un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// AddVehicle siembra un vehículo.
func (s *Store) AddVehicle(v entity.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.vehicles[v.ID] = v
	s.versions[rowKey{table: tableVehicle, id: v.ID}]++
}

// SetStock fija la cantidad de un producto en una ubicación.
func (s *Store) SetStock(st entity.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[stockKey{st.ProductID, st.LocationID}] = st
	s.versions[rowKey{table: tableStock, id: st.ProductID + "|" + st.LocationID}]++
}

// Vehicle lectura directa, fuera de transacción.
func (s *Store) Vehicle(id string) (entity.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.vehicles[id]
	return v, ok
}

// Stock lectura directa, fuera de transacción.
func (s *Store) Stock(productID, locationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.stock[stockKey{productID, locationID}].Quantity
}

// Counts devuelve la cantidad de ventas, líneas de venta, movimientos y líneas de movimiento.
func (s *Store) Counts() (sales, saleDetails, movements, movementDetails int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.data.saleDetails {
		saleDetails += len(d)
	}
	for _, d := range s.data.movementDetails {
		movementDetails += len(d)
	}
	return len(s.data.sales), saleDetails, len(s.data.movements), movementDetails
}

// Statuses repositorio de la tabla de referencia de disponibilidad.
func (s *Store) Statuses() *StatusRepository {
	return &StatusRepository{store: s}
}
