package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/txretry"
)

const (
	tableCustomer = "customers"
	tableVehicle  = "vehicles"
	tableStock    = "stock"
	tableMovement = "movements"
	tableSale     = "sales"
)

type rowKey struct {
	table string
	id    string
}

// tx una transacción: copia privada de los datos más las filas escritas o bloqueadas.
type tx struct {
	data   *data
	base   map[rowKey]uint64
	writes map[rowKey]struct{}
}

func (t *tx) touch(table, id string) {
	t.writes[rowKey{table: table, id: id}] = struct{}{}
}

func (s *Store) begin() *tx {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := make(map[rowKey]uint64, len(s.versions))
	for k, v := range s.versions {
		base[k] = v
	}
	return &tx{data: s.data.clone(), base: base, writes: make(map[rowKey]struct{})}
}

// commit aplica las filas escritas si ninguna cambió desde el inicio de la transacción.
func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	hook := s.commitHook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range t.writes {
		if s.versions[k] != t.base[k] {
			return domain.ErrStaleState
		}
	}
	for k := range t.writes {
		s.apply(t.data, k)
		s.versions[k]++
	}
	return nil
}

func (s *Store) apply(src *data, k rowKey) {
	switch k.table {
	case tableCustomer:
		if v, ok := src.customers[k.id]; ok {
			s.data.customers[k.id] = v
		} else {
			delete(s.data.customers, k.id)
		}
	case tableVehicle:
		if v, ok := src.vehicles[k.id]; ok {
			s.data.vehicles[k.id] = v
		}
	case tableStock:
		productID, locationID, _ := strings.Cut(k.id, "|")
		sk := stockKey{productID, locationID}
		if v, ok := src.stock[sk]; ok {
			s.data.stock[sk] = v
		}
	case tableMovement:
		if v, ok := src.movements[k.id]; ok {
			s.data.movements[k.id] = v
			s.data.movementDetails[k.id] = append([]entity.MovementDetail(nil), src.movementDetails[k.id]...)
		}
	case tableSale:
		if v, ok := src.sales[k.id]; ok {
			s.data.sales[k.id] = v
			s.data.saleDetails[k.id] = append([]entity.SaleDetail(nil), src.saleDetails[k.id]...)
		} else {
			delete(s.data.sales, k.id)
			delete(s.data.saleDetails, k.id)
		}
	}
}

// TxRunner ejecuta funciones en transacciones del Store con la política de reintentos indicada.
type TxRunner struct {
	store  *Store
	policy txretry.Policy
}

// NewTxRunner crea el runner.
func NewTxRunner(store *Store, policy txretry.Policy) *TxRunner {
	return &TxRunner{store: store, policy: policy}
}

// Run abre una transacción, ejecuta fn y hace commit. Si fn falla no se aplica nada.
// Un commit rechazado por versión se reintenta según la política.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	return txretry.Do(ctx, r.policy, isRetryable, func(ctx context.Context) error {
		t := r.store.begin()
		if err := fn(ctx, &unitOfWork{tx: t}); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.store.commit(t)
	})
}

func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrStaleState)
}
