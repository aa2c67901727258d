package memory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/memory"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/seed"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/txretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	available = "status-AVAILABLE"
	sold      = "status-SOLD"
)

func strPtr(s string) *string { return &s }

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddLocation(entity.Location{ID: "L1"})
	s.AddVehicle(entity.Vehicle{ID: "v1", ModelID: "10", ColorID: "3", LocationID: strPtr("L1"), AvailabilityStatusID: available})
	return s
}

func TestStore_StatusesSembrados(t *testing.T) {
	rows, err := memory.NewStore().Statuses().List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, len(entity.AllAvailabilityStatuses))
	for _, r := range rows {
		assert.Equal(t, "status-"+string(r.Code), r.ID)
	}
}

func TestTxRunner_ErrorEnFn_NoAplicaNada(t *testing.T) {
	s := newStore()
	runner := memory.NewTxRunner(s, txretry.Policy{})
	boom := domain.Conflict("sale", "", "fallo simulado")

	err := runner.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		n, err := uow.Vehicles().SetSold(ctx, []string{"v1"}, available, sold)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		return boom
	})
	assert.Same(t, boom, err)

	v, _ := s.Vehicle("v1")
	assert.Equal(t, available, v.AvailabilityStatusID)
	assert.Equal(t, "L1", *v.LocationID)
}

func TestTxRunner_CommitAplicaCambios(t *testing.T) {
	s := newStore()
	runner := memory.NewTxRunner(s, txretry.Policy{})

	err := runner.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		_, err := uow.Vehicles().SetSold(ctx, []string{"v1"}, available, sold)
		return err
	})
	require.NoError(t, err)

	v, _ := s.Vehicle("v1")
	assert.Equal(t, sold, v.AvailabilityStatusID)
	assert.Nil(t, v.LocationID)
}

func TestTxRunner_EscrituraConcurrente_StaleState(t *testing.T) {
	s := newStore()
	runner := memory.NewTxRunner(s, txretry.Policy{})

	var arrived int32
	ready := make(chan struct{})
	s.SetCommitHook(func() {
		if atomic.AddInt32(&arrived, 1) == 2 {
			close(ready)
		}
		select {
		case <-ready:
		case <-time.After(2 * time.Second):
		}
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = runner.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
				_, err := uow.Vehicles().SetLocation(ctx, []string{"v1"}, repository.LocationChange{
					FromLocation: strPtr("L1"), FromStatusID: available, ToStatusID: available,
				})
				return err
			})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict) && errors.Is(err, domain.ErrStaleState):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts, "sin reintentos el perdedor recibe Conflict con la causa ErrStaleState")
}

func TestVehicleRepo_GuardasCondicionadas(t *testing.T) {
	s := newStore()
	runner := memory.NewTxRunner(s, txretry.Policy{})

	err := runner.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		n, err := uow.Vehicles().SetLocation(ctx, []string{"v1"}, repository.LocationChange{
			FromLocation: strPtr("OTRA"), ToLocation: strPtr("L2"), FromStatusID: available, ToStatusID: available,
		})
		require.NoError(t, err)
		assert.Zero(t, n, "no mueve un vehículo que no está en el origen indicado")

		n, err = uow.Vehicles().SetLocation(ctx, []string{"v1"}, repository.LocationChange{
			FromLocation: strPtr("L1"), ToLocation: strPtr("L2"), FromStatusID: sold, ToStatusID: available,
		})
		require.NoError(t, err)
		assert.Zero(t, n, "no mueve un vehículo con otro estado")

		n, err = uow.Vehicles().SetSold(ctx, []string{"v1", "fantasma"}, available, sold)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = uow.Vehicles().SetSold(ctx, []string{"v1"}, available, sold)
		require.NoError(t, err)
		assert.Zero(t, n, "un vehículo vendido no se vende otra vez")
		return nil
	})
	require.NoError(t, err)
}

func TestVehicleRepo_FindFirstAvailable_Exclusiones(t *testing.T) {
	s := newStore()
	s.AddVehicle(entity.Vehicle{ID: "v2", ModelID: "10", ColorID: "3", LocationID: strPtr("L1"),
		AvailabilityStatusID: available, CreatedAt: time.Now()})
	runner := memory.NewTxRunner(s, txretry.Policy{})

	err := runner.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		q := repository.VehicleQuery{ModelID: "10", ColorID: "3", LocationID: "L1", StatusID: available}
		v, err := uow.Vehicles().FindFirstAvailable(ctx, q)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, "v1", v.ID, "v1 tiene fecha de alta cero, es el más antiguo")

		q.ExcludeIDs = []string{"v1"}
		v, err = uow.Vehicles().FindFirstAvailable(ctx, q)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, "v2", v.ID)

		q.ExcludeIDs = []string{"v1", "v2"}
		v, err = uow.Vehicles().FindFirstAvailable(ctx, q)
		require.NoError(t, err)
		assert.Nil(t, v)
		return nil
	})
	require.NoError(t, err)
}

func TestStockRepo_FilaInexistenteEsCero(t *testing.T) {
	s := newStore()
	runner := memory.NewTxRunner(s, txretry.Policy{})

	err := runner.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		st, err := uow.Stock().GetForUpdate(ctx, "p1", "L1")
		require.NoError(t, err)
		assert.Zero(t, st.Quantity)
		st.Quantity = 4
		return uow.Stock().Upsert(ctx, st)
	})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Stock("p1", "L1"))
}

func TestStore_LoadInventory(t *testing.T) {
	s := memory.NewStore()
	s.LoadInventory(&seed.Inventory{
		Locations: map[string]string{"2": "Bodega Norte", "5": "Sucursal Sur"},
		Vehicles:  []seed.Vehicle{{ID: "v1", VIN: "VIN001", ModelID: "10", ColorID: "3", LocationID: "2"}},
	})

	v, ok := s.Vehicle("v1")
	require.True(t, ok)
	require.NotNil(t, v.LocationID)
	assert.Equal(t, "2", *v.LocationID)
	assert.Equal(t, available, v.AvailabilityStatusID)
	assert.Equal(t, "VIN001", v.VIN)

	err := memory.NewTxRunner(s, txretry.Policy{}).Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		loc, err := uow.Locations().GetByID(ctx, "5")
		require.NoError(t, err)
		require.NotNil(t, loc, "las ubicaciones sin vehículos también se siembran")
		assert.Equal(t, "Sucursal Sur", loc.Name)

		found, err := uow.Vehicles().FindFirstAvailable(ctx, repository.VehicleQuery{
			ModelID: "10", ColorID: "3", LocationID: "2", StatusID: available,
		})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "v1", found.ID)
		return nil
	})
	require.NoError(t, err)
}
