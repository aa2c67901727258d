package resolver_test

import (
	"context"
	"testing"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/application/availability"
	"github.com/adanjr/inventory-management-sub000/internal/application/resolver"
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/memory"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/txretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// inTx ejecuta fn dentro de una transacción del store en memoria.
func inTx(t *testing.T, store *memory.Store, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	t.Helper()
	return memory.NewTxRunner(store, txretry.Policy{}).Run(context.Background(), fn)
}

func TestResolveOrCreateCustomer(t *testing.T) {
	store := memory.NewStore()
	store.AddCustomer(entity.Customer{ID: "c1", Name: "Cliente"})

	cases := []struct {
		name    string
		ref     *string
		draft   *resolver.CustomerDraft
		wantErr error
		wantID  string
		guest   bool
	}{
		{name: "existente", ref: strPtr("c1"), wantID: "c1"},
		{name: "inexistente", ref: strPtr("c9"), wantErr: domain.ErrNotFound},
		{name: "invitado", guest: true},
		{name: "referencia vacía es invitado", ref: strPtr(""), guest: true},
		{name: "borrador sin nombre", draft: &resolver.CustomerDraft{Name: "  "}, wantErr: domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inTx(t, store, func(ctx context.Context, uow repository.UnitOfWork) error {
				c, err := resolver.ResolveOrCreateCustomer(ctx, uow.Customers(), tc.ref, tc.draft)
				if err != nil {
					return err
				}
				if tc.guest {
					assert.Nil(t, c)
				} else {
					require.NotNil(t, c)
					assert.Equal(t, tc.wantID, c.ID)
				}
				return nil
			})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResolveOrCreateCustomer_BorradorCreaCliente(t *testing.T) {
	store := memory.NewStore()
	var id string
	err := inTx(t, store, func(ctx context.Context, uow repository.UnitOfWork) error {
		c, err := resolver.ResolveOrCreateCustomer(ctx, uow.Customers(), nil, &resolver.CustomerDraft{Name: " Ana ", Email: "ana@mail.com"})
		if err != nil {
			return err
		}
		assert.Equal(t, "Ana", c.Name)
		assert.NotEmpty(t, c.ID)
		id = c.ID
		return nil
	})
	require.NoError(t, err)

	err = inTx(t, store, func(ctx context.Context, uow repository.UnitOfWork) error {
		c, err := uow.Customers().GetByID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, c, "el cliente creado queda persistido tras el commit")
		return nil
	})
	require.NoError(t, err)
}

func TestResolveLocation(t *testing.T) {
	store := memory.NewStore()
	store.AddLocation(entity.Location{ID: "2", Name: "Norte"})

	err := inTx(t, store, func(ctx context.Context, uow repository.UnitOfWork) error {
		loc, err := resolver.ResolveLocation(ctx, uow.Locations(), "2")
		require.NoError(t, err)
		assert.Equal(t, "Norte", loc.Name)

		_, err = resolver.ResolveLocation(ctx, uow.Locations(), "99")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = resolver.ResolveLocation(ctx, uow.Locations(), "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		return nil
	})
	require.NoError(t, err)
}

func TestResolveVehicleByAttributes(t *testing.T) {
	store := memory.NewStore()
	catalog, err := availability.LoadCatalog(context.Background(), store.Statuses())
	require.NoError(t, err)
	now := time.Now()
	store.AddVehicle(entity.Vehicle{ID: "sold", ModelID: "10", ColorID: "3", LocationID: strPtr("2"),
		AvailabilityStatusID: catalog.Sold(), CreatedAt: now.Add(-time.Hour)})
	store.AddVehicle(entity.Vehicle{ID: "otra-sucursal", ModelID: "10", ColorID: "3", LocationID: strPtr("5"),
		AvailabilityStatusID: catalog.Available(), CreatedAt: now.Add(-time.Hour)})
	store.AddVehicle(entity.Vehicle{ID: "ok", ModelID: "10", ColorID: "3", LocationID: strPtr("2"),
		AvailabilityStatusID: catalog.Available(), CreatedAt: now})

	err = inTx(t, store, func(ctx context.Context, uow repository.UnitOfWork) error {
		v, err := resolver.ResolveVehicleByAttributes(ctx, uow.Vehicles(), catalog, "10", "3", "2", nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", v.ID, "solo AVAILABLE en la ubicación pedida")

		_, err = resolver.ResolveVehicleByAttributes(ctx, uow.Vehicles(), catalog, "10", "3", "2", []string{"ok"})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = resolver.ResolveVehicleByAttributes(ctx, uow.Vehicles(), catalog, "10", "99", "2", nil)
		de, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "vehicle", de.Entity)
		return nil
	})
	require.NoError(t, err)
}
