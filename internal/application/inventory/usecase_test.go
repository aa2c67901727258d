package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/application/availability"
	"github.com/adanjr/inventory-management-sub000/internal/application/dto"
	"github.com/adanjr/inventory-management-sub000/internal/application/inventory"
	"github.com/adanjr/inventory-management-sub000/internal/application/ports"
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/events"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/memory"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/txretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	locA    = "2"
	locB    = "5"
	product = "aceite-01"
)

type fixture struct {
	store    *memory.Store
	catalog  *availability.Catalog
	recorder *events.Recorder
	ledger   *inventory.MovementLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddLocation(entity.Location{ID: locA, Name: "Sucursal Norte"})
	store.AddLocation(entity.Location{ID: locB, Name: "Sucursal Sur"})
	store.AddProduct(entity.Product{ID: product, SKU: "ACE-01", Name: "Aceite"})
	store.SetStock(entity.Stock{ProductID: product, LocationID: locA, Quantity: 8})

	catalog, err := availability.LoadCatalog(context.Background(), store.Statuses())
	require.NoError(t, err)

	recorder := &events.Recorder{}
	ledger := inventory.NewMovementLedger(memory.NewTxRunner(store, txretry.DefaultPolicy()), catalog, recorder, nil)
	return &fixture{store: store, catalog: catalog, recorder: recorder, ledger: ledger}
}

func (f *fixture) addVehicle(id string, location *string) {
	f.store.AddVehicle(entity.Vehicle{
		ID:                   id,
		ModelID:              "10",
		ColorID:              "3",
		LocationID:           location,
		AvailabilityStatusID: f.catalog.Available(),
		CreatedAt:            time.Now(),
	})
}

func strPtr(s string) *string { return &s }

func transfer(vehicleIDs ...string) inventory.CreateMovementInput {
	in := inventory.CreateMovementInput{
		FromLocationID: strPtr(locA),
		ToLocationID:   strPtr(locB),
		Type:           entity.MovementTypeTransfer,
		CreatedBy:      "user1",
	}
	for _, id := range vehicleIDs {
		in.Details = append(in.Details, inventory.MovementDetailInput{VehicleID: strPtr(id)})
	}
	return in
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslado y recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_Recepcion_ReubicaVehiculos(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	f.addVehicle("v2", strPtr(locA))
	ctx := context.Background()

	m, err := f.ledger.CreateMovement(ctx, transfer("v1", "v2"))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusInTransit, m.Status)
	assert.False(t, m.IsReceived)
	require.Len(t, m.Details, 2)
	for _, d := range m.Details {
		assert.Equal(t, 1, d.Quantity, "una línea de vehículo vale una unidad")
		assert.Equal(t, entity.InspectionPending, d.InspectionStatus)
	}

	// En tránsito los vehículos quedan reservados y sin ubicación.
	v, _ := f.store.Vehicle("v1")
	assert.Nil(t, v.LocationID)
	assert.Equal(t, f.catalog.InTransit(), v.AvailabilityStatusID)

	_, err = f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)

	today := time.Now().Truncate(24 * time.Hour)
	received, err := f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{ArrivalDate: &today, ReceivedBy: "user1"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCompleted, received.Status)
	assert.True(t, received.IsReceived)
	assert.Equal(t, "user1", received.ReceivedBy)
	require.NotNil(t, received.ArrivalDate)
	assert.True(t, received.ArrivalDate.Equal(today))

	for _, id := range []string{"v1", "v2"} {
		v, _ := f.store.Vehicle(id)
		require.NotNil(t, v.LocationID)
		assert.Equal(t, locB, *v.LocationID, "el vehículo %s debe quedar en destino", id)
		assert.Equal(t, f.catalog.Available(), v.AvailabilityStatusID)
	}

	stored, err := f.ledger.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCompleted, stored.Status)
	assert.True(t, stored.IsReceived)
}

func TestRecepcion_DosVeces_SegundaEsConflict(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	ctx := context.Background()

	m, err := f.ledger.CreateMovement(ctx, transfer("v1"))
	require.NoError(t, err)
	_, err = f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)
	_, err = f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{ReceivedBy: "user1"})
	require.NoError(t, err)

	_, err = f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{ReceivedBy: "user2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := f.ledger.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "user1", stored.ReceivedBy, "la segunda recepción no debe escribir nada")

	var received int
	for _, ev := range f.recorder.Events() {
		if ev.Type == ports.EventMovementReceived {
			received++
		}
	}
	assert.Equal(t, 1, received)
}

func TestRecepcion_SinAprobar_Conflict(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	ctx := context.Background()

	m, err := f.ledger.CreateMovement(ctx, transfer("v1"))
	require.NoError(t, err)

	_, err = f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "approved", de.Field)

	v, _ := f.store.Vehicle("v1")
	assert.Nil(t, v.LocationID)
	assert.Equal(t, f.catalog.InTransit(), v.AvailabilityStatusID, "sigue reservado hasta recibirse")
}

func TestRecepcion_MovimientoInexistente_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.ReceiveMovement(context.Background(), "no-existe", inventory.ReceiveInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.ApproveMovement(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAprobar_DosVeces_NoEsError(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	ctx := context.Background()

	m, err := f.ledger.CreateMovement(ctx, transfer("v1"))
	require.NoError(t, err)
	first, err := f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)
	second, err := f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, first.Approved)
	assert.True(t, second.Approved)
}

func TestTransfer_VehiculoEnTransito_NoAdmiteOtroMovimiento(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	ctx := context.Background()

	first, err := f.ledger.CreateMovement(ctx, transfer("v1"))
	require.NoError(t, err)

	_, err = f.ledger.CreateMovement(ctx, transfer("v1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict, "un vehículo en tránsito no entra en un segundo traslado")

	_, err = f.ledger.CreateMovement(ctx, inventory.CreateMovementInput{
		FromLocationID: strPtr(locA),
		Type:           entity.MovementTypeExit,
		Details:        []inventory.MovementDetailInput{{VehicleID: strPtr("v1")}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict, "ni en una salida")

	list, err := f.ledger.ListMovements(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "los intentos rechazados no dejan movimientos")

	_, err = f.ledger.ApproveMovement(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.ledger.ReceiveMovement(ctx, first.ID, inventory.ReceiveInput{})
	require.NoError(t, err, "el primer traslado sigue pudiendo cerrarse")

	v, _ := f.store.Vehicle("v1")
	assert.Equal(t, locB, *v.LocationID)
}

func TestCreateMovement_Fallido_NoReservaVehiculos(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))

	in := transfer("v1")
	in.Details = append(in.Details, inventory.MovementDetailInput{ProductID: strPtr("no-existe"), Quantity: 1})
	_, err := f.ledger.CreateMovement(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrNotFound)

	v, _ := f.store.Vehicle("v1")
	require.NotNil(t, v.LocationID)
	assert.Equal(t, locA, *v.LocationID)
	assert.Equal(t, f.catalog.Available(), v.AvailabilityStatusID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas, salidas y stock de productos
// ──────────────────────────────────────────────────────────────────────────────

func TestEntry_VehiculoSinUbicacion_QuedaEnDestino(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", nil)
	ctx := context.Background()

	m, err := f.ledger.CreateMovement(ctx, inventory.CreateMovementInput{
		ToLocationID: strPtr(locB),
		Type:         entity.MovementTypeEntry,
		Details:      []inventory.MovementDetailInput{{VehicleID: strPtr("v1"), InspectionStatus: entity.InspectionPassed}},
	})
	require.NoError(t, err)
	_, err = f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)
	_, err = f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{})
	require.NoError(t, err)

	v, _ := f.store.Vehicle("v1")
	require.NotNil(t, v.LocationID)
	assert.Equal(t, locB, *v.LocationID)
}

func TestEntry_VehiculoYaUbicado_Conflict(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))

	_, err := f.ledger.CreateMovement(context.Background(), inventory.CreateMovementInput{
		ToLocationID: strPtr(locB),
		Type:         entity.MovementTypeEntry,
		Details:      []inventory.MovementDetailInput{{VehicleID: strPtr("v1")}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExit_VehiculoSaleDelSistema(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	ctx := context.Background()

	m, err := f.ledger.CreateMovement(ctx, inventory.CreateMovementInput{
		FromLocationID: strPtr(locA),
		Type:           entity.MovementTypeExit,
		Details:        []inventory.MovementDetailInput{{VehicleID: strPtr("v1")}},
	})
	require.NoError(t, err)
	_, err = f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)
	_, err = f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{})
	require.NoError(t, err)

	v, _ := f.store.Vehicle("v1")
	assert.Nil(t, v.LocationID)
	assert.Equal(t, f.catalog.Available(), v.AvailabilityStatusID, "una salida no vende el vehículo")
}

func TestTransfer_Productos_AjustaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := transfer()
	in.Details = []inventory.MovementDetailInput{{ProductID: strPtr(product), Quantity: 5}}
	m, err := f.ledger.CreateMovement(ctx, in)
	require.NoError(t, err)
	_, err = f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)
	_, err = f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, f.store.Stock(product, locA))
	assert.Equal(t, 5, f.store.Stock(product, locB))
}

func TestTransfer_StockInsuficiente_RollbackCompleto(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	ctx := context.Background()

	in := transfer("v1")
	in.Details = append(in.Details, inventory.MovementDetailInput{ProductID: strPtr(product), Quantity: 9})
	m, err := f.ledger.CreateMovement(ctx, in)
	require.NoError(t, err)
	_, err = f.ledger.ApproveMovement(ctx, m.ID)
	require.NoError(t, err)

	_, err = f.ledger.ReceiveMovement(ctx, m.ID, inventory.ReceiveInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	v, _ := f.store.Vehicle("v1")
	assert.Nil(t, v.LocationID, "la reubicación del vehículo debe revertirse")
	assert.Equal(t, f.catalog.InTransit(), v.AvailabilityStatusID)
	assert.Equal(t, 8, f.store.Stock(product, locA))
	assert.Zero(t, f.store.Stock(product, locB))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_Validacion(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))

	cases := []struct {
		name  string
		in    inventory.CreateMovementInput
		field string
	}{
		{"tipo desconocido", inventory.CreateMovementInput{Type: "LOAN"}, "movement_type"},
		{"SALE directo", inventory.CreateMovementInput{Type: entity.MovementTypeSale, FromLocationID: strPtr(locA)}, "movement_type"},
		{"entry con origen", inventory.CreateMovementInput{
			Type: entity.MovementTypeEntry, FromLocationID: strPtr(locA), ToLocationID: strPtr(locB),
			Details: []inventory.MovementDetailInput{{VehicleID: strPtr("v1")}},
		}, "from_location_id"},
		{"transfer sin destino", inventory.CreateMovementInput{
			Type: entity.MovementTypeTransfer, FromLocationID: strPtr(locA),
			Details: []inventory.MovementDetailInput{{VehicleID: strPtr("v1")}},
		}, "to_location_id"},
		{"sin líneas", transfer(), "details"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.CreateMovement(context.Background(), tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			de, ok := domain.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, de.Field)
		})
	}
}

func TestCreateMovement_LineaConVehiculoYProducto_Invalida(t *testing.T) {
	f := newFixture(t)
	in := transfer()
	in.Details = []inventory.MovementDetailInput{{VehicleID: strPtr("v1"), ProductID: strPtr(product), Quantity: 1}}
	_, err := f.ledger.CreateMovement(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateMovement_ReferenciasInexistentes_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.CreateMovement(context.Background(), transfer("fantasma"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in := transfer()
	in.ToLocationID = strPtr("99")
	in.Details = []inventory.MovementDetailInput{{ProductID: strPtr(product), Quantity: 1}}
	_, err = f.ledger.CreateMovement(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adaptadores de request y listado
// ──────────────────────────────────────────────────────────────────────────────

func TestFromRequest_CreatedByYReceivedByPorDefecto(t *testing.T) {
	f := newFixture(t)
	f.addVehicle("v1", strPtr(locA))
	ctx := context.Background()

	created, err := f.ledger.CreateMovementFromRequest(ctx, "bodeguero-1", dto.CreateMovementRequest{
		FromLocationID: strPtr(locA),
		ToLocationID:   strPtr(locB),
		MovementType:   entity.MovementTypeTransfer,
		Details:        []dto.MovementDetailRequest{{VehicleID: strPtr("v1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "bodeguero-1", created.CreatedBy)

	_, err = f.ledger.ReceiveMovementFromRequest(ctx, "bodeguero-1", created.ID, dto.ReceiveMovementRequest{IsReceived: false})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApproveMovement(ctx, created.ID)
	require.NoError(t, err)
	received, err := f.ledger.ReceiveMovementFromRequest(ctx, "bodeguero-2", created.ID, dto.ReceiveMovementRequest{IsReceived: true})
	require.NoError(t, err)
	assert.Equal(t, "bodeguero-2", received.ReceivedBy)
}

func TestListMovements_FiltrosYPaginacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		f.addVehicle(id, strPtr(locA))
		_, err := f.ledger.CreateMovement(ctx, transfer(id))
		require.NoError(t, err)
	}

	page, err := f.ledger.ListMovementsFromRequest(ctx, entity.MovementTypeTransfer, "", locB, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page.Limit)

	rest, err := f.ledger.ListMovementsFromRequest(ctx, "", entity.MovementStatusInTransit, "", dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)

	none, err := f.ledger.ListMovementsFromRequest(ctx, entity.MovementTypeEntry, "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
	assert.Equal(t, 20, none.Page.Limit)

	_, err = f.ledger.ListMovementsFromRequest(ctx, "LOAN", "", "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
