package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adanjr/inventory-management-sub000/internal/application/availability"
	"github.com/adanjr/inventory-management-sub000/internal/application/dto"
	"github.com/adanjr/inventory-management-sub000/internal/application/inventory"
	"github.com/adanjr/inventory-management-sub000/internal/application/sales"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/events"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/memory"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/txretry"
	apphttp "github.com/adanjr/inventory-management-sub000/internal/interfaces/http"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app     *fiber.App
	store   *memory.Store
	catalog *availability.Catalog
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	store.AddLocation(entity.Location{ID: "2", Name: "Norte"})
	store.AddLocation(entity.Location{ID: "5", Name: "Sur"})
	catalog, err := availability.LoadCatalog(context.Background(), store.Statuses())
	require.NoError(t, err)
	for _, id := range []string{"v1", "v2"} {
		loc := "2"
		store.AddVehicle(entity.Vehicle{ID: id, ModelID: "10", ColorID: "3", LocationID: &loc, AvailabilityStatusID: catalog.Available()})
	}

	runner := memory.NewTxRunner(store, txretry.DefaultPolicy())
	ledger := inventory.NewMovementLedger(runner, catalog, events.NopPublisher{}, nil)
	uc := sales.NewCreateSaleUseCase(runner, ledger, catalog, events.NopPublisher{}, sales.Config{EnforceTotal: true}, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Ledger: ledger, Sales: uc, JWTSecret: testJWTSecret})
	return &apiFixture{app: app, store: store, catalog: catalog}
}

func (f *apiFixture) call(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, out
}

func saleBody(color string) map[string]any {
	return map[string]any{
		"total_amount":   "50000",
		"payment_method": "cash",
		"location_id":    "2",
		"store_pickup":   true,
		"sale_details": []map[string]any{{
			"model_id":   "10",
			"color_id":   color,
			"is_vehicle": true,
			"quantity":   1,
			"unit_price": "50000",
			"subtotal":   "50000",
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSalesAPI_Crear_201(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/sales", "vendedor", saleBody("3"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(body, &sale))
	require.Len(t, sale.Details, 1)
	assert.NotEmpty(t, sale.MovementID)
	assert.Equal(t, testUserID, sale.CreatedBy, "created_by toma el usuario del token")

	resp, body = f.call(t, http.MethodGet, "/api/sales/"+sale.ID, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestSalesAPI_SinVehiculo_404ConEntidad(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/sales", "vendedor", saleBody("99"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "NOT_FOUND", e.Code)
	assert.Equal(t, "vehicle", e.Entity)
	assert.Equal(t, "model_id", e.Field)
}

func TestSalesAPI_Validacion_400(t *testing.T) {
	f := newAPI(t)
	b := saleBody("3")
	delete(b, "payment_method")
	resp, body := f.call(t, http.MethodPost, "/api/sales", "vendedor", b)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "payment_method", e.Field)
}

func TestSalesAPI_CuerpoInvalido_400(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "vendedor"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSalesAPI_SegundaVentaSinStock_404(t *testing.T) {
	f := newAPI(t)
	for i := 0; i < 2; i++ {
		resp, body := f.call(t, http.MethodPost, "/api/sales", "vendedor", saleBody("3"))
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}
	resp, _ := f.call(t, http.MethodPost, "/api/sales", "vendedor", saleBody("3"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sin vehículos disponibles la resolución falla")
}

func TestSalesAPI_BodegueroNoVende_403(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodPost, "/api/sales", "bodeguero", saleBody("3"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSalesAPI_ActualizarYBorrar(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/sales", "admin", saleBody("3"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(body, &sale))

	resp, body = f.call(t, http.MethodPut, "/api/sales/"+sale.ID, "admin", map[string]any{"payment_method": "card"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated dto.SaleResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "card", updated.PaymentMethod)

	resp, _ = f.call(t, http.MethodDelete, "/api/sales/"+sale.ID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.call(t, http.MethodGet, "/api/sales/"+sale.ID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementsAPI_TrasladoCompleto(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/movements", "bodeguero", map[string]any{
		"from_location_id": "2",
		"to_location_id":   "5",
		"movement_type":    "TRANSFER",
		"details":          []map[string]any{{"vehicle_id": "v1"}, {"vehicle_id": "v2"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, entity.MovementStatusInTransit, m.Status)
	assert.Len(t, m.Details, 2)

	// Los vehículos en tránsito no entran en otro movimiento.
	resp, _ = f.call(t, http.MethodPost, "/api/movements", "bodeguero", map[string]any{
		"from_location_id": "2",
		"movement_type":    "EXIT",
		"details":          []map[string]any{{"vehicle_id": "v1"}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Sin aprobar la recepción es un conflicto.
	resp, _ = f.call(t, http.MethodPut, "/api/movements/"+m.ID, "bodeguero", map[string]any{"is_received": true})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = f.call(t, http.MethodPost, "/api/movements/"+m.ID+"/approve", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.call(t, http.MethodPut, "/api/movements/"+m.ID, "bodeguero", map[string]any{
		"is_received":     true,
		"received_by":     "user1",
		"reception_notes": "sin novedad",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var received dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &received))
	assert.Equal(t, entity.MovementStatusCompleted, received.Status)
	assert.True(t, received.IsReceived)
	assert.Equal(t, "user1", received.ReceivedBy)

	for _, id := range []string{"v1", "v2"} {
		v, _ := f.store.Vehicle(id)
		assert.Equal(t, "5", *v.LocationID)
	}

	resp, body = f.call(t, http.MethodPut, "/api/movements/"+m.ID, "bodeguero", map[string]any{"is_received": true})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "CONFLICT", e.Code)
	assert.Equal(t, "movement", e.Entity)
}

func TestMovementsAPI_ListarYObtener(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/movements", "admin", map[string]any{
		"from_location_id": "2",
		"movement_type":    "EXIT",
		"details":          []map[string]any{{"vehicle_id": "v1"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &m))

	resp, body = f.call(t, http.MethodGet, "/api/movements?type=EXIT&location_id=2&limit=5", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var list dto.MovementListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, m.ID, list.Items[0].ID)
	assert.Equal(t, 5, list.Page.Limit)

	resp, _ = f.call(t, http.MethodGet, "/api/movements/"+m.ID, "bodeguero", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.call(t, http.MethodGet, "/api/movements/no-existe", "bodeguero", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = f.call(t, http.MethodGet, "/api/movements?limit=500", "bodeguero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit por encima del máximo")
}

func TestMovementsAPI_Validaciones(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/movements", "bodeguero", map[string]any{
		"to_location_id": "5",
		"movement_type":  "SALE",
		"details":        []map[string]any{{"vehicle_id": "v1"}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "movement_type", e.Field, "SALE no se crea desde la API de movimientos")

	resp, _ = f.call(t, http.MethodPost, "/api/movements", "bodeguero", map[string]any{
		"from_location_id": "2",
		"to_location_id":   "5",
		"movement_type":    "TRANSFER",
		"details":          []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.call(t, http.MethodPost, "/api/movements", "bodeguero", map[string]any{
		"from_location_id": "2",
		"to_location_id":   "99",
		"movement_type":    "TRANSFER",
		"details":          []map[string]any{{"vehicle_id": "v1"}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMovementsAPI_VendedorNoMueve_403(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodGet, "/api/movements", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = f.call(t, http.MethodGet, "/api/movements", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
