package sales

import (
	"context"
	"errors"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/application/availability"
	"github.com/adanjr/inventory-management-sub000/internal/application/dto"
	"github.com/adanjr/inventory-management-sub000/internal/application/inventory"
	"github.com/adanjr/inventory-management-sub000/internal/application/ports"
	"github.com/adanjr/inventory-management-sub000/internal/application/resolver"
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config reglas de negocio configurables de la venta.
type Config struct {
	// EnforceTotal exige total_amount == Σ(subtotal + armado) + envío.
	EnforceTotal bool
}

// CreateSaleUseCase registra una venta, su movimiento SALE y marca los vehículos como vendidos
// en una sola transacción. Si cualquier paso falla no queda nada escrito.
type CreateSaleUseCase struct {
	txRunner  TxRunner
	movements MovementRecorder
	catalog   *availability.Catalog
	publisher ports.EventPublisher
	cfg       Config
	log       *logger.Logger
	tracer    trace.Tracer
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	movements MovementRecorder,
	catalog *availability.Catalog,
	publisher ports.EventPublisher,
	cfg Config,
	log *logger.Logger,
) *CreateSaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CreateSaleUseCase{
		txRunner:  txRunner,
		movements: movements,
		catalog:   catalog,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		tracer:    otel.Tracer("sales"),
	}
}

// saleTx estado que recorre los pasos de una venta dentro de un intento de transacción.
type saleTx struct {
	userID   string
	req      dto.CreateSaleRequest
	attempt  int
	customer *entity.Customer
	location *entity.Location
	vehicles []*entity.Vehicle // alineado con req.SaleDetails; nil en líneas de producto
	sale     *entity.Sale
	movement *entity.Movement
}

// CreateSale valida el request y ejecuta los pasos de la venta dentro de una transacción.
// Ante contención la transacción se reintenta completa; un vehículo que ya no se encuentra
// en el reintento se reporta como Conflict.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "sale_create")
	defer span.End()
	span.SetAttributes(
		attribute.String("sale.location_id", in.LocationID),
		attribute.Int("sale.lines", len(in.SaleDetails)),
	)

	if err := uc.validateRequest(in); err != nil {
		recordError(span, err)
		return nil, err
	}

	var st *saleTx
	attempt := 0
	err := uc.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		attempt++
		st = &saleTx{userID: userID, req: in, attempt: attempt}
		steps := []func(context.Context, repository.UnitOfWork, *saleTx) error{
			uc.resolveCustomer,
			uc.resolveLocation,
			uc.resolveVehicles,
			uc.persistSale,
			uc.recordExitMovement,
			uc.markVehiclesSold,
			uc.consumeProductStock,
		}
		for _, step := range steps {
			if err := step(ctx, uow, st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		recordError(span, err)
		uc.log.WithTrace(ctx).Warn().Err(err).Str("location_id", in.LocationID).Int("attempts", attempt).Msg("venta revertida")
		return nil, err
	}

	span.SetAttributes(attribute.String("sale.id", st.sale.ID))
	uc.log.WithTrace(ctx).Info().Str("sale_id", st.sale.ID).Str("movement_id", st.movement.ID).
		Strs("vehicle_ids", st.sale.VehicleIDs()).Str("total", st.sale.TotalAmount.String()).Msg("venta registrada")
	resp := toSaleResponse(st.sale)
	resp.MovementID = st.movement.ID
	uc.publish(ctx, ports.EventSaleCommitted, st.sale.ID, resp)
	return resp, nil
}

// validateRequest reglas que no requieren leer la base de datos.
func (uc *CreateSaleUseCase) validateRequest(in dto.CreateSaleRequest) error {
	if in.LocationID == "" {
		return domain.Validation("sale", "location_id", "la ubicación es requerida")
	}
	if in.PaymentMethod == "" {
		return domain.Validation("sale", "payment_method", "el método de pago es requerido")
	}
	if len(in.SaleDetails) == 0 {
		return domain.Validation("sale_detail", "sale_details", "la venta requiere al menos una línea")
	}
	if in.TotalAmount.IsNegative() {
		return domain.Validation("sale", "total_amount", "el total no puede ser negativo")
	}
	if in.ShippingCost.IsNegative() {
		return domain.Validation("sale", "shipping_cost", "el costo de envío no puede ser negativo")
	}
	if in.CustomerID != nil && *in.CustomerID != "" && in.CustomerData != nil {
		return domain.Validation("sale", "customer_id", "indique customer_id o customer_data, no ambos")
	}
	sum := decimal.Zero
	for i := range in.SaleDetails {
		d := &in.SaleDetails[i]
		if d.UnitPrice.IsNegative() || d.Subtotal.IsNegative() || d.AssemblyAndConfigurationCost.IsNegative() {
			return domain.Validation("sale_detail", "subtotal", "línea %d: los importes no pueden ser negativos", i+1)
		}
		if d.IsVehicle {
			if d.ModelID == "" || d.ColorID == "" {
				return domain.Validation("sale_detail", "model_id", "línea %d: un vehículo requiere model_id y color_id", i+1)
			}
			if d.Quantity > 1 {
				return domain.Validation("sale_detail", "quantity", "línea %d: cada línea de vehículo vende una sola unidad", i+1)
			}
		} else {
			if d.ProductID == nil || *d.ProductID == "" {
				return domain.Validation("sale_detail", "product_id", "línea %d: se requiere product_id", i+1)
			}
			if d.Quantity <= 0 {
				return domain.Validation("sale_detail", "quantity", "línea %d: la cantidad debe ser mayor a 0", i+1)
			}
		}
		sum = sum.Add(d.Subtotal).Add(d.AssemblyAndConfigurationCost)
	}
	if uc.cfg.EnforceTotal {
		expected := sum.Add(in.ShippingCost)
		if !expected.Equal(in.TotalAmount) {
			return domain.Validation("sale", "total_amount", "el total %s no coincide con la suma de las líneas más envío %s",
				in.TotalAmount.String(), expected.String())
		}
	}
	return nil
}

// resolveCustomer paso 1: cliente existente, nuevo o invitado.
func (uc *CreateSaleUseCase) resolveCustomer(ctx context.Context, uow repository.UnitOfWork, st *saleTx) error {
	var draft *resolver.CustomerDraft
	if cd := st.req.CustomerData; cd != nil {
		draft = &resolver.CustomerDraft{
			Name:       cd.Name,
			DocumentID: cd.DocumentID,
			Email:      cd.Email,
			Phone:      cd.Phone,
			Address:    cd.Address,
		}
	}
	c, err := resolver.ResolveOrCreateCustomer(ctx, uow.Customers(), st.req.CustomerID, draft)
	if err != nil {
		return err
	}
	st.customer = c
	return nil
}

// resolveLocation paso 2.
func (uc *CreateSaleUseCase) resolveLocation(ctx context.Context, uow repository.UnitOfWork, st *saleTx) error {
	loc, err := resolver.ResolveLocation(ctx, uow.Locations(), st.req.LocationID)
	if err != nil {
		return err
	}
	st.location = loc
	return nil
}

// resolveVehicles paso 3: un vehículo concreto por cada línea de vehículo, sin repetir.
func (uc *CreateSaleUseCase) resolveVehicles(ctx context.Context, uow repository.UnitOfWork, st *saleTx) error {
	st.vehicles = make([]*entity.Vehicle, len(st.req.SaleDetails))
	var taken []string
	for i, d := range st.req.SaleDetails {
		if !d.IsVehicle {
			continue
		}
		v, err := resolver.ResolveVehicleByAttributes(ctx, uow.Vehicles(), uc.catalog, d.ModelID, d.ColorID, st.location.ID, taken)
		if err != nil {
			if st.attempt > 1 && errors.Is(err, domain.ErrNotFound) {
				return domain.Conflict("vehicle", "model_id",
					"el vehículo (modelo %s, color %s) fue vendido por otra transacción", d.ModelID, d.ColorID)
			}
			return err
		}
		st.vehicles[i] = v
		taken = append(taken, v.ID)
	}
	return nil
}

// persistSale paso 4: cabecera y líneas ya resueltas.
func (uc *CreateSaleUseCase) persistSale(ctx context.Context, uow repository.UnitOfWork, st *saleTx) error {
	now := time.Now()
	in := st.req
	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = st.userID
	}
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		Date:          now,
		TotalAmount:   in.TotalAmount,
		PaymentMethod: in.PaymentMethod,
		LocationID:    st.location.ID,
		Fulfillment: entity.Fulfillment{
			ShipToHome:  in.ShipToHome,
			StorePickup: in.StorePickup,
			Online:      in.IsOnline,
		},
		ShippingCost: in.ShippingCost,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if st.customer != nil {
		id := st.customer.ID
		sale.CustomerID = &id
	}
	if err := uow.Sales().Create(ctx, sale); err != nil {
		return err
	}
	for i, d := range in.SaleDetails {
		detail := &entity.SaleDetail{
			ID:                           uuid.New().String(),
			SaleID:                       sale.ID,
			Quantity:                     d.Quantity,
			UnitPrice:                    d.UnitPrice,
			Subtotal:                     d.Subtotal,
			AssemblyAndConfigurationCost: d.AssemblyAndConfigurationCost,
		}
		if v := st.vehicles[i]; v != nil {
			id := v.ID
			detail.VehicleID = &id
			detail.Quantity = 1
		} else {
			detail.ProductID = d.ProductID
		}
		if err := uow.Sales().CreateDetail(ctx, detail); err != nil {
			return err
		}
		sale.Details = append(sale.Details, detail)
	}
	st.sale = sale
	return nil
}

// recordExitMovement pasos 5 y 6: movimiento SALE con una línea inspeccionada por cada línea vendida.
func (uc *CreateSaleUseCase) recordExitMovement(ctx context.Context, uow repository.UnitOfWork, st *saleTx) error {
	from := st.sale.LocationID
	in := inventory.CreateMovementInput{
		FromLocationID: &from,
		Type:           entity.MovementTypeSale,
		CreatedBy:      st.sale.CreatedBy,
		OrderReference: st.sale.ID,
	}
	date := st.sale.Date
	in.MovementDate = &date
	for _, d := range st.sale.Details {
		in.Details = append(in.Details, inventory.MovementDetailInput{
			VehicleID:        d.VehicleID,
			ProductID:        d.ProductID,
			Quantity:         d.Quantity,
			InspectionStatus: entity.InspectionPassed,
		})
	}
	m, err := uc.movements.CreateInTx(ctx, uow, in)
	if err != nil {
		return err
	}
	st.movement = m
	return nil
}

// markVehiclesSold paso 7: escritura condicionada a AVAILABLE con verificación de filas afectadas.
func (uc *CreateSaleUseCase) markVehiclesSold(ctx context.Context, uow repository.UnitOfWork, st *saleTx) error {
	return availability.MarkSold(ctx, uow.Vehicles(), uc.catalog, st.sale.VehicleIDs())
}

// consumeProductStock descuenta las líneas de producto del stock de la ubicación de venta.
func (uc *CreateSaleUseCase) consumeProductStock(ctx context.Context, uow repository.UnitOfWork, st *saleTx) error {
	now := time.Now()
	for _, d := range st.sale.Details {
		if d.ProductID == nil {
			continue
		}
		s, err := uow.Stock().GetForUpdate(ctx, *d.ProductID, st.sale.LocationID)
		if err != nil {
			return err
		}
		if s.Quantity < d.Quantity {
			return domain.Conflict("stock", "quantity",
				"stock insuficiente del producto %s: %d < %d", *d.ProductID, s.Quantity, d.Quantity)
		}
		s.Quantity -= d.Quantity
		s.UpdatedAt = now
		if err := uow.Stock().Upsert(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (uc *CreateSaleUseCase) publish(ctx context.Context, eventType, key string, payload any) {
	if uc.publisher == nil {
		return
	}
	ev := ports.Event{Type: eventType, Key: key, OccurredAt: time.Now(), Payload: payload}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.WithTrace(ctx).Warn().Err(err).Str("event", eventType).Str("key", key).Msg("no se pudo publicar evento")
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
