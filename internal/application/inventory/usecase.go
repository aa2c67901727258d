package inventory

import (
	"context"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/application/availability"
	"github.com/adanjr/inventory-management-sub000/internal/application/ports"
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MovementLedger registra movimientos de vehículos y productos entre ubicaciones
// (ENTRY, EXIT, TRANSFER, SALE) y aplica sus cambios de ubicación al recibirlos.
// Ciclo de vida: IN_TRANSIT -> COMPLETED (recepción). SALE nace COMPLETED.
// Mientras el movimiento está en tránsito sus vehículos quedan IN_TRANSIT y sin ubicación.
type MovementLedger struct {
	txRunner  TxRunner
	catalog   *availability.Catalog
	publisher ports.EventPublisher
	log       *logger.Logger
	tracer    trace.Tracer
}

// NewMovementLedger construye el caso de uso.
func NewMovementLedger(
	txRunner TxRunner,
	catalog *availability.Catalog,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *MovementLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementLedger{
		txRunner:  txRunner,
		catalog:   catalog,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer("inventory"),
	}
}

// CreateMovementInput entrada para registrar un movimiento.
// FromLocationID se omite en ENTRY; ToLocationID se omite en EXIT y SALE.
type CreateMovementInput struct {
	FromLocationID *string
	ToLocationID   *string
	Type           string
	MovementDate   *time.Time
	CreatedBy      string
	OrderReference string
	Details        []MovementDetailInput
}

// MovementDetailInput una línea: VehicleID (cantidad 1) o ProductID con Quantity > 0.
type MovementDetailInput struct {
	VehicleID        *string
	ProductID        *string
	Quantity         int
	InspectionStatus string
}

// ReceiveInput datos de llegada. ArrivalDate nil = ahora.
type ReceiveInput struct {
	ArrivalDate    *time.Time
	ReceivedBy     string
	ReceptionNotes string
}

// CreateMovement registra un movimiento en su propia transacción.
// SALE queda reservado para el orquestador de ventas.
func (l *MovementLedger) CreateMovement(ctx context.Context, in CreateMovementInput) (*entity.Movement, error) {
	ctx, span := l.tracer.Start(ctx, "movement_create")
	defer span.End()
	span.SetAttributes(attribute.String("movement.type", in.Type))

	if in.Type == entity.MovementTypeSale {
		err := domain.Validation("movement", "movement_type", "los movimientos SALE solo se generan desde una venta")
		recordError(span, err)
		return nil, err
	}
	if err := validateMovementInput(in); err != nil {
		recordError(span, err)
		return nil, err
	}

	var created *entity.Movement
	err := l.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		m, err := l.CreateInTx(ctx, uow, in)
		if err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		recordError(span, err)
		l.log.WithTrace(ctx).Warn().Err(err).Str("movement_type", in.Type).Msg("movimiento no registrado")
		return nil, err
	}
	span.SetAttributes(attribute.String("movement.id", created.ID))
	l.log.WithTrace(ctx).Info().Str("movement_id", created.ID).Str("movement_type", created.Type).
		Strs("vehicle_ids", created.VehicleIDs()).Msg("movimiento registrado")
	l.publish(ctx, ports.EventMovementCreated, created.ID, created)
	return created, nil
}

// CreateInTx valida y persiste el movimiento con sus líneas usando los repositorios de uow
// (misma transacción del llamador). No hace commit ni reintenta.
func (l *MovementLedger) CreateInTx(ctx context.Context, uow repository.UnitOfWork, in CreateMovementInput) (*entity.Movement, error) {
	if err := validateMovementInput(in); err != nil {
		return nil, err
	}
	if err := checkLocations(ctx, uow.Locations(), in); err != nil {
		return nil, err
	}
	if err := l.checkVehicles(ctx, uow.Vehicles(), in); err != nil {
		return nil, err
	}
	if err := checkProducts(ctx, uow.Products(), in); err != nil {
		return nil, err
	}

	now := time.Now()
	m := &entity.Movement{
		ID:             uuid.New().String(),
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Type:           in.Type,
		Status:         entity.MovementStatusInTransit,
		CreatedBy:      in.CreatedBy,
		OrderReference: in.OrderReference,
		MovementDate:   now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.MovementDate != nil {
		m.MovementDate = *in.MovementDate
	}
	if in.Type == entity.MovementTypeSale {
		m.Status = entity.MovementStatusCompleted
		m.Approved = true
	}
	if err := uow.Movements().Create(ctx, m); err != nil {
		return nil, err
	}
	for _, d := range in.Details {
		detail := &entity.MovementDetail{
			ID:               uuid.New().String(),
			MovementID:       m.ID,
			VehicleID:        d.VehicleID,
			ProductID:        d.ProductID,
			Quantity:         d.Quantity,
			InspectionStatus: d.InspectionStatus,
		}
		if detail.VehicleID != nil {
			detail.Quantity = 1
		}
		if detail.InspectionStatus == "" {
			detail.InspectionStatus = entity.InspectionPending
		}
		if err := uow.Movements().CreateDetail(ctx, detail); err != nil {
			return nil, err
		}
		m.Details = append(m.Details, detail)
	}
	if in.Type != entity.MovementTypeSale {
		if err := availability.MarkInTransit(ctx, uow.Vehicles(), l.catalog, m.VehicleIDs(), in.FromLocationID); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ApproveMovement marca el movimiento como aprobado. Aprobar dos veces no es error.
func (l *MovementLedger) ApproveMovement(ctx context.Context, id string) (*entity.Movement, error) {
	ctx, span := l.tracer.Start(ctx, "movement_approve")
	defer span.End()
	span.SetAttributes(attribute.String("movement.id", id))

	var out *entity.Movement
	err := l.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		m, err := uow.Movements().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFound("movement", "id", "movimiento %s no existe", id)
		}
		if !m.Approved {
			if err := uow.Movements().SetApproved(ctx, id); err != nil {
				return err
			}
			m.Approved = true
		}
		out = m
		return nil
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	l.log.WithTrace(ctx).Info().Str("movement_id", id).Msg("movimiento aprobado")
	return out, nil
}

// ReceiveMovement cierra el tránsito: bloquea el movimiento, reubica sus vehículos en el destino,
// aplica las cantidades de producto y lo deja COMPLETED. Todo o nada.
// Un movimiento ya recibido, sin aprobar o de tipo SALE devuelve Conflict.
func (l *MovementLedger) ReceiveMovement(ctx context.Context, id string, in ReceiveInput) (*entity.Movement, error) {
	ctx, span := l.tracer.Start(ctx, "movement_receive")
	defer span.End()
	span.SetAttributes(attribute.String("movement.id", id))

	arrival := time.Now()
	if in.ArrivalDate != nil {
		arrival = *in.ArrivalDate
	}

	var out *entity.Movement
	err := l.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		m, err := uow.Movements().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFound("movement", "id", "movimiento %s no existe", id)
		}
		switch {
		case m.Type == entity.MovementTypeSale:
			return domain.Conflict("movement", "movement_type", "los movimientos de venta no se reciben")
		case m.IsReceived:
			return domain.Conflict("movement", "is_received", "el movimiento %s ya fue recibido", id)
		case !m.Approved:
			return domain.Conflict("movement", "approved", "el movimiento %s debe aprobarse antes de recibirse", id)
		}

		if err := availability.Relocate(ctx, uow.Vehicles(), l.catalog, m.VehicleIDs(), m.ToLocationID); err != nil {
			return err
		}
		if err := applyStockDeltas(ctx, uow.Stock(), m); err != nil {
			return err
		}
		reception := repository.Reception{ArrivalDate: arrival, ReceivedBy: in.ReceivedBy, ReceptionNotes: in.ReceptionNotes}
		if err := uow.Movements().MarkReceived(ctx, id, reception); err != nil {
			return err
		}
		m.Status = entity.MovementStatusCompleted
		m.IsReceived = true
		m.ArrivalDate = &arrival
		m.ReceivedBy = in.ReceivedBy
		m.ReceptionNotes = in.ReceptionNotes
		out = m
		return nil
	})
	if err != nil {
		recordError(span, err)
		l.log.WithTrace(ctx).Warn().Err(err).Str("movement_id", id).Msg("recepción revertida")
		return nil, err
	}
	l.log.WithTrace(ctx).Info().Str("movement_id", id).Strs("vehicle_ids", out.VehicleIDs()).Msg("movimiento recibido")
	l.publish(ctx, ports.EventMovementReceived, id, out)
	return out, nil
}

// GetMovement obtiene un movimiento con sus líneas.
func (l *MovementLedger) GetMovement(ctx context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := l.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		m, err := uow.Movements().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFound("movement", "id", "movimiento %s no existe", id)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListMovements lista movimientos según filtro.
func (l *MovementLedger) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Type != "" && !entity.IsValidMovementType(f.Type) {
		return nil, domain.Validation("movement", "movement_type", "tipo %q inválido", f.Type)
	}
	if f.Status != "" && f.Status != entity.MovementStatusInTransit && f.Status != entity.MovementStatusCompleted {
		return nil, domain.Validation("movement", "status", "estado %q inválido", f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var list []*entity.Movement
	err := l.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		list, err = uow.Movements().List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// checkVehicles exige que existan y, fuera de SALE, que estén donde el movimiento dice:
// en ENTRY sin ubicación; en el resto en la ubicación de origen. Todos deben estar AVAILABLE.
func (l *MovementLedger) checkVehicles(ctx context.Context, vehicles repository.VehicleRepository, in CreateMovementInput) error {
	var ids []string
	for _, d := range in.Details {
		if d.VehicleID != nil {
			ids = append(ids, *d.VehicleID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	list, err := vehicles.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*entity.Vehicle, len(list))
	for _, v := range list {
		byID[v.ID] = v
	}
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			return domain.NotFound("vehicle", "vehicle_id", "vehículo %s no existe", id)
		}
		if in.Type == entity.MovementTypeSale {
			continue
		}
		if v.AvailabilityStatusID != l.catalog.Available() {
			return domain.Conflict("vehicle", "availability_status", "el vehículo %s no está disponible", id)
		}
		if in.Type == entity.MovementTypeEntry {
			if v.LocationID != nil {
				return domain.Conflict("vehicle", "location_id", "el vehículo %s ya está en la ubicación %s", id, *v.LocationID)
			}
			continue
		}
		if v.LocationID == nil || *v.LocationID != *in.FromLocationID {
			return domain.Conflict("vehicle", "location_id", "el vehículo %s no está en la ubicación de origen", id)
		}
	}
	return nil
}

func checkLocations(ctx context.Context, locations repository.LocationRepository, in CreateMovementInput) error {
	for _, ref := range []struct {
		id    *string
		field string
	}{{in.FromLocationID, "from_location_id"}, {in.ToLocationID, "to_location_id"}} {
		if ref.id == nil {
			continue
		}
		loc, err := locations.GetByID(ctx, *ref.id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.NotFound("location", ref.field, "ubicación %s no existe", *ref.id)
		}
	}
	return nil
}

func checkProducts(ctx context.Context, products repository.ProductRepository, in CreateMovementInput) error {
	seen := make(map[string]bool)
	for _, d := range in.Details {
		if d.ProductID == nil || seen[*d.ProductID] {
			continue
		}
		seen[*d.ProductID] = true
		p, err := products.GetByID(ctx, *d.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("product", "product_id", "producto %s no existe", *d.ProductID)
		}
	}
	return nil
}

// applyStockDeltas descuenta las líneas de producto en origen y las suma en destino,
// bloqueando cada fila de stock (SELECT FOR UPDATE).
func applyStockDeltas(ctx context.Context, stock repository.StockRepository, m *entity.Movement) error {
	now := time.Now()
	for _, d := range m.Details {
		if d.ProductID == nil {
			continue
		}
		if m.FromLocationID != nil {
			s, err := stock.GetForUpdate(ctx, *d.ProductID, *m.FromLocationID)
			if err != nil {
				return err
			}
			if s.Quantity < d.Quantity {
				return domain.Conflict("stock", "quantity",
					"stock insuficiente del producto %s en origen: %d < %d", *d.ProductID, s.Quantity, d.Quantity)
			}
			s.Quantity -= d.Quantity
			s.UpdatedAt = now
			if err := stock.Upsert(ctx, s); err != nil {
				return err
			}
		}
		if m.ToLocationID != nil {
			s, err := stock.GetForUpdate(ctx, *d.ProductID, *m.ToLocationID)
			if err != nil {
				return err
			}
			s.Quantity += d.Quantity
			s.UpdatedAt = now
			if err := stock.Upsert(ctx, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *MovementLedger) publish(ctx context.Context, eventType, key string, payload any) {
	if l.publisher == nil {
		return
	}
	ev := ports.Event{Type: eventType, Key: key, OccurredAt: time.Now(), Payload: payload}
	if err := l.publisher.Publish(ctx, ev); err != nil {
		l.log.WithTrace(ctx).Warn().Err(err).Str("event", eventType).Str("key", key).Msg("no se pudo publicar evento")
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
