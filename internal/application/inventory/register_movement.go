package inventory

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/application/dto"
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

// CreateMovementFromRequest adapta el request HTTP a CreateMovement. created_by vacío toma userID.
func (l *MovementLedger) CreateMovementFromRequest(ctx context.Context, userID string, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	input := CreateMovementInput{
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Type:           in.MovementType,
		MovementDate:   in.MovementDate,
		CreatedBy:      in.CreatedBy,
		OrderReference: in.OrderReference,
	}
	if input.CreatedBy == "" {
		input.CreatedBy = userID
	}
	for _, d := range in.Details {
		input.Details = append(input.Details, MovementDetailInput{
			VehicleID:        d.VehicleID,
			ProductID:        d.ProductID,
			Quantity:         d.Quantity,
			InspectionStatus: d.InspectionStatus,
		})
	}
	m, err := l.CreateMovement(ctx, input)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(m), nil
}

// ReceiveMovementFromRequest adapta el request HTTP a ReceiveMovement. is_received debe venir en true.
func (l *MovementLedger) ReceiveMovementFromRequest(ctx context.Context, userID, id string, in dto.ReceiveMovementRequest) (*dto.MovementResponse, error) {
	if !in.IsReceived {
		return nil, domain.Validation("movement", "is_received", "solo se admite marcar el movimiento como recibido")
	}
	receivedBy := in.ReceivedBy
	if receivedBy == "" {
		receivedBy = userID
	}
	m, err := l.ReceiveMovement(ctx, id, ReceiveInput{
		ArrivalDate:    in.ArrivalDate,
		ReceivedBy:     receivedBy,
		ReceptionNotes: in.ReceptionNotes,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(m), nil
}

// ListMovementsFromRequest arma el filtro desde query params.
func (l *MovementLedger) ListMovementsFromRequest(ctx context.Context, movementType, status, locationID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	list, err := l.ListMovements(ctx, repository.MovementFilter{
		Type:       movementType,
		Status:     status,
		LocationID: locationID,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
		Items: make([]dto.MovementResponse, 0, len(list)),
	}
	for _, m := range list {
		out.Items = append(out.Items, *ToMovementResponse(m))
	}
	return out, nil
}

// ToMovementResponse convierte la entidad al DTO de salida.
func ToMovementResponse(m *entity.Movement) *dto.MovementResponse {
	out := &dto.MovementResponse{
		ID:             m.ID,
		FromLocationID: m.FromLocationID,
		ToLocationID:   m.ToLocationID,
		MovementType:   m.Type,
		Status:         m.Status,
		Approved:       m.Approved,
		CreatedBy:      m.CreatedBy,
		OrderReference: m.OrderReference,
		MovementDate:   m.MovementDate,
		ArrivalDate:    m.ArrivalDate,
		ReceivedBy:     m.ReceivedBy,
		IsReceived:     m.IsReceived,
		ReceptionNotes: m.ReceptionNotes,
		Details:        make([]dto.MovementDetailResponse, 0, len(m.Details)),
	}
	for _, d := range m.Details {
		out.Details = append(out.Details, dto.MovementDetailResponse{
			ID:               d.ID,
			VehicleID:        d.VehicleID,
			ProductID:        d.ProductID,
			Quantity:         d.Quantity,
			InspectionStatus: d.InspectionStatus,
		})
	}
	return out
}
