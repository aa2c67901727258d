package sales

import (
	"context"

	"github.com/adanjr/inventory-management-sub000/internal/application/dto"
	"github.com/adanjr/inventory-management-sub000/internal/domain"
	"github.com/adanjr/inventory-management-sub000/internal/domain/entity"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
)

// GetSale obtiene una venta con sus líneas.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	var out *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		s, err := uow.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFound("sale", "id", "venta %s no existe", id)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(out), nil
}

// UpdateSale cambia método de pago y banderas de entrega. No toca inventario.
func (uc *CreateSaleUseCase) UpdateSale(ctx context.Context, id string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	if in.PaymentMethod != nil && *in.PaymentMethod == "" {
		return nil, domain.Validation("sale", "payment_method", "el método de pago no puede quedar vacío")
	}
	var out *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		s, err := uow.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFound("sale", "id", "venta %s no existe", id)
		}
		if in.PaymentMethod != nil {
			s.PaymentMethod = *in.PaymentMethod
		}
		if in.ShipToHome != nil {
			s.Fulfillment.ShipToHome = *in.ShipToHome
		}
		if in.StorePickup != nil {
			s.Fulfillment.StorePickup = *in.StorePickup
		}
		if in.IsOnline != nil {
			s.Fulfillment.Online = *in.IsOnline
		}
		if err := uow.Sales().Update(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(out), nil
}

// DeleteSale elimina la venta y sus líneas. El movimiento SALE permanece en el libro
// y los vehículos siguen vendidos.
func (uc *CreateSaleUseCase) DeleteSale(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		ok, err := uow.Sales().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("sale", "id", "venta %s no existe", id)
		}
		uc.log.Info().Str("sale_id", id).Msg("venta eliminada")
		return nil
	})
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:            s.ID,
		Date:          s.Date,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: s.PaymentMethod,
		CustomerID:    s.CustomerID,
		LocationID:    s.LocationID,
		ShipToHome:    s.Fulfillment.ShipToHome,
		StorePickup:   s.Fulfillment.StorePickup,
		IsOnline:      s.Fulfillment.Online,
		ShippingCost:  s.ShippingCost,
		CreatedBy:     s.CreatedBy,
		Details:       make([]dto.SaleDetailResponse, 0, len(s.Details)),
	}
	for _, d := range s.Details {
		out.Details = append(out.Details, dto.SaleDetailResponse{
			ID:                           d.ID,
			ProductID:                    d.ProductID,
			VehicleID:                    d.VehicleID,
			Quantity:                     d.Quantity,
			UnitPrice:                    d.UnitPrice,
			Subtotal:                     d.Subtotal,
			AssemblyAndConfigurationCost: d.AssemblyAndConfigurationCost,
		})
	}
	return out
}
