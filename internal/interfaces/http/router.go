package http

import (
	"github.com/adanjr/inventory-management-sub000/internal/application/inventory"
	"github.com/adanjr/inventory-management-sub000/internal/application/sales"
	"github.com/adanjr/inventory-management-sub000/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.MovementLedger
	Sales     *sales.CreateSaleUseCase
	JWTSecret string
	JWTIssuer string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Movements: admin y bodeguero
	movements := protected.Group("/movements", RequireRole(RoleAdmin, RoleBodeguero))
	movementHandler := NewMovementHandler(deps.Ledger, log)
	movements.Post("/", movementHandler.Create)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id", movementHandler.Receive)
	movements.Post("/:id/approve", movementHandler.Approve)

	// Sales: admin y vendedor
	salesGroup := protected.Group("/sales", RequireRole(RoleAdmin, RoleVendedor))
	saleHandler := NewSaleHandler(deps.Sales, log)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Delete("/:id", saleHandler.Delete)
}
