package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/application/usecase"
	"github.com/jhoicas/obrica-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine     *inventory.Engine
	MaterialUC *usecase.MaterialUseCase
	Kardex     *inventory.KardexUseCase
	Location   *time.Location // zona para interpretar el campo fecha
	Logger     zerolog.Logger
	JWTSecret  string
}

// Router registra las rutas de la API. Todo /api/inventario requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	log := deps.Logger

	inv := app.Group("/api/inventario", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	admins := RequireRole(jwt.RoleAdmin)

	compras := inv.Group("/compras")
	compraHandler := NewCompraHandler(deps.Engine, loc, log)
	compras.Get("/", compraHandler.List)
	compras.Post("/", writers, compraHandler.Create)
	compras.Get("/:id", compraHandler.GetByID)
	compras.Put("/:id", writers, compraHandler.Action)

	entradas := inv.Group("/entradas")
	entradaHandler := NewEntradaHandler(deps.Engine, loc, log)
	entradas.Get("/", entradaHandler.List)
	entradas.Post("/", writers, entradaHandler.Create)
	entradas.Get("/:id", entradaHandler.GetByID)
	entradas.Put("/:id", writers, entradaHandler.Action)

	salidas := inv.Group("/salidas")
	salidaHandler := NewSalidaHandler(deps.Engine, loc, log)
	salidas.Get("/", salidaHandler.List)
	salidas.Post("/", writers, salidaHandler.Create)
	salidas.Get("/:id", salidaHandler.GetByID)
	salidas.Put("/:id", writers, salidaHandler.Action)

	almacen := inv.Group("/almacen")
	almacenHandler := NewAlmacenHandler(deps.Engine, log)
	almacen.Get("/", almacenHandler.List)
	almacen.Post("/ajuste", writers, almacenHandler.Ajuste)
	almacen.Get("/reposicion", almacenHandler.Reposicion)

	materiales := inv.Group("/materiales")
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.Engine, deps.Kardex, log)
	materiales.Get("/", almacenHandler.List)
	materiales.Post("/", admins, materialHandler.Create)
	materiales.Get("/:id", materialHandler.GetByID)
	materiales.Put("/:id/desactivar", admins, materialHandler.Deactivate)
	materiales.Put("/:id/activar", admins, materialHandler.Activate)
	materiales.Get("/:id/kardex.pdf", materialHandler.KardexPDF)

	historial := inv.Group("/historial")
	historialHandler := NewHistorialHandler(deps.Engine, log)
	historial.Get("/", historialHandler.List)
}
