package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/obrica-api/internal/application/dto"
	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

// CompraHandler maneja las peticiones HTTP de compras (protegido).
type CompraHandler struct {
	engine *inventory.Engine
	loc    *time.Location
	log    zerolog.Logger
}

// NewCompraHandler construye el handler. loc interpreta el campo fecha.
func NewCompraHandler(engine *inventory.Engine, loc *time.Location, log zerolog.Logger) *CompraHandler {
	return &CompraHandler{engine: engine, loc: loc, log: log}
}

// List godoc
// @Summary      Listar compras
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        estado       query  string  false  "activa | completada | cancelada"
// @Param        material_id  query  int     false  "Filtrar por material"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.CompraListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventario/compras [get]
func (h *CompraHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	items, total, err := h.engine.ListPurchases(c.UserContext(), repository.PurchaseOrderFilter{
		Status:     strings.TrimSpace(c.Query("estado")),
		MaterialID: queryInt64(c, "material_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CompraListResponse{
		Items: dto.ComprasFromEntities(items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Create godoc
// @Summary      Registrar compra
// @Description  Crea la compra con folio COM-AAAAMMDD-NNN y suma la cantidad al stock virtual del material.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompraRequest  true  "material_id, cantidad, precio_unitario, fecha (opcional), notas"
// @Success      201   {object}  dto.CompraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/compras [post]
func (h *CompraHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompraRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.Fecha, h.loc)
	if err != nil {
		return badRequest(c, "VALIDATION", "fecha debe tener formato 2006-01-02")
	}
	order, err := h.engine.CreatePurchase(c.UserContext(), inventory.CreatePurchaseCommand{
		MaterialID: in.MaterialID,
		SupplierID: in.ProveedorID,
		Quantity:   in.Cantidad,
		UnitPrice:  in.PrecioUnitario,
		Date:       date,
		Notes:      in.Notas,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CompraFromEntity(order))
}

// GetByID godoc
// @Summary      Obtener compra por ID
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la compra"
// @Success      200  {object}  dto.CompraResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/compras/{id} [get]
func (h *CompraHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	order, err := h.engine.GetPurchase(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CompraFromEntity(order))
}

// Action godoc
// @Summary      Cancelar compra
// @Description  Con {"accion":"cancelar"} descuenta lo pendiente del stock virtual. Rechazada si tiene entradas activas.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "ID de la compra"
// @Param        body  body  dto.AccionRequest  true  "accion = cancelar"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/compras/{id} [put]
func (h *CompraHandler) Action(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	if ok, err := parseAction(c); !ok {
		return err
	}
	order, err := h.engine.CancelPurchase(c.UserContext(), inventory.CancelPurchaseCommand{
		PurchaseOrderID: id,
		UserID:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Compra cancelada", Data: dto.CompraFromEntity(order)})
}

// parseAction acepta solo {"accion":"cancelar"}; cualquier otra responde 400.
func parseAction(c *fiber.Ctx) (bool, error) {
	var in dto.AccionRequest
	if ok, err := parseBody(c, &in); !ok {
		return false, err
	}
	if !strings.EqualFold(strings.TrimSpace(in.Accion), dto.AccionCancelar) {
		return false, badRequest(c, "INVALID_ACTION", "Acción no válida")
	}
	return true, nil
}
