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

// EntradaHandler maneja las peticiones HTTP de entradas (recepción de compras).
type EntradaHandler struct {
	engine *inventory.Engine
	loc    *time.Location
	log    zerolog.Logger
}

func NewEntradaHandler(engine *inventory.Engine, loc *time.Location, log zerolog.Logger) *EntradaHandler {
	return &EntradaHandler{engine: engine, loc: loc, log: log}
}

// List godoc
// @Summary      Listar entradas
// @Tags         entradas
// @Security     Bearer
// @Produce      json
// @Param        estado       query  string  false  "activa | cancelada"
// @Param        compra_id    query  int     false  "Filtrar por compra"
// @Param        material_id  query  int     false  "Filtrar por material"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.EntradaListResponse
// @Router       /api/inventario/entradas [get]
func (h *EntradaHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	items, total, err := h.engine.ListReceipts(c.UserContext(), repository.ReceiptFilter{
		Status:          strings.TrimSpace(c.Query("estado")),
		PurchaseOrderID: queryInt64(c, "compra_id"),
		MaterialID:      queryInt64(c, "material_id"),
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.EntradaListResponse{
		Items: dto.EntradasFromEntities(items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Create godoc
// @Summary      Registrar entrada
// @Description  Recibe material de una compra activa: pasa la cantidad de stock virtual a stock físico.
// @Tags         entradas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEntradaRequest  true  "compra_id, cantidad, fecha (opcional), notas"
// @Success      201   {object}  dto.EntradaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/entradas [post]
func (h *EntradaHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEntradaRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.Fecha, h.loc)
	if err != nil {
		return badRequest(c, "VALIDATION", "fecha debe tener formato 2006-01-02")
	}
	rec, err := h.engine.CreateReceipt(c.UserContext(), inventory.CreateReceiptCommand{
		PurchaseOrderID: in.CompraID,
		Quantity:        in.Cantidad,
		Date:            date,
		Notes:           in.Notas,
		UserID:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.EntradaFromEntity(rec))
}

// GetByID godoc
// @Summary      Obtener entrada por ID
// @Tags         entradas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la entrada"
// @Success      200  {object}  dto.EntradaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/entradas/{id} [get]
func (h *EntradaHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	rec, err := h.engine.GetReceipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.EntradaFromEntity(rec))
}

// Action godoc
// @Summary      Cancelar entrada
// @Description  Revierte la recepción: resta de stock físico, devuelve a stock virtual y reabre la compra.
// @Tags         entradas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "ID de la entrada"
// @Param        body  body  dto.AccionRequest  true  "accion = cancelar"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/entradas/{id} [put]
func (h *EntradaHandler) Action(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	if ok, err := parseAction(c); !ok {
		return err
	}
	rec, err := h.engine.CancelReceipt(c.UserContext(), inventory.CancelReceiptCommand{
		ReceiptID: id,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Entrada cancelada", Data: dto.EntradaFromEntity(rec)})
}
