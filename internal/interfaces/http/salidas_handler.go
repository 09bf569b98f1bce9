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

// SalidaHandler maneja las peticiones HTTP de salidas de material a obra.
type SalidaHandler struct {
	engine *inventory.Engine
	loc    *time.Location
	log    zerolog.Logger
}

func NewSalidaHandler(engine *inventory.Engine, loc *time.Location, log zerolog.Logger) *SalidaHandler {
	return &SalidaHandler{engine: engine, loc: loc, log: log}
}

// List godoc
// @Summary      Listar salidas
// @Tags         salidas
// @Security     Bearer
// @Produce      json
// @Param        estado       query  string  false  "activa | cancelada"
// @Param        material_id  query  int     false  "Filtrar por material"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SalidaListResponse
// @Router       /api/inventario/salidas [get]
func (h *SalidaHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	items, total, err := h.engine.ListConsumptions(c.UserContext(), repository.ConsumptionFilter{
		Status:     strings.TrimSpace(c.Query("estado")),
		MaterialID: queryInt64(c, "material_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SalidaListResponse{
		Items: dto.SalidasFromEntities(items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Create godoc
// @Summary      Registrar salida
// @Description  Descuenta del stock físico la cantidad entregada a la referencia (obra o frente).
// @Tags         salidas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalidaRequest  true  "material_id, cantidad, referencia, fecha (opcional), notas"
// @Success      201   {object}  dto.SalidaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/salidas [post]
func (h *SalidaHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSalidaRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.Fecha, h.loc)
	if err != nil {
		return badRequest(c, "VALIDATION", "fecha debe tener formato 2006-01-02")
	}
	out, err := h.engine.CreateConsumption(c.UserContext(), inventory.CreateConsumptionCommand{
		MaterialID: in.MaterialID,
		Quantity:   in.Cantidad,
		Reference:  in.Referencia,
		Date:       date,
		Notes:      in.Notas,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SalidaFromEntity(out))
}

// GetByID godoc
// @Summary      Obtener salida por ID
// @Tags         salidas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la salida"
// @Success      200  {object}  dto.SalidaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/salidas/{id} [get]
func (h *SalidaHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	out, err := h.engine.GetConsumption(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SalidaFromEntity(out))
}

// Action godoc
// @Summary      Cancelar salida
// @Description  Devuelve la cantidad al stock físico.
// @Tags         salidas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "ID de la salida"
// @Param        body  body  dto.AccionRequest  true  "accion = cancelar"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/salidas/{id} [put]
func (h *SalidaHandler) Action(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	if ok, err := parseAction(c); !ok {
		return err
	}
	out, err := h.engine.CancelConsumption(c.UserContext(), inventory.CancelConsumptionCommand{
		ConsumptionID: id,
		UserID:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Salida cancelada", Data: dto.SalidaFromEntity(out)})
}
