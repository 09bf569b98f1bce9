package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/obrica-api/internal/application/dto"
	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

// HistorialHandler consulta del historial de inventario (solo lectura).
type HistorialHandler struct {
	engine *inventory.Engine
	log    zerolog.Logger
}

func NewHistorialHandler(engine *inventory.Engine, log zerolog.Logger) *HistorialHandler {
	return &HistorialHandler{engine: engine, log: log}
}

// List godoc
// @Summary      Historial de inventario
// @Description  Movimientos más recientes primero, con stock físico y virtual antes y después.
// @Tags         historial
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  int     false  "Filtrar por material"
// @Param        tipo         query  string  false  "compra | entrada | salida | cancelacion_compra | cancelacion_entrada | cancelacion_salida | ajuste"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.HistorialListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventario/historial [get]
func (h *HistorialHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	items, total, err := h.engine.ListLedger(c.UserContext(), repository.LedgerFilter{
		MaterialID: queryInt64(c, "material_id"),
		Kind:       entity.LedgerKind(strings.TrimSpace(c.Query("tipo"))),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.HistorialListResponse{
		Items: dto.HistorialFromEntities(items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}
