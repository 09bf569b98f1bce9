package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/obrica-api/internal/application/dto"
	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

// AlmacenHandler existencias por material, ajustes manuales y lista de reposición.
type AlmacenHandler struct {
	engine *inventory.Engine
	log    zerolog.Logger
}

func NewAlmacenHandler(engine *inventory.Engine, log zerolog.Logger) *AlmacenHandler {
	return &AlmacenHandler{engine: engine, log: log}
}

// List godoc
// @Summary      Existencias del almacén
// @Description  Materiales con stock físico, virtual y disponible (físico + virtual).
// @Tags         almacen
// @Security     Bearer
// @Produce      json
// @Param        q        query  string  false  "Buscar por código o nombre"
// @Param        activos  query  bool    false  "Solo materiales activos"  default(true)
// @Param        limit    query  int     false  "Límite"  default(20)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MaterialListResponse
// @Router       /api/inventario/almacen [get]
func (h *AlmacenHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	items, total, err := h.engine.ListMaterials(c.UserContext(), repository.MaterialFilter{
		ActiveOnly: c.QueryBool("activos", true),
		Search:     strings.TrimSpace(c.Query("q")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MaterialListResponse{
		Items: dto.MaterialsFromEntities(items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Ajuste godoc
// @Summary      Ajuste manual de inventario
// @Description  Fija stock físico (requiere motivo) y/o stock mínimo. Solo admin o bodeguero.
// @Tags         almacen
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AjusteRequest  true  "material_id, stock_fisico y/o stock_minimo, motivo"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventario/almacen/ajuste [post]
func (h *AlmacenHandler) Ajuste(c *fiber.Ctx) error {
	var in dto.AjusteRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mat, err := h.engine.Adjust(c.UserContext(), inventory.AdjustCommand{
		MaterialID:    in.MaterialID,
		NewPhysical:   in.StockFisico,
		NewThreshold:  in.StockMinimo,
		Justification: in.Motivo,
		UserID:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MaterialFromEntity(mat))
}

// Reposicion godoc
// @Summary      Lista de reposición
// @Description  Materiales activos con disponible menor al stock mínimo, con cantidad sugerida
//
//	(mínimo * 1.5 - disponible), ordenados por mayor déficit relativo.
//
// @Tags         almacen
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReposicionResponse
// @Router       /api/inventario/almacen/reposicion [get]
func (h *AlmacenHandler) Reposicion(c *fiber.Ctx) error {
	items, err := h.engine.ReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReposicionFromItems(items))
}
