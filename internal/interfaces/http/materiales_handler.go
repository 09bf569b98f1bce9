package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obrica-api/internal/application/dto"
	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/application/usecase"
)

// MaterialHandler catálogo de materiales y kardex en PDF.
type MaterialHandler struct {
	uc     *usecase.MaterialUseCase
	engine *inventory.Engine
	kardex *inventory.KardexUseCase
	log    zerolog.Logger
}

func NewMaterialHandler(uc *usecase.MaterialUseCase, engine *inventory.Engine, kardex *inventory.KardexUseCase, log zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{uc: uc, engine: engine, kardex: kardex, log: log}
}

// Create godoc
// @Summary      Registrar material
// @Description  Alta de material activo con stock en cero. Solo admin.
// @Tags         materiales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "codigo (opcional, único), nombre, unidad, stock_minimo"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventario/materiales [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	threshold := decimal.Zero
	if in.StockMinimo != nil {
		threshold = *in.StockMinimo
	}
	m, err := h.uc.Register(c.UserContext(), usecase.RegisterMaterialInput{
		Code:             in.Codigo,
		Name:             in.Nombre,
		Unit:             in.Unidad,
		ReorderThreshold: threshold,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MaterialFromEntity(m))
}

// GetByID godoc
// @Summary      Obtener material por ID
// @Tags         materiales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/materiales/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	m, err := h.engine.GetMaterial(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MaterialFromEntity(m))
}

// Deactivate godoc
// @Summary      Desactivar material
// @Description  Un material inactivo no admite compras ni salidas nuevas. Solo admin.
// @Tags         materiales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/materiales/{id}/desactivar [put]
func (h *MaterialHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

// Activate godoc
// @Summary      Reactivar material
// @Tags         materiales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/materiales/{id}/activar [put]
func (h *MaterialHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *MaterialHandler) setActive(c *fiber.Ctx, active bool) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	toggle := h.uc.Deactivate
	if active {
		toggle = h.uc.Activate
	}
	m, err := toggle(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MaterialFromEntity(m))
}

// KardexPDF godoc
// @Summary      Kardex del material en PDF
// @Description  Historial cronológico de movimientos con stock antes y después.
// @Tags         materiales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del material"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/materiales/{id}/kardex.pdf [get]
func (h *MaterialHandler) KardexPDF(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	name, pdf, err := h.kardex.GenerateKardexPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, name))
	return c.Send(pdf)
}
