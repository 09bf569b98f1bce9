package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/obrica-api/internal/application/dto"
	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/application/usecase"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/infrastructure/memory"
	"github.com/jhoicas/obrica-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/obrica-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/obrica-api/pkg/jwt"
)

var fixedNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// testServer API completa sobre el almacén en memoria con un material "Cemento" en cero.
type testServer struct {
	app   *fiber.App
	store *memory.Store
	mat   *entity.Material
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	engine := inventory.NewEngine(store, inventory.EngineConfig{
		Now:    func() time.Time { return fixedNow },
		Logger: zerolog.Nop(),
	})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:     engine,
		MaterialUC: usecase.NewMaterialUseCase(store),
		Kardex:     inventory.NewKardexUseCase(engine, pdf.NewKardexPDFGenerator(time.UTC)),
		Location:   time.UTC,
		Logger:     zerolog.Nop(),
		JWTSecret:  testJWTSecret,
	})
	mat := store.SeedMaterial(&entity.Material{
		Code:             "CEM",
		Name:             "Cemento",
		Unit:             "BULTO",
		ReorderThreshold: decimal.NewFromInt(100),
		Active:           true,
	})
	return &testServer{app: app, store: store, mat: mat}
}

// call ejecuta la petición con el rol indicado; body vacío no envía cuerpo.
func (s *testServer) call(t *testing.T, role, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *testServer) material(t *testing.T) dto.MaterialResponse {
	t.Helper()
	resp := s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/materiales/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.MaterialResponse](t, resp)
}

// compraMessage dto.MessageResponse con Data tipado.
type compraMessage struct {
	Message string             `json:"message"`
	Data    dto.CompraResponse `json:"data"`
}

func assertDecimal(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "%s: esperado %d, obtenido %s", msg, want, got)
}

func TestCompras_CrearYCancelar(t *testing.T) {
	s := newTestServer(t)

	resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"10","precio_unitario":"250.50","notas":"Proveedor norte"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	compra := decode[dto.CompraResponse](t, resp)

	assert.Equal(t, "COM-20240115-001", compra.Folio)
	assert.Equal(t, entity.PurchaseStatusOpen, compra.Estado)
	assert.Equal(t, "2024-01-15", compra.Fecha)
	assert.Equal(t, testUserID, compra.CreatedBy)
	assertDecimal(t, 10, compra.Pendiente, "pendiente")
	assert.True(t, decimal.RequireFromString("2505").Equal(compra.Total))

	mat := s.material(t)
	assertDecimal(t, 10, mat.StockVirtual, "stock virtual tras compra")
	assertDecimal(t, 0, mat.StockFisico, "stock físico tras compra")

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPut, "/api/inventario/compras/1", `{"accion":"cancelar"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msg := decode[compraMessage](t, resp)
	assert.Equal(t, "Compra cancelada", msg.Message)
	assert.Equal(t, entity.PurchaseStatusCancelled, msg.Data.Estado)

	mat = s.material(t)
	assertDecimal(t, 0, mat.StockVirtual, "stock virtual tras cancelar")

	// cancelar dos veces es un conflicto de estado
	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPut, "/api/inventario/compras/1", `{"accion":"cancelar"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCompras_AccionInvalida_Retorna400(t *testing.T) {
	s := newTestServer(t)
	resp := s.call(t, pkgjwt.RoleAdmin, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"5","precio_unitario":"1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, pkgjwt.RoleAdmin, http.MethodPut, "/api/inventario/compras/1", `{"accion":"aprobar"}`)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ACTION", body.Code)
	assert.Equal(t, "Acción no válida", body.Message)

	resp = s.call(t, pkgjwt.RoleAdmin, http.MethodPut, "/api/inventario/compras/1", `{}`)
	body = decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "accion")
}

func TestCompras_Validaciones(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"cantidad cero", `{"material_id":1,"cantidad":"0","precio_unitario":"1"}`, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"sin material", `{"cantidad":"3","precio_unitario":"1"}`, http.StatusBadRequest, "VALIDATION"},
		{"fecha mal formada", `{"material_id":1,"cantidad":"3","precio_unitario":"1","fecha":"15/01/2024"}`, http.StatusBadRequest, "VALIDATION"},
		{"material inexistente", `{"material_id":99,"cantidad":"3","precio_unitario":"1"}`, http.StatusNotFound, "NOT_FOUND"},
		{"cantidad con 4 decimales", `{"material_id":1,"cantidad":"0.0004","precio_unitario":"1"}`, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"precio con 3 decimales", `{"material_id":1,"cantidad":"1","precio_unitario":"0.004"}`, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"json roto", `{"material_id":`, http.StatusBadRequest, "INVALID_BODY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/compras", tc.body)
			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestCompras_GetInexistente_Retorna404(t *testing.T) {
	s := newTestServer(t)
	resp := s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/compras/42", "")
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body.Code)

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/compras/abc", "")
	body = decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_ID", body.Code)
}

func TestCompras_ConsultaNoPuedeEscribir(t *testing.T) {
	s := newTestServer(t)
	resp := s.call(t, pkgjwt.RoleConsulta, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"5","precio_unitario":"1"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.call(t, "", http.MethodGet, "/api/inventario/compras", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEntradas_FlujoCompletoYPrecondicion(t *testing.T) {
	s := newTestServer(t)
	resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"10","precio_unitario":"1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/entradas",
		`{"compra_id":1,"cantidad":"4","fecha":"2024-01-14"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entrada := decode[dto.EntradaResponse](t, resp)
	assert.Equal(t, "ENT-20240115-001", entrada.Folio)
	assert.Equal(t, "2024-01-14", entrada.Fecha)
	assert.Equal(t, int64(1), entrada.MaterialID)

	mat := s.material(t)
	assertDecimal(t, 4, mat.StockFisico, "físico tras entrada")
	assertDecimal(t, 6, mat.StockVirtual, "virtual tras entrada")

	// excede lo pendiente
	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/entradas", `{"compra_id":1,"cantidad":"7"}`)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", body.Code)

	// compra con entradas activas no se cancela
	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPut, "/api/inventario/compras/1", `{"accion":"cancelar"}`)
	body = decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRECONDITION_FAILED", body.Code)

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPut, "/api/inventario/entradas/1", `{"accion":"cancelar"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	mat = s.material(t)
	assertDecimal(t, 0, mat.StockFisico, "físico tras cancelar entrada")
	assertDecimal(t, 10, mat.StockVirtual, "virtual tras cancelar entrada")

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/entradas?compra_id=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.EntradaListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.MovementStatusCancelled, list.Items[0].Estado)
}

func TestSalidas_StockInsuficienteYCancelacion(t *testing.T) {
	s := newTestServer(t)
	resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/salidas",
		`{"material_id":1,"cantidad":"1","referencia":"Obra Las Palmas"}`)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", body.Code)
	assert.Contains(t, body.Message, "insuficiente")

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/salidas",
		`{"material_id":1,"cantidad":"1"}`)
	body = decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Message, "referencia")

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/almacen/ajuste",
		`{"material_id":1,"stock_fisico":"20","motivo":"Conteo físico"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/salidas",
		`{"material_id":1,"cantidad":"8","referencia":"Obra Las Palmas"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	salida := decode[dto.SalidaResponse](t, resp)
	assert.Equal(t, "SAL-20240115-001", salida.Folio)
	assert.Equal(t, "Obra Las Palmas", salida.Referencia)
	assertDecimal(t, 12, s.material(t).StockFisico, "físico tras salida")

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPut, "/api/inventario/salidas/1", `{"accion":"cancelar"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assertDecimal(t, 20, s.material(t).StockFisico, "físico tras cancelar salida")
}

func TestAlmacen_AjusteRequiereMotivoYRol(t *testing.T) {
	s := newTestServer(t)

	resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/almacen/ajuste",
		`{"material_id":1,"stock_fisico":"5"}`)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_JUSTIFICATION", body.Code)

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodPost, "/api/inventario/almacen/ajuste",
		`{"material_id":1,"stock_fisico":"5","motivo":"Conteo"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// solo stock mínimo no requiere motivo
	resp = s.call(t, pkgjwt.RoleAdmin, http.MethodPost, "/api/inventario/almacen/ajuste",
		`{"material_id":1,"stock_minimo":"40"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mat := decode[dto.MaterialResponse](t, resp)
	assertDecimal(t, 40, mat.StockMinimo, "stock mínimo")
	assert.True(t, mat.BajoMinimo)
}

func TestAlmacen_ListadoYReposicion(t *testing.T) {
	s := newTestServer(t)
	s.store.SeedMaterial(&entity.Material{
		Code: "ARE", Name: "Arena", Unit: "M3",
		StockPhysical: decimal.NewFromInt(5), ReorderThreshold: decimal.NewFromInt(20), Active: true,
	})
	s.store.SeedMaterial(&entity.Material{
		Code: "GRA", Name: "Grava", Unit: "M3",
		StockPhysical: decimal.NewFromInt(50), ReorderThreshold: decimal.NewFromInt(20), Active: true,
	})

	resp := s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/almacen?q=ar&limit=500", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.MaterialListResponse](t, resp)
	assert.Equal(t, 100, list.Page.Limit)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Arena", list.Items[0].Nombre)
	assertDecimal(t, 5, list.Items[0].StockDisponible, "disponible")

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/almacen/reposicion", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[dto.ReposicionResponse](t, resp)
	require.Equal(t, 2, rep.Total)
	assert.Equal(t, "CEM", rep.Items[0].Codigo)
	assertDecimal(t, 150, rep.Items[0].CantidadSugerida, "sugerido cemento")
	assert.Equal(t, 1, rep.Items[0].Prioridad)
	assert.Equal(t, "ARE", rep.Items[1].Codigo)
	assertDecimal(t, 25, rep.Items[1].CantidadSugerida, "sugerido arena")
}

func TestMateriales_AltaSoloAdmin(t *testing.T) {
	s := newTestServer(t)
	body := `{"codigo":" VAR-3/8 ","nombre":"Varilla 3/8","unidad":"pza","stock_minimo":"30"}`

	resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/materiales", body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.call(t, pkgjwt.RoleAdmin, http.MethodPost, "/api/inventario/materiales", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mat := decode[dto.MaterialResponse](t, resp)
	assert.Equal(t, "VAR-3/8", mat.Codigo)
	assert.Equal(t, "PZA", mat.Unidad)
	assert.True(t, mat.Activo)
	assertDecimal(t, 0, mat.StockFisico, "alta en cero")

	resp = s.call(t, pkgjwt.RoleAdmin, http.MethodPost, "/api/inventario/materiales", body)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", errBody.Code)
}

func TestMateriales_DesactivarBloqueaCompras(t *testing.T) {
	s := newTestServer(t)

	resp := s.call(t, pkgjwt.RoleAdmin, http.MethodPut, "/api/inventario/materiales/1/desactivar", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mat := decode[dto.MaterialResponse](t, resp)
	assert.False(t, mat.Activo)

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"5","precio_unitario":"1"}`)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", body.Code)

	resp = s.call(t, pkgjwt.RoleAdmin, http.MethodPut, "/api/inventario/materiales/1/activar", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"5","precio_unitario":"1"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestMateriales_KardexPDF(t *testing.T) {
	s := newTestServer(t)
	resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"10","precio_unitario":"1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/materiales/1/kardex.pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="kardex-CEM.pdf"`)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/materiales/9/kardex.pdf", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistorial_RegistraCadaMovimiento(t *testing.T) {
	s := newTestServer(t)
	resp := s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/compras",
		`{"material_id":1,"cantidad":"10","precio_unitario":"1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = s.call(t, pkgjwt.RoleBodeguero, http.MethodPost, "/api/inventario/entradas", `{"compra_id":1,"cantidad":"10"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/historial?material_id=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.HistorialListResponse](t, resp)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Page.Total)

	// más reciente primero
	assert.Equal(t, string(entity.LedgerReceipt), list.Items[0].Tipo)
	assertDecimal(t, 10, list.Items[0].StockFisicoNuevo, "físico después de la entrada")
	assertDecimal(t, 0, list.Items[0].StockVirtualNuevo, "virtual después de la entrada")
	assert.Equal(t, string(entity.LedgerPurchase), list.Items[1].Tipo)
	assert.NotEmpty(t, list.Items[1].OperacionID)

	resp = s.call(t, pkgjwt.RoleConsulta, http.MethodGet, "/api/inventario/historial?tipo=traslado", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestLogger_PropagaRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.Nop()))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "tetera") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(apphttp.HeaderRequestID, "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
}
