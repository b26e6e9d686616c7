package mockapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// Handler handlers HTTP del recurso /stock-movimientos.
type Handler struct {
	store *Store
	log   *logger.Logger
}

// NewHandler construye el handler.
func NewHandler(store *Store, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, log: log}
}

// Listar GET /stock-movimientos: página filtrada en sobre { ok, data, meta }.
func (h *Handler) Listar(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", movimientos.DefaultPageSize)

	f := Filtros{
		ProductoID:        int64(c.QueryInt("producto_id", 0)),
		LocalID:           int64(c.QueryInt("local_id", 0)),
		LugarID:           int64(c.QueryInt("lugar_id", 0)),
		EstadoID:          int64(c.QueryInt("estado_id", 0)),
		StockID:           int64(c.QueryInt("stock_id", 0)),
		UsuarioID:         int64(c.QueryInt("usuario_id", 0)),
		Tipo:              c.Query("tipo"),
		Direccion:         c.Query("direccion"),
		RefTabla:          c.Query("ref_tabla"),
		RefID:             int64(c.QueryInt("ref_id", 0)),
		ClaveIdempotencia: c.Query("clave_idempotencia"),
		Q:                 c.Query("q"),
		FechaDesde:        c.Query("fecha_desde"),
		FechaHasta:        c.Query("fecha_hasta"),
	}

	rows, total := h.store.Listar(f, page, pageSize)
	return c.JSON(ListResponse{
		Ok:   true,
		Data: rows,
		Meta: movimientos.ListMeta{Total: total, Page: page, PageSize: pageSize},
	})
}

// Obtener GET /stock-movimientos/:id.
func (h *Handler) Obtener(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return responderError(c, domain.ErrInvalidInput)
	}
	mov, err := h.store.Obtener(id)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(ItemResponse{Ok: true, Data: mov})
}

// Crear POST /stock-movimientos.
func (h *Handler) Crear(c *fiber.Ctx) error {
	var in CrearRequest
	if err := c.BodyParser(&in); err != nil {
		return responderError(c, domain.ErrInvalidInput)
	}
	mov, err := h.store.Crear(CrearInput{
		Tipo:              in.Tipo,
		Direccion:         in.Direccion,
		Delta:             in.Delta,
		Moneda:            in.Moneda,
		ProductoID:        in.ProductoID,
		LocalID:           in.LocalID,
		LugarID:           in.LugarID,
		EstadoID:          in.EstadoID,
		RefTabla:          in.RefTabla,
		RefID:             in.RefID,
		ClaveIdempotencia: in.ClaveIdempotencia,
		UsuarioID:         in.UsuarioID,
		Notas:             in.Notas,
	})
	if err != nil {
		return responderError(c, err)
	}
	h.log.Info().Int64("id", mov.ID).Str("tipo", mov.Tipo).Str("delta", mov.Delta.String()).Msg("movimiento creado")
	return c.Status(fiber.StatusCreated).JSON(ItemResponse{Ok: true, Data: mov})
}

// Actualizar PUT /stock-movimientos/:id: solo notas.
func (h *Handler) Actualizar(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return responderError(c, domain.ErrInvalidInput)
	}
	var in ActualizarRequest
	if err := c.BodyParser(&in); err != nil {
		return responderError(c, domain.ErrInvalidInput)
	}
	mov, err := h.store.ActualizarNotas(id, in.Notas)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(ItemResponse{Ok: true, Data: mov})
}

// Revertir POST /stock-movimientos/:id/revertir: devuelve la entrada de
// reversa recién creada.
func (h *Handler) Revertir(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return responderError(c, domain.ErrInvalidInput)
	}
	var in RevertirRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return responderError(c, domain.ErrInvalidInput)
		}
	}
	rev, err := h.store.Revertir(id, in.Notas, in.UsuarioID)
	if err != nil {
		return responderError(c, err)
	}
	h.log.Info().Int64("original", id).Int64("reversa", rev.ID).Msg("movimiento revertido")
	return c.Status(fiber.StatusCreated).JSON(ItemResponse{Ok: true, Data: rev})
}

// responderError mapea errores de dominio al sobre { ok:false, code,
// mensajeError, tips } con el status correspondiente.
func responderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Code: "NO_ENCONTRADO", MensajeError: "movimiento no encontrado",
		})
	case errors.Is(err, domain.ErrYaRevertido):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Code:         "YA_REVERTIDO",
			MensajeError: "el movimiento ya fue revertido",
			Tips:         []string{"Una entrada admite una sola reversa", "Consultá mov_reversa_id para ver el ajuste existente"},
		})
	case errors.Is(err, domain.ErrSaldoInsuficiente):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Code:         "SALDO_INSUFICIENTE",
			MensajeError: "el movimiento dejaría el saldo negativo",
			Tips:         []string{"Verificá el saldo actual del stock antes de ajustar"},
		})
	case errors.Is(err, domain.ErrSignoInconsistente):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Code:         "VALIDACION",
			MensajeError: "el signo del delta no coincide con la dirección",
			Tips:         []string{"OUT lleva delta negativo; IN lleva delta positivo"},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Code: "VALIDACION", MensajeError: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Code: "INTERNO", MensajeError: err.Error(),
		})
	}
}
