package mockapi

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

// CrearRequest body de POST /stock-movimientos.
type CrearRequest struct {
	Tipo              string          `json:"tipo"`
	Direccion         string          `json:"direccion"`
	Delta             decimal.Decimal `json:"delta"`
	Moneda            string          `json:"moneda,omitempty"`
	ProductoID        int64           `json:"producto_id"`
	LocalID           int64           `json:"local_id"`
	LugarID           int64           `json:"lugar_id"`
	EstadoID          int64           `json:"estado_id"`
	RefTabla          string          `json:"ref_tabla,omitempty"`
	RefID             *int64          `json:"ref_id,omitempty"`
	ClaveIdempotencia string          `json:"clave_idempotencia,omitempty"`
	UsuarioID         int64           `json:"usuario_id,omitempty"`
	Notas             string          `json:"notas,omitempty"`
}

// ActualizarRequest body de PUT /stock-movimientos/:id; solo notas es mutable.
type ActualizarRequest struct {
	Notas string `json:"notas"`
}

// RevertirRequest body de POST /stock-movimientos/:id/revertir.
type RevertirRequest struct {
	Notas     string `json:"notas,omitempty"`
	UsuarioID int64  `json:"usuario_id,omitempty"`
}

// ItemResponse sobre { ok, data } de un solo movimiento.
type ItemResponse struct {
	Ok   bool                    `json:"ok"`
	Data *entity.MovimientoStock `json:"data"`
}

// ListResponse sobre { ok, data, meta } del listado.
type ListResponse struct {
	Ok   bool                     `json:"ok"`
	Data []entity.MovimientoStock `json:"data"`
	Meta movimientos.ListMeta     `json:"meta"`
}

// ErrorResponse sobre de error { ok:false, code, mensajeError, tips }.
type ErrorResponse struct {
	Ok           bool     `json:"ok"`
	Code         string   `json:"code"`
	MensajeError string   `json:"mensajeError"`
	Tips         []string `json:"tips,omitempty"`
}
