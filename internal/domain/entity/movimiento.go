package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger de stock (value object conceptual).
const (
	TipoCompra              = "COMPRA"
	TipoVenta               = "VENTA"
	TipoDevolucionProveedor = "DEVOLUCION_PROVEEDOR"
	TipoDevolucionCliente   = "DEVOLUCION_CLIENTE"
	TipoAjuste              = "AJUSTE"
	TipoTransferencia       = "TRANSFERENCIA"
	TipoRecepcionOC         = "RECEPCION_OC"
)

// Direcciones de movimiento.
const (
	DireccionIn  = "IN"
	DireccionOut = "OUT"
)

// NotasMaxLen límite de caracteres para las notas (política del cliente).
const NotasMaxLen = 300

// TipoValido indica si s es uno de los tipos de movimiento conocidos.
func TipoValido(s string) bool {
	switch s {
	case TipoCompra, TipoVenta, TipoDevolucionProveedor, TipoDevolucionCliente,
		TipoAjuste, TipoTransferencia, TipoRecepcionOC:
		return true
	}
	return false
}

// DireccionValida indica si s es IN u OUT.
func DireccionValida(s string) bool {
	return s == DireccionIn || s == DireccionOut
}

// Referencia objeto denormalizado que el servidor puede anidar junto al id
// (producto.nombre, local.nombre, etc.) para display.
type Referencia struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// MovimientoStock una entrada inmutable del ledger de stock con snapshots del
// saldo antes/después. Tras la creación solo Notas es mutable; una corrección
// se hace creando un AJUSTE de signo opuesto que referencia al original
// (reversa), nunca editando Delta ni los saldos.
type MovimientoStock struct {
	ID             int64           `json:"id"`
	Tipo           string          `json:"tipo"`
	Direccion      string          `json:"direccion"`
	Delta          decimal.Decimal `json:"delta"`
	SaldoAnterior  decimal.Decimal `json:"saldo_anterior"`
	SaldoPosterior decimal.Decimal `json:"saldo_posterior"`
	Moneda         string          `json:"moneda,omitempty"`

	ProductoID int64 `json:"producto_id"`
	LocalID    int64 `json:"local_id"`
	LugarID    int64 `json:"lugar_id"`
	EstadoID   int64 `json:"estado_id"`
	StockID    int64 `json:"stock_id,omitempty"`
	UsuarioID  int64 `json:"usuario_id,omitempty"`

	// Enriquecimiento opcional del servidor para display.
	Producto *Referencia `json:"producto,omitempty"`
	Local    *Referencia `json:"local,omitempty"`
	Lugar    *Referencia `json:"lugar,omitempty"`
	Estado   *Referencia `json:"estado,omitempty"`
	Usuario  *Referencia `json:"usuario,omitempty"`

	// Trazabilidad hacia el registro de negocio de origen (compra, orden, etc.).
	RefTabla string `json:"ref_tabla,omitempty"`
	RefID    *int64 `json:"ref_id,omitempty"`

	ClaveIdempotencia string `json:"clave_idempotencia,omitempty"`
	Notas             string `json:"notas,omitempty"`

	// Seteado cuando otra entrada revirtió a esta; bloquea una segunda reversa.
	MovReversaID *int64 `json:"mov_reversa_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Revertido indica si la entrada ya fue revertida por otra.
func (m *MovimientoStock) Revertido() bool {
	return m != nil && m.MovReversaID != nil
}

// NombreProducto devuelve el nombre denormalizado si el servidor lo envió.
func (m *MovimientoStock) NombreProducto() string {
	if m.Producto != nil {
		return m.Producto.Nombre
	}
	return ""
}
