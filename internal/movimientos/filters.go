package movimientos

import (
	"net/url"
	"strconv"
)

// DefaultPageSize tamaño de página por defecto de los listados.
const DefaultPageSize = 20

// ListFilters filtros del listado GET /stock-movimientos. El valor cero de
// cada campo significa "sin filtrar" y la clave se omite del query.
type ListFilters struct {
	ProductoID        int64
	LocalID           int64
	LugarID           int64
	EstadoID          int64
	StockID           int64
	UsuarioID         int64
	Tipo              string
	Direccion         string
	RefTabla          string
	RefID             int64
	ClaveIdempotencia string
	Q                 string
	FechaDesde        string // YYYY-MM-DD
	FechaHasta        string // YYYY-MM-DD
}

// QueryValues arma el query string con paginación, omitiendo claves vacías.
func (f ListFilters) QueryValues(page, pageSize int) url.Values {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	setInt := func(key string, v int64) {
		if v != 0 {
			q.Set(key, strconv.FormatInt(v, 10))
		}
	}
	setStr := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}

	setInt("producto_id", f.ProductoID)
	setInt("local_id", f.LocalID)
	setInt("lugar_id", f.LugarID)
	setInt("estado_id", f.EstadoID)
	setInt("stock_id", f.StockID)
	setInt("usuario_id", f.UsuarioID)
	setStr("tipo", f.Tipo)
	setStr("direccion", f.Direccion)
	setStr("ref_tabla", f.RefTabla)
	setInt("ref_id", f.RefID)
	setStr("clave_idempotencia", f.ClaveIdempotencia)
	setStr("q", f.Q)
	setStr("fecha_desde", f.FechaDesde)
	setStr("fecha_hasta", f.FechaHasta)
	return q
}
