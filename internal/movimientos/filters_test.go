package movimientos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Solo viajan las claves con valor: tipo + fecha_desde deben dar exactamente
// esas dos más page y pageSize, ninguna otra.
func TestQueryValues_OmiteClavesVacias(t *testing.T) {
	f := ListFilters{Tipo: "AJUSTE", FechaDesde: "2026-01-01"}

	q := f.QueryValues(1, DefaultPageSize)

	assert.Len(t, q, 4)
	assert.Equal(t, "AJUSTE", q.Get("tipo"))
	assert.Equal(t, "2026-01-01", q.Get("fecha_desde"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "20", q.Get("pageSize"))
}

func TestQueryValues_SinFiltrosSoloPaginacion(t *testing.T) {
	q := ListFilters{}.QueryValues(2, 50)

	assert.Len(t, q, 2)
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "50", q.Get("pageSize"))
}

func TestQueryValues_TodosLosFiltros(t *testing.T) {
	f := ListFilters{
		ProductoID: 1, LocalID: 2, LugarID: 3, EstadoID: 4, StockID: 5, UsuarioID: 6,
		Tipo: "VENTA", Direccion: "OUT", RefTabla: "ventas", RefID: 7,
		ClaveIdempotencia: "abc", Q: "yerba", FechaDesde: "2026-01-01", FechaHasta: "2026-01-31",
	}

	q := f.QueryValues(1, 20)

	// 14 filtros + page + pageSize
	assert.Len(t, q, 16)
	assert.Equal(t, "7", q.Get("ref_id"))
	assert.Equal(t, "OUT", q.Get("direccion"))
}

func TestQueryValues_NormalizaPaginaInvalida(t *testing.T) {
	q := ListFilters{}.QueryValues(0, 0)
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "20", q.Get("pageSize"))
}
