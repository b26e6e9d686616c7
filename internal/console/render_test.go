package console_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/stock-ledger/internal/console"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/ledger"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

func TestBadges(t *testing.T) {
	assert.Equal(t, "[IN ]", console.BadgeDireccion(entity.DireccionIn))
	assert.Equal(t, "[OUT]", console.BadgeDireccion(entity.DireccionOut))
	assert.Equal(t, "[ ? ]", console.BadgeDireccion("lo-que-sea"))

	m := &entity.MovimientoStock{}
	assert.Equal(t, "Activo", console.BadgeEstado(m))
	rev := int64(9)
	m.MovReversaID = &rev
	assert.Equal(t, "Revertido", console.BadgeEstado(m))
}

func TestTabla(t *testing.T) {
	rows := []entity.MovimientoStock{
		{
			ID:             1,
			Tipo:           entity.TipoCompra,
			Direccion:      entity.DireccionIn,
			Delta:          decimal.NewFromInt(10),
			SaldoPosterior: decimal.NewFromInt(10),
			Producto:       &entity.Referencia{ID: 1, Nombre: "Yerba"},
			CreatedAt:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		},
	}
	out := console.Tabla(rows, movimientos.ListMeta{Total: 41, Page: 2, PageSize: 20})

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "PRODUCTO")
	assert.Contains(t, out, "COMPRA")
	assert.Contains(t, out, "[IN ]")
	assert.Contains(t, out, "Yerba")
	assert.Contains(t, out, "página 2 (1 filas) de 41 en total")
}

// Las notas largas se recortan para no romper la tabla.
func TestTabla_RecortaNotas(t *testing.T) {
	larga := "una nota larguísima que claramente no entra en la columna de cuarenta"
	rows := []entity.MovimientoStock{{ID: 1, Notas: larga}}
	out := console.Tabla(rows, movimientos.ListMeta{Total: 1, Page: 1})
	assert.NotContains(t, out, larga)
	assert.Contains(t, out, "…")
}

// Solo el total es global; las sumas de flujo llevan la etiqueta de página.
func TestPanelKPI_Alcances(t *testing.T) {
	out := console.PanelKPI(ledger.KPIs{
		TotalGlobal: 120,
		InSum:       decimal.NewFromInt(30),
		OutSumAbs:   decimal.NewFromInt(12),
		Net:         decimal.NewFromInt(18),
	})
	assert.Contains(t, out, "120")
	assert.Contains(t, out, ledger.ScopeGlobal)
	assert.Contains(t, out, ledger.ScopePagina)
	assert.Contains(t, out, "Neto")
}

func TestTarjeta(t *testing.T) {
	assert.Equal(t, "(sin detalle)\n", console.Tarjeta(nil))

	refID := int64(5001)
	revID := int64(8)
	m := &entity.MovimientoStock{
		ID:             3,
		Tipo:           entity.TipoVenta,
		Direccion:      entity.DireccionOut,
		Delta:          decimal.NewFromInt(-12),
		SaldoAnterior:  decimal.NewFromInt(120),
		SaldoPosterior: decimal.NewFromInt(108),
		ProductoID:     1,
		Producto:       &entity.Referencia{ID: 1, Nombre: "Yerba"},
		RefTabla:       "ventas",
		RefID:          &refID,
		MovReversaID:   &revID,
		Notas:          "cliente mayorista",
		UsuarioID:      7,
		CreatedAt:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}
	out := console.Tarjeta(m)
	assert.Contains(t, out, "Movimiento #3")
	assert.Contains(t, out, "Revertido")
	assert.Contains(t, out, "120 -> 108")
	assert.Contains(t, out, "Yerba (#1)")
	assert.Contains(t, out, "origen: ventas #5001")
	assert.Contains(t, out, "revertido por: #8")
	assert.Contains(t, out, "cliente mayorista")
	assert.Contains(t, out, "por #7", "sin nombre en catálogo cae al id")
}

func TestIndicador(t *testing.T) {
	en := time.Date(2026, 3, 10, 9, 30, 15, 0, time.UTC)
	assert.Equal(t, "[idle] 09:30:15", console.Indicador(ledger.EstadoIdle, nil, en))
	assert.Equal(t, "[pausado: modal:detalle, escribiendo] 09:30:15",
		console.Indicador(ledger.EstadoPausado, []string{"modal:detalle", "escribiendo"}, en))
}
