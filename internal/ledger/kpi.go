package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

// Etiquetas de alcance de cada KPI. Las sumas de flujo son sobre la página
// cargada; solo TotalGlobal es un conteo del servidor bajo los filtros
// vigentes. La UI debe mostrar la etiqueta para que no se confundan sumas de
// página con totales generales.
const (
	ScopePagina = "página actual"
	ScopeGlobal = "global (filtrado)"
)

// KPIs métricas derivadas de la página cargada más el total del servidor.
type KPIs struct {
	TotalGlobal int // meta.Total reportado por el servidor
	PageCount   int
	InSum       decimal.Decimal // Σ delta con delta > 0
	OutSumAbs   decimal.Decimal // Σ |delta| con delta < 0
	Net         decimal.Decimal // InSum - OutSumAbs
}

// CalcularKPIs deriva los KPI sin llamadas de red. Nunca recalcula Total ni
// contradice el signo que trajo el servidor.
func CalcularKPIs(rows []entity.MovimientoStock, meta movimientos.ListMeta) KPIs {
	in := decimal.Zero
	out := decimal.Zero
	for i := range rows {
		d := rows[i].Delta
		switch {
		case d.IsPositive():
			in = in.Add(d)
		case d.IsNegative():
			out = out.Add(d.Abs())
		}
	}
	return KPIs{
		TotalGlobal: meta.Total,
		PageCount:   len(rows),
		InSum:       in,
		OutSumAbs:   out,
		Net:         in.Sub(out),
	}
}
