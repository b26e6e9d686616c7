// Package console renderiza la vista del ledger en texto plano: tabla de
// movimientos, panel de KPIs y tarjeta de detalle. Solo formateo; la lógica
// de negocio vive en internal/ledger.
package console

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/ledger"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

const fechaFormato = "2006-01-02 15:04"

// BadgeDireccion etiqueta corta de la dirección del movimiento.
func BadgeDireccion(direccion string) string {
	switch direccion {
	case entity.DireccionIn:
		return "[IN ]"
	case entity.DireccionOut:
		return "[OUT]"
	default:
		return "[ ? ]"
	}
}

// BadgeEstado etiqueta del estado de reversa de la entrada.
func BadgeEstado(m *entity.MovimientoStock) string {
	if m.Revertido() {
		return "Revertido"
	}
	return "Activo"
}

// Tabla renderiza la página actual del ledger como tabla alineada.
func Tabla(rows []entity.MovimientoStock, meta movimientos.ListMeta) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFECHA\tTIPO\tDIR\tDELTA\tSALDO\tPRODUCTO\tESTADO\tNOTAS")
	for i := range rows {
		m := &rows[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			m.CreatedAt.Format(fechaFormato),
			m.Tipo,
			BadgeDireccion(m.Direccion),
			m.Delta.String(),
			m.SaldoPosterior.String(),
			m.NombreProducto(),
			BadgeEstado(m),
			recortar(m.Notas, 40),
		)
	}
	w.Flush()
	fmt.Fprintf(&b, "página %d (%d filas) de %d en total\n", meta.Page, len(rows), meta.Total)
	return b.String()
}

// PanelKPI renderiza los KPIs con su etiqueta de alcance: las sumas de flujo
// son de la página cargada, solo el total es global bajo los filtros vigentes.
func PanelKPI(k ledger.KPIs) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total\t%d\t(%s)\n", k.TotalGlobal, ledger.ScopeGlobal)
	fmt.Fprintf(w, "Entradas\t%s\t(%s)\n", k.InSum.String(), ledger.ScopePagina)
	fmt.Fprintf(w, "Salidas\t%s\t(%s)\n", k.OutSumAbs.String(), ledger.ScopePagina)
	fmt.Fprintf(w, "Neto\t%s\t(%s)\n", k.Net.String(), ledger.ScopePagina)
	w.Flush()
	return b.String()
}

// Tarjeta renderiza el detalle completo de una entrada para el drawer.
func Tarjeta(m *entity.MovimientoStock) string {
	if m == nil {
		return "(sin detalle)\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Movimiento #%d  %s %s  %s\n", m.ID, m.Tipo, BadgeDireccion(m.Direccion), BadgeEstado(m))
	fmt.Fprintf(&b, "  delta: %s   saldo: %s -> %s\n", m.Delta.String(), m.SaldoAnterior.String(), m.SaldoPosterior.String())
	fmt.Fprintf(&b, "  producto: %s\n", referencia(m.Producto, m.ProductoID))
	fmt.Fprintf(&b, "  local: %s   lugar: %s   estado: %s\n",
		referencia(m.Local, m.LocalID), referencia(m.Lugar, m.LugarID), referencia(m.Estado, m.EstadoID))
	if m.RefTabla != "" && m.RefID != nil {
		fmt.Fprintf(&b, "  origen: %s #%d\n", m.RefTabla, *m.RefID)
	}
	if m.MovReversaID != nil {
		fmt.Fprintf(&b, "  revertido por: #%d\n", *m.MovReversaID)
	}
	if m.Notas != "" {
		fmt.Fprintf(&b, "  notas: %s\n", m.Notas)
	}
	fmt.Fprintf(&b, "  creado: %s por %s\n", m.CreatedAt.Format(fechaFormato), referencia(m.Usuario, m.UsuarioID))
	return b.String()
}

// Indicador línea de estado del poller para la cabecera.
func Indicador(estado ledger.EstadoPoll, motivos []string, en time.Time) string {
	if len(motivos) > 0 {
		return fmt.Sprintf("[%s: %s] %s", estado, strings.Join(motivos, ", "), en.Format("15:04:05"))
	}
	return fmt.Sprintf("[%s] %s", estado, en.Format("15:04:05"))
}

func referencia(ref *entity.Referencia, id int64) string {
	if ref != nil && ref.Nombre != "" {
		return fmt.Sprintf("%s (#%d)", ref.Nombre, ref.ID)
	}
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", id)
}

func recortar(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
