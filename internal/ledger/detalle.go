package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

// Nombres de los modales/drawers que suspenden el polling mientras estén abiertos.
const (
	ModalDetalle  = "detalle"
	ModalNotas    = "editar-notas"
	ModalRevertir = "revertir"
	ModalAjuste   = "crear-ajuste"
)

// ServicioDetalle puerto de mutación/lectura de un movimiento; lo implementa
// movimientos.Service.
type ServicioDetalle interface {
	Obtener(ctx context.Context, id int64) (*entity.MovimientoStock, error)
	Crear(ctx context.Context, req movimientos.CrearRequest) (*entity.MovimientoStock, error)
	ActualizarNotas(ctx context.Context, id int64, notas string) (*entity.MovimientoStock, error)
	Revertir(ctx context.Context, id int64, req movimientos.RevertirRequest) (*entity.MovimientoStock, error)
}

// Modales registro de modales abiertos; lo implementa el Poller.
type Modales interface {
	AbrirModal(nombre string)
	CerrarModal(nombre string)
}

// ListaRefrescable dispara el fetch completo de la lista; lo implementa el Poller.
type ListaRefrescable interface {
	Refrescar(ctx context.Context)
}

// ErrorValidacion error de validación del lado del cliente, detectado antes
// de cualquier request.
type ErrorValidacion struct {
	Campos map[string]string
}

func (e *ErrorValidacion) Error() string {
	claves := make([]string, 0, len(e.Campos))
	for k := range e.Campos {
		claves = append(claves, k)
	}
	sort.Strings(claves)
	partes := make([]string, 0, len(claves))
	for _, k := range claves {
		partes = append(partes, k+": "+e.Campos[k])
	}
	return "validación: " + strings.Join(partes, "; ")
}

// AjusteInput entrada del formulario de crear ajuste. La magnitud es siempre
// positiva; el signo del delta sale de la dirección.
type AjusteInput struct {
	ProductoID int64
	LocalID    int64
	LugarID    int64
	EstadoID   int64
	Direccion  string
	Magnitud   decimal.Decimal
	Moneda     string
	Notas      string
}

// Validar chequea referencias obligatorias, dirección y magnitud estrictamente
// positiva. Devuelve *ErrorValidacion con los campos en falta.
func (in AjusteInput) Validar() error {
	campos := map[string]string{}
	if in.ProductoID == 0 {
		campos["producto_id"] = "obligatorio"
	}
	if in.LocalID == 0 {
		campos["local_id"] = "obligatorio"
	}
	if in.LugarID == 0 {
		campos["lugar_id"] = "obligatorio"
	}
	if in.EstadoID == 0 {
		campos["estado_id"] = "obligatorio"
	}
	if !entity.DireccionValida(in.Direccion) {
		campos["direccion"] = "debe ser IN u OUT"
	}
	if !in.Magnitud.IsPositive() {
		campos["magnitud"] = "debe ser mayor que cero"
	}
	if utf8.RuneCountInString(in.Notas) > entity.NotasMaxLen {
		campos["notas"] = fmt.Sprintf("máximo %d caracteres", entity.NotasMaxLen)
	}
	if len(campos) > 0 {
		return &ErrorValidacion{Campos: campos}
	}
	return nil
}

// DeltaAjuste calcula el delta firmado a partir de dirección y magnitud:
// OUT lleva magnitud negativa, IN positiva.
func DeltaAjuste(direccion string, magnitud decimal.Decimal) decimal.Decimal {
	if direccion == entity.DireccionOut {
		return magnitud.Neg()
	}
	return magnitud
}

// NotasDirty indica si el texto difiere del original. La comparación es
// exacta: un espacio al final cuenta como cambio.
func NotasDirty(original, nueva string) bool {
	return original != nueva
}

// DetalleController orquesta la entrada seleccionada del ledger: carga su
// detalle completo bajo demanda y coordina las tres acciones mutantes
// (crear ajuste, editar notas, revertir). Todas son pesimistas: el estado
// local recién cambia tras una respuesta confirmada del servidor seguida de
// re-fetch; un fallo queda en UltimoError sin cerrar el drawer.
type DetalleController struct {
	mu sync.Mutex

	svc     ServicioDetalle
	modales Modales
	lista   ListaRefrescable

	seleccionado int64
	detalle      *entity.MovimientoStock
	cargando     bool
	err          error
}

// NewDetalleController construye el orquestador. modales y lista pueden ser
// nil en tests unitarios.
func NewDetalleController(svc ServicioDetalle, modales Modales, lista ListaRefrescable) *DetalleController {
	return &DetalleController{svc: svc, modales: modales, lista: lista}
}

// Abrir selecciona la entrada y carga su detalle completo por id (la fila de
// la lista puede venir denormalizada/parcial). Si mientras cargaba se
// seleccionó otra entrada, la respuesta se descarta.
func (d *DetalleController) Abrir(ctx context.Context, id int64) error {
	d.mu.Lock()
	d.seleccionado = id
	d.cargando = true
	d.err = nil
	d.mu.Unlock()
	if d.modales != nil {
		d.modales.AbrirModal(ModalDetalle)
	}

	mov, err := d.svc.Obtener(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seleccionado != id {
		// Llegó el detalle de una entrada que ya no está seleccionada.
		return nil
	}
	d.cargando = false
	if err != nil {
		d.err = err
		return err
	}
	d.detalle = mov
	return nil
}

// Cerrar deselecciona y cierra el drawer.
func (d *DetalleController) Cerrar() {
	d.mu.Lock()
	d.seleccionado = 0
	d.detalle = nil
	d.cargando = false
	d.err = nil
	d.mu.Unlock()
	if d.modales != nil {
		d.modales.CerrarModal(ModalDetalle)
	}
}

// CrearAjuste valida en el cliente, arma el delta firmado y crea el AJUSTE.
// En éxito refresca la lista y abre el drawer de la entrada recién creada.
func (d *DetalleController) CrearAjuste(ctx context.Context, in AjusteInput) (*entity.MovimientoStock, error) {
	if err := in.Validar(); err != nil {
		d.setError(err)
		return nil, err
	}

	req := movimientos.CrearRequest{
		Tipo:       entity.TipoAjuste,
		Direccion:  in.Direccion,
		Delta:      DeltaAjuste(in.Direccion, in.Magnitud),
		Moneda:     in.Moneda,
		ProductoID: in.ProductoID,
		LocalID:    in.LocalID,
		LugarID:    in.LugarID,
		EstadoID:   in.EstadoID,
		Notas:      in.Notas,
	}
	mov, err := d.svc.Crear(ctx, req)
	if err != nil {
		d.setError(err)
		return nil, err
	}

	if d.lista != nil {
		d.lista.Refrescar(ctx)
	}
	if err := d.Abrir(ctx, mov.ID); err != nil {
		return mov, err
	}
	return mov, nil
}

// PuedeGuardarNotas replica el enable del botón Guardar: hay detalle, el
// texto difiere del original y no supera el tope de caracteres.
func (d *DetalleController) PuedeGuardarNotas(nueva string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detalle != nil &&
		NotasDirty(d.detalle.Notas, nueva) &&
		utf8.RuneCountInString(nueva) <= entity.NotasMaxLen
}

// GuardarNotas envía solo el campo notas. En éxito refresca lista y detalle.
func (d *DetalleController) GuardarNotas(ctx context.Context, nueva string) error {
	d.mu.Lock()
	det := d.detalle
	d.mu.Unlock()
	if det == nil {
		err := &ErrorValidacion{Campos: map[string]string{"detalle": "no hay entrada seleccionada"}}
		d.setError(err)
		return err
	}
	if !NotasDirty(det.Notas, nueva) {
		err := &ErrorValidacion{Campos: map[string]string{"notas": "sin cambios"}}
		d.setError(err)
		return err
	}
	if utf8.RuneCountInString(nueva) > entity.NotasMaxLen {
		err := &ErrorValidacion{Campos: map[string]string{"notas": fmt.Sprintf("máximo %d caracteres", entity.NotasMaxLen)}}
		d.setError(err)
		return err
	}

	mov, err := d.svc.ActualizarNotas(ctx, det.ID, nueva)
	if err != nil {
		d.setError(err)
		return err
	}

	d.mu.Lock()
	if d.seleccionado == mov.ID {
		d.detalle = mov
		d.err = nil
	}
	d.mu.Unlock()
	if d.lista != nil {
		d.lista.Refrescar(ctx)
	}
	return nil
}

// PuedeRevertir replica el enable del botón Revertir: hay detalle y la
// entrada aún no fue revertida. El servidor sigue siendo la autoridad y puede
// rechazar igual.
func (d *DetalleController) PuedeRevertir() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detalle != nil && !d.detalle.Revertido()
}

// Revertir pide la reversa: el servidor crea el AJUSTE opuesto y lo devuelve.
// En éxito refresca la lista y abre el drawer de la entrada de reversa.
func (d *DetalleController) Revertir(ctx context.Context, notas string) (*entity.MovimientoStock, error) {
	d.mu.Lock()
	det := d.detalle
	d.mu.Unlock()
	if det == nil {
		err := &ErrorValidacion{Campos: map[string]string{"detalle": "no hay entrada seleccionada"}}
		d.setError(err)
		return nil, err
	}
	if det.Revertido() {
		err := &ErrorValidacion{Campos: map[string]string{"mov_reversa_id": "la entrada ya fue revertida"}}
		d.setError(err)
		return nil, err
	}

	rev, err := d.svc.Revertir(ctx, det.ID, movimientos.RevertirRequest{Notas: notas})
	if err != nil {
		d.setError(err)
		return nil, err
	}

	if d.lista != nil {
		d.lista.Refrescar(ctx)
	}
	if err := d.Abrir(ctx, rev.ID); err != nil {
		return rev, err
	}
	return rev, nil
}

// Seleccionado devuelve el id seleccionado (0 = ninguno).
func (d *DetalleController) Seleccionado() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seleccionado
}

// Detalle devuelve el detalle cargado (nil si no hay o sigue cargando).
func (d *DetalleController) Detalle() *entity.MovimientoStock {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detalle
}

// Cargando indica si el detalle está en vuelo.
func (d *DetalleController) Cargando() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cargando
}

// UltimoError devuelve el último error (validación, negocio o red) para
// mostrar inline junto a la acción que lo produjo.
func (d *DetalleController) UltimoError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *DetalleController) setError(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}
