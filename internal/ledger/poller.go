package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// DefaultInterval tick del refresco silencioso.
const DefaultInterval = 1500 * time.Millisecond

// EstadoPoll estados de la máquina de refresco de la vista de lista.
type EstadoPoll int

const (
	EstadoIdle        EstadoPoll = iota
	EstadoCargando               // fetch completo: muestra skeleton
	EstadoRefrescando            // fetch silencioso: solo indicador sutil
	EstadoPausado                // tick suprimido por una condición de pausa
)

func (e EstadoPoll) String() string {
	switch e {
	case EstadoCargando:
		return "cargando"
	case EstadoRefrescando:
		return "refrescando"
	case EstadoPausado:
		return "pausado"
	default:
		return "idle"
	}
}

// Listador puerto de lectura del listado; lo implementa movimientos.Service.
type Listador interface {
	Listar(ctx context.Context, f movimientos.ListFilters, page, pageSize int) ([]entity.MovimientoStock, movimientos.ListMeta, error)
}

// Snapshot estado renderizable de la lista tras un fetch no descartado.
type Snapshot struct {
	Rows        []entity.MovimientoStock
	Meta        movimientos.ListMeta
	Refrescando bool // true si vino de un soft refresh
}

// PollerConfig opciones del poller.
type PollerConfig struct {
	Interval time.Duration // 0 = DefaultInterval
}

// Poller máquina de refresco de la lista: emite el fetch completo cuando
// cambian filtros o página, y re-emite en un intervalo fijo mientras la vista
// esté visible y ninguna condición de pausa aplique. Cada fetch lleva un
// número de secuencia creciente; una respuesta cuya secuencia quedó atrás se
// descarta antes de tocar el estado, así una request lenta nunca pisa datos
// más nuevos.
type Poller struct {
	mu      sync.Mutex
	svc     Listador
	filtros *FiltroController

	interval time.Duration
	estado   EstadoPoll
	visible  bool
	modales  map[string]bool

	seq uint64 // última secuencia emitida; el guard compara contra ella

	rows        []entity.MovimientoStock
	meta        movimientos.ListMeta
	ultimoError error

	onUpdate func(Snapshot)
	log      *logger.Logger
}

// NewPoller construye el poller; arranca visible y sin modales abiertos.
func NewPoller(svc Listador, filtros *FiltroController, cfg PollerConfig, onUpdate func(Snapshot), log *logger.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Poller{
		svc:      svc,
		filtros:  filtros,
		interval: cfg.Interval,
		visible:  true,
		modales:  make(map[string]bool),
		onUpdate: onUpdate,
		log:      log,
	}
}

// Run corre el loop de polling hasta que el contexto se cancele. Cada tick
// emite un soft refresh salvo que alguna condición de pausa aplique.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.interval).Msg("poller: iniciado")

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller: detenido")
			return
		case <-ticker.C:
			if motivos := p.MotivoPausa(); len(motivos) > 0 {
				p.mu.Lock()
				p.estado = EstadoPausado
				p.mu.Unlock()
				p.log.Trace().Strs("motivos", motivos).Msg("poller: tick suprimido")
				continue
			}
			p.fetch(ctx, true)
		}
	}
}

// Refrescar emite el fetch completo (con skeleton). Se invoca al montar la
// vista y en cada cambio de applied o de página.
func (p *Poller) Refrescar(ctx context.Context) {
	p.fetch(ctx, false)
}

func (p *Poller) fetch(ctx context.Context, silencioso bool) {
	p.mu.Lock()
	p.seq++
	mi := p.seq
	if silencioso {
		p.estado = EstadoRefrescando
	} else {
		p.estado = EstadoCargando
	}
	p.mu.Unlock()

	f := p.filtros.Applied()
	page, pageSize := p.filtros.Pagina()

	rows, meta, err := p.svc.Listar(ctx, f, page, pageSize)

	p.mu.Lock()
	if mi != p.seq {
		// Llegó tarde: ya se emitió una request más nueva. Se descarta sin
		// tocar el estado.
		p.mu.Unlock()
		p.log.Debug().Uint64("seq", mi).Uint64("ultima", p.seq).Msg("poller: respuesta vieja descartada")
		return
	}
	p.estado = EstadoIdle
	if err != nil {
		p.ultimoError = err
		p.mu.Unlock()
		p.log.Warn().Err(err).Bool("silencioso", silencioso).Msg("poller: fetch falló")
		return
	}
	p.rows = rows
	p.meta = meta
	p.ultimoError = nil
	cb := p.onUpdate
	snap := Snapshot{Rows: rows, Meta: meta, Refrescando: silencioso}
	p.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// SetVisible informa visibilidad del documento/terminal: oculto detiene el
// polling por completo; visible lo reanuda en el próximo tick.
func (p *Poller) SetVisible(v bool) {
	p.mu.Lock()
	p.visible = v
	p.mu.Unlock()
}

// AbrirModal registra un modal/drawer abierto (detalle, editar-notas,
// revertir, crear-ajuste); mientras haya alguno el polling queda suspendido.
func (p *Poller) AbrirModal(nombre string) {
	p.mu.Lock()
	p.modales[nombre] = true
	p.mu.Unlock()
}

// CerrarModal quita el modal del registro.
func (p *Poller) CerrarModal(nombre string) {
	p.mu.Lock()
	delete(p.modales, nombre)
	p.mu.Unlock()
}

// MotivoPausa devuelve las condiciones de pausa activas (vacío = puede
// refrescar). Tenerlas explícitas deja auditable por qué el polling se detuvo.
func (p *Poller) MotivoPausa() []string {
	var motivos []string
	p.mu.Lock()
	if !p.visible {
		motivos = append(motivos, "oculto")
	}
	abiertos := make([]string, 0, len(p.modales))
	for nombre := range p.modales {
		abiertos = append(abiertos, "modal:"+nombre)
	}
	p.mu.Unlock()
	sort.Strings(abiertos)
	motivos = append(motivos, abiertos...)
	if p.filtros != nil && p.filtros.Escribiendo() {
		motivos = append(motivos, "escribiendo")
	}
	return motivos
}

// Estado devuelve el estado actual de la máquina.
func (p *Poller) Estado() EstadoPoll {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.estado
}

// Snapshot devuelve la última lista no descartada y su meta.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Rows: p.rows, Meta: p.meta}
}

// UltimoError devuelve el error del último fetch fallido (nil tras un éxito).
func (p *Poller) UltimoError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ultimoError
}
