// Package ledger contiene la lógica de vista del ledger de movimientos:
// el controlador de filtros draft/applied, la máquina de refresco con
// descarte de respuestas viejas, la derivación de KPIs y el orquestador del
// detalle con sus tres acciones mutantes.
package ledger

import (
	"sync"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

// Tiempos por defecto del controlador de filtros.
const (
	DefaultDebounce = 220 * time.Millisecond // espera antes de auto-aplicar el draft
	DefaultTyping   = 900 * time.Millisecond // ventana "escribiendo" que pausa el polling
)

// FiltroConfig opciones del controlador.
type FiltroConfig struct {
	Debounce time.Duration // 0 = DefaultDebounce
	Typing   time.Duration // 0 = DefaultTyping
	PageSize int           // 0 = movimientos.DefaultPageSize
}

// FiltroController mantiene dos juegos de filtros en paralelo: draft (lo que
// el usuario está tipeando) y applied (lo último confirmado, que maneja la
// query). Cada edición arma un debounce corto que auto-aplica, y levanta la
// bandera "escribiendo" que el poller consulta para no pisar un filtro a
// medio tipear.
type FiltroController struct {
	mu       sync.Mutex
	draft    movimientos.ListFilters
	applied  movimientos.ListFilters
	page     int
	pageSize int

	typingHasta time.Time
	debounce    *time.Timer

	debounceDur time.Duration
	typingDur   time.Duration

	// onApply se invoca fuera del lock cada vez que applied o la página
	// cambian; típicamente dispara el fetch completo del poller.
	onApply func()
	now     func() time.Time
}

// NewFiltroController construye el controlador con defaults vacíos.
func NewFiltroController(cfg FiltroConfig, onApply func()) *FiltroController {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Typing <= 0 {
		cfg.Typing = DefaultTyping
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = movimientos.DefaultPageSize
	}
	return &FiltroController{
		page:        1,
		pageSize:    cfg.PageSize,
		debounceDur: cfg.Debounce,
		typingDur:   cfg.Typing,
		onApply:     onApply,
		now:         time.Now,
	}
}

// Editar aplica un cambio de campo sobre el draft: escribe el draft, extiende
// la ventana "escribiendo" y rearma el debounce de auto-aplicación. No toca
// applied; eso recién pasa cuando el debounce vence o con Aplicar explícito.
func (c *FiltroController) Editar(mod func(f *movimientos.ListFilters)) {
	c.mu.Lock()
	mod(&c.draft)
	c.typingHasta = c.now().Add(c.typingDur)
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.debounceDur, c.Aplicar)
	c.mu.Unlock()
}

// Escribiendo indica si seguimos dentro de la ventana de tipeo desde la
// última edición; mientras sea true el poller no refresca.
func (c *FiltroController) Escribiendo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.typingHasta)
}

// Aplicar copia draft -> applied y vuelve a la página 1.
func (c *FiltroController) Aplicar() {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.applied = c.draft
	c.page = 1
	cb := c.onApply
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Limpiar resetea draft y applied a los defaults vacíos y la paginación a 1.
// Es idempotente: limpiar dos veces deja exactamente el mismo estado.
func (c *FiltroController) Limpiar() {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.draft = movimientos.ListFilters{}
	c.applied = movimientos.ListFilters{}
	c.page = 1
	c.typingHasta = time.Time{}
	cb := c.onApply
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Draft devuelve una copia del filtro en edición.
func (c *FiltroController) Draft() movimientos.ListFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Applied devuelve una copia del filtro confirmado que maneja la query.
func (c *FiltroController) Applied() movimientos.ListFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}

// Pagina devuelve la página y el tamaño de página vigentes.
func (c *FiltroController) Pagina() (page, pageSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page, c.pageSize
}

// SetPagina cambia de página (mínimo 1) y dispara el fetch completo.
func (c *FiltroController) SetPagina(page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.page = page
	cb := c.onApply
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}
