package ledger_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/ledger"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake del listador
// ──────────────────────────────────────────────────────────────────────────────

type listadorFake struct {
	mu       sync.Mutex
	llamadas int
	fn       func(llamada int) ([]entity.MovimientoStock, movimientos.ListMeta, error)
}

func (l *listadorFake) Listar(_ context.Context, _ movimientos.ListFilters, _, _ int) ([]entity.MovimientoStock, movimientos.ListMeta, error) {
	l.mu.Lock()
	l.llamadas++
	n := l.llamadas
	fn := l.fn
	l.mu.Unlock()
	return fn(n)
}

func (l *listadorFake) vecesLlamado() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.llamadas
}

func filaCon(id int64) entity.MovimientoStock {
	return entity.MovimientoStock{ID: id, Delta: decimal.NewFromInt(1), Direccion: entity.DireccionIn}
}

// ──────────────────────────────────────────────────────────────────────────────
// Descarte de respuestas viejas
// ──────────────────────────────────────────────────────────────────────────────

// Si una request vieja (seq N) resuelve después de una más nueva (seq N+1),
// su respuesta se descarta y no pisa el estado más nuevo.
func TestPoller_DescartaRespuestaVieja(t *testing.T) {
	bloqueo := make(chan struct{})
	fake := &listadorFake{fn: func(llamada int) ([]entity.MovimientoStock, movimientos.ListMeta, error) {
		if llamada == 1 {
			<-bloqueo // la primera request queda colgada en la red
			return []entity.MovimientoStock{filaCon(1)}, movimientos.ListMeta{Total: 1, Page: 1, PageSize: 20}, nil
		}
		return []entity.MovimientoStock{filaCon(2)}, movimientos.ListMeta{Total: 2, Page: 1, PageSize: 20}, nil
	}}

	var actualizaciones atomic.Int32
	filtros := ledger.NewFiltroController(ledger.FiltroConfig{}, nil)
	p := ledger.NewPoller(fake, filtros, ledger.PollerConfig{}, func(ledger.Snapshot) {
		actualizaciones.Add(1)
	}, nil)

	hecho := make(chan struct{})
	go func() {
		p.Refrescar(context.Background()) // seq 1, bloqueada
		close(hecho)
	}()
	require.Eventually(t, func() bool { return fake.vecesLlamado() == 1 }, time.Second, time.Millisecond)

	p.Refrescar(context.Background()) // seq 2, resuelve ya
	require.Equal(t, 2, fake.vecesLlamado())

	snap := p.Snapshot()
	require.Len(t, snap.Rows, 1)
	assert.EqualValues(t, 2, snap.Rows[0].ID)

	// Libera la request vieja: debe descartarse sin tocar nada.
	close(bloqueo)
	<-hecho

	snap = p.Snapshot()
	require.Len(t, snap.Rows, 1)
	assert.EqualValues(t, 2, snap.Rows[0].ID, "la respuesta vieja no debe pisar la nueva")
	assert.Equal(t, 2, snap.Meta.Total)
	assert.Equal(t, int32(1), actualizaciones.Load(), "solo la respuesta vigente notifica")
	assert.Equal(t, ledger.EstadoIdle, p.Estado())
}

// ──────────────────────────────────────────────────────────────────────────────
// Condiciones de pausa
// ──────────────────────────────────────────────────────────────────────────────

func TestPoller_MotivosDePausa(t *testing.T) {
	fake := &listadorFake{fn: func(int) ([]entity.MovimientoStock, movimientos.ListMeta, error) {
		return nil, movimientos.ListMeta{}, nil
	}}
	filtros := ledger.NewFiltroController(ledger.FiltroConfig{Typing: 200 * time.Millisecond}, nil)
	p := ledger.NewPoller(fake, filtros, ledger.PollerConfig{}, nil, nil)

	assert.Empty(t, p.MotivoPausa(), "visible y sin modales: puede refrescar")

	p.SetVisible(false)
	assert.Contains(t, p.MotivoPausa(), "oculto")
	p.SetVisible(true)

	p.AbrirModal(ledger.ModalDetalle)
	p.AbrirModal(ledger.ModalRevertir)
	motivos := p.MotivoPausa()
	assert.Contains(t, motivos, "modal:detalle")
	assert.Contains(t, motivos, "modal:revertir")
	p.CerrarModal(ledger.ModalDetalle)
	p.CerrarModal(ledger.ModalRevertir)
	assert.Empty(t, p.MotivoPausa())

	filtros.Editar(func(f *movimientos.ListFilters) { f.Q = "a" })
	assert.Contains(t, p.MotivoPausa(), "escribiendo")
}

// Con un modal abierto el loop no emite fetches; al cerrarlo retoma.
func TestPoller_RunRespetaLaPausa(t *testing.T) {
	fake := &listadorFake{fn: func(int) ([]entity.MovimientoStock, movimientos.ListMeta, error) {
		return nil, movimientos.ListMeta{}, nil
	}}
	filtros := ledger.NewFiltroController(ledger.FiltroConfig{}, nil)
	p := ledger.NewPoller(fake, filtros, ledger.PollerConfig{Interval: 10 * time.Millisecond}, nil, nil)

	p.AbrirModal(ledger.ModalAjuste)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fake.vecesLlamado(), "con modal abierto no debe haber fetches")
	assert.Equal(t, ledger.EstadoPausado, p.Estado())

	p.CerrarModal(ledger.ModalAjuste)
	require.Eventually(t, func() bool { return fake.vecesLlamado() > 0 }, time.Second, 5*time.Millisecond)
}

// Oculto detiene el polling por completo; visible lo reanuda.
func TestPoller_RunRespetaVisibilidad(t *testing.T) {
	fake := &listadorFake{fn: func(int) ([]entity.MovimientoStock, movimientos.ListMeta, error) {
		return nil, movimientos.ListMeta{}, nil
	}}
	filtros := ledger.NewFiltroController(ledger.FiltroConfig{}, nil)
	p := ledger.NewPoller(fake, filtros, ledger.PollerConfig{Interval: 10 * time.Millisecond}, nil, nil)
	p.SetVisible(false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fake.vecesLlamado())

	p.SetVisible(true)
	require.Eventually(t, func() bool { return fake.vecesLlamado() > 0 }, time.Second, 5*time.Millisecond)
}

// Un fetch fallido conserva las filas anteriores y deja el error consultable.
func TestPoller_ErrorConservaDatos(t *testing.T) {
	falla := false
	fake := &listadorFake{fn: func(llamada int) ([]entity.MovimientoStock, movimientos.ListMeta, error) {
		if falla {
			return nil, movimientos.ListMeta{}, assert.AnError
		}
		return []entity.MovimientoStock{filaCon(1)}, movimientos.ListMeta{Total: 1}, nil
	}}
	filtros := ledger.NewFiltroController(ledger.FiltroConfig{}, nil)
	p := ledger.NewPoller(fake, filtros, ledger.PollerConfig{}, nil, nil)

	p.Refrescar(context.Background())
	require.Len(t, p.Snapshot().Rows, 1)
	require.NoError(t, p.UltimoError())

	falla = true
	p.Refrescar(context.Background())
	assert.Len(t, p.Snapshot().Rows, 1, "las filas viejas se conservan ante un fallo")
	assert.Error(t, p.UltimoError())

	falla = false
	p.Refrescar(context.Background())
	assert.NoError(t, p.UltimoError())
}
