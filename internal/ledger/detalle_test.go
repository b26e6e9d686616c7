package ledger_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/apiclient"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/ledger"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake del servicio
// ──────────────────────────────────────────────────────────────────────────────

type servicioFake struct {
	porID map[int64]*entity.MovimientoStock

	creados    []movimientos.CrearRequest
	crearResp  *entity.MovimientoStock
	crearErr   error
	notasErr   error
	revertidos []int64
	revResp    *entity.MovimientoStock
	revErr     error
}

func (s *servicioFake) Obtener(_ context.Context, id int64) (*entity.MovimientoStock, error) {
	mov, ok := s.porID[id]
	if !ok {
		return nil, errors.New("no encontrado")
	}
	return mov, nil
}

func (s *servicioFake) Crear(_ context.Context, req movimientos.CrearRequest) (*entity.MovimientoStock, error) {
	s.creados = append(s.creados, req)
	if s.crearErr != nil {
		return nil, s.crearErr
	}
	return s.crearResp, nil
}

func (s *servicioFake) ActualizarNotas(_ context.Context, id int64, notas string) (*entity.MovimientoStock, error) {
	if s.notasErr != nil {
		return nil, s.notasErr
	}
	mov := *s.porID[id]
	mov.Notas = notas
	s.porID[id] = &mov
	return &mov, nil
}

func (s *servicioFake) Revertir(_ context.Context, id int64, _ movimientos.RevertirRequest) (*entity.MovimientoStock, error) {
	s.revertidos = append(s.revertidos, id)
	if s.revErr != nil {
		return nil, s.revErr
	}
	return s.revResp, nil
}

type refrescosFake struct{ veces int }

func (r *refrescosFake) Refrescar(context.Context) { r.veces++ }

func movimiento(id int64, notas string) *entity.MovimientoStock {
	return &entity.MovimientoStock{
		ID:        id,
		Tipo:      entity.TipoAjuste,
		Direccion: entity.DireccionIn,
		Delta:     decimal.NewFromInt(5),
		Notas:     notas,
	}
}

func ajusteValido() ledger.AjusteInput {
	return ledger.AjusteInput{
		ProductoID: 1,
		LocalID:    1,
		LugarID:    1,
		EstadoID:   1,
		Direccion:  entity.DireccionOut,
		Magnitud:   decimal.NewFromInt(10),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Delta firmado y validación
// ──────────────────────────────────────────────────────────────────────────────

// El signo del delta sale de la dirección: OUT lleva magnitud negativa.
func TestDeltaAjuste(t *testing.T) {
	diez := decimal.NewFromInt(10)
	assert.True(t, ledger.DeltaAjuste(entity.DireccionOut, diez).Equal(decimal.NewFromInt(-10)))
	assert.True(t, ledger.DeltaAjuste(entity.DireccionIn, diez).Equal(diez))
}

func TestAjusteInput_Validar(t *testing.T) {
	assert.NoError(t, ajusteValido().Validar())

	// Todo vacío: cada campo obligatorio aparece en el error.
	err := ledger.AjusteInput{}.Validar()
	var ev *ledger.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	for _, campo := range []string{"producto_id", "local_id", "lugar_id", "estado_id", "direccion", "magnitud"} {
		assert.Contains(t, ev.Campos, campo)
	}

	in := ajusteValido()
	in.Magnitud = decimal.NewFromInt(-3) // la magnitud nunca lleva signo
	require.ErrorAs(t, in.Validar(), &ev)
	assert.Contains(t, ev.Campos, "magnitud")

	in = ajusteValido()
	in.Notas = strings.Repeat("x", entity.NotasMaxLen+1)
	require.ErrorAs(t, in.Validar(), &ev)
	assert.Contains(t, ev.Campos, "notas")
}

// La validación corta antes de cualquier request.
func TestDetalle_CrearAjusteInvalidoNoLlamaAlServicio(t *testing.T) {
	svc := &servicioFake{}
	d := ledger.NewDetalleController(svc, nil, nil)

	_, err := d.CrearAjuste(context.Background(), ledger.AjusteInput{})
	var ev *ledger.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.Empty(t, svc.creados)
	assert.Error(t, d.UltimoError())
}

// En éxito: request con delta firmado, refresco de lista y drawer sobre la
// entrada recién creada.
func TestDetalle_CrearAjuste(t *testing.T) {
	creado := movimiento(42, "")
	svc := &servicioFake{
		porID:     map[int64]*entity.MovimientoStock{42: creado},
		crearResp: creado,
	}
	lista := &refrescosFake{}
	d := ledger.NewDetalleController(svc, nil, lista)

	mov, err := d.CrearAjuste(context.Background(), ajusteValido())
	require.NoError(t, err)
	assert.EqualValues(t, 42, mov.ID)

	require.Len(t, svc.creados, 1)
	req := svc.creados[0]
	assert.Equal(t, entity.TipoAjuste, req.Tipo)
	assert.Equal(t, entity.DireccionOut, req.Direccion)
	assert.True(t, req.Delta.Equal(decimal.NewFromInt(-10)), "OUT debe mandar delta negativo")

	assert.Equal(t, 1, lista.veces)
	assert.EqualValues(t, 42, d.Seleccionado())
	require.NotNil(t, d.Detalle())
}

// ──────────────────────────────────────────────────────────────────────────────
// Detalle y descarte por selección
// ──────────────────────────────────────────────────────────────────────────────

func TestDetalle_AbrirYCerrar(t *testing.T) {
	svc := &servicioFake{porID: map[int64]*entity.MovimientoStock{7: movimiento(7, "nota")}}
	d := ledger.NewDetalleController(svc, nil, nil)

	require.NoError(t, d.Abrir(context.Background(), 7))
	require.NotNil(t, d.Detalle())
	assert.Equal(t, "nota", d.Detalle().Notas)
	assert.False(t, d.Cargando())

	d.Cerrar()
	assert.Zero(t, d.Seleccionado())
	assert.Nil(t, d.Detalle())
}

// ──────────────────────────────────────────────────────────────────────────────
// Notas
// ──────────────────────────────────────────────────────────────────────────────

// El enable de Guardar replica la comparación exacta: un espacio al final ya
// cuenta como cambio.
func TestDetalle_PuedeGuardarNotas(t *testing.T) {
	svc := &servicioFake{porID: map[int64]*entity.MovimientoStock{7: movimiento(7, "original")}}
	d := ledger.NewDetalleController(svc, nil, nil)

	assert.False(t, d.PuedeGuardarNotas("lo que sea"), "sin detalle cargado no hay nada que guardar")

	require.NoError(t, d.Abrir(context.Background(), 7))
	assert.False(t, d.PuedeGuardarNotas("original"))
	assert.True(t, d.PuedeGuardarNotas("original "))
	assert.True(t, d.PuedeGuardarNotas("otra cosa"))
	assert.False(t, d.PuedeGuardarNotas(strings.Repeat("x", entity.NotasMaxLen+1)))
}

func TestDetalle_GuardarNotas(t *testing.T) {
	svc := &servicioFake{porID: map[int64]*entity.MovimientoStock{7: movimiento(7, "original")}}
	lista := &refrescosFake{}
	d := ledger.NewDetalleController(svc, nil, lista)
	require.NoError(t, d.Abrir(context.Background(), 7))

	require.NoError(t, d.GuardarNotas(context.Background(), "corregida"))
	assert.Equal(t, "corregida", d.Detalle().Notas)
	assert.Equal(t, 1, lista.veces)
	assert.NoError(t, d.UltimoError())

	// Sin cambios: validación local, sin request.
	err := d.GuardarNotas(context.Background(), "corregida")
	var ev *ledger.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.Contains(t, ev.Campos, "notas")
}

// Un fallo del servidor queda inline; el detalle no cambia y el drawer no se
// cierra.
func TestDetalle_GuardarNotasFalla(t *testing.T) {
	svc := &servicioFake{porID: map[int64]*entity.MovimientoStock{7: movimiento(7, "original")}}
	svc.notasErr = &apiclient.APIError{Code: apiclient.CodeNetwork, Message: "sin conexión"}
	d := ledger.NewDetalleController(svc, nil, nil)
	require.NoError(t, d.Abrir(context.Background(), 7))

	err := d.GuardarNotas(context.Background(), "nueva")
	require.Error(t, err)
	assert.Equal(t, "original", d.Detalle().Notas, "pesimista: sin confirmación no hay cambio local")
	assert.EqualValues(t, 7, d.Seleccionado())
	assert.ErrorIs(t, d.UltimoError(), err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversa
// ──────────────────────────────────────────────────────────────────────────────

func TestDetalle_Revertir(t *testing.T) {
	original := movimiento(7, "")
	reversa := movimiento(8, "Reversa de #7")
	revID := int64(8)
	svc := &servicioFake{
		porID:   map[int64]*entity.MovimientoStock{7: original, 8: reversa},
		revResp: reversa,
	}
	lista := &refrescosFake{}
	d := ledger.NewDetalleController(svc, nil, lista)
	require.NoError(t, d.Abrir(context.Background(), 7))
	require.True(t, d.PuedeRevertir())

	rev, err := d.Revertir(context.Background(), "")
	require.NoError(t, err)
	assert.EqualValues(t, 8, rev.ID)
	assert.Equal(t, []int64{7}, svc.revertidos)
	assert.Equal(t, 1, lista.veces)
	assert.EqualValues(t, 8, d.Seleccionado(), "el drawer pasa a la entrada de reversa")

	// La entrada original ya revertida bloquea una segunda reversa.
	original.MovReversaID = &revID
	require.NoError(t, d.Abrir(context.Background(), 7))
	assert.False(t, d.PuedeRevertir())
	_, err = d.Revertir(context.Background(), "")
	var ev *ledger.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.Contains(t, ev.Campos, "mov_reversa_id")
	assert.Len(t, svc.revertidos, 1, "la segunda reversa no llega al servidor")
}

// El servidor sigue siendo la autoridad: su rechazo se muestra inline.
func TestDetalle_RevertirRechazadoPorElServidor(t *testing.T) {
	svc := &servicioFake{
		porID:  map[int64]*entity.MovimientoStock{7: movimiento(7, "")},
		revErr: &apiclient.APIError{Code: "YA_REVERTIDO", Message: "ya fue revertido"},
	}
	d := ledger.NewDetalleController(svc, nil, nil)
	require.NoError(t, d.Abrir(context.Background(), 7))

	_, err := d.Revertir(context.Background(), "")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "YA_REVERTIDO", apiErr.Code)
	assert.EqualValues(t, 7, d.Seleccionado(), "el drawer queda abierto con el error inline")
}
