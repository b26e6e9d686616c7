// Package mockapi implementa en memoria la API de /stock-movimientos con la
// misma semántica que el backend real: ledger append-only con snapshots de
// saldo, clave de idempotencia, una sola reversa por entrada y saldos nunca
// negativos. Sirve de blanco local para cmd/ledger y de banco de pruebas
// end-to-end.
package mockapi

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// claveStock identifica el balde de saldo: una combinación
// producto/local/lugar/estado lleva su propio saldo corrido.
type claveStock struct {
	producto, local, lugar, estado int64
}

// Catalogo nombres de las entidades referenciadas, para el enriquecimiento
// denormalizado (producto.nombre, local.nombre, ...) de las respuestas.
type Catalogo struct {
	Productos map[int64]string
	Locales   map[int64]string
	Lugares   map[int64]string
	Estados   map[int64]string
	Usuarios  map[int64]string
}

// Store ledger en memoria. Seguro para uso concurrente.
type Store struct {
	mu       sync.Mutex
	entradas []*entity.MovimientoStock // orden de inserción
	porClave map[string]int64          // clave_idempotencia -> id
	saldos   map[claveStock]decimal.Decimal
	stockIDs map[claveStock]int64
	nextID   int64
	catalogo Catalogo
	now      func() time.Time
}

// NewStore construye el store vacío con el catálogo dado.
func NewStore(cat Catalogo) *Store {
	return &Store{
		porClave: make(map[string]int64),
		saldos:   make(map[claveStock]decimal.Decimal),
		stockIDs: make(map[claveStock]int64),
		catalogo: cat,
		now:      time.Now,
	}
}

// CrearInput entrada para registrar un movimiento.
type CrearInput struct {
	Tipo              string
	Direccion         string
	Delta             decimal.Decimal
	Moneda            string
	ProductoID        int64
	LocalID           int64
	LugarID           int64
	EstadoID          int64
	RefTabla          string
	RefID             *int64
	ClaveIdempotencia string
	UsuarioID         int64
	Notas             string
}

// Crear registra una entrada nueva del ledger: valida tipo/dirección/signo,
// honra la clave de idempotencia (misma clave devuelve la entrada original
// sin duplicar) y escribe los snapshots de saldo. Rechaza un delta que
// dejaría el saldo negativo.
func (s *Store) Crear(in CrearInput) (*entity.MovimientoStock, error) {
	if err := validarCrear(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ClaveIdempotencia != "" {
		if id, ok := s.porClave[in.ClaveIdempotencia]; ok {
			return s.copiar(id), nil
		}
	}
	return s.insertar(in)
}

func validarCrear(in CrearInput) error {
	if !entity.TipoValido(in.Tipo) {
		return fmt.Errorf("%w: tipo %q desconocido", domain.ErrInvalidInput, in.Tipo)
	}
	if !entity.DireccionValida(in.Direccion) {
		return fmt.Errorf("%w: dirección %q", domain.ErrInvalidInput, in.Direccion)
	}
	if in.ProductoID == 0 || in.LocalID == 0 || in.LugarID == 0 || in.EstadoID == 0 {
		return fmt.Errorf("%w: producto_id, local_id, lugar_id y estado_id son obligatorios", domain.ErrInvalidInput)
	}
	if in.Delta.IsZero() {
		return fmt.Errorf("%w: delta no puede ser cero", domain.ErrInvalidInput)
	}
	// Convención de creación: OUT lleva delta negativo, IN positivo.
	if in.Direccion == entity.DireccionOut && in.Delta.IsPositive() {
		return domain.ErrSignoInconsistente
	}
	if in.Direccion == entity.DireccionIn && in.Delta.IsNegative() {
		return domain.ErrSignoInconsistente
	}
	if utf8.RuneCountInString(in.Notas) > entity.NotasMaxLen {
		return fmt.Errorf("%w: notas supera %d caracteres", domain.ErrInvalidInput, entity.NotasMaxLen)
	}
	return nil
}

// insertar asume el lock tomado y la entrada validada.
func (s *Store) insertar(in CrearInput) (*entity.MovimientoStock, error) {
	key := claveStock{in.ProductoID, in.LocalID, in.LugarID, in.EstadoID}
	saldoAnterior, ok := s.saldos[key]
	if !ok {
		saldoAnterior = decimal.Zero
	}
	saldoPosterior := saldoAnterior.Add(in.Delta)
	if saldoPosterior.IsNegative() {
		return nil, domain.ErrSaldoInsuficiente
	}

	if _, ok := s.stockIDs[key]; !ok {
		s.stockIDs[key] = int64(len(s.stockIDs)) + 1
	}

	s.nextID++
	mov := &entity.MovimientoStock{
		ID:                s.nextID,
		Tipo:              in.Tipo,
		Direccion:         in.Direccion,
		Delta:             in.Delta,
		SaldoAnterior:     saldoAnterior,
		SaldoPosterior:    saldoPosterior,
		Moneda:            in.Moneda,
		ProductoID:        in.ProductoID,
		LocalID:           in.LocalID,
		LugarID:           in.LugarID,
		EstadoID:          in.EstadoID,
		StockID:           s.stockIDs[key],
		UsuarioID:         in.UsuarioID,
		Producto:          s.ref(s.catalogo.Productos, in.ProductoID),
		Local:             s.ref(s.catalogo.Locales, in.LocalID),
		Lugar:             s.ref(s.catalogo.Lugares, in.LugarID),
		Estado:            s.ref(s.catalogo.Estados, in.EstadoID),
		Usuario:           s.ref(s.catalogo.Usuarios, in.UsuarioID),
		RefTabla:          in.RefTabla,
		RefID:             in.RefID,
		ClaveIdempotencia: in.ClaveIdempotencia,
		Notas:             in.Notas,
		CreatedAt:         s.now(),
	}

	s.entradas = append(s.entradas, mov)
	s.saldos[key] = saldoPosterior
	if in.ClaveIdempotencia != "" {
		s.porClave[in.ClaveIdempotencia] = mov.ID
	}
	return copiaDe(mov), nil
}

// Obtener devuelve una copia de la entrada por id.
func (s *Store) Obtener(id int64) (*entity.MovimientoStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.copiar(id); c != nil {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// ActualizarNotas muta únicamente el campo notas; el resto de la entrada es
// inmutable tras la creación.
func (s *Store) ActualizarNotas(id int64, notas string) (*entity.MovimientoStock, error) {
	if utf8.RuneCountInString(notas) > entity.NotasMaxLen {
		return nil, fmt.Errorf("%w: notas supera %d caracteres", domain.ErrInvalidInput, entity.NotasMaxLen)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mov := s.buscar(id)
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	mov.Notas = notas
	return copiaDe(mov), nil
}

// Revertir crea el AJUSTE de signo opuesto que cancela la entrada y enlaza
// mov_reversa_id en el original. Una entrada admite una sola reversa.
func (s *Store) Revertir(id int64, notas string, usuarioID int64) (*entity.MovimientoStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orig := s.buscar(id)
	if orig == nil {
		return nil, domain.ErrNotFound
	}
	if orig.MovReversaID != nil {
		return nil, domain.ErrYaRevertido
	}

	direccion := entity.DireccionIn
	if orig.Delta.IsPositive() {
		direccion = entity.DireccionOut
	}
	if notas == "" {
		notas = fmt.Sprintf("Reversa de #%d", orig.ID)
	}
	refID := orig.ID
	rev, err := s.insertar(CrearInput{
		Tipo:       entity.TipoAjuste,
		Direccion:  direccion,
		Delta:      orig.Delta.Neg(),
		Moneda:     orig.Moneda,
		ProductoID: orig.ProductoID,
		LocalID:    orig.LocalID,
		LugarID:    orig.LugarID,
		EstadoID:   orig.EstadoID,
		RefTabla:   "stock_movimientos",
		RefID:      &refID,
		UsuarioID:  usuarioID,
		Notas:      notas,
	})
	if err != nil {
		return nil, err
	}

	orig.MovReversaID = &rev.ID
	return rev, nil
}

// Filtros criterios del listado; valor cero = sin filtrar.
type Filtros struct {
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

// Listar devuelve la página pedida (más nuevas primero) y el total bajo los
// filtros. La búsqueda q es insensible a mayúsculas y acentos sobre producto,
// notas, tipo y ref_tabla.
func (s *Store) Listar(f Filtros, page, pageSize int) ([]entity.MovimientoStock, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var coinciden []*entity.MovimientoStock
	for i := len(s.entradas) - 1; i >= 0; i-- {
		if s.cumple(s.entradas[i], f) {
			coinciden = append(coinciden, s.entradas[i])
		}
	}

	total := len(coinciden)
	desde := (page - 1) * pageSize
	if desde >= total {
		return []entity.MovimientoStock{}, total
	}
	hasta := desde + pageSize
	if hasta > total {
		hasta = total
	}

	out := make([]entity.MovimientoStock, 0, hasta-desde)
	for _, m := range coinciden[desde:hasta] {
		out = append(out, *copiaDe(m))
	}
	return out, total
}

func (s *Store) cumple(m *entity.MovimientoStock, f Filtros) bool {
	if f.ProductoID != 0 && m.ProductoID != f.ProductoID {
		return false
	}
	if f.LocalID != 0 && m.LocalID != f.LocalID {
		return false
	}
	if f.LugarID != 0 && m.LugarID != f.LugarID {
		return false
	}
	if f.EstadoID != 0 && m.EstadoID != f.EstadoID {
		return false
	}
	if f.StockID != 0 && m.StockID != f.StockID {
		return false
	}
	if f.UsuarioID != 0 && m.UsuarioID != f.UsuarioID {
		return false
	}
	if f.Tipo != "" && m.Tipo != f.Tipo {
		return false
	}
	if f.Direccion != "" && m.Direccion != f.Direccion {
		return false
	}
	if f.RefTabla != "" && m.RefTabla != f.RefTabla {
		return false
	}
	if f.RefID != 0 && (m.RefID == nil || *m.RefID != f.RefID) {
		return false
	}
	if f.ClaveIdempotencia != "" && m.ClaveIdempotencia != f.ClaveIdempotencia {
		return false
	}
	if f.FechaDesde != "" {
		if desde, err := time.Parse("2006-01-02", f.FechaDesde); err == nil && m.CreatedAt.Before(desde) {
			return false
		}
	}
	if f.FechaHasta != "" {
		if hasta, err := time.Parse("2006-01-02", f.FechaHasta); err == nil && !m.CreatedAt.Before(hasta.AddDate(0, 0, 1)) {
			return false
		}
	}
	if f.Q != "" {
		q := plegar(f.Q)
		texto := plegar(strings.Join([]string{m.NombreProducto(), m.Notas, m.Tipo, m.RefTabla}, " "))
		if !strings.Contains(texto, q) {
			return false
		}
	}
	return true
}

// ── Helpers internos ──────────────────────────────────────────────────────────

func (s *Store) buscar(id int64) *entity.MovimientoStock {
	for _, m := range s.entradas {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *Store) copiar(id int64) *entity.MovimientoStock {
	if m := s.buscar(id); m != nil {
		return copiaDe(m)
	}
	return nil
}

func copiaDe(m *entity.MovimientoStock) *entity.MovimientoStock {
	c := *m
	if m.RefID != nil {
		v := *m.RefID
		c.RefID = &v
	}
	if m.MovReversaID != nil {
		v := *m.MovReversaID
		c.MovReversaID = &v
	}
	return &c
}

func (s *Store) ref(nombres map[int64]string, id int64) *entity.Referencia {
	if id == 0 || nombres == nil {
		return nil
	}
	nombre, ok := nombres[id]
	if !ok {
		return nil
	}
	return &entity.Referencia{ID: id, Nombre: nombre}
}
