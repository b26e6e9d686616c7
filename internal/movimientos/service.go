// Package movimientos expone los bindings tipados contra el recurso
// /stock-movimientos: listar, obtener, crear, actualizar notas y revertir.
package movimientos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-ledger/internal/apiclient"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

const basePath = "/stock-movimientos"

// Service bindings del ledger sobre el cliente HTTP base.
type Service struct {
	api *apiclient.Client
}

// NewService construye el servicio.
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// itemEnvelope forma { ok, data } de las respuestas de un solo movimiento.
type itemEnvelope struct {
	Ok   bool                    `json:"ok"`
	Data *entity.MovimientoStock `json:"data"`
}

// Listar trae una página del ledger con los filtros dados. Acepta respuesta
// en sobre {data, meta} o array pelado (ver normalizeListResponse).
func (s *Service) Listar(ctx context.Context, f ListFilters, page, pageSize int) ([]entity.MovimientoStock, ListMeta, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var raw json.RawMessage
	if err := s.api.Get(ctx, basePath, f.QueryValues(page, pageSize), &raw); err != nil {
		return nil, ListMeta{}, err
	}
	return normalizeListResponse(raw, page, pageSize)
}

// Obtener trae el detalle completo de un movimiento por id.
func (s *Service) Obtener(ctx context.Context, id int64) (*entity.MovimientoStock, error) {
	var env itemEnvelope
	if err := s.api.Get(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("respuesta sin data para movimiento %d", id)
	}
	return env.Data, nil
}

// CrearRequest body para POST /stock-movimientos.
type CrearRequest struct {
	Tipo              string          `json:"tipo"`
	Direccion         string          `json:"direccion"`
	Delta             decimal.Decimal `json:"delta"`
	Moneda            string          `json:"moneda,omitempty"`
	ProductoID        int64           `json:"producto_id"`
	LocalID           int64           `json:"local_id"`
	LugarID           int64           `json:"lugar_id"`
	EstadoID          int64           `json:"estado_id"`
	RefTabla          string          `json:"ref_tabla,omitempty"`
	RefID             *int64          `json:"ref_id,omitempty"`
	ClaveIdempotencia string          `json:"clave_idempotencia,omitempty"`
	Notas             string          `json:"notas,omitempty"`
}

// Crear registra un movimiento nuevo. Si el caller no aportó clave de
// idempotencia se genera una, para que un reintento del mismo submit no
// duplique la entrada.
func (s *Service) Crear(ctx context.Context, req CrearRequest) (*entity.MovimientoStock, error) {
	if req.ClaveIdempotencia == "" {
		req.ClaveIdempotencia = uuid.New().String()
	}
	var env itemEnvelope
	if err := s.api.Post(ctx, basePath, req, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("respuesta de creación sin data")
	}
	return env.Data, nil
}

// ActualizarNotas actualiza únicamente el campo notas de un movimiento.
func (s *Service) ActualizarNotas(ctx context.Context, id int64, notas string) (*entity.MovimientoStock, error) {
	body := map[string]any{"notas": notas}
	var env itemEnvelope
	if err := s.api.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), body, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("respuesta de actualización sin data")
	}
	return env.Data, nil
}

// RevertirRequest body opcional para POST /stock-movimientos/:id/revertir.
type RevertirRequest struct {
	Notas string `json:"notas,omitempty"`
}

// Revertir pide al servidor la reversa del movimiento: el servidor crea el
// AJUSTE de signo opuesto y lo devuelve como data.
func (s *Service) Revertir(ctx context.Context, id int64, req RevertirRequest) (*entity.MovimientoStock, error) {
	var env itemEnvelope
	if err := s.api.Post(ctx, fmt.Sprintf("%s/%d/revertir", basePath, id), req, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("respuesta de reversa sin data")
	}
	return env.Data, nil
}
