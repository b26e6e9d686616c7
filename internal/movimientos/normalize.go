package movimientos

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// ListMeta metadatos de página reportados por el servidor. Total nunca se
// recalcula en el cliente.
type ListMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// listEnvelope forma { ok, data, meta } del listado.
type listEnvelope struct {
	Ok   bool                     `json:"ok"`
	Data []entity.MovimientoStock `json:"data"`
	Meta *ListMeta                `json:"meta"`
}

// normalizeListResponse acepta las dos formas de respuesta del listado —
// array pelado `[...]` o sobre `{data, meta}` — y devuelve siempre
// (rows, meta). Un array sintetiza meta {page, pageSize, total: len(data)}.
// Es el único punto que ramifica por forma; aguas abajo nadie vuelve a hacerlo.
func normalizeListResponse(raw []byte, page, pageSize int) ([]entity.MovimientoStock, ListMeta, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ListMeta{}, fmt.Errorf("respuesta de listado vacía")
	}

	if trimmed[0] == '[' {
		var rows []entity.MovimientoStock
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, ListMeta{}, fmt.Errorf("decodificar listado (array): %w", err)
		}
		return rows, ListMeta{Total: len(rows), Page: page, PageSize: pageSize}, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, ListMeta{}, fmt.Errorf("decodificar listado (sobre): %w", err)
	}
	meta := ListMeta{Total: len(env.Data), Page: page, PageSize: pageSize}
	if env.Meta != nil {
		meta = *env.Meta
	}
	return env.Data, meta, nil
}
