// Package apiclient implementa el cliente HTTP base contra la API del
// backend: inyecta el id del usuario actuante en cada request y normaliza
// todo fallo (de negocio o de red) a un APIError uniforme, de modo que los
// consumidores pueden ramificar por Code sin casos especiales de transporte.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// CodeNetwork código sintético para fallos de transporte (timeout, DNS, etc.)
// o respuestas sin el sobre de error reconocible.
const CodeNetwork = "NETWORK"

// mensajeRed mensaje fijo de cara al usuario para errores de transporte.
const mensajeRed = "No pudimos comunicarnos con el servidor. Verificá tu conexión e intentá de nuevo."

// defaultTimeout timeout fijo por request.
const defaultTimeout = 15 * time.Second

// APIError error normalizado { ok:false, code, message, tips, details }.
// Si el servidor respondió su sobre de error, pasa tal cual; si no, se
// sintetiza uno con Code NETWORK y el estado HTTP original bajo Details.
type APIError struct {
	Code    string
	Message string
	Tips    []string
	Details map[string]any
}

func (e *APIError) Error() string {
	if len(e.Tips) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Tips, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// EsRed indica si el error es de transporte y no una respuesta de negocio.
func (e *APIError) EsRed() bool {
	return e.Code == CodeNetwork
}

// wireError sobre de error que emite el backend en respuestas no-2xx.
type wireError struct {
	Ok           *bool          `json:"ok"`
	Code         string         `json:"code"`
	MensajeError string         `json:"mensajeError"`
	Tips         []string       `json:"tips"`
	Details      map[string]any `json:"details"`
}

// Config opciones del cliente.
type Config struct {
	BaseURL      string        // ej. http://localhost:8080/api
	UsuarioLogID int64         // usuario actuante; 0 = no inyectar
	Timeout      time.Duration // 0 = defaultTimeout (15s)
	Log          *logger.Logger
}

// Client cliente HTTP base. Seguro para uso concurrente.
type Client struct {
	baseURL      string
	usuarioLogID int64
	httpClient   *http.Client
	log          *logger.Logger
}

// New construye el cliente con el timeout fijo de la política (15 s salvo override).
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		usuarioLogID: cfg.UsuarioLogID,
		httpClient:   &http.Client{Timeout: timeout},
		log:          log,
	}
}

// Get hace GET path?query y decodifica el cuerpo 2xx en out (si out != nil).
// El usuario actuante viaja como query param usuario_log_id, sin pisar un
// valor ya provisto por el caller.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.usuarioLogID != 0 && query.Get("usuario_log_id") == "" {
		query.Set("usuario_log_id", strconv.FormatInt(c.usuarioLogID, 10))
	}
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post hace POST con cuerpo JSON. El usuario actuante se inyecta en el cuerpo
// como usuario_id, sin pisar un valor ya provisto.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	payload, err := c.conUsuario(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

// Put hace PUT con cuerpo JSON, con la misma inyección de usuario que Post.
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	payload, err := c.conUsuario(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, payload, out)
}

// conUsuario devuelve el cuerpo como mapa con usuario_id inyectado si falta.
// Pasar por json evita reflejar structs campo a campo.
func (c *Client) conUsuario(body any) (map[string]any, error) {
	m := map[string]any{}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("serializar cuerpo: %w", err)
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("cuerpo no es un objeto JSON: %w", err)
		}
	}
	if c.usuarioLogID != 0 {
		if v, ok := m["usuario_id"]; !ok || v == nil {
			m["usuario_id"] = c.usuarioLogID
		}
	}
	return m, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body map[string]any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializar cuerpo: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("construir request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("url", u).Msg("fallo de red")
		return &APIError{
			Code:    CodeNetwork,
			Message: mensajeRed,
			Details: map[string]any{"error": err.Error()},
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			Code:    CodeNetwork,
			Message: mensajeRed,
			Details: map[string]any{"error": err.Error()},
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.normalizarError(resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decodificar respuesta: %w", err)
		}
	}
	return nil
}

// normalizarError convierte una respuesta no-2xx en APIError: si el cuerpo
// trae el sobre {ok:false, code, mensajeError, ...} pasa tal cual; si no,
// se trata como fallo de transporte con el estado HTTP preservado en Details.
func (c *Client) normalizarError(status int, raw []byte) error {
	var we wireError
	if err := json.Unmarshal(raw, &we); err == nil && we.Code != "" {
		return &APIError{
			Code:    we.Code,
			Message: we.MensajeError,
			Tips:    we.Tips,
			Details: we.Details,
		}
	}
	return &APIError{
		Code:    CodeNetwork,
		Message: mensajeRed,
		Details: map[string]any{
			"status": status,
			"reason": http.StatusText(status),
		},
	}
}
