package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App  AppConfig
	API  APIConfig
	Poll PollConfig
	HTTP HTTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// APIConfig configuración del backend remoto que consume la consola.
type APIConfig struct {
	BaseURL      string // ej. https://api.ejemplo.com/api
	UsuarioLogID int64  // id del usuario actuante, inyectado en cada request
	TimeoutSec   int    // timeout fijo por request
}

// Timeout devuelve el timeout del cliente HTTP.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// PollConfig tiempos del refresco automático y del controlador de filtros.
type PollConfig struct {
	IntervalMS int // tick del soft refresh
	DebounceMS int // espera antes de auto-aplicar el draft
	TypingMS   int // ventana de "escribiendo" que pausa el polling
}

// Interval, Debounce, Typing devuelven las duraciones configuradas.
func (c PollConfig) Interval() time.Duration { return time.Duration(c.IntervalMS) * time.Millisecond }
func (c PollConfig) Debounce() time.Duration { return time.Duration(c.DebounceMS) * time.Millisecond }
func (c PollConfig) Typing() time.Duration   { return time.Duration(c.TypingMS) * time.Millisecond }

// HTTPConfig configuración del servidor HTTP (mock de la API para desarrollo).
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, POLL_INTERVAL_MS, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// Bind de variables de entorno (Viper las lee automáticamente si AutomaticEnv está activo)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "stock-ledger"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:      getString(v, "API_BASE_URL", "http://localhost:8080/api"),
			UsuarioLogID: int64(getInt(v, "API_USUARIO_LOG_ID", 0)),
			TimeoutSec:   getInt(v, "API_TIMEOUT_SEC", 15),
		},
		Poll: PollConfig{
			IntervalMS: getInt(v, "POLL_INTERVAL_MS", 1500),
			DebounceMS: getInt(v, "POLL_DEBOUNCE_MS", 220),
			TypingMS:   getInt(v, "POLL_TYPING_MS", 900),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
