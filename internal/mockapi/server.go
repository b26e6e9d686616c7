package mockapi

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// AppConfig opciones del servidor mock.
type AppConfig struct {
	Name        string
	OpenAPIPath string // ruta al api/openapi.json; vacío o inexistente = sin /docs
	Log         *logger.Logger
}

// NewApp arma la aplicación Fiber con las rutas del recurso
// /api/stock-movimientos y, si hay documento OpenAPI, la UI en /docs.
func NewApp(store *Store, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	if cfg.OpenAPIPath != "" {
		if _, err := os.Stat(cfg.OpenAPIPath); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.OpenAPIPath,
				Path:     "docs",
				Title:    "API stock-movimientos",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})

	h := NewHandler(store, cfg.Log)
	api := app.Group("/api")
	grupo := api.Group("/stock-movimientos")
	grupo.Get("/", h.Listar)
	grupo.Post("/", h.Crear)
	grupo.Get("/:id", h.Obtener)
	grupo.Put("/:id", h.Actualizar)
	grupo.Post("/:id/revertir", h.Revertir)

	return app
}
