package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/logging"
	"github.com/Zuo-Peng/framechat/internal/submit"
)

// Deps are the collaborators the relay routes need.
type Deps struct {
	Backend  submit.Backend
	Resolver *frame.Resolver
	DataDir  string // served under /data when non-empty
	Logger   *logging.Logger
}

type Server struct {
	app *fiber.App
	log *logging.Logger
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             1 * 1024 * 1024,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(requestLogger(deps.Logger))

	if deps.DataDir != "" {
		app.Static("/data", deps.DataDir)
	}

	api := app.Group("/api")
	NewController(deps.Backend, deps.Resolver, deps.Logger).RegisterRoutes(api)

	return &Server{app: app, log: deps.Logger}
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run(addr string) error {
	s.log.Info("server", "relay listening", map[string]interface{}{"addr": addr})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func requestLogger(log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug("server", "request", map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return err
	}
}
