package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JayJamieson/csv-dwh/pkg/db"
	"github.com/JayJamieson/csv-dwh/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type Config struct {
	Port int
}

// RunReader exposes recorded runs. It is nil when no catalog is configured.
type RunReader interface {
	RecentRuns(ctx context.Context, limit int) ([]models.Run, error)
	GetRun(ctx context.Context, runID string) (models.Run, error)
	Events(ctx context.Context, runID string) ([]models.Event, error)
}

type Server struct {
	config Config
	router *echo.Echo
	db     *db.DB
	runs   RunReader
}

func New(config Config, database *db.DB, runs RunReader, logger *log.Logger) (*Server, error) {
	doc, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger

	server := &Server{
		config: config,
		router: e,
		db:     database,
		runs:   runs,
	}

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${method} ${uri} ${status} ${latency_human}\n",
		Output: logger.Output(),
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(validate)

	RegisterHandlers(e, server)
	server.setupDefaultRoutes()
	return server, nil
}

func (s *Server) setupDefaultRoutes() {
	s.router.GET("/doc.yml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", specYAML)
	})
	s.router.GET("/swagger/*", echoSwagger.EchoWrapHandlerV3(func(c *echoSwagger.Config) {
		c.URLs = []string{"/doc.yml"}
	}))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		addr := fmt.Sprintf(":%d", s.config.Port)
		if err := s.router.Start(addr); err != nil && err != http.ErrServerClosed {
			s.router.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.router.Logger.Info("Shutting down")

	if err := s.router.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
