// Package server exposes the core operations over HTTP. Identity arrives in
// the X-Actor header, set by the login front-end this service sits behind;
// authorization decisions stay with the authz collaborator.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/core/services"
	"github.com/jakechorley/flightguard/pkg/metrics"
	"github.com/jakechorley/flightguard/pkg/realtime"
)

// Store is the full persistence surface the HTTP layer needs; both the
// Postgres and the in-memory backends satisfy it.
type Store interface {
	services.AssignmentStore
	services.FlightStore
	services.ConfigStore
	services.ImportStore
	services.DatasetStore
}

// Server wires the HTTP routes to the core services.
type Server struct {
	echo    *echo.Echo
	store   Store
	auth    authz.Authorizer
	pub     realtime.Publisher
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New builds the server and registers all routes.
func New(store Store, auth authz.Authorizer, pub realtime.Publisher, logger *zap.Logger, m *metrics.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		store:   store,
		auth:    auth,
		pub:     pub,
		logger:  logger,
		metrics: m,
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api", s.actorMiddleware, s.durationMiddleware)
	api.POST("/datasets", s.createDataset)
	api.GET("/datasets/:id/flights", s.listFlights)
	api.GET("/datasets/:id/runs", s.listRuns)
	api.GET("/datasets/:id/targets", s.getTargets)
	api.PUT("/datasets/:id/targets", s.saveTargets)
	api.PUT("/datasets/:id/settings", s.lockParameters)
	api.POST("/datasets/:id/import", s.importManifest)
	api.POST("/datasets/:id/assign", s.runAssignment)
	api.POST("/flights/:id/operate", s.operateFlight)

	return s
}

// Start begins serving on addr until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// actorMiddleware requires the caller identity header on every API route.
func (s *Server) actorMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor := c.Request().Header.Get("X-Actor")
		if actor == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing X-Actor header")
		}
		c.Set("actor", actor)
		return next(c)
	}
}

func (s *Server) durationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if s.metrics != nil {
			s.metrics.RequestDuration.
				WithLabelValues(c.Path(), c.Request().Method).
				Observe(time.Since(start).Seconds())
		}
		return err
	}
}

func actor(c echo.Context) string {
	v, _ := c.Get("actor").(string)
	return v
}

// httpStatus maps core error sentinels to response codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidWorkDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrDatasetNotFound), errors.Is(err, model.ErrFlightNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrIllegalTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, operation string, err error) error {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("operation", operation), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
	return echo.NewHTTPError(status, err.Error())
}
