// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apimodel "github.com/platform-engineering-labs/composa/internal/api/model"
	"github.com/platform-engineering-labs/composa/internal/logging"
	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/emit"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

const DefaultPort = 8736

const (
	BasePath      = "/api/v1"
	ComposeRoute  = BasePath + "/compose"
	ValidateRoute = BasePath + "/validate"
	PlanRoute     = BasePath + "/plan"
	HealthRoute   = BasePath + "/health"
)

// ServerConfig carries the listener settings for the API server.
type ServerConfig struct {
	Port    int
	TLSCert string
	TLSKey  string
}

type Server struct {
	echo      *echo.Echo
	ctx       context.Context
	composers []compose.Composer
	config    *ServerConfig
}

func NewServer(ctx context.Context, composers []compose.Composer, config *ServerConfig) *Server {
	server := &Server{
		ctx:       ctx,
		composers: composers,
		config:    config,
	}

	server.echo = server.configureEcho()

	return server
}

// Start launches the server in a separate goroutine
func (s *Server) Start() {
	go func() {
		listen := listenAddress(s.config.Port)

		if s.config.TLSCert != "" && s.config.TLSKey != "" {
			if err := s.echo.StartTLS(listen, s.config.TLSCert, s.config.TLSKey); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.echo.Logger.Error(err)
			}
		} else {
			if err := s.echo.Start(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.echo.Logger.Error(err)
			}
		}
	}()
	<-s.ctx.Done()
	s.Stop()
}

// Stop gracefully shuts down the server, waiting for ongoing requests to complete
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	slog.Info("API server received shutdown")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		slog.Info("API server error when shutting down", "error", err)
	}
	slog.Info("API Server successfully shutdown")
}

func (s *Server) configureEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Logger = logging.NewEchoLogger()
	e.StdLogger = log.Default()

	// Composition endpoints
	e.POST(ComposeRoute, s.Compose)
	e.POST(ValidateRoute, s.Validate)
	e.POST(PlanRoute, s.Plan)

	// Health endpoint
	e.GET(HealthRoute, s.Health)

	return e
}

// Compose runs a full composition pass over the posted environment
// configuration and returns the resolved descriptors plus any validator
// findings.
func (s *Server) Compose(c echo.Context) error {
	cfg, err := bindConfig(c)
	if err != nil {
		if errors.Is(err, errResponseSent) {
			return nil
		}
		return err
	}

	g, err := compose.Compose(cfg, s.composers...)
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(http.StatusOK, &apimodel.ComposeResponse{
		PassID:     g.PassID,
		Resources:  g.Descriptors,
		Violations: apimodel.ReportViolations(g.Violations),
	})
}

// Validate composes the posted configuration and reports only the validator
// verdict; the descriptors themselves are not returned.
func (s *Server) Validate(c echo.Context) error {
	cfg, err := bindConfig(c)
	if err != nil {
		if errors.Is(err, errResponseSent) {
			return nil
		}
		return err
	}

	g, err := compose.Compose(cfg, s.composers...)
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(http.StatusOK, &apimodel.ValidateResponse{
		PassID:     g.PassID,
		Valid:      len(g.Blocking()) == 0,
		Violations: apimodel.ReportViolations(g.Violations),
	})
}

// Plan composes the posted configuration and diffs it against the snapshot
// included in the request.
func (s *Server) Plan(c echo.Context) error {
	var req apimodel.PlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan request: "+err.Error())
	}
	if req.Config == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Config is required")
	}
	if req.Config.Project == "" || req.Config.Environment == "" {
		return invalidConfig(c)
	}

	g, err := compose.Compose(req.Config, s.composers...)
	if err != nil {
		return mapError(c, err)
	}

	result, err := emit.Plan(g, req.Snapshot)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	changes := make([]apimodel.ChangeReport, len(result.Changes))
	for i, change := range result.Changes {
		changes[i] = apimodel.ChangeReport{
			Kind:  string(change.Kind),
			Key:   change.Key,
			Op:    string(change.Op),
			Patch: change.Patch,
		}
	}

	return c.JSON(http.StatusOK, &apimodel.PlanResponse{
		PassID:  result.PassID,
		Changes: changes,
	})
}

// Health is a simple check that the API server is running.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, nil)
}

// errResponseSent tells a handler the error body has already been written.
// The handler must return nil for it, or echo writes a second body after the
// first one.
var errResponseSent = errors.New("error response already sent")

func bindConfig(c echo.Context) (*model.EnvironmentConfig, error) {
	var cfg model.EnvironmentConfig
	if err := c.Bind(&cfg); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid environment configuration: "+err.Error())
	}
	if cfg.Project == "" || cfg.Environment == "" {
		if err := invalidConfig(c); err != nil {
			return nil, err
		}
		return nil, errResponseSent
	}
	return &cfg, nil
}

func invalidConfig(c echo.Context) error {
	return apiError(c, http.StatusBadRequest, apimodel.InvalidConfig,
		apimodel.InvalidConfigError{Reason: "Project and Environment are required"})
}

// mapError maps composition errors to appropriate HTTP responses
func mapError(c echo.Context, err error) error {
	if missing := collectInvalidAttributes(err); len(missing) > 0 {
		return apiError(c, http.StatusUnprocessableEntity, apimodel.InvalidAttributes,
			apimodel.InvalidAttributesError{Descriptors: missing})
	}

	var ambiguous *compose.AmbiguousCompositionError
	if errors.As(err, &ambiguous) {
		return apiError(c, http.StatusConflict, apimodel.AmbiguousComposition,
			apimodel.AmbiguousCompositionError{Partition: ambiguous.Partition, Detail: ambiguous.Detail})
	}

	var dangling *compose.DanglingReferenceError
	if errors.As(err, &dangling) {
		return apiError(c, http.StatusBadRequest, apimodel.DanglingReference,
			apimodel.DanglingReferenceError{Reference: dangling.Ref.String()})
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return nil
}

// collectInvalidAttributes unwraps a possibly joined error into the full list
// of per-descriptor missing-field reports.
func collectInvalidAttributes(err error) []apimodel.MissingAttributes {
	var missing []apimodel.MissingAttributes

	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var invalid *compose.InvalidAttributeError
		if errors.As(err, &invalid) {
			missing = append(missing, apimodel.MissingAttributes{
				Descriptor: invalid.Descriptor,
				Missing:    invalid.Missing,
			})
		}
	}
	walk(err)

	return missing
}

// apiError is a helper to wrap error data in ErrorResponse[T] and return as json
func apiError[T any](c echo.Context, status int, errorType apimodel.APIError, data T) error {
	return c.JSON(status, apimodel.ErrorResponse[T]{
		ErrorType: errorType,
		Data:      data,
	})
}

func listenAddress(port int) string {
	return fmt.Sprintf(":%d", port)
}
