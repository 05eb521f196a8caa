// Package httpapi exposes the audit engine over HTTP with echo v5.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/chemverify/chemverify/internal/apperrors"
	"github.com/chemverify/chemverify/internal/engine"
	"github.com/chemverify/chemverify/internal/hashchain"
	"github.com/chemverify/chemverify/internal/persistence"
	"github.com/chemverify/chemverify/internal/policy"
)

// maxBodyBytes bounds a request body well above any single procedure text.
const maxBodyBytes = 2 * 1024 * 1024

// Server is the HTTP front end over a single AuditEngine.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	engine     *engine.AuditEngine
	store      persistence.Store
}

// NewServer builds a Server with its routes registered.
func NewServer(eng *engine.AuditEngine, store persistence.Store) *Server {
	e := echo.New()
	s := &Server{echo: e, engine: eng, store: store}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(maxBodyBytes))
	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/v1")
	v1.POST("/audit", s.auditHandler)
	v1.POST("/runs", s.createRunHandler)
	v1.GET("/runs/:id", s.getRunHandler)
}

// Start starts the HTTP server on addr (non-blocking caller responsibility).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the server on a pre-created listener, used by
// tests that bind to a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":        "healthy",
		"engineVersion": engine.EngineVersion,
	})
}

// auditRequest is the POST /v1/audit body: verify a caller-supplied text
// directly, with no model connector involved.
type auditRequest struct {
	Text         string `json:"text"`
	PolicyProfile string `json:"policyProfile"`
	PreviousHash string `json:"previousHash"`
}

func (s *Server) auditHandler(c *echo.Context) error {
	var req auditRequest
	if err := c.Bind(&req); err != nil {
		return mapServiceError(apperrors.NewValidationError("body", "malformed JSON request body"))
	}
	if req.Text == "" {
		return mapServiceError(apperrors.ErrEmptyInput)
	}

	settings, err := policy.Load(req.PolicyProfile)
	if err != nil {
		return mapServiceError(apperrors.NewValidationError("policyProfile", err.Error()))
	}
	if len(req.Text) > settings.MaxInputChars {
		return mapServiceError(apperrors.ErrInputTooLarge)
	}

	previousHash := req.PreviousHash
	if previousHash == "" {
		previousHash = hashchain.GenesisHash
	}

	outcome, err := s.engine.VerifyText(c.Request().Context(), req.Text, settings, previousHash, time.Now())
	if err != nil {
		return mapServiceError(err)
	}
	if err := s.store.SaveRun(c.Request().Context(), outcome.Run, outcome.Claims, outcome.Findings); err != nil {
		slog.Error("httpapi: persisting run failed", "error", err, "runId", outcome.Run.ID)
	}

	artifact, err := engine.BuildArtifact(outcome)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, auditResponse(artifact, outcome))
}

// createRunRequest is the POST /v1/runs body: generate a model response
// via the wired connector, then audit it.
type createRunRequest struct {
	Prompt        string `json:"prompt"`
	ModelName     string `json:"modelName"`
	PolicyProfile string `json:"policyProfile"`
	PreviousHash  string `json:"previousHash"`
}

func (s *Server) createRunHandler(c *echo.Context) error {
	var req createRunRequest
	if err := c.Bind(&req); err != nil {
		return mapServiceError(apperrors.NewValidationError("body", "malformed JSON request body"))
	}
	if req.Prompt == "" {
		return mapServiceError(apperrors.NewValidationError("prompt", "prompt must not be empty"))
	}

	settings, err := policy.Load(req.PolicyProfile)
	if err != nil {
		return mapServiceError(apperrors.NewValidationError("policyProfile", err.Error()))
	}

	previousHash := req.PreviousHash
	if previousHash == "" {
		previousHash = hashchain.GenesisHash
	}

	outcome, err := s.engine.CreateRunAndAudit(c.Request().Context(), engine.RunCommand{
		Prompt:        req.Prompt,
		ModelName:     req.ModelName,
		PolicyProfile: req.PolicyProfile,
		PreviousHash:  previousHash,
	}, settings, time.Now())
	if err != nil {
		return mapServiceError(err)
	}
	if err := s.store.SaveRun(c.Request().Context(), outcome.Run, outcome.Claims, outcome.Findings); err != nil {
		slog.Error("httpapi: persisting run failed", "error", err, "runId", outcome.Run.ID)
	}

	artifact, err := engine.BuildArtifact(outcome)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, auditResponse(artifact, outcome))
}

func (s *Server) getRunHandler(c *echo.Context) error {
	id := c.Param("id")
	run, claims, findings, err := s.store.GetRun(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, struct {
		Run      interface{} `json:"run"`
		Claims   interface{} `json:"claims"`
		Findings interface{} `json:"findings"`
	}{Run: run, Claims: claims, Findings: findings})
}

// auditResponse shapes the wire envelope shared by both audit endpoints.
type auditResponseBody struct {
	Artifact engine.Artifact `json:"artifact"`
	Summary  string          `json:"summary"`
}

func auditResponse(artifact engine.Artifact, outcome engine.Outcome) auditResponseBody {
	return auditResponseBody{Artifact: artifact, Summary: outcome.Report.Summary()}
}

// mapServiceError maps engine/apperrors failures to HTTP status codes.
func mapServiceError(err error) *echo.HTTPError {
	var validErr *apperrors.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}
	if errors.Is(err, apperrors.ErrEmptyInput) {
		return echo.NewHTTPError(http.StatusBadRequest, "text must not be empty")
	}
	if errors.Is(err, apperrors.ErrInputTooLarge) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "text exceeds the policy's maxInputChars")
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	if errors.Is(err, apperrors.ErrConnectorUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "model connector unavailable")
	}

	var notFound persistence.ErrNotFound
	if errors.As(err, &notFound) {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}

	slog.Error("httpapi: unexpected error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
