// Package api exposes the HTTP surface of the content bot: the run_once
// trigger, health probes and Prometheus exposition.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tdlm/content-bot/internal/config"
	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/metrics"
	"github.com/tdlm/content-bot/internal/orchestrator"
	"github.com/tdlm/content-bot/internal/sheets"
	"github.com/tdlm/content-bot/internal/wordpress"
)

const serviceName = "content-bot"

// Runner triggers one publishing run.
type Runner interface {
	RunOnce(ctx context.Context) (orchestrator.Result, error)
}

// Router holds the API dependencies.
type Router struct {
	cfg     *config.Config
	runner  Runner
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewRouter creates a new API router.
func NewRouter(cfg *config.Config, runner Runner, m *metrics.Metrics, log logger.Logger) *Router {
	return &Router{
		cfg:     cfg,
		runner:  runner,
		metrics: m,
		log:     log,
	}
}

// Engine builds the gin engine with all middleware and routes registered.
func (r *Router) Engine() *gin.Engine {
	if r.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(requestLogger(r.log))
	engine.Use(headersMiddleware())

	engine.GET("/", r.home)
	engine.GET("/health", r.health)
	engine.POST("/run_once", r.runOnce)
	engine.OPTIONS("/run_once", r.preflight)
	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	return engine
}

func (r *Router) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": serviceName,
		"hint":    "Usa POST /run_once para publicar 1 fila READY.",
	})
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (r *Router) preflight(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (r *Router) runOnce(c *gin.Context) {
	if r.cfg.JobToken != "" {
		got := strings.TrimSpace(c.GetHeader("X-Job-Token"))
		if got != r.cfg.JobToken {
			r.metrics.Unauthorized.Inc()
			r.log.Warn("run_once rejected: bad job token",
				logger.String("request_id", requestID(c)))
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
	}

	start := time.Now()
	result, err := r.runner.RunOnce(c.Request.Context())
	elapsed := time.Since(start)

	if err != nil {
		kind := kindOf(err)
		r.metrics.ObserveRun("error", elapsed)
		r.log.Error("run_once failed",
			logger.String("request_id", requestID(c)),
			logger.String("kind", kind),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("%s: %s", kind, err.Error()),
		})
		return
	}

	r.metrics.ObserveRun(result.Status, elapsed)
	r.log.Info("run_once finished",
		logger.String("request_id", requestID(c)),
		logger.String("status", result.Status),
		logger.Duration("elapsed", elapsed))
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

// kindOf maps an error to the short kind prefix of the 500 body.
func kindOf(err error) string {
	var missing *config.MissingVarError
	if errors.As(err, &missing) {
		return "config"
	}
	if errors.Is(err, sheets.ErrSpreadsheetNotFound) || errors.Is(err, sheets.ErrTabNotFound) {
		return "not_found"
	}
	var apiErr *wordpress.APIError
	if errors.As(err, &apiErr) {
		return "publish"
	}
	return "internal"
}
