package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/rulectx"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	ctx    context.Context
	config *Config
	rc     *rulectx.Context

	httpServer *http.Server
	stage      atomic.Value
}

// New creates an App with its own logger and rule engine context. A nil
// engine selects the in-memory engine. Close releases the engine context.
func New(outW io.Writer, cfg *Config, engine prt.Engine) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	rc, err := rulectx.New(ctx, cfg.Engine, engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule engine context: %w", err)
	}

	a := &App{outW: outW, logger: logger, ctx: ctx, config: cfg, rc: rc}
	a.setStage("idle")
	return a, nil
}

// RuleContext returns the rule engine context. This is primarily for testing.
func (a *App) RuleContext() *rulectx.Context {
	return a.rc
}

// Close stops the health check server and releases the rule engine context.
func (a *App) Close() error {
	hErr := a.closeHealthcheckServer()
	if err := a.rc.Close(); err != nil {
		return err
	}
	return hErr
}

func (a *App) setStage(s string) {
	a.stage.Store(s)
}

func (a *App) currentStage() string {
	s, _ := a.stage.Load().(string)
	return s
}
