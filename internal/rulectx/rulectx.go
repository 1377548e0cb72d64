// Package rulectx owns the rule engine session state: the engine, its
// cache, the resolve map cache and the host name converter. A Context is
// created once per host session and passed to every operation.
package rulectx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/lru"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/prt/memprt"
	"github.com/specialistvlad/palladiogo/internal/rpk"
)

const unpackDirPrefix = "palladio_"

// Config holds the engine session settings, read from the environment.
type Config struct {
	UnpackDir       string `env:"PALLADIO_RPK_UNPACK_DIR"`
	Cores           int    `env:"PALLADIO_CORES"`
	HostEncoding    string `env:"PALLADIO_HOST_ENCODING" envDefault:"utf-8"`
	StringCacheSize int    `env:"PALLADIO_STRING_CACHE_SIZE" envDefault:"4096"`
}

// ConfigFromEnv parses Config from the process environment.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse engine config: %w", err)
	}
	return cfg, nil
}

// Context is an explicitly owned engine session.
type Context struct {
	Engine      prt.Engine
	Cache       prt.Cache
	ResolveMaps *rpk.Cache
	Names       *nameconv.Converter
	Cores       int

	logger *slog.Logger
}

// New creates a session. A nil engine selects the in-memory engine. Without
// a configured unpack directory a fresh one below the system temp dir is
// used and removed again by Close.
func New(ctx context.Context, cfg Config, engine prt.Engine) (*Context, error) {
	logger := ctxlog.FromContext(ctx)

	cores := cfg.Cores
	if cores <= 0 {
		cores = runtime.NumCPU()
	}
	if cfg.StringCacheSize <= 0 {
		cfg.StringCacheSize = lru.DefaultCapacity
	}
	if cfg.HostEncoding == "" {
		cfg.HostEncoding = "utf-8"
	}
	names, err := nameconv.NewConverterForName(cfg.HostEncoding, cfg.StringCacheSize)
	if err != nil {
		return nil, err
	}

	unpackDir := cfg.UnpackDir
	if unpackDir == "" {
		unpackDir = filepath.Join(os.TempDir(), unpackDirPrefix+uuid.NewString())
	}
	if err := os.MkdirAll(unpackDir, 0o755); err != nil {
		return nil, fmt.Errorf("create unpack dir: %w", err)
	}

	if engine == nil {
		engine = memprt.New(ctx, cores)
	}

	logger.Debug("Rule engine context created.", "unpack_dir", unpackDir, "cores", cores, "host_encoding", names.Encoding())
	return &Context{
		Engine:      engine,
		Cache:       engine.NewCache(),
		ResolveMaps: rpk.NewCache(engine, unpackDir),
		Names:       names,
		Cores:       cores,
		logger:      logger,
	}, nil
}

// ResolveMap returns the resolve map of the rule package at path. Loading a
// new or changed package flushes the engine cache.
func (c *Context) ResolveMap(ctx context.Context, path string) (prt.ResolveMap, error) {
	res, err := c.ResolveMaps.Get(ctx, path)
	if res.Status == rpk.Miss {
		c.Cache.FlushAll()
	}
	if err != nil {
		return nil, err
	}
	return res.ResolveMap, nil
}

// RuleFileInfo describes a rule file of a resolve map.
func (c *Context) RuleFileInfo(rm prt.ResolveMap, ruleFile string) (*prt.RuleFileInfo, error) {
	if rm == nil {
		return nil, prt.Errorf("rule file info", prt.StatusResolveMapProviderNotFound)
	}
	uri, ok := rm.String(ruleFile)
	if !ok {
		return nil, fmt.Errorf("%w: %s", prt.Errorf("rule file info", prt.StatusRuleFileNotFound), ruleFile)
	}
	return c.Engine.CreateRuleFileInfo(uri, c.Cache)
}

// Close releases the resolve map cache and its unpack directory and flushes
// the engine cache.
func (c *Context) Close() error {
	err := c.ResolveMaps.Close()
	c.Cache.FlushAll()
	c.logger.Debug("Rule engine context closed.")
	if err != nil {
		return fmt.Errorf("close rule engine context: %w", err)
	}
	return nil
}
