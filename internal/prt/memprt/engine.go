package memprt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/prt"
)

const (
	rpkScheme    = "rpk:"
	rpkSeparator = "!/"
	// manifestName is the file name of the unpacked manifest.
	manifestName = "package.hcl"
)

// Engine is the in-process engine.
type Engine struct {
	logger  *slog.Logger
	workers int
}

var _ prt.Engine = (*Engine)(nil)

// New creates an engine evaluating up to workers shapes concurrently. A
// non-positive worker count uses all CPUs.
func New(ctx context.Context, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{logger: ctxlog.FromContext(ctx), workers: workers}
}

func (e *Engine) ctx() context.Context {
	return ctxlog.WithLogger(context.Background(), e.logger)
}

// NewCache creates an empty package cache.
func (e *Engine) NewCache() prt.Cache {
	return NewCache()
}

// CreateResolveMap opens the rule package at uri. If unpackDir is set the
// manifest is copied to unpackDir/<package file name>/package.hcl.
func (e *Engine) CreateResolveMap(uri, unpackDir string) (prt.ResolveMap, error) {
	const op = "create resolve map"
	path, err := prt.PathFromFileURI(uri)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", prt.Errorf(op, prt.StatusFileNotFound), path)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pkg, err := loadPackage(e.ctx(), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", prt.Errorf(op, prt.StatusResolveMapProviderNotFound), err)
	}

	if unpackDir != "" {
		dir := filepath.Join(unpackDir, filepath.Base(path))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s: unpack: %w", op, err)
		}
		if err := os.WriteFile(filepath.Join(dir, manifestName), raw, 0o644); err != nil {
			return nil, fmt.Errorf("%s: unpack: %w", op, err)
		}
		e.logger.Debug("Unpacked rule package.", "path", path, "dir", dir)
	}

	rm := make(prt.MapResolveMap, len(pkg.ruleFiles)+len(pkg.assets))
	for key := range pkg.ruleFiles {
		rm[key] = packageEntryURI(uri, key)
	}
	for _, key := range pkg.assets {
		rm[key] = packageEntryURI(uri, key)
	}
	return rm, nil
}

// CreateRuleFileInfo describes the rule file at a resolve map URI.
func (e *Engine) CreateRuleFileInfo(uri string, cache prt.Cache) (*prt.RuleFileInfo, error) {
	rf, err := e.ruleFile(uri, asCache(cache))
	if err != nil {
		return nil, err
	}
	return rf.info, nil
}

func (e *Engine) ruleFile(uri string, cache *Cache) (*ruleFile, error) {
	const op = "create rule file info"
	pkgURI, key, ok := splitPackageEntryURI(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", prt.Errorf(op, prt.StatusInvalidURI), uri)
	}
	path, err := prt.PathFromFileURI(pkgURI)
	if err != nil {
		return nil, err
	}
	pkg, err := cache.pkg(e.ctx(), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", prt.Errorf(op, prt.StatusFileNotFound), err)
	}
	rf, ok := pkg.ruleFiles[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", prt.Errorf(op, prt.StatusRuleFileNotFound), key)
	}
	return rf, nil
}

// ValidatedEncoderOptions fills in encoder defaults. Unknown keys are
// dropped, known keys of the wrong type are rejected.
func (e *Engine) ValidatedEncoderOptions(encoderID string, opts *attrmap.Map) (*attrmap.Map, error) {
	const op = "validate encoder options"
	switch encoderID {
	case prt.EncoderAttributeEval:
		return attrmap.Empty, nil
	case prt.EncoderGeometry:
		b := attrmap.NewBuilder()
		for _, key := range []string{prt.OptionEmitAttributes, prt.OptionEmitMaterials, prt.OptionEmitReports} {
			v := false
			if opts.HasKey(key) {
				bv, ok := opts.Bool(key)
				if !ok {
					return nil, fmt.Errorf("%w: %s must be a bool", prt.Errorf(op, prt.StatusInvalidEncoderOptions), key)
				}
				v = bv
			}
			_ = b.SetBool(key, v)
		}
		return b.CreateAttributeMap(), nil
	default:
		return nil, fmt.Errorf("%w: %s", prt.Errorf(op, prt.StatusEncoderNotFound), encoderID)
	}
}

func packageEntryURI(pkgURI, key string) string {
	return rpkScheme + pkgURI + rpkSeparator + key
}

func splitPackageEntryURI(uri string) (pkgURI, key string, ok bool) {
	rest, ok := strings.CutPrefix(uri, rpkScheme)
	if !ok {
		return "", "", false
	}
	pkgURI, key, ok = strings.Cut(rest, rpkSeparator)
	return pkgURI, key, ok && key != ""
}
