package schema

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
)

var errInvalidJSON = errors.New("schema document is not valid JSON")

// Validator loads schema files and compiles them. With caching enabled the
// first successful compile per absolute path is kept for the life of the
// Validator; failures are never cached.
type Validator struct {
	logger       *logging.Logger
	cacheEnabled bool

	cache sync.Map // absolute path -> *Compiled
	group singleflight.Group
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the validator logger.
func WithLogger(logger *logging.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithCache toggles the compiled-schema cache.
func WithCache(enabled bool) Option {
	return func(v *Validator) {
		v.cacheEnabled = enabled
	}
}

// NewValidator creates a Validator. Caching is on unless disabled.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		logger:       logging.Default(),
		cacheEnabled: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load reads and compiles the schema at path. Relative paths are resolved
// against the working directory at the time of the call.
func (v *Validator) Load(ctx context.Context, path string) (*Compiled, error) {
	abs, err := resolvePath(path)
	if err != nil {
		return nil, domain.NewSchemaLoadError(path, err)
	}

	if !v.cacheEnabled {
		return v.loadFile(abs)
	}

	if cached, ok := v.cache.Load(abs); ok {
		return cached.(*Compiled), nil
	}

	ch := v.group.DoChan(abs, func() (interface{}, error) {
		compiled, err := v.loadFile(abs)
		if err != nil {
			return nil, err
		}
		actual, _ := v.cache.LoadOrStore(abs, compiled)
		return actual, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Compiled), nil
	}
}

func (v *Validator) loadFile(abs string) (*Compiled, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		v.logger.Warn("schema file unreadable", logging.Fields{
			"path":  abs,
			"error": err.Error(),
		})
		return nil, domain.NewSchemaLoadError(abs, err)
	}

	compiled, err := compile(data)
	if err != nil {
		v.logger.Warn("schema failed to compile", logging.Fields{
			"path":  abs,
			"error": err.Error(),
		})
		return nil, domain.NewSchemaLoadError(abs, err)
	}

	v.logger.Debug("schema compiled", logging.Fields{"path": abs, "cached": v.cacheEnabled})
	return compiled, nil
}

func resolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "resolving working directory")
	}
	return filepath.Join(wd, path), nil
}
