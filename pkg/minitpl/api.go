package minitpl

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
)

// Engine provides the main API for working with templates.
// Use New() to create a new engine instance.
type Engine struct {
	config *Config
	cache  *TemplateCache
	log    *Logger
}

// New creates a new template engine from the global configuration.
func New() *Engine {
	return NewWithOptions()
}

// NewWithConfig creates a new template engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	return NewWithOptions(WithConfig(config))
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		e.config.CacheMaxSize = maxSize
	}
}

// WithStrictMode returns an option that makes malformed templates fail to parse.
func WithStrictMode(strict bool) Option {
	return func(e *Engine) {
		e.config.StrictMode = strict
	}
}

// WithLogger returns an option that sets the logger used by the engine.
// By default the engine logs through the global logger.
func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := &Engine{config: GetGlobalConfig()}
	for _, opt := range opts {
		opt(engine)
	}
	engine.cache = NewTemplateCacheWithConfig(CacheConfig{
		MaxSize: engine.config.CacheMaxSize,
		TTL:     engine.config.CacheTTL,
	})
	return engine
}

func (e *Engine) logger() *Logger {
	if e.log != nil {
		return e.log
	}
	return GetLogger()
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// Parse parses template source. Diagnostics for malformed directives are
// logged; in strict mode they are returned as the error instead.
func (e *Engine) Parse(name, src string) (*Template, error) {
	tmpl := parseNamed(name, src)

	log := e.logger()
	if log.IsDebugMode() {
		log.WithField("template", name).Debug("parsed template: %d nodes, %d diagnostics", len(tmpl.nodes), len(tmpl.diagnostics))
	}
	if len(tmpl.diagnostics) == 0 {
		return tmpl, nil
	}

	if e.config.StrictMode {
		return nil, tmpl.Err()
	}
	for _, d := range tmpl.diagnostics {
		log.WithFields(Fields{
			"template": name,
			"line":     d.Line,
			"column":   d.Column,
		}).Warn("malformed template: %s", d.Message)
	}
	return tmpl, nil
}

// ParseString parses template source, reusing a cached parse of identical
// source when caching is enabled.
func (e *Engine) ParseString(src string) (*Template, error) {
	key := sourceKey(src)
	if tmpl, ok := e.cache.Get(key, ""); ok {
		return tmpl, nil
	}

	tmpl, err := e.Parse("", src)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, "", tmpl)
	return tmpl, nil
}

// ParseFile loads and parses a template file. A missing file yields an
// error matching ErrTemplateNotFound. Cached templates are reused until the
// file's modification time or size changes.
func (e *Engine) ParseFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fileError("open", path, err)
	}
	if info.IsDir() {
		return nil, &TemplateFileError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}

	stamp := fileStamp(info)
	if tmpl, ok := e.cache.Get(path, stamp); ok {
		e.logger().WithField("template", path).Debug("template cache hit")
		return tmpl, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fileError("read", path, err)
	}

	tmpl, err := e.Parse(path, string(data))
	if err != nil {
		return nil, &TemplateFileError{Op: "parse", Path: path, Err: err}
	}
	e.cache.Set(path, stamp, tmpl)
	return tmpl, nil
}

func fileError(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &TemplateFileError{Op: op, Path: path, Err: ErrTemplateNotFound}
	}
	return &TemplateFileError{Op: op, Path: path, Err: err}
}

// RenderString renders template source against data.
func (e *Engine) RenderString(template string, data any) (string, error) {
	return e.RenderStringContext(context.Background(), template, data)
}

// RenderStringContext is RenderString with cancellation between loop iterations.
func (e *Engine) RenderStringContext(ctx context.Context, template string, data any) (string, error) {
	tmpl, err := e.ParseString(template)
	if err != nil {
		return "", err
	}
	e.logger().DebugTemplate(template, data)
	return tmpl.render(ctx, data)
}

// RenderFile reads the template file at path and renders it against data.
func (e *Engine) RenderFile(path string, data any) (string, error) {
	return e.RenderFileContext(context.Background(), path, data)
}

// RenderFileContext is RenderFile with cancellation between loop iterations.
func (e *Engine) RenderFileContext(ctx context.Context, path string, data any) (string, error) {
	tmpl, err := e.ParseFile(path)
	if err != nil {
		return "", err
	}

	log := e.logger().WithField("template", path)
	log.DebugTemplate(tmpl.Source(), data)

	start := time.Now()
	out, err := tmpl.render(ctx, data)
	if err != nil {
		return "", err
	}
	log.Debug("rendered in %s", time.Since(start))
	return out, nil
}

// RenderTo renders the template file at path and writes the result to w.
func (e *Engine) RenderTo(w io.Writer, path string, data any) error {
	out, err := e.RenderFile(path, data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// RenderToFile renders the template file at inputPath and writes the result
// to outputPath. The output is replaced atomically, so readers never see a
// partially written file.
func (e *Engine) RenderToFile(inputPath, outputPath string, data any) error {
	out, err := e.RenderFile(inputPath, data)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(outputPath, strings.NewReader(out)); err != nil {
		return &TemplateFileError{Op: "write", Path: outputPath, Err: err}
	}
	return nil
}

// PreloadGlob parses every file matching pattern into the cache. The
// pattern may use "**" to match any number of directories. It returns the
// number of templates parsed; failures are collected into a *MultiError.
func (e *Engine) PreloadGlob(pattern string) (int, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return 0, err
	}

	errs := NewMultiError()
	loaded := 0
	for _, path := range matches {
		if _, err := e.ParseFile(path); err != nil {
			errs.Add(err)
			continue
		}
		loaded++
	}
	e.logger().WithField("pattern", pattern).Debug("preloaded %d of %d templates", loaded, len(matches))
	return loaded, errs.Err()
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// CacheSize returns the number of cached templates.
func (e *Engine) CacheSize() int {
	return e.cache.Size()
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// RenderString renders template source against data using the default engine.
func RenderString(template string, data any) (string, error) {
	return DefaultEngine.RenderString(template, data)
}

// RenderFile renders a template file using the default engine.
func RenderFile(path string, data any) (string, error) {
	return DefaultEngine.RenderFile(path, data)
}

// RenderToFile renders a template file into another file using the default engine.
func RenderToFile(inputPath, outputPath string, data any) error {
	return DefaultEngine.RenderToFile(inputPath, outputPath, data)
}

// ParseFile parses a template file using the default engine.
func ParseFile(path string) (*Template, error) {
	return DefaultEngine.ParseFile(path)
}

// ClearCache clears the default engine's template cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}
