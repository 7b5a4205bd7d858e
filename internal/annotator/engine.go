// Package annotator is the per-node entry point: it runs every matcher on
// a syntax node and turns matches into annotations and references.
package annotator

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/callshape"
	"github.com/termfx/hlebhint/internal/framework"
)

// Annotation sources
const (
	SourceConfig  = "config"
	SourceRequest = "request"
	SourceRoute   = "route"
	SourceDebug   = "debug"
)

// Options tune the engine
type Options struct {
	PrefixDepth     int // ancestor cap for route prefixes
	CompletionLimit int // 0 = unlimited
}

// Engine runs annotators and reference providers. It is safe for concurrent
// use; the only shared state is the detector.
type Engine struct {
	detector *framework.Detector
	logger   *slog.Logger
	opts     Options
}

// New creates an engine. A nil detector uses the process-wide one and a nil
// logger discards output.
func New(detector *framework.Detector, logger *slog.Logger, opts Options) *Engine {
	if detector == nil {
		detector = framework.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.PrefixDepth <= 0 {
		opts.PrefixDepth = callshape.DefaultPrefixDepth
	}
	return &Engine{detector: detector, logger: logger, opts: opts}
}

// Detector returns the presence detector in use
func (e *Engine) Detector() *framework.Detector {
	return e.detector
}

type annotatorFunc func(e *Engine, fc core.FileContext, n core.Node) (core.Annotation, bool)

var annotators = []struct {
	name string
	fn   annotatorFunc
}{
	{SourceConfig, (*Engine).annotateConfig},
	{SourceRequest, (*Engine).annotateRequest},
	{SourceRoute, (*Engine).annotateRouteAddress},
	{SourceRoute, (*Engine).annotateRoutePrefix},
	{SourceDebug, (*Engine).annotateDebug},
}

// Annotate returns the annotations of n. Each annotator is isolated: a
// failure is logged and only drops that annotator's result.
func (e *Engine) Annotate(fc core.FileContext, n core.Node) []core.Annotation {
	if n == nil || !e.enabled(fc) {
		return nil
	}

	var out []core.Annotation
	for _, a := range annotators {
		e.guard(a.name, func() {
			if ann, ok := a.fn(e, fc, n); ok {
				ann.Source = a.name
				out = append(out, ann)
			}
		})
	}
	return out
}

func (e *Engine) enabled(fc core.FileContext) (ok bool) {
	e.guard("framework", func() {
		ok = e.detector.Detect(fc.Root)
	})
	return ok
}

// guard recovers a panic raised by fn and logs it with its stack
func (e *Engine) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("HLEB2_PLUGIN exception",
				"annotator", name,
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
