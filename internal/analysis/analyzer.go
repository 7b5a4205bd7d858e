// Package analysis runs the annotator over whole files and projects.
package analysis

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/annotator"
	"github.com/termfx/hlebhint/internal/model"
	"github.com/termfx/hlebhint/internal/pathref"
	"github.com/termfx/hlebhint/providers/php"
)

// Options tune a scan
type Options struct {
	Workers int
	Exclude []string // doublestar globs relative to the root
}

// Analyzer parses PHP sources and collects hints. It is safe for
// concurrent use.
type Analyzer struct {
	parser *php.Parser
	engine *annotator.Engine
	logger *slog.Logger
	opts   Options
}

// New creates an analyzer on top of engine
func New(engine *annotator.Engine, logger *slog.Logger, opts Options) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Analyzer{
		parser: php.NewParser(),
		engine: engine,
		logger: logger,
		opts:   opts,
	}
}

// Engine returns the annotator engine
func (a *Analyzer) Engine() *annotator.Engine {
	return a.engine
}

// CacheStats exposes the parse cache counters
func (a *Analyzer) CacheStats() map[string]int64 {
	return a.parser.CacheStats()
}

func (a *Analyzer) parse(ctx context.Context, fc core.FileContext, src []byte) (*php.File, error) {
	if !php.IsPHPFile(fc.Path) {
		return nil, fmt.Errorf("%s: %w", fc.Path, model.ErrUnsupportedFile)
	}
	file, err := a.parser.Parse(ctx, fc.Path, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrParse, fc.Path, err)
	}
	return file, nil
}

// AnalyzeFile returns every annotation and reference of src, ordered by
// position. References are resolved but carry no completions.
func (a *Analyzer) AnalyzeFile(ctx context.Context, fc core.FileContext, src []byte) (model.FileResult, error) {
	result := model.FileResult{Path: fc.Path, Annotations: []core.Annotation{}}

	file, err := a.parse(ctx, fc, src)
	if err != nil {
		return result, err
	}
	if !a.engine.Detector().Detect(fc.Root) {
		return result, nil
	}

	file.Walk(func(n core.Node) bool {
		if parent := n.Parent(); parent == nil || parent.Kind() != core.KindArgumentList {
			return true
		}
		result.Annotations = append(result.Annotations, a.engine.Annotate(fc, n)...)
		for _, ref := range a.engine.References(fc, n) {
			result.References = append(result.References, evaluate(ref, n, false))
		}
		return true
	})

	slices.SortStableFunc(result.Annotations, func(x, y core.Annotation) int {
		return cmp.Compare(x.Range.StartByte, y.Range.StartByte)
	})
	slices.SortStableFunc(result.References, func(x, y model.ReferenceResult) int {
		return cmp.Compare(x.Range.StartByte, y.Range.StartByte)
	})
	return result, nil
}

// ReferencesAt resolves the string literal covering offset. With complete
// set, each result also lists its completion variants.
func (a *Analyzer) ReferencesAt(ctx context.Context, fc core.FileContext, src []byte, offset int, complete bool) ([]model.ReferenceResult, error) {
	file, err := a.parse(ctx, fc, src)
	if err != nil {
		return nil, err
	}
	n := file.StringLiteralAt(offset)
	if n == nil {
		return nil, fmt.Errorf("offset %d: %w", offset, model.ErrNodeNotFound)
	}

	results := []model.ReferenceResult{}
	for _, ref := range a.engine.References(fc, n) {
		results = append(results, evaluate(ref, n, complete))
	}
	return results, nil
}

func evaluate(ref core.Reference, literal core.Node, complete bool) model.ReferenceResult {
	result := model.ReferenceResult{Range: ref.Range(), Text: literal.Text()}
	switch ref.(type) {
	case *pathref.ViewPathReference:
		result.Kind = model.RefView
	default:
		result.Kind = model.RefPath
	}
	result.Target, result.Resolved = ref.Resolve()
	if complete {
		result.Completions = ref.Variants()
	}
	return result
}

// Scan analyses every PHP file under root. Files that cannot be read or
// parsed are recorded with their error and do not stop the scan.
func (a *Analyzer) Scan(ctx context.Context, root string) (*model.ScanResult, error) {
	if root == "" {
		return nil, model.ErrNoProjectRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	start := time.Now()
	result := &model.ScanResult{Root: abs, Files: []model.FileResult{}}
	a.engine.Detector().Reset(abs)
	result.Framework = a.engine.Detector().Detect(abs)
	if !result.Framework {
		result.Duration = time.Since(start)
		return result, nil
	}

	walker := core.NewFileWalker(a.opts.Workers)
	files, err := walker.Collect(ctx, core.FileScope{
		Path:      abs,
		Include:   []string{"**/*.php"},
		Exclude:   a.opts.Exclude,
		Gitignore: true,
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.FileResult, len(files))
	g := new(errgroup.Group)
	g.SetLimit(a.opts.Workers)
	for i, f := range files {
		g.Go(func() error {
			results[i] = a.scanFile(ctx, abs, f)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(x, y model.FileResult) int {
		return cmp.Compare(x.Path, y.Path)
	})
	result.Files = results
	result.Duration = time.Since(start)
	a.logger.Debug("scan finished",
		"root", abs,
		"files", len(results),
		"hints", result.HintCount(),
		"duration", result.Duration,
	)
	return result, nil
}

func (a *Analyzer) scanFile(ctx context.Context, root string, f core.WalkResult) model.FileResult {
	src, err := os.ReadFile(f.Path)
	if err != nil {
		a.logger.Warn("read failed", "path", f.Rel, "error", err)
		return model.FileResult{Path: f.Rel, Error: err.Error(), Code: model.ECReadError}
	}

	fr, err := a.AnalyzeFile(ctx, core.FileContext{Root: root, Path: f.Path}, src)
	fr.Path = f.Rel
	if err != nil {
		a.logger.Warn("analysis failed", "path", f.Rel, "error", err)
		fr.Error = err.Error()
		fr.Code = model.CodeOf(err)
	}
	return fr
}
