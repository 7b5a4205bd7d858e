package callshape

import (
	"strings"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/checker"
)

const (
	pathClass     = `\Hleb\Static\Path`
	viewClass     = `\Hleb\Static\View`
	templateClass = `\Hleb\Static\Template`
)

// PathRequest is what a path-bearing call expects of its literal
type PathRequest struct {
	IsDir     bool // the call wants a directory
	OnlyBrief bool // only the @alias form is meaningful
	FullPath  bool // absolute paths are accepted
}

var pathFunctions = map[string]PathRequest{
	"hl_path":              {FullPath: true},
	"hl_realpath":          {FullPath: true},
	"hl_file_exists":       {FullPath: true},
	"hl_file_get_contents": {},
	"hl_file_put_contents": {},
	"hl_is_dir":            {IsDir: true},
	"view":                 {OnlyBrief: true},
	"template":             {OnlyBrief: true},
	"insertTemplate":       {OnlyBrief: true},
	"insertCacheTemplate":  {OnlyBrief: true},
}

var pathMethods = map[string]PathRequest{
	"exists":   {FullPath: true},
	"contents": {},
	"put":      {},
	"getReal":  {FullPath: true},
	"get":      {FullPath: true},
	"isDir":    {IsDir: true},
}

var (
	viewFunctions = []string{"view", "template", "insertTemplate", "insertCacheTemplate"}
	viewMethods   = map[string][]string{
		viewClass:     {"view"},
		templateClass: {"get", "insert", "insertCache"},
	}
)

// MatchPath recognises the first argument of the path helper functions and
// of \Hleb\Static\Path methods
func MatchPath(n core.Node) (PathRequest, bool) {
	shape, ok := firstLiteralArgument(n)
	if !ok {
		return PathRequest{}, false
	}
	switch {
	case shape.Kind == core.KindFunctionCall:
		req, ok := pathFunctions[shape.Callee]
		return req, ok
	case shape.IsStatic(pathClass):
		req, ok := pathMethods[shape.Callee]
		return req, ok
	}
	return PathRequest{}, false
}

// MatchAliasArgument recognises any method argument whose literal starts
// with '@', e.g. $storage->isDir('@storage/logs')
func MatchAliasArgument(n core.Node) (PathRequest, bool) {
	if n == nil || !checker.IsSafeQuotedLiteral(n.Text()) {
		return PathRequest{}, false
	}
	if !strings.HasPrefix(checker.StripQuotes(strings.TrimSpace(n.Text())), "@") {
		return PathRequest{}, false
	}
	shape, ok := Enclosing(n)
	if !ok || !shape.Kind.IsMethodCall() || shape.Index(n) < 0 {
		return PathRequest{}, false
	}
	return PathRequest{IsDir: shape.Callee == "isDir", OnlyBrief: true}, true
}

// MatchView recognises the template name of view(), template() and the
// View/Template static methods
func MatchView(n core.Node) bool {
	shape, ok := firstLiteralArgument(n)
	if !ok {
		return false
	}
	if shape.IsFunction(viewFunctions...) {
		return true
	}
	if shape.Kind != core.KindStaticCall {
		return false
	}
	return contains(viewMethods[shape.Qualifier], shape.Callee)
}

func firstLiteralArgument(n core.Node) (Shape, bool) {
	if n == nil || !checker.IsSafeQuotedLiteral(n.Text()) {
		return Shape{}, false
	}
	shape, ok := Enclosing(n)
	if !ok {
		return Shape{}, false
	}
	first := shape.Arg(0)
	if first == nil || !first.Equal(n) {
		return Shape{}, false
	}
	return shape, true
}
