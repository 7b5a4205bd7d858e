package annotator

import (
	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/callshape"
	"github.com/termfx/hlebhint/internal/pathref"
)

// References returns the path and view references of a string literal
func (e *Engine) References(fc core.FileContext, n core.Node) []core.Reference {
	if n == nil || n.Kind() != core.KindStringLiteral || !e.enabled(fc) {
		return nil
	}

	var out []core.Reference
	e.guard("path", func() {
		if req, ok := callshape.MatchPath(n); ok {
			out = append(out, pathref.NewPathReference(fc, n, req, e.opts.CompletionLimit))
			return
		}
		if req, ok := callshape.MatchAliasArgument(n); ok {
			out = append(out, pathref.NewPathReference(fc, n, req, e.opts.CompletionLimit))
		}
	})
	e.guard("view", func() {
		if callshape.MatchView(n) {
			out = append(out, pathref.NewViewPathReference(fc, n, e.opts.CompletionLimit))
		}
	})
	return out
}
