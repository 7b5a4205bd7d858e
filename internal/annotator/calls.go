package annotator

import (
	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/callshape"
	"github.com/termfx/hlebhint/internal/checker"
	"github.com/termfx/hlebhint/internal/tooltip"
)

func (e *Engine) annotateRequest(_ core.FileContext, n core.Node) (core.Annotation, bool) {
	source, ok := callshape.MatchRequestParam(n)
	if !ok {
		return core.Annotation{}, false
	}
	style := core.StyleDefault
	if checker.IsConstantValue(n.Text()) {
		style = core.StyleSpecial
	}
	return core.Annotation{Range: n.Range(), Tooltip: tooltip.Request(source), Style: style}, true
}

func (e *Engine) annotateRouteAddress(_ core.FileContext, n core.Node) (core.Annotation, bool) {
	if !callshape.MatchRouteAddress(n) {
		return core.Annotation{}, false
	}
	return core.Annotation{Range: n.Range(), Tooltip: tooltip.RouteAddress, Style: core.StyleSpecial}, true
}

func (e *Engine) annotateRoutePrefix(_ core.FileContext, n core.Node) (core.Annotation, bool) {
	if !callshape.MatchRoutePrefix(n, e.opts.PrefixDepth) {
		return core.Annotation{}, false
	}
	return core.Annotation{Range: n.Range(), Tooltip: tooltip.RoutePrefix, Style: core.StyleSpecialItalic}, true
}

func (e *Engine) annotateDebug(_ core.FileContext, n core.Node) (core.Annotation, bool) {
	level, ok := callshape.MatchDebug(n)
	if !ok {
		return core.Annotation{}, false
	}
	style := core.StyleUnderline
	if level == callshape.DebugInfo {
		style = core.StyleUnderlineAlt
	}
	return core.Annotation{Range: n.Range(), Tooltip: tooltip.Debug(level), Style: style}, true
}
