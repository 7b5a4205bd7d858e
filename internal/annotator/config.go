package annotator

import (
	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/callshape"
	"github.com/termfx/hlebhint/internal/settings"
	"github.com/termfx/hlebhint/internal/tooltip"
)

func (e *Engine) annotateConfig(fc core.FileContext, n core.Node) (core.Annotation, bool) {
	match, ok := callshape.ClassifyConfig(n)
	if !ok {
		return core.Annotation{}, false
	}

	files := settings.Files(fc.Root, match.Domain)
	modules := settings.ModuleFiles(fc.Root, settings.ModuleConfigDir(fc.Root, fc.Path), match.Domain)
	moduleActive := settings.IsModule(match.Domain, modules)

	if match.Role == callshape.RoleTag {
		if len(files) == 0 && len(modules) == 0 {
			return core.Annotation{Range: n.Range(), Tooltip: tooltip.UndefinedFile, Style: core.StyleWarning}, true
		}
		return core.Annotation{
			Range:   n.Range(),
			Tooltip: tooltip.FileType(match.Domain, match.Key, files, modules, moduleActive),
			Style:   core.StyleSpecial,
		}, true
	}

	undefined := core.Annotation{Range: n.Range(), Tooltip: tooltip.UndefinedParam, Style: core.StyleDefault}
	if len(files) == 0 && len(modules) == 0 {
		return undefined, true
	}
	params := settings.Params(fc.Root, files, match.Domain, match.Key)
	moduleParams := settings.Params(fc.Root, modules, match.Domain, match.Key)
	if len(params) == 0 && len(moduleParams) == 0 {
		return undefined, true
	}

	e.logger.Debug("config value",
		"domain", match.Domain,
		"key", match.Key,
		"files", len(params),
		"module_files", len(moduleParams),
	)
	return core.Annotation{
		Range:   n.Range(),
		Tooltip: tooltip.Param(match.Key, params, moduleParams, moduleActive),
		Style:   core.StyleSpecial,
	}, true
}
