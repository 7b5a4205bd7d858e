// Package tooltip renders the HTML shown on annotated literals
package tooltip

import (
	"strings"

	"github.com/termfx/hlebhint/internal/callshape"
	"github.com/termfx/hlebhint/internal/checker"
	"github.com/termfx/hlebhint/internal/settings"
)

const (
	docsBase = "https://hleb2framework.ru/"
	docsLang = "en"
)

// Documentation pages
const (
	PageConfiguration = "2/0/configuration"
	PageRequest       = "2/0/container/request"
	PageRouting       = "2/0/routing"
)

// Footer links a tooltip to its documentation page
func Footer(page string) string {
	return `<hr><div>HLEB2 Framework <a href="` + docsBase + docsLang + "/" + strings.TrimPrefix(page, "/") + `">Documentation</a></div>`
}

var (
	UndefinedFile = "<html>" +
		"<h3>Configuration file not found</h3>" +
		"<div>Basic values:</div>" +
		"<b>common</b> — <i>frequently needed project settings</i>.<br>" +
		"<b>database</b> — <i>database settings overridden in modules</i>.<br>" +
		"<b>main</b> — <i>main settings overridden in modules</i>.<br>" +
		"<b>system</b> — <i>system options for advanced customization</i>.<br>" +
		"<br>" + Footer(PageConfiguration) + "</html>"

	UndefinedParam = "<html><h3>Configuration parameter</h3>" + Footer(PageConfiguration) + "</html>"

	RouteParam = "<html>" +
		"<h3>Dynamic route option</h3>" +
		"Returns an OBJECT with the ability to get the parameter's value in various types.<br><br>" +
		Footer(PageRequest) + "</html>"

	GetParam = "<html>" +
		"<h3>Parameter from request body</h3>" +
		"Returns the HTTP GET parameter as an OBJECT by name from the request body.<br><br>" +
		Footer(PageRequest) + "</html>"

	PostParam = "<html>" +
		"<h3>Parameter from request body</h3>" +
		"Returns the HTTP POST parameter as an OBJECT by name from the request body.<br><br>" +
		Footer(PageRequest) + "</html>"

	RouteAddress = "<html><h3>Route address</h3>" + Footer(PageRouting) + "</html>"
	RoutePrefix  = "<html><h3>Address prefix for route</h3>" + Footer(PageRouting) + "</html>"
)

const (
	DebugHint = "HLEB2 Hint: Make sure this debugging function is still needed in the code."
	DebugInfo = "HLEB2 Info: Output of debugging information."
)

const moduleSuffix = " (current module)"

// Request returns the tooltip of a request parameter accessor
func Request(source callshape.RequestSource) string {
	switch source {
	case callshape.RequestGet:
		return GetParam
	case callshape.RequestPost:
		return PostParam
	}
	return RouteParam
}

// Debug returns the tooltip of a debugging call
func Debug(level callshape.DebugLevel) string {
	if level == callshape.DebugInfo {
		return DebugInfo
	}
	return DebugHint
}

// FileType lists the files a configuration domain is read from. The first
// file of the active block is bold; the module block comes first when the
// module overrides the domain.
func FileType(domain, key string, files, modules []string, moduleActive bool) string {
	shown := ""
	if checker.IsDisplayableLiteral(key) {
		shown = "`" + key + "` "
	}
	title := "<h3>Configuration file type (`" + domain + "`)</h3>" +
		"<div style='padding-bottom: 3px;'>The " + shown +
		"parameter will be searched in the following files:</div><br>"

	var base, module strings.Builder
	for i, file := range files {
		if i == 0 && !moduleActive {
			base.WriteString("<div>&#8226; <b>/" + file + "</b></div>")
		} else {
			base.WriteString("<div>&#8226; /" + file + "</div>")
		}
	}
	for i, file := range modules {
		if i == 0 && moduleActive {
			module.WriteString("<div>&#8226; <b>/" + file + "</b>" + moduleSuffix + "</div>")
		} else {
			module.WriteString("<div>&#8226; /" + file + moduleSuffix + "</div>")
		}
	}

	return wrap(title, base.String(), module.String(), moduleActive)
}

// Param lists the values of key per file. Undefined values are left out but
// still take the first, bold slot.
func Param(key string, params, moduleParams []settings.Value, moduleActive bool) string {
	title := "<h3>Configuration parameter</h3>" +
		"<div style='padding-bottom: 3px;'>The `" + key +
		"` parameter will be searched in the following files:</div><br>"

	var base, module strings.Builder
	for i, v := range params {
		if !v.Defined() {
			continue
		}
		if i == 0 && !moduleActive {
			base.WriteString("<div>&#8226; /" + v.File + " <b>[" + v.Text + "]</b></div>")
		} else {
			base.WriteString("<div>&#8226; /" + v.File + " [" + v.Text + "]</div>")
		}
	}
	for i, v := range moduleParams {
		if !v.Defined() {
			continue
		}
		if i == 0 && moduleActive {
			module.WriteString("<div>&#8226; /" + v.File + " <b>[" + v.Text + "]</b>" + moduleSuffix + "</div>")
		} else {
			module.WriteString("<div>&#8226; /" + v.File + " [" + v.Text + "]" + moduleSuffix + "</div>")
		}
	}

	return wrap(title, base.String(), module.String(), moduleActive)
}

func wrap(title, base, module string, moduleActive bool) string {
	content := base + module
	if moduleActive {
		content = module + base
	}
	return "<html>" + title + content + "<br>" + Footer(PageConfiguration) + "</html>"
}
