// Package pathref resolves and completes file paths written in string
// literals: @alias paths, absolute paths and view names.
package pathref

import (
	"path/filepath"
	"strings"

	"github.com/termfx/hlebhint/core"
)

// Alias maps a path prefix to a project directory
type Alias struct {
	Name string
	Dir  string // relative to the project root, slash separated
}

// Aliases in completion order
var Aliases = []Alias{
	{Name: "@", Dir: ""},
	{Name: "@global", Dir: ""},
	{Name: "@views", Dir: "resources/views"},
	{Name: "@app", Dir: "app"},
	{Name: "@resources", Dir: "resources"},
	{Name: "@storage", Dir: "storage"},
}

// AliasDir returns the absolute directory of alias under root
func AliasDir(root, alias string) (string, bool) {
	for _, a := range Aliases {
		if a.Name == alias {
			return filepath.Join(root, filepath.FromSlash(a.Dir)), true
		}
	}
	return "", false
}

// literalContent returns the text between the quotes of a literal with
// backslashes turned into slashes
func literalContent(literal core.Node) string {
	text := literal.Text()
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	return strings.ReplaceAll(text, `\`, "/")
}

// collector gathers completions up to a limit; 0 means unlimited
type collector struct {
	limit int
	items []core.Completion
}

func (c *collector) full() bool {
	return c.limit > 0 && len(c.items) >= c.limit
}

func (c *collector) add(item core.Completion) bool {
	if c.full() {
		return false
	}
	c.items = append(c.items, item)
	return true
}
