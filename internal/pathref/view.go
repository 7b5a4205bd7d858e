package pathref

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/termfx/hlebhint/core"
)

// ViewsDir is the default template directory, relative to the project root
const ViewsDir = "resources/views"

const moduleViews = "views"

var viewEdges = regexp.MustCompile(`^/|[/@]+$`)

// ViewPathReference is a template name passed to view() and friends. Names
// resolve inside the nearest module views directory or the project's one.
type ViewPathReference struct {
	root  string
	file  string
	rng   core.Range
	path  string
	limit int
}

var _ core.Reference = (*ViewPathReference)(nil)

// NewViewPathReference builds the reference of a view-name literal
func NewViewPathReference(fc core.FileContext, literal core.Node, limit int) *ViewPathReference {
	return &ViewPathReference{
		root:  fc.Root,
		file:  fc.Path,
		rng:   literal.Range().Inner(),
		path:  literalContent(literal),
		limit: limit,
	}
}

func (r *ViewPathReference) Range() core.Range { return r.rng }

// Path returns the normalised literal content
func (r *ViewPathReference) Path() string { return r.path }

// ViewDir returns the directory names are resolved in
func (r *ViewPathReference) ViewDir() string {
	if dir := core.FindUp(r.root, r.file, moduleViews); dir != "" {
		return dir
	}
	return filepath.Join(r.root, filepath.FromSlash(ViewsDir))
}

// Resolve tries <name>.php then <name> in the views directory. A module
// without its own error template falls back to the project's.
func (r *ViewPathReference) Resolve() (string, bool) {
	if r.root == "" || r.path == "" || strings.Contains(r.path, "..") || strings.HasPrefix(r.path, "@") {
		return "", false
	}

	rel := viewEdges.ReplaceAllString(r.path, "")
	viewDir := filepath.Join(r.root, filepath.FromSlash(ViewsDir))
	if module := core.FindUp(r.root, r.file, moduleViews); module != "" {
		viewDir = module
		if rel == "error" || rel == "error.php" {
			if _, err := os.Stat(filepath.Join(module, "error.php")); err != nil {
				viewDir = filepath.Join(r.root, filepath.FromSlash(ViewsDir))
			}
		}
	}

	target := filepath.Join(viewDir, filepath.FromSlash(rel))
	if path, ok := existingFile(target + ".php"); ok {
		return path, true
	}
	return existingFile(target)
}

// Variants lists the templates of the views directory, .php files first at
// each level and shown without their extension.
func (r *ViewPathReference) Variants() []core.Completion {
	if r.root == "" {
		return nil
	}
	dir := r.ViewDir()
	c := &collector{limit: r.limit}
	addViews(c, dir, "", core.RelSlash(r.root, dir))
	return c.items
}

func addViews(c *collector, dir, parent, viewRoot string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".php") {
			continue
		}
		rel := strings.TrimPrefix(parent+"/"+entry.Name(), "/")
		name := strings.TrimSuffix(rel, ".php")
		if !c.add(viewCompletion(name, rel, entry.Name(), viewRoot)) {
			return
		}
	}
	for _, entry := range entries {
		if c.full() {
			return
		}
		rel := strings.TrimPrefix(parent+"/"+entry.Name(), "/")
		switch {
		case entry.IsDir():
			addViews(c, filepath.Join(dir, entry.Name()), parent+"/"+entry.Name(), viewRoot)
		case !strings.HasSuffix(entry.Name(), ".php"):
			c.add(viewCompletion(rel, rel, entry.Name(), viewRoot))
		}
	}
}

func viewCompletion(value, rel, fileName, viewRoot string) core.Completion {
	return core.Completion{
		Value:       value,
		Presentable: value,
		Tail:        " (" + viewRoot + "/" + rel + ")",
		Type:        extensionUpper(fileName),
	}
}

func extensionUpper(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToUpper(name[idx+1:])
}
