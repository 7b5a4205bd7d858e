package pathref

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/callshape"
)

// PathReference is a file path argument of a path helper. Only @alias
// paths resolve unless the call accepts absolute paths.
type PathReference struct {
	root  string
	rng   core.Range
	path  string
	req   callshape.PathRequest
	limit int
}

var _ core.Reference = (*PathReference)(nil)

// NewPathReference builds the reference of a string literal. limit caps the
// completion list, 0 means unlimited.
func NewPathReference(fc core.FileContext, literal core.Node, req callshape.PathRequest, limit int) *PathReference {
	return &PathReference{
		root:  fc.Root,
		rng:   literal.Range().Inner(),
		path:  strings.NewReplacer(`"`, "", `'`, "").Replace(literalContent(literal)),
		req:   req,
		limit: limit,
	}
}

func (r *PathReference) Range() core.Range { return r.rng }

// Path returns the normalised literal content
func (r *PathReference) Path() string { return r.path }

// Request returns the call expectations the reference was built with
func (r *PathReference) Request() callshape.PathRequest { return r.req }

// Resolve returns the file the literal points at. Directory-only calls never
// resolve.
func (r *PathReference) Resolve() (string, bool) {
	if r.root == "" || r.path == "" || r.req.IsDir || strings.Contains(r.path, "..") {
		return "", false
	}

	if !strings.HasPrefix(r.path, "@") {
		if r.req.OnlyBrief || !filepath.IsAbs(r.path) {
			return "", false
		}
		return existingFile(r.path)
	}

	alias, rest, _ := strings.Cut(r.path, "/")
	dir, ok := AliasDir(r.root, alias)
	if !ok {
		return "", false
	}
	target := filepath.Join(dir, filepath.FromSlash(rest))
	if path, ok := existingFile(target); ok {
		return path, true
	}
	if rest != "" && !strings.HasSuffix(rest, ".php") {
		return existingFile(target + ".php")
	}
	return "", false
}

// Variants lists every alias path under the existing alias roots: only
// directories for directory calls, directories then files for full-path
// calls, files otherwise.
func (r *PathReference) Variants() []core.Completion {
	if r.root == "" || (!strings.HasPrefix(r.path, "@") && r.req.OnlyBrief) {
		return nil
	}

	c := &collector{limit: r.limit}
	for _, alias := range Aliases {
		dir, _ := AliasDir(r.root, alias.Name)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		switch {
		case r.req.IsDir:
			addDirectories(c, dir, alias.Name)
		case r.req.FullPath:
			addDirectories(c, dir, alias.Name)
			addFiles(c, dir, alias.Name)
		default:
			addFiles(c, dir, alias.Name)
		}
		if c.full() {
			break
		}
	}
	return c.items
}

func addDirectories(c *collector, dir, prefix string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := prefix + "/" + entry.Name()
		if !c.add(core.Completion{Value: name}) {
			return
		}
		addDirectories(c, filepath.Join(dir, entry.Name()), name)
	}
}

// addFiles lists the .php files of a directory before descending into its
// subdirectories and listing the remaining files.
func addFiles(c *collector, dir, prefix string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".php") {
			if !c.add(core.Completion{Value: prefix + "/" + entry.Name()}) {
				return
			}
		}
	}
	for _, entry := range entries {
		if c.full() {
			return
		}
		name := prefix + "/" + entry.Name()
		switch {
		case entry.IsDir():
			addFiles(c, filepath.Join(dir, entry.Name()), name)
		case !strings.HasSuffix(entry.Name(), ".php"):
			c.add(core.Completion{Value: name})
		}
	}
}

func existingFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, true
	}
	return abs, true
}
