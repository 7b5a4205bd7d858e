// Package settings locates framework configuration files and extracts
// parameter values from them. Nothing is cached: configuration may change
// between two queries.
package settings

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/termfx/hlebhint/core"
)

// ConfigDir is the configuration directory name, both at the project root
// and inside modules
const ConfigDir = "config"

// Domains that modules may override
var moduleDomains = map[string]bool{
	"main":     true,
	"database": true,
}

// Files lists <root>/config/<domain>[-suffix].php as root-relative slash
// paths, longest first.
func Files(root, domain string) []string {
	if root == "" {
		return nil
	}
	return search(root, filepath.Join(root, ConfigDir), domain)
}

// ModuleFiles lists the domain files of a module config directory. Only the
// main and database domains can be overridden by modules.
func ModuleFiles(root, moduleDir, domain string) []string {
	if root == "" || moduleDir == "" || !moduleDomains[domain] {
		return nil
	}
	return search(root, moduleDir, domain)
}

// IsModule reports whether a module overrides the domain with a file named
// exactly <domain>.php
func IsModule(domain string, moduleFiles []string) bool {
	name := domain + ".php"
	for _, file := range moduleFiles {
		if filepath.Base(filepath.FromSlash(file)) == name {
			return true
		}
	}
	return false
}

// ModuleConfigDir returns the config directory of the module containing
// file: the nearest ancestor with a config subdirectory. The project's own
// config directory does not count.
func ModuleConfigDir(root, file string) string {
	dir := core.FindUp(root, file, ConfigDir)
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(filepath.Join(root, ConfigDir)); err == nil && core.SameFile(abs, dir) {
		return ""
	}
	return dir
}

func search(root, dir, domain string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	pattern, err := regexp.Compile(`^` + regexp.QuoteMeta(domain) + `(-.*)?\.php$`)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() && !isRegularLink(dir, entry) {
			continue
		}
		if pattern.MatchString(entry.Name()) {
			files = append(files, core.RelSlash(root, filepath.Join(dir, entry.Name())))
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return len(files[i]) > len(files[j])
	})
	return files
}

func isRegularLink(dir string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}
