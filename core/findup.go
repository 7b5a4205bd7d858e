package core

import (
	"os"
	"path/filepath"
	"strings"
)

// FindUp looks for a directory called name next to file, then in each parent
// directory, stopping at the depth of root. It returns the absolute path of
// the first match or "". Both paths are made absolute first.
func FindUp(root, file, name string) string {
	if root == "" || file == "" {
		return ""
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return ""
	}
	file, err = filepath.Abs(file)
	if err != nil {
		return ""
	}

	rootDepth := depth(root)
	for dir := filepath.Dir(file); depth(dir) >= rootDepth; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return ""
}

// SameFile compares two paths after cleaning them
func SameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// RelSlash returns target relative to base with forward slashes, or target
// itself when no relative path exists
func RelSlash(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

func depth(path string) int {
	path = filepath.ToSlash(filepath.Clean(path))
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "/") + 1
}
