package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte("<?php\n"), 0o644); err != nil {
			t.Fatalf("Failed to create file %s: %v", rel, err)
		}
	}
}

func collectRel(t *testing.T, scope FileScope) []string {
	t.Helper()
	files, err := NewFileWalker(4).Collect(context.Background(), scope)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	var rels []string
	for _, f := range files {
		rels = append(rels, f.Rel)
	}
	slices.Sort(rels)
	return rels
}

func TestFileWalker_ValidateScope(t *testing.T) {
	walker := NewFileWalker(1)
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "index.php")
	writeTree(t, tempDir, "index.php")

	tests := []struct {
		name        string
		scope       FileScope
		expectError bool
	}{
		{"empty path", FileScope{}, true},
		{"nonexistent path", FileScope{Path: filepath.Join(tempDir, "missing")}, true},
		{"file instead of directory", FileScope{Path: file}, true},
		{"directory", FileScope{Path: tempDir}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := walker.validateScope(tt.scope)
			if (err != nil) != tt.expectError {
				t.Errorf("validateScope() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestFileWalker_IncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"app/Controllers/HomeController.php",
		"config/main.php",
		"resources/views/home.php",
		"resources/views/home.twig",
		"vendor/phphleb/framework/Init.php",
		"public/index.php",
	)

	got := collectRel(t, FileScope{
		Path:    root,
		Include: []string{"**/*.php"},
		Exclude: []string{"vendor/**"},
	})
	want := []string{
		"app/Controllers/HomeController.php",
		"config/main.php",
		"public/index.php",
		"resources/views/home.php",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}

func TestFileWalker_Gitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "app/Bootstrap/BaseContainer.php", "storage/cache/routes.php", "debug.php")
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("storage/\ndebug.php\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := collectRel(t, FileScope{Path: root, Include: []string{"*.php"}, Gitignore: true})
	if !slices.Equal(got, []string{"app/Bootstrap/BaseContainer.php"}) {
		t.Errorf("Collect() with gitignore = %v", got)
	}

	got = collectRel(t, FileScope{Path: root, Include: []string{"*.php"}})
	if len(got) != 3 {
		t.Errorf("Collect() without gitignore = %v, want 3 files", got)
	}
}

func TestFileWalker_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "root.php", "a/one.php", "a/b/two.php", "a/b/c/three.php")

	got := collectRel(t, FileScope{Path: root, MaxDepth: 2})
	want := []string{"a/b/two.php", "a/one.php", "root.php"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}

func TestFileWalker_MaxFiles(t *testing.T) {
	root := t.TempDir()
	for i := range 10 {
		writeTree(t, root, fmt.Sprintf("f%d.php", i))
	}

	got := collectRel(t, FileScope{Path: root, MaxFiles: 3})
	if len(got) != 3 {
		t.Errorf("Expected 3 files, got %d", len(got))
	}
}

func TestFileWalker_CancelledContext(t *testing.T) {
	root := t.TempDir()
	for i := range 5 {
		writeTree(t, root, fmt.Sprintf("f%d.php", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileWalker(2).Collect(ctx, FileScope{Path: root})
	if err == nil {
		t.Error("Expected context error from Collect")
	}
}

func TestFileWalker_Symlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, root, "index.php")
	writeTree(t, outside, "modules/shop/Controller.php")
	if err := os.Symlink(filepath.Join(outside, "modules"), filepath.Join(root, "modules")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got := collectRel(t, FileScope{Path: root})
	if !slices.Equal(got, []string{"index.php"}) {
		t.Errorf("Collect() without following = %v", got)
	}

	got = collectRel(t, FileScope{Path: root, FollowSymlinks: true})
	if !slices.Equal(got, []string{"index.php", "modules/shop/Controller.php"}) {
		t.Errorf("Collect() following symlinks = %v", got)
	}
}

func TestFileWalker_MatchPattern(t *testing.T) {
	walker := NewFileWalker(1)

	tests := []struct {
		rel     string
		pattern string
		want    bool
	}{
		{"app/Controllers/Home.php", "**/*.php", true},
		{"index.php", "**/*.php", true},
		{"app/Controllers/Home.php", "*.php", true},
		{"app/Controllers/Home.php", "app/*.php", false},
		{"vendor", "vendor/**", true},
		{"vendor/autoload.php", "vendor/**", true},
		{"resources/views/home.twig", "**/*.php", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel+"|"+tt.pattern, func(t *testing.T) {
			if got := walker.matchPattern(tt.rel, tt.pattern); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.rel, tt.pattern, got, tt.want)
			}
		})
	}
}
