package core

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileScope defines which files of a project a walk visits
type FileScope struct {
	Path           string   `json:"path"`                // Root path to scan
	Include        []string `json:"include,omitempty"`   // Patterns to include (*.php, app/**)
	Exclude        []string `json:"exclude,omitempty"`   // Patterns to exclude
	MaxDepth       int      `json:"max_depth,omitempty"` // Max directory depth (0 = unlimited)
	MaxFiles       int      `json:"max_files,omitempty"` // Max files to emit (0 = unlimited)
	FollowSymlinks bool     `json:"follow_symlinks"`
	Gitignore      bool     `json:"gitignore"` // Honour <Path>/.gitignore
}

// FileWalker provides parallel file system traversal
type FileWalker struct {
	workers    int
	bufferSize int
}

// NewFileWalker creates a walker with workers goroutines; zero or less uses
// twice the CPU count.
func NewFileWalker(workers int) *FileWalker {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	return &FileWalker{
		workers:    workers,
		bufferSize: 256,
	}
}

// WalkResult represents a discovered file
type WalkResult struct {
	Path  string // absolute path
	Rel   string // slash-separated path relative to the scope root
	Info  fs.FileInfo
	Error error
}

type walkState struct {
	scope     FileScope
	root      string
	ignore    *ignore.GitIgnore
	processed int
	visited   map[string]struct{}
}

// Walk streams files under scope.Path. The channel is closed once the scan
// finishes or ctx is cancelled.
func (fw *FileWalker) Walk(ctx context.Context, scope FileScope) (<-chan WalkResult, error) {
	if err := fw.validateScope(scope); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(scope.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", scope.Path, err)
	}

	state := &walkState{scope: scope, root: root}
	if scope.Gitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			state.ignore = gi
		}
	}
	if scope.FollowSymlinks {
		state.visited = make(map[string]struct{})
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			state.visited[resolved] = struct{}{}
		} else {
			state.visited[root] = struct{}{}
		}
	}

	results := make(chan WalkResult, fw.bufferSize)
	paths := make(chan string, fw.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < fw.workers; i++ {
		wg.Add(1)
		go fw.worker(ctx, root, paths, results, &wg)
	}

	go func() {
		defer close(paths)
		fw.scanDirectory(ctx, root, state, paths, 0)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func (fw *FileWalker) worker(
	ctx context.Context,
	root string,
	paths <-chan string,
	results chan<- WalkResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}

			result := WalkResult{Path: path, Rel: RelSlash(root, path)}
			result.Info, result.Error = os.Stat(path)

			select {
			case <-ctx.Done():
				return
			case results <- result:
			}
		}
	}
}

func (fw *FileWalker) scanDirectory(
	ctx context.Context,
	dirPath string,
	state *walkState,
	paths chan<- string,
	depth int,
) {
	scope := state.scope
	if scope.MaxFiles > 0 && state.processed >= scope.MaxFiles {
		return
	}
	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return // Skip directories we can't read
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		rel := RelSlash(state.root, fullPath)

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if !scope.FollowSymlinks {
				continue
			}
			resolved, err := filepath.EvalSymlinks(fullPath)
			if err != nil {
				continue
			}
			info, err := os.Stat(resolved)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}

		if state.ignore != nil && state.ignore.MatchesPath(ignorePath(rel, isDir)) {
			continue
		}
		if fw.isExcluded(rel, scope.Exclude) {
			continue
		}

		if isDir {
			if state.visited != nil {
				realPath := fullPath
				if resolved, err := filepath.EvalSymlinks(fullPath); err == nil && resolved != "" {
					realPath = resolved
				}
				if _, seen := state.visited[realPath]; seen {
					continue
				}
				state.visited[realPath] = struct{}{}
			}
			fw.scanDirectory(ctx, fullPath, state, paths, depth+1)
			continue
		}

		if !fw.isIncluded(rel, scope.Include) {
			continue
		}
		if scope.MaxFiles > 0 && state.processed >= scope.MaxFiles {
			return
		}
		select {
		case <-ctx.Done():
			return
		case paths <- fullPath:
			state.processed++
		}
	}
}

func (fw *FileWalker) isIncluded(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if fw.matchPattern(rel, pattern) {
			return true
		}
	}
	return false
}

func (fw *FileWalker) isExcluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if fw.matchPattern(rel, pattern) {
			return true
		}
	}
	return false
}

// matchPattern matches a slash path against a ** glob. Patterns without a
// slash are also tried against the base name; "dir/**" excludes dir itself.
func (fw *FileWalker) matchPattern(rel, pattern string) bool {
	if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
		return true
	}
	if dir, ok := strings.CutSuffix(pattern, "/**"); ok && dir == rel {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if matched, err := doublestar.Match(pattern, filepath.Base(rel)); err == nil && matched {
			return true
		}
	}
	return false
}

func (fw *FileWalker) validateScope(scope FileScope) error {
	if scope.Path == "" {
		return fmt.Errorf("path is required")
	}

	info, err := os.Stat(scope.Path)
	if err != nil {
		return fmt.Errorf("cannot access path %s: %w", scope.Path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", scope.Path)
	}

	return nil
}

// Collect drains a walk into a list of paths, skipping files that failed
// to stat.
func (fw *FileWalker) Collect(ctx context.Context, scope FileScope) ([]WalkResult, error) {
	results, err := fw.Walk(ctx, scope)
	if err != nil {
		return nil, err
	}

	var files []WalkResult
	for result := range results {
		if result.Error != nil {
			continue
		}
		files = append(files, result)
	}
	if err := ctx.Err(); err != nil {
		return files, err
	}
	return files, nil
}

func ignorePath(rel string, isDir bool) string {
	if isDir {
		return rel + "/"
	}
	return rel
}
