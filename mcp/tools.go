package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/db"
	"github.com/termfx/hlebhint/internal/model"
	"github.com/termfx/hlebhint/internal/report"
)

// ToolDefinition describes a tool for the client
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var (
	rootProperty = map[string]any{
		"type":        "string",
		"description": "Project base directory (defaults to the server root)",
	}
	pathProperty = map[string]any{
		"type":        "string",
		"description": "PHP file path, absolute or relative to root",
	}
	sourceProperty = map[string]any{
		"type":        "string",
		"description": "Unsaved file content; read from path when omitted",
	}
	offsetProperty = map[string]any{
		"type":        "integer",
		"description": "Byte offset inside a string literal",
	}
)

func fileSchema(withOffset bool) map[string]any {
	properties := map[string]any{
		"root":   rootProperty,
		"path":   pathProperty,
		"source": sourceProperty,
	}
	required := []string{"path"}
	if withOffset {
		properties["offset"] = offsetProperty
		required = append(required, "offset")
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// GetToolDefinitions returns all available tool definitions
func GetToolDefinitions() []ToolDefinition {
	rootOnly := map[string]any{
		"type":       "object",
		"properties": map[string]any{"root": rootProperty},
	}
	return []ToolDefinition{
		{
			Name:        "annotate",
			Description: "List HLEB2 annotations (config, request, route, debug) and path references of a PHP file",
			InputSchema: fileSchema(false),
		},
		{
			Name:        "resolve",
			Description: "Resolve the file or view referenced by the string literal at an offset",
			InputSchema: fileSchema(true),
		},
		{
			Name:        "complete",
			Description: "List completion candidates for the path or view literal at an offset",
			InputSchema: fileSchema(true),
		},
		{
			Name:        "scan",
			Description: "Analyse every PHP file of a project and report hint counts",
			InputSchema: rootOnly,
		},
		{
			Name:        "detect",
			Description: "Report whether a directory is an HLEB2 project",
			InputSchema: rootOnly,
		},
	}
}

// registerBuiltinTools registers all built-in tools
func (s *StdioServer) registerBuiltinTools() {
	s.RegisterTool("annotate", s.handleAnnotateTool)
	s.RegisterTool("resolve", s.handleResolveTool)
	s.RegisterTool("complete", s.handleCompleteTool)
	s.RegisterTool("scan", s.handleScanTool)
	s.RegisterTool("detect", s.handleDetectTool)
}

type fileArgs struct {
	Root   string  `json:"root"`
	Path   string  `json:"path"`
	Source *string `json:"source"`
	Offset *int    `json:"offset"`
}

func (s *StdioServer) decodeFileArgs(params json.RawMessage, tool string) (fileArgs, error) {
	var args fileArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return args, WrapError(InvalidParams, fmt.Sprintf("Invalid %s parameters", tool), err)
	}
	if args.Root == "" {
		args.Root = s.config.Root
	}
	if args.Root == "" {
		return args, model.ErrNoProjectRoot
	}
	root, err := absRoot(args.Root)
	if err != nil {
		return args, err
	}
	args.Root = root
	if args.Path == "" {
		return args, NewMCPError(InvalidParams, "'path' is required")
	}
	if !filepath.IsAbs(args.Path) {
		args.Path = filepath.Join(args.Root, args.Path)
	}
	return args, nil
}

// load returns the file context and the source to analyse
func (a fileArgs) load() (core.FileContext, []byte, error) {
	fc := core.FileContext{Root: a.Root, Path: a.Path}
	if a.Source != nil {
		return fc, []byte(*a.Source), nil
	}
	src, err := os.ReadFile(a.Path)
	if err != nil {
		return fc, nil, WrapError(FileSystemError, "Failed to read file", err)
	}
	return fc, src, nil
}

func textResult(text string, structured any) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{
				"type": "text",
				"text": text,
			},
		},
		"structuredContent": structured,
	}
}

func (s *StdioServer) handleAnnotateTool(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := s.decodeFileArgs(params, "annotate")
	if err != nil {
		return nil, err
	}
	fc, src, err := args.load()
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.AnalyzeFile(ctx, fc, src)
	if err != nil {
		return nil, err
	}
	result.Path = core.RelSlash(fc.Root, fc.Path)

	text := "No hints found"
	if lines := report.FileLines(result); len(lines) > 0 {
		text = fmt.Sprintf("Found %d hints:\n\n%s", result.HintCount(), strings.Join(lines, "\n"))
	}
	return textResult(text, result), nil
}

func (s *StdioServer) handleResolveTool(ctx context.Context, params json.RawMessage) (any, error) {
	refs, path, err := s.referencesAt(ctx, params, "resolve", false)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, ref := range refs {
		lines = append(lines, report.ReferenceLine(path, ref))
	}
	text := "No reference at offset"
	if len(lines) > 0 {
		text = strings.Join(lines, "\n")
	}
	return textResult(text, map[string]any{"references": refs}), nil
}

func (s *StdioServer) handleCompleteTool(ctx context.Context, params json.RawMessage) (any, error) {
	refs, _, err := s.referencesAt(ctx, params, "complete", true)
	if err != nil {
		return nil, err
	}

	completions := []core.Completion{}
	for _, ref := range refs {
		completions = append(completions, ref.Completions...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d candidates", len(completions))
	for _, c := range completions {
		b.WriteString("\n" + c.Value + c.Tail)
	}
	return textResult(b.String(), map[string]any{"completions": completions}), nil
}

func (s *StdioServer) referencesAt(ctx context.Context, params json.RawMessage, tool string, complete bool) ([]model.ReferenceResult, string, error) {
	args, err := s.decodeFileArgs(params, tool)
	if err != nil {
		return nil, "", err
	}
	if args.Offset == nil || *args.Offset < 0 {
		return nil, "", NewMCPError(InvalidParams, "'offset' must be a non-negative integer")
	}
	fc, src, err := args.load()
	if err != nil {
		return nil, "", err
	}
	refs, err := s.analyzer.ReferencesAt(ctx, fc, src, *args.Offset, complete)
	if err != nil {
		return nil, "", err
	}
	return refs, core.RelSlash(fc.Root, fc.Path), nil
}

func (s *StdioServer) rootArg(params json.RawMessage, tool string) (string, error) {
	var args struct {
		Root string `json:"root"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return "", WrapError(InvalidParams, fmt.Sprintf("Invalid %s parameters", tool), err)
		}
	}
	if args.Root == "" {
		args.Root = s.config.Root
	}
	if args.Root == "" {
		return "", model.ErrNoProjectRoot
	}
	return absRoot(args.Root)
}

// absRoot resolves root against the working directory
func absRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", WrapError(InvalidParams, "Invalid root", err)
	}
	return filepath.Clean(abs), nil
}

func (s *StdioServer) handleScanTool(ctx context.Context, params json.RawMessage) (any, error) {
	root, err := s.rootArg(params, "scan")
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	if !result.Framework {
		return nil, fmt.Errorf("%s: %w", root, model.ErrNotFramework)
	}

	files := map[string]int{}
	for _, f := range result.Files {
		if n := f.HintCount(); n > 0 {
			files[f.Path] = n
		}
	}
	summary := map[string]any{
		"root":   result.Root,
		"files":  len(result.Files),
		"hints":  result.HintCount(),
		"failed": len(result.Failed()),
		"digest": report.Digest(result),
		"counts": files,
	}

	if s.db != nil {
		sessionID := ""
		if s.session != nil {
			sessionID = s.session.ID
		}
		run, err := db.SaveRun(s.db, sessionID, result)
		if err != nil {
			return nil, WrapError(DatabaseError, "Failed to store scan", err)
		}
		summary["run_id"] = run.ID
	}

	text := fmt.Sprintf("Scanned %d files: %d hints, %d failed",
		len(result.Files), result.HintCount(), len(result.Failed()))
	return textResult(text, summary), nil
}

func (s *StdioServer) handleDetectTool(_ context.Context, params json.RawMessage) (any, error) {
	root, err := s.rootArg(params, "detect")
	if err != nil {
		return nil, err
	}

	detector := s.analyzer.Engine().Detector()
	framework := detector.Detect(root)
	text := "Not an HLEB2 project"
	if framework {
		text = "HLEB2 project"
	}
	return textResult(text, map[string]any{
		"root":      root,
		"framework": framework,
		"marker":    filepath.ToSlash(detector.Marker()),
	}), nil
}
