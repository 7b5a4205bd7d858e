package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/db"
	"github.com/termfx/hlebhint/internal/analysis"
	"github.com/termfx/hlebhint/internal/annotator"
	"github.com/termfx/hlebhint/internal/config"
	"github.com/termfx/hlebhint/internal/framework"
	"github.com/termfx/hlebhint/internal/model"
	"github.com/termfx/hlebhint/internal/report"
	"github.com/termfx/hlebhint/internal/watch"
	"github.com/termfx/hlebhint/mcp"
)

// options holds the flags shared by all commands
type options struct {
	root        string
	debug       bool
	dbURL       string
	jsonOutput  bool
	showDiff    bool
	diffContext int
	watch       bool
	outPath     string
}

// app is the wired engine for one invocation
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	analyzer *analysis.Analyzer
	root     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "hlebhint",
		Short: "HLEB2 code hints for PHP projects",
		Long: `hlebhint annotates HLEB2 framework calls in PHP sources: configuration
lookups, request parameters, routes and debug output, and resolves the
file and view paths they reference.`,
		Version:       mcp.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", "Project base directory (default: nearest directory holding the framework marker)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newAnnotateCmd(opts),
		newResolveCmd(opts),
		newCompleteCmd(opts),
		newScanCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

func newAnnotateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <file>",
		Short: "Print the hints of one PHP file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, fc, src, err := opts.loadFile(cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}
			result, err := a.analyzer.AnalyzeFile(cmd.Context(), fc, src)
			if err != nil {
				return err
			}
			result.Path = core.RelSlash(a.root, fc.Path)

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return report.WriteJSON(out, result)
			}
			for _, line := range report.FileLines(result) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output results in JSON format")
	return cmd
}

func newResolveCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <file> <offset>",
		Short: "Print the targets of the path or view literal at a byte offset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, refs, err := opts.referencesAt(cmd, args, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return report.WriteJSON(out, refs)
			}
			for _, ref := range refs {
				fmt.Fprintln(out, report.ReferenceLine(core.RelSlash(a.root, absPath(args[0])), ref))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output results in JSON format")
	return cmd
}

func newCompleteCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <file> <offset>",
		Short: "Print completion candidates for the literal at a byte offset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, refs, err := opts.referencesAt(cmd, args, true)
			if err != nil {
				return err
			}

			completions := []core.Completion{}
			for _, ref := range refs {
				completions = append(completions, ref.Completions...)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return report.WriteJSON(out, completions)
			}
			for _, c := range completions {
				fmt.Fprintf(out, "%s%s\n", c.Value, c.Tail)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output results in JSON format")
	return cmd
}

func newScanCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Analyse every PHP file of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := opts.root
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting current directory: %w", err)
				}
				root = wd
			}
			a, err := opts.setup(cmd.ErrOrStderr(), root)
			if err != nil {
				return err
			}
			return opts.scan(cmd, a)
		},
	}
	cmd.Flags().StringVar(&opts.dbURL, "db", "", "Database DSN (sqlite path or libsql URL) to store the run")
	cmd.Flags().BoolVarP(&opts.showDiff, "diff", "D", false, "Show a unified diff against the previous stored run")
	cmd.Flags().IntVarP(&opts.diffContext, "diff-context", "C", report.DefaultContext, "Lines of context for the diff")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output results in JSON format")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP stdio server for editors and agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := opts.root
			if root == "" {
				if wd, err := os.Getwd(); err == nil {
					root = findRoot(wd, framework.DefaultMarker)
				}
			}
			a, err := opts.setup(cmd.ErrOrStderr(), root)
			if err != nil {
				return err
			}
			return opts.serve(cmd, a)
		},
	}
	cmd.Flags().StringVar(&opts.dbURL, "db", "", "Database DSN (sqlite path or libsql URL) for sessions and runs")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reset framework detection when the marker or config files change")
	return cmd
}

// setup loads the configuration for root and wires the analyzer
func (o *options) setup(stderr io.Writer, root string) (*app, error) {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %s: %w", root, err)
		}
		root = abs
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Debug = true
	}
	if o.dbURL != "" {
		cfg.DB = o.dbURL
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	detector := framework.NewDetector(cfg.DetectorOptions()...)
	engine := annotator.New(detector, logger, annotator.Options{
		PrefixDepth:     cfg.PrefixDepth,
		CompletionLimit: cfg.CompletionLimit,
	})
	analyzer := analysis.New(engine, logger, analysis.Options{
		Workers: cfg.Workers,
		Exclude: cfg.Exclude,
	})

	return &app{cfg: cfg, logger: logger, analyzer: analyzer, root: root}, nil
}

// loadFile wires the analyzer for the project holding path and reads it
func (o *options) loadFile(stderr io.Writer, path string) (*app, core.FileContext, []byte, error) {
	path = absPath(path)
	root := o.root
	if root == "" {
		root = findRoot(filepath.Dir(path), framework.DefaultMarker)
	}

	a, err := o.setup(stderr, root)
	if err != nil {
		return nil, core.FileContext{}, nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, core.FileContext{}, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	a.logger.Debug("loaded file", "path", path, "root", a.root, "bytes", len(src))
	return a, core.FileContext{Root: a.root, Path: path}, src, nil
}

func (o *options) referencesAt(cmd *cobra.Command, args []string, complete bool) (*app, []model.ReferenceResult, error) {
	offset, err := strconv.Atoi(args[1])
	if err != nil || offset < 0 {
		return nil, nil, fmt.Errorf("invalid offset %q: must be a non-negative integer", args[1])
	}
	a, fc, src, err := o.loadFile(cmd.ErrOrStderr(), args[0])
	if err != nil {
		return nil, nil, err
	}
	refs, err := a.analyzer.ReferencesAt(cmd.Context(), fc, src, offset, complete)
	if err != nil {
		return nil, nil, err
	}
	return a, refs, nil
}

func (o *options) scan(cmd *cobra.Command, a *app) error {
	result, err := a.analyzer.Scan(cmd.Context(), a.root)
	if err != nil {
		return err
	}
	if !result.Framework {
		return fmt.Errorf("%s: %w", a.root, model.ErrNotFramework)
	}

	out := cmd.OutOrStdout()
	var rendered bytes.Buffer
	if o.jsonOutput {
		if err := report.WriteJSON(&rendered, result); err != nil {
			return err
		}
	} else {
		report.WriteText(&rendered, result)
	}
	if o.outPath != "" {
		writer := core.NewAtomicWriter(core.DefaultAtomicConfig())
		if err := writer.WriteFile(o.outPath, rendered.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", o.outPath)
	} else if _, err := out.Write(rendered.Bytes()); err != nil {
		return err
	}

	if a.cfg.DB == "" {
		if o.showDiff {
			a.logger.Warn("--diff needs a database, skipping")
		}
		return nil
	}

	database, err := db.Connect(a.cfg.DB, a.cfg.Debug, a.cfg.LibsqlAuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close(database)

	previous, err := db.LatestRun(database, result.Root)
	if err != nil && !errors.Is(err, db.ErrNoRun) {
		return err
	}

	run, err := db.SaveRun(database, "", result)
	if err != nil {
		return err
	}
	a.logger.Debug("stored run", "id", run.ID, "digest", run.Digest)

	if !o.showDiff {
		return nil
	}
	if previous == nil {
		fmt.Fprintln(out, "No previous run to compare")
		return nil
	}
	if previous.Digest == run.Digest {
		fmt.Fprintln(out, "No changes since the previous run")
		return nil
	}
	diff, err := report.Diff(db.ReportLines(previous), report.Lines(result),
		"previous", "current", o.diffContext)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# previous run %s\n", previous.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprint(out, diff)
	return nil
}

func (o *options) serve(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()

	if o.watch && a.root != "" {
		watcher, err := watch.New(a.root, a.analyzer.Engine().Detector(), a.logger)
		if err != nil {
			return err
		}
		watcher.OnChange(func(path string) {
			a.logger.Debug("project changed", "path", path)
		})
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Close()
	}

	server, err := mcp.NewStdioServer(mcp.Config{
		Root:            a.root,
		DatabaseURL:     a.cfg.DB,
		LibsqlAuthToken: a.cfg.LibsqlAuthToken,
		Input:           cmd.InOrStdin(),
		Output:          cmd.OutOrStdout(),
		Logger:          a.logger,
		Debug:           a.cfg.Debug,
	}, a.analyzer)
	if err != nil {
		return err
	}
	defer func() {
		if err := server.Close(); err != nil {
			a.logger.Warn("error during shutdown", "error", err)
		}
	}()

	a.logger.Debug("starting MCP server", "root", a.root, "database", a.cfg.DB)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Debug("server shutdown complete")
	return nil
}

// findRoot walks up from dir to the first directory holding marker. It
// returns dir itself when no ancestor does.
func findRoot(dir, marker string) string {
	for current := dir; ; {
		if _, err := os.Stat(filepath.Join(current, filepath.FromSlash(marker))); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
