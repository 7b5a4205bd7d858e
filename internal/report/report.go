// Package report renders scan results and compares them between runs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/model"
)

// DefaultContext is the number of context lines in a diff
const DefaultContext = 3

var (
	heading = regexp.MustCompile(`<h3>(.*?)</h3>`)
	markup  = regexp.MustCompile(`<[^>]*>`)
)

// Title returns the plain-text headline of a tooltip
func Title(tooltip string) string {
	if m := heading.FindStringSubmatch(tooltip); m != nil {
		return markup.ReplaceAllString(m[1], "")
	}
	return markup.ReplaceAllString(tooltip, "")
}

// AnnotationLine formats an annotation as path:line:col [source/style] title.
// Lines and columns are printed 1-based.
func AnnotationLine(path string, ann core.Annotation) string {
	return fmt.Sprintf("%s:%d:%d [%s/%s] %s",
		path,
		ann.Range.Start.Line+1,
		ann.Range.Start.Column+1,
		ann.Source,
		ann.Style,
		Title(ann.Tooltip),
	)
}

// ReferenceLine formats a reference and its resolution
func ReferenceLine(path string, ref model.ReferenceResult) string {
	target := "unresolved"
	if ref.Resolved {
		target = "-> " + ref.Target
	}
	return fmt.Sprintf("%s:%d:%d [%s] %s %s",
		path,
		ref.Range.Start.Line+1,
		ref.Range.Start.Column+1,
		ref.Kind,
		ref.Text,
		target,
	)
}

// Lines flattens a scan into one line per hint, in file then position order
func Lines(r *model.ScanResult) []string {
	if r == nil {
		return nil
	}
	var lines []string
	for _, f := range r.Files {
		lines = append(lines, FileLines(f)...)
	}
	return lines
}

// FileLines lists the hints of one file
func FileLines(f model.FileResult) []string {
	var lines []string
	for _, ann := range f.Annotations {
		lines = append(lines, AnnotationLine(f.Path, ann))
	}
	for _, ref := range f.References {
		lines = append(lines, ReferenceLine(f.Path, ref))
	}
	if f.Error != "" {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", f.Path, f.Code, f.Error))
	}
	return lines
}

// Digest fingerprints the hints of a scan. Two scans with the same hints
// have the same digest regardless of timing.
func Digest(r *model.ScanResult) string {
	h := xxhash.New()
	for _, line := range Lines(r) {
		_, _ = h.WriteString(line)
		_, _ = h.WriteString("\n")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Diff returns a unified diff between two hint listings, empty when equal
func Diff(before, after []string, from, to string, context int) (string, error) {
	if context < 0 {
		context = DefaultContext
	}
	diff := difflib.UnifiedDiff{
		A:        withNewlines(before),
		B:        withNewlines(after),
		FromFile: "a/" + from,
		ToFile:   "b/" + to,
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line + "\n"
	}
	return out
}

// WriteText prints a human readable scan report
func WriteText(w io.Writer, r *model.ScanResult) {
	if !r.Framework {
		fmt.Fprintf(w, "✗ %s — not an HLEB2 project\n", r.Root)
		return
	}
	for _, f := range r.Files {
		lines := FileLines(f)
		if len(lines) == 0 {
			continue
		}
		if f.Error != "" {
			fmt.Fprintf(w, "✗ %s\n", f.Path)
		} else {
			fmt.Fprintf(w, "✓ %s — %d hints\n", f.Path, f.HintCount())
		}
		for _, line := range lines {
			fmt.Fprintf(w, "  %s\n", strings.TrimPrefix(line, f.Path+":"))
		}
	}
	fmt.Fprintf(w, "\n%d files, %d hints, %d failed in %s\n",
		len(r.Files), r.HintCount(), len(r.Failed()), r.Duration.Round(time.Millisecond))
}

// WriteJSON encodes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
