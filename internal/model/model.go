package model

import (
	"time"

	"github.com/termfx/hlebhint/core"
)

// ReferenceKind names the provider that produced a reference
type ReferenceKind string

const (
	RefPath ReferenceKind = "path"
	RefView ReferenceKind = "view"
)

// ReferenceResult is a reference with its resolution evaluated
type ReferenceResult struct {
	Kind        ReferenceKind     `json:"kind"`
	Range       core.Range        `json:"range"`
	Text        string            `json:"text"`
	Target      string            `json:"target,omitempty"`
	Resolved    bool              `json:"resolved"`
	Completions []core.Completion `json:"completions,omitempty"`
}

// FileResult holds everything found in one file.
type FileResult struct {
	Path        string            `json:"path"`
	Annotations []core.Annotation `json:"annotations"`
	References  []ReferenceResult `json:"references,omitempty"`
	Error       string            `json:"error,omitempty"`
	Code        ErrorCode         `json:"code,omitempty"`
}

// HintCount is the number of annotations plus references
func (r FileResult) HintCount() int {
	return len(r.Annotations) + len(r.References)
}

// ScanResult aggregates a project scan.
type ScanResult struct {
	Root      string        `json:"root"`
	Framework bool          `json:"framework"`
	Files     []FileResult  `json:"files"`
	Duration  time.Duration `json:"duration"`
}

// HintCount sums the hints of all files
func (r ScanResult) HintCount() int {
	total := 0
	for _, f := range r.Files {
		total += f.HintCount()
	}
	return total
}

// Failed returns the files that could not be analysed
func (r ScanResult) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Error != "" {
			failed = append(failed, f)
		}
	}
	return failed
}
