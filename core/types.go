package core

// Position in source code. Line and Column are 0-based, Column counts bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open byte span with its start and end points
type Range struct {
	StartByte int      `json:"start_byte"`
	EndByte   int      `json:"end_byte"`
	Start     Position `json:"start"`
	End       Position `json:"end"`
}

// Len returns the number of bytes covered by the range
func (r Range) Len() int {
	return r.EndByte - r.StartByte
}

// Contains reports whether offset falls inside the range
func (r Range) Contains(offset int) bool {
	return offset >= r.StartByte && offset < r.EndByte
}

// Inner returns the range shrunk by one byte on each side, the span of a
// quoted literal's content. Ranges shorter than two bytes are returned as is.
func (r Range) Inner() Range {
	if r.Len() < 2 {
		return r
	}
	inner := r
	inner.StartByte++
	inner.EndByte--
	inner.Start.Column++
	if inner.End.Column > 0 {
		inner.End.Column--
	}
	return inner
}

// FileContext carries the project information a query runs against.
// Root is the project base directory and Path the containing file; either
// may be empty when the host cannot determine it.
type FileContext struct {
	Root string `json:"root"`
	Path string `json:"path"`
}

// Annotation is an informational decoration attached to a source range
type Annotation struct {
	Range   Range  `json:"range"`
	Tooltip string `json:"tooltip"`
	Style   Style  `json:"style"`
	Source  string `json:"source"` // annotator that produced it
}

// Completion is a single autocomplete candidate
type Completion struct {
	Value       string `json:"value"`
	Presentable string `json:"presentable,omitempty"`
	Tail        string `json:"tail,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Reference is a navigable, completable span inside a string literal
type Reference interface {
	// Range is the span of the literal content, quotes excluded
	Range() Range
	// Resolve returns the absolute path of the referenced file
	Resolve() (string, bool)
	// Variants lists completion candidates for the literal
	Variants() []Completion
}
