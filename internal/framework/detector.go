// Package framework detects whether a project is an HLEB2 application.
package framework

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// DefaultMarker is the file whose presence identifies a project
const DefaultMarker = "app/Bootstrap/BaseContainer.php"

// DefaultRecheckProbability is the share of queries that re-stat the marker
const DefaultRecheckProbability = 0.1

// State of a cached detection
type State uint32

const (
	Unknown State = iota
	On
	Off
)

func (s State) String() string {
	switch s {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unknown"
	}
}

// Detector caches framework presence per project root. Reads are lock-free;
// a recheck overwrites the cached state, so two concurrent rechecks may both
// stat the marker.
type Detector struct {
	marker      string
	probability float64
	roll        func() float64
	exists      func(path string) bool

	states sync.Map // root -> *atomic.Uint32
	checks atomic.Int64
}

// Option configures a Detector
type Option func(*Detector)

// WithMarker sets the marker path, relative to the project root
func WithMarker(marker string) Option {
	return func(d *Detector) {
		if marker != "" {
			d.marker = filepath.FromSlash(marker)
		}
	}
}

// WithRecheckProbability sets the chance in [0,1] that a cached answer is
// recomputed
func WithRecheckProbability(p float64) Option {
	return func(d *Detector) {
		switch {
		case p < 0:
			p = 0
		case p > 1:
			p = 1
		}
		d.probability = p
	}
}

// WithRand replaces the random source used for rechecks
func WithRand(roll func() float64) Option {
	return func(d *Detector) {
		if roll != nil {
			d.roll = roll
		}
	}
}

// NewDetector creates a detector with an empty cache
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		marker:      filepath.FromSlash(DefaultMarker),
		probability: DefaultRecheckProbability,
		roll:        rand.Float64,
		exists:      fileExists,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect reports whether root holds the marker file. An empty root cannot be
// checked and is treated as a framework project.
func (d *Detector) Detect(root string) bool {
	if root == "" {
		return true
	}

	slot := d.slot(root)
	cached := State(slot.Load())
	if cached != Unknown && d.roll() >= d.probability {
		return cached == On
	}

	state := Off
	d.checks.Add(1)
	if d.exists(filepath.Join(root, d.marker)) {
		state = On
	}
	slot.Store(uint32(state))
	return state == On
}

// State returns the cached state for root without checking the disk
func (d *Detector) State(root string) State {
	if v, ok := d.states.Load(root); ok {
		return State(v.(*atomic.Uint32).Load())
	}
	return Unknown
}

// Reset forgets the cached state of root so the next query re-stats
func (d *Detector) Reset(root string) {
	if v, ok := d.states.Load(root); ok {
		v.(*atomic.Uint32).Store(uint32(Unknown))
	}
}

// Marker returns the marker path relative to a project root
func (d *Detector) Marker() string {
	return d.marker
}

// Checks returns how many times the marker was looked up on disk
func (d *Detector) Checks() int64 {
	return d.checks.Load()
}

func (d *Detector) slot(root string) *atomic.Uint32 {
	if v, ok := d.states.Load(root); ok {
		return v.(*atomic.Uint32)
	}
	v, _ := d.states.LoadOrStore(root, new(atomic.Uint32))
	return v.(*atomic.Uint32)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var global = NewDetector()

// Default returns the process-wide detector
func Default() *Detector {
	return global
}
