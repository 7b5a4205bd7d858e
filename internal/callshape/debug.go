package callshape

import (
	"github.com/termfx/hlebhint/core"
)

// DebugLevel separates leftover debugging calls from intended output
type DebugLevel uint8

const (
	DebugHint DebugLevel = iota // var_dump and friends
	DebugInfo                   // var_export, print_r2
)

type debugFunction struct {
	level     DebugLevel
	firstOnly bool
}

var debugFunctions = map[string]debugFunction{
	"var_dump":   {level: DebugHint},
	"dd":         {level: DebugHint},
	"print_r":    {level: DebugHint, firstOnly: true},
	"var_dump2":  {level: DebugHint},
	"dump":       {level: DebugHint},
	"var_export": {level: DebugInfo},
	"print_r2":   {level: DebugInfo, firstOnly: true},
}

// MatchDebug recognises an argument of a debugging function
func MatchDebug(n core.Node) (DebugLevel, bool) {
	shape, ok := Enclosing(n)
	if !ok || shape.Kind != core.KindFunctionCall {
		return 0, false
	}
	fn, ok := debugFunctions[shape.Callee]
	if !ok {
		return 0, false
	}
	idx := shape.Index(n)
	if idx < 0 || (fn.firstOnly && idx != 0) {
		return 0, false
	}
	return fn.level, true
}
