package callshape

import (
	"strings"

	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/checker"
)

const routeClass = `\Route`

// DefaultPrefixDepth caps the ancestor walk that looks for the Route:: root
// of a prefix() chain
const DefaultPrefixDepth = 32

var routeMethods = []string{"get", "post", "put", "delete", "patch", "options", "any", "match"}

// MatchRouteAddress recognises the address literal of Route::get() and its
// siblings. match() takes the address as its second argument.
func MatchRouteAddress(n core.Node) bool {
	if n == nil || !checker.IsSafeQuotedLiteral(n.Text()) {
		return false
	}
	shape, ok := Enclosing(n)
	if !ok || !shape.IsStatic(routeClass) || !contains(routeMethods, shape.Callee) {
		return false
	}

	pos := 0
	if shape.Callee == "match" {
		pos = 1
	}
	address := shape.Arg(pos)
	return address != nil && address.Equal(n)
}

// MatchRoutePrefix recognises the argument of ->prefix() or ::prefix() when
// some ancestor within maxDepth steps starts with "Route::". maxDepth <= 0
// uses DefaultPrefixDepth.
func MatchRoutePrefix(n core.Node, maxDepth int) bool {
	if n == nil || !checker.IsSafeQuotedLiteral(n.Text()) {
		return false
	}
	shape, ok := Enclosing(n)
	if !ok || !shape.Kind.IsMethodCall() || shape.Callee != "prefix" {
		return false
	}
	if len(shape.Args) != 1 || !shape.Args[0].Equal(n) {
		return false
	}

	if maxDepth <= 0 {
		maxDepth = DefaultPrefixDepth
	}
	parent := shape.Call.Parent()
	for depth := 0; parent != nil && depth < maxDepth; depth++ {
		if strings.HasPrefix(parent.Text(), "Route::") {
			return true
		}
		parent = parent.Parent()
	}
	return false
}
