// Package callshape recognises the framework call patterns a literal can sit
// in. Matchers take the candidate node and look at most at its argument list,
// the enclosing call and the call's receiver chain. Anything that does not
// fit is a silent non-match.
package callshape

import (
	"github.com/termfx/hlebhint/core"
)

// Shape is the call enclosing a candidate argument
type Shape struct {
	Kind      core.Kind // KindFunctionCall, KindMethodCall or KindStaticCall
	Callee    string
	Qualifier string // static scope FQN or receiver text, empty for functions
	Call      core.Node
	Args      []core.Node
}

// Enclosing returns the call whose argument list directly contains n
func Enclosing(n core.Node) (Shape, bool) {
	if n == nil {
		return Shape{}, false
	}
	list := n.Parent()
	if list == nil || list.Kind() != core.KindArgumentList {
		return Shape{}, false
	}
	call := list.Parent()
	if call == nil || !call.Kind().IsCall() {
		return Shape{}, false
	}

	shape := Shape{
		Kind:   call.Kind(),
		Callee: call.Name(),
		Call:   call,
		Args:   call.Arguments(),
	}
	if shape.Kind.IsMethodCall() {
		if receiver := call.FirstChild(); receiver != nil {
			shape.Qualifier = receiver.Text()
			if receiver.Kind() == core.KindClassReference {
				shape.Qualifier = receiver.FQN()
			}
		}
	}
	return shape, true
}

// Index returns the argument position of n, or -1
func (s Shape) Index(n core.Node) int {
	return core.IndexOf(s.Args, n)
}

// Arg returns argument i or nil when out of range
func (s Shape) Arg(i int) core.Node {
	if i < 0 || i >= len(s.Args) {
		return nil
	}
	return s.Args[i]
}

// IsFunction reports a free function call named one of names
func (s Shape) IsFunction(names ...string) bool {
	return s.Kind == core.KindFunctionCall && contains(names, s.Callee)
}

// IsStatic reports a static call on class fqn
func (s Shape) IsStatic(fqn string) bool {
	return s.Kind == core.KindStaticCall && s.Qualifier == fqn
}

func contains(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}
