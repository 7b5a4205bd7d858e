package core

// Kind classifies a syntax node for call-shape matching
type Kind uint8

const (
	KindOther Kind = iota
	KindArgumentList
	KindFunctionCall
	KindMethodCall // $obj->m(), $obj?->m()
	KindStaticCall // Cls::m()
	KindFieldAccess
	KindVariable
	KindClassReference
	KindClassConstant // Cls::class
	KindStringLiteral
	KindNumberLiteral
	KindBooleanLiteral
	KindNullLiteral
)

var kindNames = [...]string{
	KindOther:          "other",
	KindArgumentList:   "argument_list",
	KindFunctionCall:   "function_call",
	KindMethodCall:     "method_call",
	KindStaticCall:     "static_call",
	KindFieldAccess:    "field_access",
	KindVariable:       "variable",
	KindClassReference: "class_reference",
	KindClassConstant:  "class_constant",
	KindStringLiteral:  "string_literal",
	KindNumberLiteral:  "number_literal",
	KindBooleanLiteral: "boolean_literal",
	KindNullLiteral:    "null_literal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsCall reports whether the kind is any call expression
func (k Kind) IsCall() bool {
	return k == KindFunctionCall || k == KindMethodCall || k == KindStaticCall
}

// IsMethodCall reports whether the kind is an instance or static method call
func (k Kind) IsMethodCall() bool {
	return k == KindMethodCall || k == KindStaticCall
}

// Node is a read-only handle on a host syntax node. Handles are only valid
// for the duration of one analysis pass; the tree behind them is rebuilt on
// every edit.
type Node interface {
	Kind() Kind
	// Parent returns nil at the root. Argument wrappers are transparent, so
	// the parent of a call argument is the argument list.
	Parent() Node
	// FirstChild returns the receiver of a method call, the scope of a
	// static call, the callee of a function call or the object of a field
	// access. Other kinds return their first named child.
	FirstChild() Node
	Text() string
	Range() Range
	Equal(other Node) bool
	// Name returns the callee, method or field name of calls and field
	// accesses, and the name of a variable including its '$'.
	Name() string
	// Arguments returns the call arguments in source order, or the items of
	// an argument list.
	Arguments() []Node
	// FQN returns the fully-qualified name of a class reference with a
	// leading backslash, resolved through the file's imports.
	FQN() string
}

// Ancestor walks up n's parents by steps and returns nil when the chain is
// shorter than that.
func Ancestor(n Node, steps int) Node {
	for i := 0; i < steps && n != nil; i++ {
		n = n.Parent()
	}
	return n
}

// IndexOf returns the position of n in nodes or -1
func IndexOf(nodes []Node, n Node) int {
	if n == nil {
		return -1
	}
	for i, candidate := range nodes {
		if candidate != nil && candidate.Equal(n) {
			return i
		}
	}
	return -1
}
