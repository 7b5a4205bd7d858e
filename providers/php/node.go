package php

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/termfx/hlebhint/core"
)

// node adapts a tree-sitter PHP node to core.Node
type node struct {
	n    *sitter.Node
	file *File
}

var _ core.Node = (*node)(nil)

func (f *File) wrap(n *sitter.Node) core.Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return &node{n: n, file: f}
}

func (x *node) Kind() core.Kind {
	switch x.n.Type() {
	case "arguments":
		return core.KindArgumentList
	case "function_call_expression":
		return core.KindFunctionCall
	case "member_call_expression", "nullsafe_member_call_expression":
		return core.KindMethodCall
	case "scoped_call_expression":
		return core.KindStaticCall
	case "member_access_expression", "nullsafe_member_access_expression":
		return core.KindFieldAccess
	case "variable_name":
		return core.KindVariable
	case "class_constant_access_expression":
		return core.KindClassConstant
	case "string", "encapsed_string":
		return core.KindStringLiteral
	case "integer", "float":
		return core.KindNumberLiteral
	case "boolean":
		return core.KindBooleanLiteral
	case "null":
		return core.KindNullLiteral
	case "name", "qualified_name":
		if x.isClassPosition() {
			return core.KindClassReference
		}
	}
	return core.KindOther
}

// isClassPosition reports whether a name node stands for a class: the scope
// of a static call or access.
func (x *node) isClassPosition() bool {
	parent := x.n.Parent()
	if parent == nil || parent.IsNull() {
		return false
	}
	switch parent.Type() {
	case "scoped_call_expression", "scoped_property_access_expression":
		scope := parent.ChildByFieldName("scope")
		return scope != nil && sameNode(scope, x.n)
	case "class_constant_access_expression":
		first := parent.NamedChild(0)
		return first != nil && sameNode(first, x.n)
	}
	return false
}

func (x *node) Parent() core.Node {
	parent := x.n.Parent()
	if parent != nil && !parent.IsNull() && parent.Type() == "argument" {
		parent = parent.Parent()
	}
	return x.file.wrap(parent)
}

func (x *node) FirstChild() core.Node {
	var child *sitter.Node
	switch x.n.Type() {
	case "function_call_expression":
		child = x.n.ChildByFieldName("function")
	case "member_call_expression", "nullsafe_member_call_expression",
		"member_access_expression", "nullsafe_member_access_expression":
		child = x.n.ChildByFieldName("object")
	case "scoped_call_expression", "scoped_property_access_expression":
		child = x.n.ChildByFieldName("scope")
	}
	if child == nil && x.n.NamedChildCount() > 0 {
		child = x.n.NamedChild(0)
	}
	return x.file.wrap(child)
}

func (x *node) Text() string {
	return x.n.Content(x.file.src)
}

func (x *node) Range() core.Range {
	start, end := x.n.StartPoint(), x.n.EndPoint()
	return core.Range{
		StartByte: int(x.n.StartByte()),
		EndByte:   int(x.n.EndByte()),
		Start:     core.Position{Line: int(start.Row), Column: int(start.Column)},
		End:       core.Position{Line: int(end.Row), Column: int(end.Column)},
	}
}

func (x *node) Equal(other core.Node) bool {
	o, ok := other.(*node)
	if !ok || o == nil {
		return false
	}
	return o.file == x.file && sameNode(o.n, x.n)
}

func (x *node) Name() string {
	switch x.n.Type() {
	case "function_call_expression":
		fn := x.n.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		name := fn.Content(x.file.src)
		if idx := strings.LastIndex(name, `\`); idx >= 0 {
			name = name[idx+1:]
		}
		return name
	case "member_call_expression", "nullsafe_member_call_expression",
		"member_access_expression", "nullsafe_member_access_expression",
		"scoped_call_expression":
		if name := x.n.ChildByFieldName("name"); name != nil {
			return name.Content(x.file.src)
		}
	case "variable_name":
		return x.Text()
	}
	return ""
}

func (x *node) Arguments() []core.Node {
	list := x.n
	if x.n.Type() != "arguments" {
		list = x.n.ChildByFieldName("arguments")
		if list == nil {
			return nil
		}
	}

	args := make([]core.Node, 0, list.NamedChildCount())
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		switch child.Type() {
		case "comment":
			continue
		case "argument":
			if count := int(child.NamedChildCount()); count > 0 {
				child = child.NamedChild(count - 1)
			}
		}
		if wrapped := x.file.wrap(child); wrapped != nil {
			args = append(args, wrapped)
		}
	}
	return args
}

func (x *node) FQN() string {
	switch x.n.Type() {
	case "name", "qualified_name":
		return x.file.imports.Resolve(x.Text())
	}
	return ""
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() &&
		a.EndByte() == b.EndByte() &&
		a.Type() == b.Type()
}
