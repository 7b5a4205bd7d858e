package php

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/termfx/hlebhint/core"
)

// File is a parsed PHP source file
type File struct {
	Path    string
	tree    *sitter.Tree
	src     []byte
	imports Imports
}

// Root returns the program node
func (f *File) Root() core.Node {
	return f.wrap(f.tree.RootNode())
}

// Source returns the parsed bytes
func (f *File) Source() []byte {
	return f.src
}

// Imports returns the namespace and use aliases of the file
func (f *File) Imports() Imports {
	return f.imports
}

// HasErrors reports whether the tree contains syntax errors
func (f *File) HasErrors() bool {
	return f.tree.RootNode().HasError()
}

// Walk visits every named node in document order. Argument wrappers are
// skipped so visited arguments see the argument list as their parent.
// Returning false from fn skips the node's children.
func (f *File) Walk(fn func(core.Node) bool) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		descend := true
		if n.Type() != "argument" {
			descend = fn(f.wrap(n))
		}
		if !descend {
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child != nil {
				visit(child)
			}
		}
	}
	visit(f.tree.RootNode())
}

// NodeAt returns the innermost named node covering the byte offset
func (f *File) NodeAt(offset int) core.Node {
	if offset < 0 || offset > len(f.src) {
		return nil
	}
	n := namedDescendantAt(f.tree.RootNode(), uint32(offset))
	if n == nil || n.IsNull() {
		return nil
	}
	return f.wrap(n)
}

// namedDescendantAt descends through the named children covering offset.
// A child ending exactly at offset is taken only when no child starts there.
func namedDescendantAt(n *sitter.Node, offset uint32) *sitter.Node {
	for {
		var next *sitter.Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child == nil || child.StartByte() > offset {
				break
			}
			if offset < child.EndByte() {
				next = child
				break
			}
			if offset == child.EndByte() && child.StartByte() < offset {
				next = child
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// StringLiteralAt returns the string literal covering the byte offset
func (f *File) StringLiteralAt(offset int) core.Node {
	for n := f.NodeAt(offset); n != nil; n = n.Parent() {
		if n.Kind() == core.KindStringLiteral {
			return n
		}
		if n.Kind() == core.KindArgumentList {
			break
		}
	}
	return nil
}
