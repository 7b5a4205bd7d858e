package php

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Imports is the class-name context of a file: its namespace and the
// aliases introduced by `use` declarations.
type Imports struct {
	Namespace string            // without leading or trailing backslash
	Aliases   map[string]string // lower-cased alias -> fully-qualified name without leading backslash
}

// Resolve returns the fully-qualified form of a class name as written in
// source, with a leading backslash.
func (imp Imports) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, `\`) {
		return name
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(name), "namespace\\"); ok {
		return joinFQN(imp.Namespace, name[len(name)-len(rest):])
	}

	head, tail, qualified := strings.Cut(name, `\`)
	if target, ok := imp.Aliases[strings.ToLower(head)]; ok {
		if qualified {
			return `\` + target + `\` + tail
		}
		return `\` + target
	}
	return joinFQN(imp.Namespace, name)
}

func joinFQN(namespace, name string) string {
	if namespace == "" {
		return `\` + name
	}
	return `\` + namespace + `\` + name
}

func collectImports(tree *sitter.Tree, src []byte) Imports {
	imp := Imports{Aliases: make(map[string]string)}
	collectScope(tree.RootNode(), src, &imp)
	return imp
}

// collectScope reads top-level and namespace-body statements; uses inside
// functions and classes are trait uses and are ignored.
func collectScope(scope *sitter.Node, src []byte, imp *Imports) {
	for i := 0; i < int(scope.NamedChildCount()); i++ {
		child := scope.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "namespace_definition":
			if imp.Namespace == "" {
				if name := child.ChildByFieldName("name"); name != nil {
					imp.Namespace = strings.Trim(name.Content(src), `\`)
				}
			}
			if body := child.ChildByFieldName("body"); body != nil {
				collectScope(body, src, imp)
			}
		case "namespace_use_declaration":
			collectUse(child, src, imp)
		case "compound_statement":
			collectScope(child, src, imp)
		}
	}
}

func collectUse(decl *sitter.Node, src []byte, imp *Imports) {
	text := decl.Content(src)
	if strings.HasPrefix(text, "use function") || strings.HasPrefix(text, "use const") {
		return
	}

	prefix := ""
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "namespace_name":
			prefix = strings.Trim(child.Content(src), `\`)
		case "namespace_use_clause":
			addClause(child, src, "", imp)
		case "namespace_use_group":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				clause := child.NamedChild(j)
				if clause.Type() == "namespace_use_clause" || clause.Type() == "namespace_use_group_clause" {
					addClause(clause, src, prefix, imp)
				}
			}
		}
	}
}

func addClause(clause *sitter.Node, src []byte, prefix string, imp *Imports) {
	var target, alias string
	seenAs := false
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case "as":
			seenAs = true
		case "namespace_aliasing_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if name := child.NamedChild(j); name.Type() == "name" {
					alias = name.Content(src)
				}
			}
		case "name", "qualified_name", "namespace_name":
			if seenAs {
				alias = child.Content(src)
			} else if target == "" {
				target = strings.Trim(child.Content(src), `\`)
			}
		}
	}
	if alias == "" {
		if field := clause.ChildByFieldName("alias"); field != nil && field.Content(src) != target {
			alias = field.Content(src)
		}
	}
	if target == "" {
		return
	}
	if prefix != "" {
		target = prefix + `\` + target
	}
	if alias == "" {
		alias = target
		if idx := strings.LastIndex(target, `\`); idx >= 0 {
			alias = target[idx+1:]
		}
	}
	imp.Aliases[strings.ToLower(alias)] = target
}
