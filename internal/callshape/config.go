package callshape

import (
	"github.com/termfx/hlebhint/core"
	"github.com/termfx/hlebhint/internal/checker"
)

const settingsClass = `\Hleb\Static\Settings`

// Fixed configuration domains
const (
	DomainCommon   = "common"
	DomainMain     = "main"
	DomainDatabase = "database"
	DomainSystem   = "system"
)

// DomainSource tells where a callee takes its configuration domain from
type DomainSource uint8

const (
	DomainFixed DomainSource = iota
	DomainFromArgument
)

// ConfigCallee describes one configuration accessor. Arg positions are
// 0-based; -1 means the callee has no such argument.
type ConfigCallee struct {
	Domain   string
	Source   DomainSource
	TagArg   int
	ValueArg int
}

var (
	// methods of \Hleb\Static\Settings and the settings service
	configMethods = map[string]ConfigCallee{
		"getParam":     {Source: DomainFromArgument, TagArg: 0, ValueArg: 1},
		DomainCommon:   {Domain: DomainCommon, TagArg: -1, ValueArg: 0},
		DomainMain:     {Domain: DomainMain, TagArg: -1, ValueArg: 0},
		DomainDatabase: {Domain: DomainDatabase, TagArg: -1, ValueArg: 0},
		DomainSystem:   {Domain: DomainSystem, TagArg: -1, ValueArg: 0},
	}

	configFunctions = map[string]ConfigCallee{
		"hl_config":          {Source: DomainFromArgument, TagArg: 0, ValueArg: 1},
		"config":             {Source: DomainFromArgument, TagArg: 0, ValueArg: 1},
		"get_config_or_fail": {Source: DomainFromArgument, TagArg: 0, ValueArg: 1},
		"setting":            {Domain: DomainMain, TagArg: -1, ValueArg: 0},
		"hl_db_config":       {Domain: DomainDatabase, TagArg: -1, ValueArg: 0},
	}
)

// LookupConfig returns the accessor description for a call shape without
// looking at arguments
func LookupConfig(s Shape) (ConfigCallee, bool) {
	switch s.Kind {
	case core.KindFunctionCall:
		callee, ok := configFunctions[s.Callee]
		return callee, ok
	case core.KindStaticCall:
		if s.Qualifier != settingsClass {
			return ConfigCallee{}, false
		}
		callee, ok := configMethods[s.Callee]
		return callee, ok
	case core.KindMethodCall:
		callee, ok := configMethods[s.Callee]
		if !ok || !SettingService.Matches(s.Call) {
			return ConfigCallee{}, false
		}
		return callee, true
	}
	return ConfigCallee{}, false
}

// Role of a literal inside a configuration call
type Role uint8

const (
	RoleTag Role = iota
	RoleValue
)

func (r Role) String() string {
	if r == RoleTag {
		return "tag"
	}
	return "value"
}

// ConfigMatch is a classified configuration argument
type ConfigMatch struct {
	Role   Role
	Domain string // unquoted domain
	Tag    string // raw tag argument text, empty for fixed domains
	Value  string // raw value argument text, may be empty
	Key    string // value argument with surrounding quotes trimmed
	Shape  Shape
}

// ClassifyConfig decides whether n is the domain tag or the value key of a
// configuration accessor. Tags must be safe quoted literals; values must be
// constants.
func ClassifyConfig(n core.Node) (ConfigMatch, bool) {
	shape, ok := Enclosing(n)
	if !ok {
		return ConfigMatch{}, false
	}
	callee, ok := LookupConfig(shape)
	if !ok {
		return ConfigMatch{}, false
	}

	idx := shape.Index(n)
	if idx < 0 {
		return ConfigMatch{}, false
	}

	match := ConfigMatch{Shape: shape, Domain: callee.Domain}
	if value := shape.Arg(callee.ValueArg); value != nil {
		match.Value = value.Text()
		match.Key = checker.TrimQuotes(match.Value)
	}
	if callee.Source == DomainFromArgument {
		tag := shape.Arg(callee.TagArg)
		if tag == nil {
			return ConfigMatch{}, false
		}
		match.Tag = tag.Text()
		match.Domain = checker.StripQuotes(match.Tag)
	}

	switch idx {
	case callee.TagArg:
		if !checker.IsSafeQuotedLiteral(n.Text()) {
			return ConfigMatch{}, false
		}
		match.Role = RoleTag
	case callee.ValueArg:
		if !checker.IsConstantValue(n.Text()) {
			return ConfigMatch{}, false
		}
		match.Role = RoleValue
	default:
		return ConfigMatch{}, false
	}
	return match, true
}
