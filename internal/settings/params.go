package settings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Sentinel texts shown instead of a value
const (
	Undefined    = "undefined"
	FileNotFound = "file not found"
)

// maxValueLength bounds bare expressions shown in a tooltip
const maxValueLength = 100

// ValueKind classifies an extracted parameter value
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindBool
	KindNull
	KindArray
	KindUndefined
	KindTooLong
	KindFileNotFound
)

var kindNames = [...]string{
	KindString:       "string",
	KindBool:         "bool",
	KindNull:         "null",
	KindArray:        "array",
	KindUndefined:    "undefined",
	KindTooLong:      "too-long",
	KindFileNotFound: "file-not-found",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a parameter found in one configuration file. Text is what a
// tooltip shows; Raw is the captured source text.
type Value struct {
	File string    `json:"file"`
	Raw  string    `json:"raw,omitempty"`
	Text string    `json:"text"`
	Kind ValueKind `json:"kind"`
}

// Defined reports whether the value can be shown
func (v Value) Defined() bool {
	return v.Text != Undefined
}

// Extractor finds the value bound to key in a configuration file body
type Extractor interface {
	Extract(content, domain, key string) (Value, bool)
}

// Params looks key up in each file with the regex extractor. Files are
// root-relative; the result keeps their order and leaves out files where
// the key does not occur.
func Params(root string, files []string, domain, key string) []Value {
	return ParamsWith(RegexExtractor{}, root, files, domain, key)
}

// ParamsWith is Params with a custom extractor
func ParamsWith(ex Extractor, root string, files []string, domain, key string) []Value {
	values := make([]Value, 0, len(files))
	for _, rel := range files {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			values = append(values, Value{File: rel, Text: Undefined, Kind: KindUndefined})
			continue
		case err != nil:
			values = append(values, Value{File: rel, Text: FileNotFound, Kind: KindFileNotFound})
			continue
		}

		value, ok := ex.Extract(string(content), domain, key)
		if !ok {
			continue
		}
		value.File = rel
		values = append(values, value)
	}
	return values
}

var getEnvPattern = regexp.MustCompile(`(?s)get_env\s*\(\s*["'].*?["']\s*,\s*(.+?)\s*\)`)

// RegexExtractor matches `'key' => value` array entries. Multi-line arrays
// and nested expressions are only approximated.
type RegexExtractor struct{}

func (RegexExtractor) Extract(content, domain, key string) (Value, bool) {
	pattern, err := regexp.Compile(`(?ms)^\s*["']` + regexp.QuoteMeta(key) +
		`["']\s*=>\s*(?:["']([^"']+)["']|([^\]]+))\s*(?:,|\]|$)`)
	if err != nil {
		return Value{}, false
	}
	m := pattern.FindStringSubmatchIndex(content)
	if m == nil {
		return Value{}, false
	}

	var raw string
	if m[2] >= 0 {
		raw = content[m[2]:m[3]]
	} else if m[4] >= 0 {
		raw = content[m[4]:m[5]]
	}

	trimmed := strings.TrimSpace(raw)
	if raw != "" && strings.HasPrefix(trimmed, "get_env") {
		env := getEnvPattern.FindStringSubmatch(trimmed)
		if env == nil {
			return Value{Raw: raw, Text: Undefined, Kind: KindUndefined}, true
		}
		text, kind := Classify(strings.TrimSpace(env[1]), domain, key)
		return Value{Raw: raw, Text: text, Kind: kind}, true
	}

	text, kind := Classify(raw, domain, key)
	return Value{Raw: raw, Text: text, Kind: kind}, true
}

// Classify turns a captured value into its display text. Database values
// stay hidden except for the driver type and the connection list.
func Classify(value, domain, key string) (string, ValueKind) {
	if value == "" {
		return `""`, KindString
	}
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' || first == '"') && first == last {
			return value[1 : len(value)-1], KindString
		}
	}
	if domain == "database" && !strings.HasSuffix(key, ".db.type") && key != "db.settings.list" {
		return Undefined, KindUndefined
	}
	if strings.HasPrefix(value, "[") {
		return "Array", KindArray
	}
	switch lower := strings.ToLower(value); lower {
	case "true", "false":
		return lower, KindBool
	case "null":
		return lower, KindNull
	}
	if before, _, ok := strings.Cut(value, ","); ok {
		before = strings.TrimSpace(before)
		return before, scalarKind(before)
	}
	if len(value) > maxValueLength {
		return Undefined, KindTooLong
	}
	return strings.TrimSpace(value), KindString
}

func scalarKind(text string) ValueKind {
	switch strings.ToLower(text) {
	case "true", "false":
		return KindBool
	case "null":
		return KindNull
	}
	return KindString
}
