package core

import (
	"encoding/json"
	"fmt"
)

// Style is the text style a host applies to an annotated range
type Style uint8

const (
	StyleDefault Style = iota
	StyleSpecial
	StyleSpecialItalic
	StyleUnderline
	StyleUnderlineAlt
	StyleWarning
	StyleBright
)

// Font weight/slant of a style
type Font string

const (
	FontPlain  Font = "plain"
	FontBold   Font = "bold"
	FontItalic Font = "italic"
)

// TextAttributes describes how a style renders. Colours are RGB hex strings,
// an empty colour means the editor default.
type TextAttributes struct {
	Foreground     string `json:"foreground,omitempty"`
	ForegroundDark string `json:"foreground_dark,omitempty"`
	EffectColor    string `json:"effect_color,omitempty"`
	Effect         string `json:"effect,omitempty"`
	Font           Font   `json:"font"`
}

const (
	specialLight = "#01B1C2"
	specialDark  = "#01BED0"
	yellow       = "#FFFF00"
	orange       = "#FFC800"
	red          = "#FF0000"
)

var styleTable = map[Style]struct {
	name  string
	attrs TextAttributes
}{
	StyleDefault:       {"default", TextAttributes{Font: FontPlain}},
	StyleSpecial:       {"special", TextAttributes{Foreground: specialLight, ForegroundDark: specialDark, Font: FontBold}},
	StyleSpecialItalic: {"special_italic", TextAttributes{Foreground: specialLight, ForegroundDark: specialDark, Font: FontItalic}},
	StyleUnderline:     {"underline", TextAttributes{EffectColor: yellow, Effect: "bold_line_underscore", Font: FontPlain}},
	StyleUnderlineAlt:  {"underline_alt", TextAttributes{EffectColor: orange, Effect: "bold_line_underscore", Font: FontPlain}},
	StyleWarning:       {"warning", TextAttributes{Foreground: red, ForegroundDark: red, Font: FontPlain}},
	StyleBright:        {"bright", TextAttributes{Foreground: orange, ForegroundDark: orange, Font: FontPlain}},
}

func (s Style) String() string {
	if entry, ok := styleTable[s]; ok {
		return entry.name
	}
	return fmt.Sprintf("style(%d)", uint8(s))
}

// Attributes returns the rendering attributes of the style
func (s Style) Attributes() TextAttributes {
	return styleTable[s].attrs
}

// MarshalJSON encodes the style by name
func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a style name
func (s *Style) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseStyle(name)
	if !ok {
		return fmt.Errorf("unknown style %q", name)
	}
	*s = parsed
	return nil
}

// ParseStyle looks a style up by name
func ParseStyle(name string) (Style, bool) {
	for style, entry := range styleTable {
		if entry.name == name {
			return style, true
		}
	}
	return StyleDefault, false
}
