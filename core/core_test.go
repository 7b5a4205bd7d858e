package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "modules", "shop", "views"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "modules", "shop", "Controllers"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "resources", "views"), 0o755))
	file := filepath.Join(root, "modules", "shop", "Controllers", "Cart.php")

	assert.Equal(t, filepath.Join(root, "modules", "shop", "views"), FindUp(root, file, "views"))
	assert.Equal(t, filepath.Join(root, "resources"), FindUp(root, file, "resources"))
	assert.Empty(t, FindUp(root, file, "missing"))
	assert.Empty(t, FindUp("", file, "views"))
	assert.Empty(t, FindUp(root, "", "views"))

	// the walk stops at the depth of root
	nested := filepath.Join(root, "modules")
	assert.Empty(t, FindUp(nested, file, "resources"))
}

func TestRelSlash(t *testing.T) {
	root := filepath.Join("srv", "app")
	assert.Equal(t, "config/main.php", RelSlash(root, filepath.Join(root, "config", "main.php")))
	assert.Equal(t, ".", RelSlash(root, root))
	assert.True(t, SameFile(filepath.Join(root, "a", "..", "b"), filepath.Join(root, "b")))
}

func TestRangeInner(t *testing.T) {
	r := Range{StartByte: 10, EndByte: 16, Start: Position{Line: 2, Column: 4}, End: Position{Line: 2, Column: 10}}
	inner := r.Inner()
	assert.Equal(t, 11, inner.StartByte)
	assert.Equal(t, 15, inner.EndByte)
	assert.Equal(t, 5, inner.Start.Column)
	assert.Equal(t, 9, inner.End.Column)
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(16))

	short := Range{StartByte: 3, EndByte: 4}
	assert.Equal(t, short, short.Inner())
}

func TestStyle(t *testing.T) {
	tests := []struct {
		style Style
		name  string
		font  Font
	}{
		{StyleDefault, "default", FontPlain},
		{StyleSpecial, "special", FontBold},
		{StyleSpecialItalic, "special_italic", FontItalic},
		{StyleUnderline, "underline", FontPlain},
		{StyleUnderlineAlt, "underline_alt", FontPlain},
		{StyleWarning, "warning", FontPlain},
		{StyleBright, "bright", FontPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.style.String())
			assert.Equal(t, tt.font, tt.style.Attributes().Font)

			parsed, ok := ParseStyle(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.style, parsed)
		})
	}

	assert.Equal(t, "style(42)", Style(42).String())
	_, ok := ParseStyle("blink")
	assert.False(t, ok)
}

func TestStyleJSON(t *testing.T) {
	ann := Annotation{Style: StyleUnderlineAlt, Source: "debug"}
	data, err := json.Marshal(ann)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"style":"underline_alt"`)

	var decoded Annotation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StyleUnderlineAlt, decoded.Style)

	var s Style
	assert.Error(t, json.Unmarshal([]byte(`"blink"`), &s))
}
