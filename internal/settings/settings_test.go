package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFilesRanking(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config/database.php", "<?php return [];")
	writeFile(t, root, "config/database-mysql.php", "<?php return [];")
	writeFile(t, root, "config/databases.php", "<?php return [];")
	writeFile(t, root, "config/main.php", "<?php return [];")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config", "database-dir.php"), 0o755))

	assert.Equal(t, []string{"config/database-mysql.php", "config/database.php"}, Files(root, "database"))
	assert.Equal(t, []string{"config/main.php"}, Files(root, "main"))
	assert.Empty(t, Files(root, "system"))
	assert.Empty(t, Files("", "main"))
	assert.Empty(t, Files(t.TempDir(), "main"))
}

func TestFilesQuotesDomain(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config/mainXphp", "")
	writeFile(t, root, "config/a.b.php", "")
	writeFile(t, root, "config/axb.php", "")

	assert.Equal(t, []string{"config/a.b.php"}, Files(root, "a.b"))
}

func TestModuleFiles(t *testing.T) {
	root := t.TempDir()
	moduleConfig := filepath.Join(root, "modules", "blog", "config")
	writeFile(t, root, "modules/blog/config/main.php", "")
	writeFile(t, root, "modules/blog/config/main-local.php", "")
	writeFile(t, root, "modules/blog/config/common.php", "")

	files := ModuleFiles(root, moduleConfig, "main")
	assert.Equal(t, []string{"modules/blog/config/main-local.php", "modules/blog/config/main.php"}, files)
	assert.True(t, IsModule("main", files))
	assert.False(t, IsModule("main", files[:1]))

	assert.Empty(t, ModuleFiles(root, moduleConfig, "common"))
	assert.Empty(t, ModuleFiles(root, "", "main"))
}

func TestModuleConfigDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config/main.php", "")
	controller := writeFile(t, root, "modules/blog/controllers/Post.php", "")
	writeFile(t, root, "modules/blog/config/main.php", "")
	plain := writeFile(t, root, "app/Controllers/Home.php", "")

	assert.Equal(t, filepath.Join(root, "modules", "blog", "config"), ModuleConfigDir(root, controller))
	assert.Empty(t, ModuleConfigDir(root, plain), "project config is not a module")
	assert.Empty(t, ModuleConfigDir("", controller))
	assert.Empty(t, ModuleConfigDir(root, ""))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		domain string
		key    string
		text   string
		kind   ValueKind
	}{
		{"empty", "", "main", "k", `""`, KindString},
		{"single quoted", "'abc'", "main", "k", "abc", KindString},
		{"double quoted", `"abc"`, "main", "k", "abc", KindString},
		{"quoted database value", "'secret'", "database", "mysql.pass", "secret", KindString},
		{"hidden database value", "SECRET", "database", "mysql.pass", Undefined, KindUndefined},
		{"database type", "mysql", "database", "base.db.type", "mysql", KindString},
		{"database list", "[1]", "database", "db.settings.list", "Array", KindArray},
		{"array", "['a', 'b']", "main", "k", "Array", KindArray},
		{"bool", "TRUE", "main", "k", "true", KindBool},
		{"null", "Null", "main", "k", "null", KindNull},
		{"comma", "true,\n    'next' => 1", "main", "k", "true", KindBool},
		{"expression", " 60 * 60 ", "main", "k", "60 * 60", KindString},
		{"too long", string(make([]byte, 101)), "main", "k", Undefined, KindTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, kind := Classify(tt.value, tt.domain, tt.key)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestParams(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config/common.php", `<?php
return [
    'debug' => true,
    "timezone" => 'Europe/Moscow',
    'app.name' => get_env('APP_NAME', 'HLEB'),
    'broken.env' => get_env(),
    'cache' => ['ttl' => 60],
];
`)
	writeFile(t, root, "config/common-local.php", `<?php
return [
    'timezone' => "UTC",
];
`)
	files := []string{"config/common-local.php", "config/common.php", "config/missing.php"}

	tests := []struct {
		key  string
		want []Value
	}{
		{
			key: "debug",
			want: []Value{
				{File: "config/common.php", Text: "true", Kind: KindBool},
				{File: "config/missing.php", Text: Undefined, Kind: KindUndefined},
			},
		},
		{
			key: "timezone",
			want: []Value{
				{File: "config/common-local.php", Text: "UTC", Kind: KindString},
				{File: "config/common.php", Text: "Europe/Moscow", Kind: KindString},
				{File: "config/missing.php", Text: Undefined, Kind: KindUndefined},
			},
		},
		{
			key: "app.name",
			want: []Value{
				{File: "config/common.php", Text: "HLEB", Kind: KindString},
				{File: "config/missing.php", Text: Undefined, Kind: KindUndefined},
			},
		},
		{
			key: "broken.env",
			want: []Value{
				{File: "config/common.php", Text: Undefined, Kind: KindUndefined},
				{File: "config/missing.php", Text: Undefined, Kind: KindUndefined},
			},
		},
		{
			key: "cache",
			want: []Value{
				{File: "config/common.php", Text: "Array", Kind: KindArray},
				{File: "config/missing.php", Text: Undefined, Kind: KindUndefined},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := Params(root, files, "common", tt.key)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].File, got[i].File)
				assert.Equal(t, tt.want[i].Text, got[i].Text)
				assert.Equal(t, tt.want[i].Kind, got[i].Kind)
			}
		})
	}
}

func TestParamsDatabaseIsHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config/database.php", `<?php
return [
    'mysql.host' => 'localhost',
    'base.db.type' => 'mysql.main',
];
`)

	got := Params(root, []string{"config/database.php"}, "database", "mysql.host")
	require.Len(t, got, 1)
	assert.Equal(t, Undefined, got[0].Text)
	assert.Equal(t, "localhost", got[0].Raw)

	got = Params(root, []string{"config/database.php"}, "database", "base.db.type")
	require.Len(t, got, 1)
	assert.Equal(t, "mysql.main", got[0].Text)
}

func TestParamsUnreadable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config", "main.php"), 0o755))

	got := Params(root, []string{"config/main.php"}, "main", "x")
	require.Len(t, got, 1)
	assert.Equal(t, FileNotFound, got[0].Text)
	assert.False(t, Value{Text: Undefined}.Defined())
}

type fixedExtractor string

func (f fixedExtractor) Extract(_, _, _ string) (Value, bool) {
	return Value{Text: string(f)}, true
}

func TestParamsWith(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config/main.php", "")

	got := ParamsWith(fixedExtractor("x"), root, []string{"config/main.php"}, "main", "k")
	require.Len(t, got, 1)
	assert.Equal(t, Value{File: "config/main.php", Text: "x"}, got[0])
}
