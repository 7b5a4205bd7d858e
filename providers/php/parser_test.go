package php

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/hlebhint/core"
)

func parse(t *testing.T, src string) *File {
	t.Helper()
	file, err := NewParser().Parse(context.Background(), "test.php", []byte(src))
	require.NoError(t, err)
	return file
}

func find(t *testing.T, file *File, kind core.Kind, text string) core.Node {
	t.Helper()
	var found core.Node
	file.Walk(func(n core.Node) bool {
		if found == nil && n.Kind() == kind && n.Text() == text {
			found = n
		}
		return found == nil
	})
	require.NotNil(t, found, "no %s node with text %q", kind, text)
	return found
}

func TestIsPHPFile(t *testing.T) {
	assert.True(t, IsPHPFile("routes/main.php"))
	assert.True(t, IsPHPFile("view.PHTML"))
	assert.False(t, IsPHPFile("README.md"))
}

func TestStaticCallShape(t *testing.T) {
	file := parse(t, `<?php
use Hleb\Static\Settings;

Settings::getParam('common', 'debug');
`)

	literal := find(t, file, core.KindStringLiteral, `'debug'`)
	list := literal.Parent()
	require.NotNil(t, list)
	assert.Equal(t, core.KindArgumentList, list.Kind())

	call := list.Parent()
	require.NotNil(t, call)
	assert.Equal(t, core.KindStaticCall, call.Kind())
	assert.Equal(t, "getParam", call.Name())

	scope := call.FirstChild()
	require.NotNil(t, scope)
	assert.Equal(t, core.KindClassReference, scope.Kind())
	assert.Equal(t, `\Hleb\Static\Settings`, scope.FQN())

	args := call.Arguments()
	require.Len(t, args, 2)
	assert.Equal(t, `'common'`, args[0].Text())
	assert.True(t, args[1].Equal(literal))
	assert.Equal(t, 1, core.IndexOf(list.Arguments(), literal))
}

func TestFunctionAndMethodCallsAreDisjoint(t *testing.T) {
	file := parse(t, `<?php
view('home');
$this->view('home');
`)

	var kinds []core.Kind
	file.Walk(func(n core.Node) bool {
		if n.Kind().IsCall() {
			kinds = append(kinds, n.Kind())
			assert.Equal(t, "view", n.Name())
		}
		return true
	})
	assert.Equal(t, []core.Kind{core.KindFunctionCall, core.KindMethodCall}, kinds)
}

func TestReceiverChain(t *testing.T) {
	file := parse(t, `<?php
class A {
    function f() {
        return $this->container->get(RequestInterface::class)->param('id');
    }
}
`)

	literal := find(t, file, core.KindStringLiteral, `'id'`)
	call := core.Ancestor(literal, 2)
	require.NotNil(t, call)
	assert.Equal(t, "param", call.Name())

	getCall := call.FirstChild()
	require.NotNil(t, getCall)
	assert.Equal(t, core.KindMethodCall, getCall.Kind())
	assert.Equal(t, "get", getCall.Name())

	getArgs := getCall.Arguments()
	require.Len(t, getArgs, 1)
	assert.Equal(t, core.KindClassConstant, getArgs[0].Kind())
	assert.Equal(t, "RequestInterface::class", getArgs[0].Text())

	field := getCall.FirstChild()
	require.NotNil(t, field)
	assert.Equal(t, core.KindFieldAccess, field.Kind())
	assert.Equal(t, "container", field.Name())

	self := field.FirstChild()
	require.NotNil(t, self)
	assert.Equal(t, core.KindVariable, self.Kind())
	assert.Equal(t, "$this", self.Text())
}

func TestImportsResolve(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ref  string
		want string
	}{
		{
			name: "global namespace",
			src:  "<?php\nRoute::get('/');\n",
			ref:  "Route",
			want: `\Route`,
		},
		{
			name: "fully qualified",
			src:  "<?php\nnamespace App;\n\\Hleb\\Static\\Request::get('a');\n",
			ref:  `\Hleb\Static\Request`,
			want: `\Hleb\Static\Request`,
		},
		{
			name: "namespaced fallback",
			src:  "<?php\nnamespace App\\Controllers;\nRoute::get('/');\n",
			ref:  "Route",
			want: `\App\Controllers\Route`,
		},
		{
			name: "aliased use",
			src:  "<?php\nnamespace App;\nuse Hleb\\Static\\Settings as Conf;\nConf::common('x');\n",
			ref:  "Conf",
			want: `\Hleb\Static\Settings`,
		},
		{
			name: "group use",
			src:  "<?php\nuse Hleb\\Static\\{Path, View};\nPath::get('@app');\n",
			ref:  "Path",
			want: `\Hleb\Static\Path`,
		},
		{
			name: "partially qualified through alias",
			src:  "<?php\nuse Hleb\\Reference;\nReference\\PathInterface::get('@app');\n",
			ref:  `Reference\PathInterface`,
			want: `\Hleb\Reference\PathInterface`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := parse(t, tt.src)
			ref := find(t, file, core.KindClassReference, tt.ref)
			assert.Equal(t, tt.want, ref.FQN())
		})
	}
}

func TestStringLiteralAt(t *testing.T) {
	src := `<?php view('@views/home');`
	file := parse(t, src)

	offset := len(`<?php view('@vi`)
	literal := file.StringLiteralAt(offset)
	require.NotNil(t, literal)
	assert.Equal(t, `'@views/home'`, literal.Text())
	assert.Equal(t, `@views/home`, src[literal.Range().Inner().StartByte:literal.Range().Inner().EndByte])

	assert.Nil(t, file.StringLiteralAt(2))
}

func TestNodeAt(t *testing.T) {
	src := `<?php config('main', $key);`
	file := parse(t, src)

	n := file.NodeAt(len(`<?php config('ma`))
	require.NotNil(t, n)
	for n != nil && n.Kind() != core.KindStringLiteral {
		n = n.Parent()
	}
	require.NotNil(t, n)
	assert.Equal(t, `'main'`, n.Text())

	// the end of a node still belongs to it when nothing starts there
	n = file.NodeAt(len(`<?php config('main', $key`))
	require.NotNil(t, n)
	assert.Contains(t, n.Text(), "key")

	assert.Nil(t, file.NodeAt(-1))
	assert.Nil(t, file.NodeAt(len(src)+1))
}

func TestImportsAliases(t *testing.T) {
	file := parse(t, "<?php\nnamespace App;\nuse Hleb\\Static\\Settings as Conf;\nuse Hleb\\Static\\{Path as P, View};\n")
	aliases := file.Imports().Aliases

	assert.Equal(t, `Hleb\Static\Settings`, aliases["conf"])
	assert.Equal(t, `Hleb\Static\Path`, aliases["p"])
	assert.Equal(t, `Hleb\Static\View`, aliases["view"])
	assert.NotContains(t, aliases, "settings")
	assert.NotContains(t, aliases, "path")
}

func TestParseUsesCache(t *testing.T) {
	p := NewParser()
	src := []byte("<?php echo 1;\n")

	_, err := p.Parse(context.Background(), "a.php", src)
	require.NoError(t, err)
	_, err = p.Parse(context.Background(), "b.php", src)
	require.NoError(t, err)

	stats := p.CacheStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}
