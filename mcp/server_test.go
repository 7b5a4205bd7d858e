package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/termfx/hlebhint/internal/analysis"
	"github.com/termfx/hlebhint/internal/annotator"
	"github.com/termfx/hlebhint/internal/framework"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const homeController = `<?php
use Hleb\Static\Settings;

class HomeController
{
    public function index()
    {
        $debug = Settings::getParam('common', 'debug');
        var_dump($debug);
        return view('home');
    }
}
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, framework.DefaultMarker, "<?php\n")
	writeFile(t, root, "config/common.php", "<?php\nreturn [\n    'debug' => true,\n];\n")
	writeFile(t, root, "resources/views/home.php", "<h1>Home</h1>\n")
	writeFile(t, root, "app/Controllers/HomeController.php", homeController)
	return root
}

// run feeds requests to a fresh server and returns the decoded responses
func run(t *testing.T, cfg Config, requests ...string) []Response {
	t.Helper()
	var out bytes.Buffer
	cfg.Input = strings.NewReader(strings.Join(requests, "\n") + "\n")
	cfg.Output = &out

	detector := framework.NewDetector(framework.WithRecheckProbability(0))
	analyzer := analysis.New(annotator.New(detector, nil, annotator.Options{CompletionLimit: 20}), nil, analysis.Options{Workers: 2})
	server, err := NewStdioServer(cfg, analyzer)
	require.NoError(t, err)
	defer server.Close()

	require.NoError(t, server.Start(context.Background()))

	var responses []Response
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func call(id int, tool string, args map[string]any) string {
	req, _ := NewRequest(id, "tools/call", map[string]any{"name": tool, "arguments": args})
	data, _ := json.Marshal(req)
	return string(data)
}

// structured extracts structuredContent from a tool result
func structured(t *testing.T, resp Response) map[string]any {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error %+v", resp.Error)
	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	content, ok := result["structuredContent"].(map[string]any)
	require.True(t, ok)
	return content
}

func TestHandshake(t *testing.T) {
	responses := run(t, Config{},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test","version":"1"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"unknown"}`,
	)
	require.Len(t, responses, 4)

	init := responses[0].Result.(map[string]any)
	assert.Equal(t, ProtocolVersion, init["protocolVersion"])
	assert.Equal(t, ServerName, init["serverInfo"].(map[string]any)["name"])

	assert.EqualValues(t, 2, responses[1].ID)

	tools := responses[2].Result.(map[string]any)["tools"].([]any)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"annotate", "resolve", "complete", "scan", "detect"}, names)

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, MethodNotFound, responses[3].Error.Code)
}

func TestParseErrorRecovery(t *testing.T) {
	responses := run(t, Config{},
		`{not json}`,
		`{"jsonrpc":"2.0","id":9,"method":"ping"}`,
	)
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, ParseError, responses[0].Error.Code)
	assert.EqualValues(t, 9, responses[1].ID)
	assert.Nil(t, responses[1].Error)
}

func TestAnnotateTool(t *testing.T) {
	root := project(t)
	responses := run(t, Config{Root: root},
		call(1, "annotate", map[string]any{"path": "app/Controllers/HomeController.php"}),
	)
	require.Len(t, responses, 1)
	content := structured(t, responses[0])
	assert.Equal(t, "app/Controllers/HomeController.php", content["path"])
	assert.Len(t, content["annotations"], 3)

	text := responses[0].Result.(map[string]any)["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "[config/special] Configuration file type (`common`)")
	assert.Contains(t, text, "[debug/underline]")
}

func TestAnnotateToolUnsavedSource(t *testing.T) {
	root := project(t)
	responses := run(t, Config{},
		call(1, "annotate", map[string]any{"root": root, "path": "app/New.php", "source": "<?php\ndd($x);\n"}),
	)
	content := structured(t, responses[0])
	assert.Len(t, content["annotations"], 1)
}

func TestResolveAndCompleteTools(t *testing.T) {
	root := project(t)
	offset := strings.Index(homeController, "'home'") + 2
	args := map[string]any{"root": root, "path": "app/Controllers/HomeController.php", "offset": offset}

	responses := run(t, Config{},
		call(1, "resolve", args),
		call(2, "complete", args),
	)
	require.Len(t, responses, 2)

	refs := structured(t, responses[0])["references"].([]any)
	var targets []string
	for _, ref := range refs {
		if target, ok := ref.(map[string]any)["target"].(string); ok {
			targets = append(targets, target)
		}
	}
	assert.Contains(t, targets, filepath.Join(root, "resources", "views", "home.php"))

	var values []string
	for _, c := range structured(t, responses[1])["completions"].([]any) {
		values = append(values, c.(map[string]any)["value"].(string))
	}
	assert.Contains(t, values, "home")
}

func TestToolErrors(t *testing.T) {
	root := project(t)
	responses := run(t, Config{},
		call(1, "annotate", map[string]any{"path": "a.php"}),
		call(2, "annotate", map[string]any{"root": root}),
		call(3, "annotate", map[string]any{"root": root, "path": "missing.php"}),
		call(4, "resolve", map[string]any{"root": root, "path": "app/Controllers/HomeController.php"}),
		call(5, "resolve", map[string]any{"root": root, "path": "app/Controllers/HomeController.php", "offset": 0}),
		call(6, "annotate", map[string]any{"root": root, "path": "notes.txt", "source": "x"}),
		call(7, "nope", nil),
	)
	require.Len(t, responses, 7)

	codes := []int{NoProjectRoot, InvalidParams, FileSystemError, InvalidParams, NodeNotFound, UnsupportedFile, MethodNotFound}
	for i, code := range codes {
		require.NotNil(t, responses[i].Error, "response %d", i)
		assert.Equal(t, code, responses[i].Error.Code, "response %d", i)
	}
}

func TestScanAndDetectTools(t *testing.T) {
	root := project(t)
	other := t.TempDir()

	responses := run(t, Config{Root: root, DatabaseURL: filepath.Join(t.TempDir(), "hints.db")},
		call(1, "scan", nil),
		call(2, "detect", nil),
		call(3, "detect", map[string]any{"root": other}),
		call(4, "scan", map[string]any{"root": other}),
	)
	require.Len(t, responses, 4)

	scan := structured(t, responses[0])
	assert.EqualValues(t, 4, scan["files"])
	assert.NotEmpty(t, scan["run_id"])
	assert.NotEmpty(t, scan["digest"])

	assert.Equal(t, true, structured(t, responses[1])["framework"])
	assert.Equal(t, false, structured(t, responses[2])["framework"])

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, NotFramework, responses[3].Error.Code)
}

func TestRelativeRoot(t *testing.T) {
	root := project(t)
	writeFile(t, root, "config/main.php", "<?php\nreturn [\n    'timezone' => 'Europe/Moscow',\n];\n")
	writeFile(t, root, "modules/blog/config/main.php", "<?php\nreturn [\n    'timezone' => 'UTC',\n];\n")
	t.Chdir(root)

	source := "<?php\nuse Hleb\\Static\\Settings;\n$tz = Settings::getParam('main', 'timezone');\n"
	responses := run(t, Config{},
		call(1, "annotate", map[string]any{"root": ".", "path": "modules/blog/controllers/Post.php", "source": source}),
		call(2, "detect", map[string]any{"root": "."}),
	)
	require.Len(t, responses, 2)

	var tooltips []string
	for _, ann := range structured(t, responses[0])["annotations"].([]any) {
		tooltips = append(tooltips, ann.(map[string]any)["tooltip"].(string))
	}
	require.Len(t, tooltips, 2)
	assert.Contains(t, tooltips[1], "/modules/blog/config/main.php <b>[UTC]</b> (current module)")

	detect := structured(t, responses[1])
	assert.Equal(t, true, detect["framework"])
	assert.True(t, filepath.IsAbs(detect["root"].(string)))
}

func TestNewStdioServerRequiresAnalyzer(t *testing.T) {
	_, err := NewStdioServer(Config{}, nil)
	assert.Error(t, err)
}
