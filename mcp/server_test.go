package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/plugbridge/convert"
	"github.com/i2y/plugbridge/validate"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	server := NewServer("test", convert.NewWriter())
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func writePlugin(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "demo")
	files := map[string]string{
		".claude-plugin/plugin.json": `{"name":"demo","version":"1.0.0"}`,
		"commands/hello.md":          "---\ndescription: Say hello\n---\nHello ${CLAUDE_PLUGIN_ROOT}",
	}
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

// decode re-marshals structured content into out.
func decode(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	require.NotNil(t, res.StructuredContent)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestServer_ListTools(t *testing.T) {
	cs := connect(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"convert_plugin", "validate_frontmatter"}, names)
}

func TestServer_ConvertPlugin(t *testing.T) {
	cs := connect(t)
	src := writePlugin(t)
	out := t.TempDir()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "convert_plugin",
		Arguments: map[string]any{"path": src, "output": out},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var result convert.Result
	decode(t, res, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "demo", result.Plugin)
	assert.Equal(t, []string{"demo/gemini-extension.json", "demo/commands/hello.toml"}, result.FilesWritten)

	data, err := os.ReadFile(filepath.Join(out, "demo", "commands", "hello.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello ${extensionPath}")
}

func TestServer_ConvertPlugin_DryRun(t *testing.T) {
	cs := connect(t)
	src := writePlugin(t)
	out := filepath.Join(t.TempDir(), "never")

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "convert_plugin",
		Arguments: map[string]any{"path": src, "output": out, "dry_run": true},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var result convert.Result
	decode(t, res, &result)
	assert.True(t, result.Success)
	assert.Len(t, result.FilesWritten, 2)
	assert.NoDirExists(t, out)
}

func TestServer_ConvertPlugin_LoadFailure(t *testing.T) {
	cs := connect(t)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "convert_plugin",
		Arguments: map[string]any{"path": t.TempDir()},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_ValidateFrontmatter(t *testing.T) {
	cs := connect(t)
	src := writePlugin(t)
	require.NoError(t, os.WriteFile(filepath.Join(src, "commands", "bad.md"), []byte("no frontmatter"), 0o644))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "validate_frontmatter",
		Arguments: map[string]any{"root": src},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var report validate.Report
	decode(t, res, &report)
	assert.True(t, report.HasErrors)
	assert.Len(t, report.Results, 2)
}
