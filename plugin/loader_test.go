package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestLoad(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo-plugin")
	writeTree(t, root, map[string]string{
		".claude-plugin/plugin.json": `{"name": "demo", "version": "1.2.0", "description": "Demo plugin"}`,
		".mcp.json": `{"mcpServers": {
			"miro": {"type": "http", "url": "https://mcp.miro.com", "headers": {"X-AI-Source": "claude-code"}},
			"local": {"command": "${CLAUDE_PLUGIN_ROOT}/bin/server", "args": ["--stdio"]}
		}}`,
		"commands/deploy.md":             "---\ndescription: Deploy\nargument-hint: <env>\n---\nRun it",
		"commands/git/commit.md":         "---\ndescription: Commit\n---\nCommit it",
		"commands/README.txt":            "not a command",
		"agents/reviewer.md":             "---\nname: reviewer\ndescription: Reviews\n---\nReview",
		"skills/board/SKILL.md":          "---\nname: board\ndescription: Boards\n---\nUse boards",
		"skills/board/references/api.md": "API notes",
		"skills/board/references/faq.md": "FAQ",
		"skills/no-skill-file/notes.md":  "ignored",
		"hooks/hooks.json":               `{"hooks": {}}`,
		"scripts/run.sh":                 "#!/bin/sh\n",
		"scripts/lib/util.ts":            "export {}",
		"templates/report.md":            "# Report",
	})

	p, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "demo-plugin", p.DirName)
	assert.Equal(t, root, p.AbsPath)
	assert.Equal(t, "demo", p.Manifest.Name)
	assert.Equal(t, "1.2.0", p.Manifest.Version)
	assert.Equal(t, "Demo plugin", p.Manifest.Description)

	require.Len(t, p.MCPServers, 2)
	assert.True(t, p.MCPServers["miro"].HTTPCapable())
	assert.False(t, p.MCPServers["local"].HTTPCapable())
	assert.Equal(t, "${CLAUDE_PLUGIN_ROOT}/bin/server", p.MCPServers["local"].Command)

	require.Len(t, p.Commands, 2)
	assert.Equal(t, "commands/deploy.md", p.Commands[0].RelPath)
	assert.Equal(t, "<env>", p.Commands[0].ArgumentHint)
	assert.Equal(t, "commands/git/commit.md", p.Commands[1].RelPath)

	require.Len(t, p.Agents, 1)
	assert.Equal(t, "reviewer", p.Agents[0].Name)

	require.Len(t, p.Skills, 1)
	assert.Equal(t, "skills/board/SKILL.md", p.Skills[0].RelPath)
	assert.Equal(t, []string{"skills/board/references/api.md", "skills/board/references/faq.md"}, p.Skills[0].References)

	require.NotNil(t, p.Hooks)
	assert.Equal(t, HooksPath, p.Hooks.RelPath)
	assert.Equal(t, `{"hooks": {}}`, p.Hooks.Raw)

	require.Len(t, p.Scripts, 2)
	assert.Equal(t, "scripts/lib/util.ts", p.Scripts[0].RelPath)
	assert.Equal(t, "scripts/run.sh", p.Scripts[1].RelPath)
	require.Len(t, p.Templates, 1)
	assert.Equal(t, "# Report", p.Templates[0].Content)
	assert.Empty(t, p.Skipped)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := Load(file)
		assert.ErrorIs(t, err, ErrNotDirectory)
	})

	t.Run("missing manifest", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, ErrManifestMissing)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := LoadFS(fstest.MapFS{
			ManifestPath: {Data: []byte(`{"version": "1.0.0"}`)},
		}, "/plugins/nameless")
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("malformed mcp config", func(t *testing.T) {
		_, err := LoadFS(fstest.MapFS{
			ManifestPath:  {Data: []byte(`{"name": "x"}`)},
			MCPConfigPath: {Data: []byte(`{"mcpServers": [`)},
		}, "/plugins/x")

		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, MCPConfigPath, loadErr.Path)
	})
}

func TestLoadFS_OptionalParts(t *testing.T) {
	p, err := LoadFS(fstest.MapFS{
		ManifestPath:         {Data: []byte(`{"name": "minimal"}`)},
		"commands/broken.md": {Data: []byte("---\ndescription: [oops\n---\nbody")},
	}, "/plugins/minimal")
	require.NoError(t, err)

	assert.Nil(t, p.MCPServers)
	assert.Nil(t, p.Hooks)
	assert.Empty(t, p.Commands)
	assert.Equal(t, []string{"commands/broken.md"}, p.Skipped)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"beta/.claude-plugin/plugin.json":  `{"name": "beta"}`,
		"alpha/.claude-plugin/plugin.json": `{"name": "alpha"}`,
		"not-a-plugin/README.md":           "hi",
	})

	dirs, err := Discover(root)
	require.NoError(t, err)

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(absRoot, "alpha"),
		filepath.Join(absRoot, "beta"),
	}, dirs)
}
