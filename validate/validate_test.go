package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

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

func TestValidator_Document(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	tests := []struct {
		name       string
		kind       Kind
		doc        string
		wantErrors []string // substrings expected among the errors
	}{
		{
			name: "valid skill",
			kind: KindSkill,
			doc:  "---\nname: board-sync\ndescription: Sync boards\n---\nBody",
		},
		{
			name:       "skill name with uppercase",
			kind:       KindSkill,
			doc:        "---\nname: BoardSync\ndescription: Sync boards\n---\nBody",
			wantErrors: []string{"/name"},
		},
		{
			name:       "command missing description",
			kind:       KindCommand,
			doc:        "---\nargument-hint: <env>\n---\nBody",
			wantErrors: []string{"description"},
		},
		{
			name: "command with extra keys",
			kind: KindCommand,
			doc:  "---\ndescription: Deploy\nallowed-tools: [Bash, Read]\ndisable-model-invocation: true\n---\nBody",
		},
		{
			name:       "agent without frontmatter",
			kind:       KindAgent,
			doc:        "Just a body",
			wantErrors: []string{"No YAML frontmatter found in agent file"},
		},
		{
			name: "valid power",
			kind: KindPower,
			doc:  "---\nname: miro\ndisplayName: Miro\ndescription: Boards\nkeywords: [miro, board]\n---\n",
		},
		{
			name:       "power keywords must be strings",
			kind:       KindPower,
			doc:        "---\nname: miro\ndisplayName: Miro\ndescription: Boards\nkeywords: [1, 2]\n---\n",
			wantErrors: []string{"/keywords/0", "/keywords/1"},
		},
		{
			name:       "unknown kind",
			kind:       Kind("widget"),
			doc:        "---\nname: x\n---\n",
			wantErrors: []string{`unknown frontmatter kind "widget"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Document([]byte(tt.doc), tt.kind)

			if len(tt.wantErrors) == 0 {
				assert.Empty(t, errs)
				return
			}
			joined := strings.Join(errs, "\n")
			for _, want := range tt.wantErrors {
				assert.Contains(t, joined, want)
			}
		})
	}
}

func TestFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"demo/skills/board/SKILL.md":            "---\nname: board\ndescription: Boards\n---\n",
		"demo/commands/deploy.md":               "---\ndescription: Deploy\n---\nRun",
		"demo/commands/broken.md":               "Run without frontmatter",
		"demo/agents/reviewer.md":               "---\nname: reviewer\ndescription: Reviews\n---\n",
		"demo/node_modules/pkg/commands/x.md":   "no frontmatter",
		"demo/skills/board/references/guide.md": "not validated",
	})

	report, err := Frontmatter(root)
	require.NoError(t, err)

	assert.True(t, report.HasErrors)
	require.Len(t, report.Results, 4)

	byFile := make(map[string]FileResult)
	for _, r := range report.Results {
		rel, err := filepath.Rel(root, r.File)
		require.NoError(t, err)
		byFile[filepath.ToSlash(rel)] = r
	}

	assert.True(t, byFile["demo/skills/board/SKILL.md"].Valid)
	assert.True(t, byFile["demo/commands/deploy.md"].Valid)
	assert.True(t, byFile["demo/agents/reviewer.md"].Valid)

	broken := byFile["demo/commands/broken.md"]
	assert.False(t, broken.Valid)
	assert.Equal(t, KindCommand, broken.Kind)
	require.Len(t, broken.Errors, 1)
	assert.True(t, strings.HasPrefix(broken.Errors[0], "No YAML frontmatter"))
}

func TestFrontmatter_Clean(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"p/commands/ok.md": "---\ndescription: OK\n---\n",
	})

	report, err := Frontmatter(root)
	require.NoError(t, err)
	assert.False(t, report.HasErrors)
	assert.Len(t, report.Results, 1)
}
