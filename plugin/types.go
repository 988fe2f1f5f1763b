// Package plugin loads Claude Code-style plugin directories into an
// in-memory description that converters consume read-only.
package plugin

// Plugin represents a loaded Claude Code-style plugin.
type Plugin struct {
	// DirName is the base name of the plugin directory. Converters use it
	// as the name of the destination directory.
	DirName string
	// AbsPath is the absolute path of the plugin root.
	AbsPath string

	Manifest Manifest

	// MCPServers is nil when the plugin has no .mcp.json.
	MCPServers map[string]ServerDescriptor

	// Components, in discovery order
	Commands  []Command
	Skills    []Skill
	Agents    []Agent
	Hooks     *HookDocument
	Scripts   []File
	Templates []File

	// Skipped lists component files that could not be parsed.
	Skipped []string
}

// Manifest is the metadata from .claude-plugin/plugin.json.
type Manifest struct {
	Name        string  `json:"name"`
	Version     string  `json:"version,omitempty"`
	Description string  `json:"description,omitempty"`
	Author      *Author `json:"author,omitempty"`
}

// Author represents plugin author information.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// ServerDescriptor is one entry of the mcpServers map in .mcp.json.
type ServerDescriptor struct {
	Type    string            `json:"type,omitempty"`
	URL     string            `json:"url,omitempty"`
	HTTPURL string            `json:"httpUrl,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// stdio transport
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// HTTPCapable reports whether the server is reached over HTTP.
func (s ServerDescriptor) HTTPCapable() bool {
	return s.Type == "http" || s.URL != "" || s.HTTPURL != ""
}

// Command represents a slash command defined in a plugin.
type Command struct {
	RelPath      string // Slash-separated path relative to the plugin root
	Name         string // Derived from filename (e.g., "hello" from "hello.md")
	Description  string
	ArgumentHint string // Empty when the command takes no arguments
	Body         string
}

// Skill represents an agent skill: a SKILL.md plus its reference files.
type Skill struct {
	RelPath     string
	Name        string
	Description string
	References  []string // Relative paths of every other file in the skill directory
}

// Agent represents a subagent defined in a plugin.
type Agent struct {
	RelPath     string
	Name        string
	Description string
	Tools       string
	Model       string
	Body        string
}

// HookDocument is the unparsed hooks/hooks.json of a plugin.
type HookDocument struct {
	RelPath string
	Raw     string
}

// File is a script or template carried over by relative path.
type File struct {
	RelPath string
	Content string
}

// CommandFrontmatter is the YAML frontmatter of a command file.
type CommandFrontmatter struct {
	Description  string `yaml:"description" json:"description" jsonschema:"minLength=1"`
	ArgumentHint string `yaml:"argument-hint,omitempty" json:"argument-hint,omitempty"`
	AllowedTools any    `yaml:"allowed-tools,omitempty" json:"allowed-tools,omitempty"`
	Model        string `yaml:"model,omitempty" json:"model,omitempty"`
}

// AgentFrontmatter is the YAML frontmatter of an agent file.
type AgentFrontmatter struct {
	Name        string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z0-9][a-z0-9-]*$"`
	Description string `yaml:"description" json:"description" jsonschema:"minLength=1"`
	Tools       string `yaml:"tools,omitempty" json:"tools,omitempty"`
	Model       string `yaml:"model,omitempty" json:"model,omitempty"`
	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
}

// SkillFrontmatter is the YAML frontmatter of a SKILL.md file.
type SkillFrontmatter struct {
	Name        string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z0-9][a-z0-9-]*$,maxLength=64"`
	Description string `yaml:"description" json:"description" jsonschema:"minLength=1,maxLength=1024"`
}

// PowerFrontmatter is the YAML frontmatter of a Kiro POWER.md file.
type PowerFrontmatter struct {
	Name        string   `yaml:"name" json:"name" jsonschema:"pattern=^[a-z0-9][a-z0-9-]*$"`
	DisplayName string   `yaml:"displayName" json:"displayName" jsonschema:"minLength=1"`
	Description string   `yaml:"description" json:"description" jsonschema:"minLength=1"`
	Keywords    []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}
