package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ManifestPath is the manifest location relative to the plugin root.
	ManifestPath = ".claude-plugin/plugin.json"
	// MCPConfigPath is the MCP server configuration relative to the plugin root.
	MCPConfigPath = ".mcp.json"
	// HooksPath is the hook registration document relative to the plugin root.
	HooksPath = "hooks/hooks.json"

	skillFile = "SKILL.md"
)

// Load loads a Claude Code-style plugin from the given path.
// The path should point to the plugin root directory containing .claude-plugin/plugin.json.
func Load(dir string) (*Plugin, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("accessing plugin path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absPath)
	}

	return LoadFS(os.DirFS(absPath), absPath)
}

// LoadFS loads a plugin from fsys. absPath is recorded on the result so that
// converters can reach the original files (for permission bits, skill copies).
func LoadFS(fsys fs.FS, absPath string) (*Plugin, error) {
	manifest, err := loadManifest(fsys)
	if err != nil {
		return nil, err
	}

	p := &Plugin{
		DirName:  filepath.Base(absPath),
		AbsPath:  absPath,
		Manifest: *manifest,
	}

	if p.MCPServers, err = loadMCPServers(fsys); err != nil {
		return nil, err
	}

	if err := p.loadCommands(fsys); err != nil {
		return nil, err
	}
	if err := p.loadSkills(fsys); err != nil {
		return nil, err
	}
	if err := p.loadAgents(fsys); err != nil {
		return nil, err
	}
	if err := p.loadHooks(fsys); err != nil {
		return nil, err
	}
	if p.Scripts, err = loadFiles(fsys, "scripts/**"); err != nil {
		return nil, err
	}
	if p.Templates, err = loadFiles(fsys, "templates/**"); err != nil {
		return nil, err
	}

	return p, nil
}

// loadManifest loads the plugin.json manifest file.
func loadManifest(fsys fs.FS) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, ManifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrManifestMissing
		}
		return nil, &LoadError{Path: ManifestPath, Cause: err}
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, &LoadError{Path: ManifestPath, Cause: err}
	}

	if manifest.Name == "" {
		return nil, ErrNameRequired
	}

	return &manifest, nil
}

// loadMCPServers loads MCP server configurations from .mcp.json.
// Values are kept as written; converters decide how to rewrite placeholders.
func loadMCPServers(fsys fs.FS) (map[string]ServerDescriptor, error) {
	data, err := fs.ReadFile(fsys, MCPConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &LoadError{Path: MCPConfigPath, Cause: err}
	}

	var raw struct {
		MCPServers map[string]ServerDescriptor `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Path: MCPConfigPath, Cause: err}
	}
	if raw.MCPServers == nil {
		raw.MCPServers = make(map[string]ServerDescriptor)
	}

	return raw.MCPServers, nil
}

// loadCommands loads every markdown file below commands/.
func (p *Plugin) loadCommands(fsys fs.FS) error {
	paths, err := globFiles(fsys, "commands/**/*.md")
	if err != nil {
		return err
	}

	for _, rel := range paths {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return &LoadError{Path: rel, Cause: err}
		}
		cmd, err := ParseCommand(rel, data)
		if err != nil {
			p.Skipped = append(p.Skipped, rel)
			continue
		}
		p.Commands = append(p.Commands, *cmd)
	}
	return nil
}

// loadAgents loads every markdown file below agents/.
func (p *Plugin) loadAgents(fsys fs.FS) error {
	paths, err := globFiles(fsys, "agents/**/*.md")
	if err != nil {
		return err
	}

	for _, rel := range paths {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return &LoadError{Path: rel, Cause: err}
		}
		agent, err := ParseAgent(rel, data)
		if err != nil {
			p.Skipped = append(p.Skipped, rel)
			continue
		}
		p.Agents = append(p.Agents, *agent)
	}
	return nil
}

// loadSkills loads all skills from skills/.
// Each subdirectory containing a SKILL.md file is a skill; every other file
// in that subdirectory is one of its references.
func (p *Plugin) loadSkills(fsys fs.FS) error {
	paths, err := globFiles(fsys, "skills/*/"+skillFile)
	if err != nil {
		return err
	}

	for _, rel := range paths {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return &LoadError{Path: rel, Cause: err}
		}
		skill, err := ParseSkill(rel, data)
		if err != nil {
			p.Skipped = append(p.Skipped, rel)
			continue
		}

		dir := path.Dir(rel)
		files, err := globFiles(fsys, dir+"/**")
		if err != nil {
			return err
		}
		for _, f := range files {
			if f != rel {
				skill.References = append(skill.References, f)
			}
		}
		p.Skills = append(p.Skills, *skill)
	}
	return nil
}

// loadHooks reads hooks/hooks.json without parsing it.
func (p *Plugin) loadHooks(fsys fs.FS) error {
	data, err := fs.ReadFile(fsys, HooksPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &LoadError{Path: HooksPath, Cause: err}
	}
	p.Hooks = &HookDocument{RelPath: HooksPath, Raw: string(data)}
	return nil
}

// loadFiles reads every regular file matching pattern.
func loadFiles(fsys fs.FS, pattern string) ([]File, error) {
	paths, err := globFiles(fsys, pattern)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, rel := range paths {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, &LoadError{Path: rel, Cause: err}
		}
		files = append(files, File{RelPath: rel, Content: string(data)})
	}
	return files, nil
}

// globFiles returns the sorted regular files in fsys matching pattern.
func globFiles(fsys fs.FS, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Discover returns the plugin directories under root: root itself when it
// holds a manifest, plus every direct child that does.
func Discover(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	fsys := os.DirFS(absRoot)
	var dirs []string
	if _, err := fs.Stat(fsys, ManifestPath); err == nil {
		dirs = append(dirs, absRoot)
	}

	matches, err := doublestar.Glob(fsys, "*/"+ManifestPath, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discovering plugins: %w", err)
	}
	sort.Strings(matches)
	for _, m := range matches {
		dir := strings.TrimSuffix(m, "/"+ManifestPath)
		dirs = append(dirs, filepath.Join(absRoot, filepath.FromSlash(dir)))
	}

	return dirs, nil
}
