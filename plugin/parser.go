package plugin

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// SplitFrontmatter extracts YAML frontmatter from markdown content.
// Frontmatter is delimited by "---" at the start and end. The returned
// content has surrounding whitespace trimmed.
func SplitFrontmatter(data []byte) (frontmatter []byte, content string, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	// Check for opening delimiter
	if !scanner.Scan() {
		return nil, string(data), nil
	}
	firstLine := strings.TrimSpace(scanner.Text())
	if firstLine != "---" {
		return nil, string(data), nil
	}

	var fmLines []string
	foundClosing := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			foundClosing = true
			break
		}
		fmLines = append(fmLines, line)
	}

	if !foundClosing {
		// No closing delimiter, treat as no frontmatter
		return nil, string(data), nil
	}

	var contentLines []string
	for scanner.Scan() {
		contentLines = append(contentLines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("scanning file: %w", err)
	}

	frontmatter = []byte(strings.Join(fmLines, "\n"))
	content = strings.TrimSpace(strings.Join(contentLines, "\n"))

	return frontmatter, content, nil
}

// decodeFrontmatter splits data and unmarshals the frontmatter into meta.
func decodeFrontmatter(data []byte, meta any) (string, error) {
	fm, content, err := SplitFrontmatter(data)
	if err != nil {
		return "", err
	}
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, meta); err != nil {
			return "", fmt.Errorf("parsing frontmatter: %w", err)
		}
	}
	return content, nil
}

// ParseCommand parses the markdown of a command file at relPath.
func ParseCommand(relPath string, data []byte) (*Command, error) {
	var meta CommandFrontmatter
	body, err := decodeFrontmatter(data, &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing command file %s: %w", relPath, err)
	}

	return &Command{
		RelPath:      relPath,
		Name:         strings.TrimSuffix(path.Base(relPath), ".md"),
		Description:  meta.Description,
		ArgumentHint: meta.ArgumentHint,
		Body:         body,
	}, nil
}

// ParseAgent parses the markdown of an agent file at relPath.
// The frontmatter name wins over the file stem.
func ParseAgent(relPath string, data []byte) (*Agent, error) {
	var meta AgentFrontmatter
	body, err := decodeFrontmatter(data, &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing agent file %s: %w", relPath, err)
	}

	name := meta.Name
	if name == "" {
		name = strings.TrimSuffix(path.Base(relPath), ".md")
	}

	return &Agent{
		RelPath:     relPath,
		Name:        name,
		Description: meta.Description,
		Tools:       meta.Tools,
		Model:       meta.Model,
		Body:        body,
	}, nil
}

// ParseSkill parses the SKILL.md at relPath. References are filled in by the loader.
func ParseSkill(relPath string, data []byte) (*Skill, error) {
	var meta SkillFrontmatter
	if _, err := decodeFrontmatter(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing skill file %s: %w", relPath, err)
	}

	name := meta.Name
	if name == "" {
		name = path.Base(path.Dir(relPath))
	}

	return &Skill{
		RelPath:     relPath,
		Name:        name,
		Description: meta.Description,
	}, nil
}
