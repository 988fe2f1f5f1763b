// Package validate checks the YAML frontmatter of plugin markdown files
// against JSON Schemas generated from the plugin frontmatter types.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/i2y/plugbridge/plugin"
	"github.com/i2y/plugbridge/schema"
)

// Kind names a family of frontmatter documents.
type Kind string

const (
	KindSkill   Kind = "SKILL.md"
	KindCommand Kind = "command"
	KindAgent   Kind = "agent"
	KindPower   Kind = "POWER.md"
)

// FileResult is the validation outcome of one file.
type FileResult struct {
	File   string   `json:"file"`
	Kind   Kind     `json:"kind"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Report collects the results of a validation run.
type Report struct {
	HasErrors bool         `json:"hasErrors"`
	Results   []FileResult `json:"results"`
}

// rule binds a glob to the schema its matches are checked against.
type rule struct {
	kind    Kind
	pattern string
	schema  json.RawMessage
}

var rules = []rule{
	{KindSkill, "**/skills/*/SKILL.md", schema.MustGenerate[plugin.SkillFrontmatter]()},
	{KindCommand, "**/commands/*.md", schema.MustGenerate[plugin.CommandFrontmatter]()},
	{KindAgent, "**/agents/*.md", schema.MustGenerate[plugin.AgentFrontmatter]()},
	{KindPower, "**/POWER.md", schema.MustGenerate[plugin.PowerFrontmatter]()},
}

const ignoredDir = "node_modules"

var printer = message.NewPrinter(language.English)

// Validator validates frontmatter with precompiled schemas.
type Validator struct {
	schemas map[Kind]*jsonschema.Schema
}

// New compiles the frontmatter schemas.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	v := &Validator{schemas: make(map[Kind]*jsonschema.Schema, len(rules))}

	for _, r := range rules {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(r.schema))
		if err != nil {
			return nil, fmt.Errorf("decoding %s schema: %w", r.kind, err)
		}
		url := "mem://frontmatter/" + strings.ToLower(string(r.kind)) + ".json"
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("adding %s schema: %w", r.kind, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", r.kind, err)
		}
		v.schemas[r.kind] = sch
	}

	return v, nil
}

// Frontmatter validates every matching file under root with a fresh Validator.
func Frontmatter(root string) (*Report, error) {
	v, err := New()
	if err != nil {
		return nil, err
	}
	return v.Dir(root)
}

// Dir validates every matching file under root. File-level problems are
// reported in the results; the error covers failures to walk root.
func (v *Validator) Dir(root string) (*Report, error) {
	fsys := os.DirFS(root)
	report := &Report{Results: make([]FileResult, 0)}

	for _, r := range rules {
		matches, err := doublestar.Glob(fsys, r.pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", r.pattern, err)
		}
		sort.Strings(matches)

		for _, rel := range matches {
			if ignored(rel) {
				continue
			}
			res := v.File(fsys, rel, r.kind)
			res.File = filepath.Join(root, filepath.FromSlash(rel))
			report.Results = append(report.Results, res)
			if !res.Valid {
				report.HasErrors = true
			}
		}
	}

	return report, nil
}

// File validates the frontmatter of one file in fsys.
func (v *Validator) File(fsys fs.FS, name string, kind Kind) FileResult {
	res := FileResult{File: name, Kind: kind, Errors: make([]string, 0)}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	res.Errors = v.Document(data, kind)
	res.Valid = len(res.Errors) == 0
	return res
}

// Document validates the frontmatter of a markdown document and returns
// the problems found.
func (v *Validator) Document(data []byte, kind Kind) []string {
	sch, ok := v.schemas[kind]
	if !ok {
		return []string{fmt.Sprintf("unknown frontmatter kind %q", kind)}
	}

	fm, _, err := plugin.SplitFrontmatter(data)
	if err != nil {
		return []string{err.Error()}
	}

	var meta map[string]any
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return []string{fmt.Sprintf("parsing frontmatter: %v", err)}
	}
	if len(meta) == 0 {
		return []string{fmt.Sprintf("No YAML frontmatter found in %s file", kind)}
	}

	instance, err := toJSONValue(meta)
	if err != nil {
		return []string{err.Error()}
	}

	err = sch.Validate(instance)
	if err == nil {
		return []string{}
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	return leafErrors(ve)
}

// toJSONValue converts YAML-decoded values into the JSON value model the
// schema validator expects.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("converting frontmatter: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// leafErrors flattens a validation error tree into "location: message" lines.
func leafErrors(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := "root"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		return []string{loc + ": " + ve.ErrorKind.LocalizedString(printer)}
	}

	var out []string
	for _, cause := range ve.Causes {
		out = append(out, leafErrors(cause)...)
	}
	return out
}

func ignored(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if part == ignoredDir {
			return true
		}
	}
	return false
}
