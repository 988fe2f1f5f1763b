package convert

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/i2y/plugbridge/plugin"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// Writer generates Gemini extensions from loaded plugins.
// A Writer holds no per-conversion state and may be shared between goroutines
// converting different plugins.
type Writer struct {
	fs     FileSystem
	logger *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithFileSystem sets the filesystem the Writer reads sources from and writes to.
func WithFileSystem(fsys FileSystem) Option {
	return func(w *Writer) {
		w.fs = fsys
	}
}

// WithLogger sets the logger for per-artifact diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a Writer backed by the OS filesystem.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		fs:     OSFileSystem{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteExtension converts p into outputDir using the OS filesystem.
func WriteExtension(p *plugin.Plugin, outputDir string, dryRun bool) Result {
	return NewWriter().Write(p, outputDir, dryRun)
}

// step converts one artifact category.
type step struct {
	name string
	run  func(*extension) ([]Warning, error)
}

var steps = []step{
	{"manifest", (*extension).writeManifest},
	{"commands", (*extension).writeCommands},
	{"skills", (*extension).writeSkills},
	{"agents", (*extension).writeAgents},
	{"hooks", (*extension).writeHooks},
	{"scripts", (*extension).writeScripts},
	{"templates", (*extension).writeTemplates},
}

// Write converts p into the directory outputDir/<p.DirName>.
//
// Categories run in a fixed order and the first failing category ends the
// run. Failures are reported in Result.Errors, never returned; files written
// before the failure stay on disk. With dryRun set nothing is read from or
// written to the filesystem, but FilesWritten lists the same paths.
func (w *Writer) Write(p *plugin.Plugin, outputDir string, dryRun bool) Result {
	e := &extension{
		fs:        w.fs,
		logger:    w.logger.With(slog.String("plugin", p.DirName), slog.Bool("dry_run", dryRun)),
		plugin:    p,
		root:      filepath.Join(outputDir, p.DirName),
		dryRun:    dryRun,
		filesSeen: make([]string, 0),
	}

	result := Result{
		Plugin:   p.DirName,
		Target:   Target,
		Warnings: make([]Warning, 0),
		Errors:   make([]string, 0),
	}

	for _, s := range steps {
		warnings, err := s.run(e)
		for _, warn := range warnings {
			e.logger.Warn(warn.Message, slog.String("step", s.name))
		}
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			e.logger.Error("conversion failed", slog.String("step", s.name), slog.Any("error", err))
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to write %s extension: %v", Target, err))
			break
		}
	}

	result.FilesWritten = e.filesSeen
	result.Success = len(result.Errors) == 0
	return result
}

// extension is the state of one plugin conversion.
type extension struct {
	fs        FileSystem
	logger    *slog.Logger
	plugin    *plugin.Plugin
	root      string
	dryRun    bool
	filesSeen []string
}

// dest returns the absolute destination of a slash-separated relative path.
func (e *extension) dest(rel string) string {
	return filepath.Join(e.root, filepath.FromSlash(rel))
}

// source returns the absolute path of a file in the source plugin.
func (e *extension) source(rel string) string {
	return filepath.Join(e.plugin.AbsPath, filepath.FromSlash(rel))
}

// writeOut records rel and, outside dry-run, writes content to it.
func (e *extension) writeOut(rel string, content []byte) error {
	e.filesSeen = append(e.filesSeen, path.Join(e.plugin.DirName, rel))
	e.logger.Debug("writing artifact", slog.String("path", rel))
	if e.dryRun {
		return nil
	}

	full := e.dest(rel)
	if err := e.fs.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	if err := e.fs.WriteFile(full, content, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

// copyVerbatim copies a source file unchanged. Dry runs skip the read.
func (e *extension) copyVerbatim(rel string) error {
	if e.dryRun {
		return e.writeOut(rel, nil)
	}
	data, err := e.fs.ReadFile(e.source(rel))
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}
	return e.writeOut(rel, data)
}

func (e *extension) writeManifest() ([]Warning, error) {
	data, err := marshalJSON(BuildManifest(e.plugin))
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return nil, e.writeOut(ManifestFile, data)
}

func (e *extension) writeCommands() ([]Warning, error) {
	for _, cmd := range e.plugin.Commands {
		out, err := LowerCommand(cmd)
		if err != nil {
			return nil, err
		}
		if err := e.writeOut(CommandPath(cmd.RelPath), []byte(out)); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (e *extension) writeSkills() ([]Warning, error) {
	for _, skill := range e.plugin.Skills {
		if err := e.copyVerbatim(skill.RelPath); err != nil {
			return nil, err
		}
		for _, ref := range skill.References {
			if err := e.copyVerbatim(ref); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

func (e *extension) writeAgents() ([]Warning, error) {
	for _, agent := range e.plugin.Agents {
		if err := e.writeOut(agent.RelPath, []byte(MapAgent(agent))); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (e *extension) writeHooks() ([]Warning, error) {
	if e.plugin.Hooks == nil {
		return nil, nil
	}

	converted, unmapped, err := ConvertHooks(e.plugin.Hooks.Raw)
	if err != nil {
		return nil, err
	}
	if err := e.writeOut(HooksFile, []byte(converted)); err != nil {
		return nil, err
	}

	warnings := make([]Warning, 0, len(unmapped))
	for _, event := range unmapped {
		warnings = append(warnings, Warning{Plugin: e.plugin.DirName, Message: unmappedWarning(event)})
	}
	return warnings, nil
}

// writeScripts substitutes script contents and carries the source
// permission bits over when any executable bit is set.
func (e *extension) writeScripts() ([]Warning, error) {
	for _, script := range e.plugin.Scripts {
		content := Substitute(script.Content, Vars)
		if err := e.writeOut(script.RelPath, []byte(content)); err != nil {
			return nil, err
		}
		if e.dryRun {
			continue
		}

		info, err := e.fs.Stat(e.source(script.RelPath))
		if err != nil {
			return nil, fmt.Errorf("inspecting %s: %w", script.RelPath, err)
		}
		if mode := info.Mode().Perm(); mode&0o111 != 0 {
			if err := e.fs.Chmod(e.dest(script.RelPath), mode); err != nil {
				return nil, fmt.Errorf("setting mode of %s: %w", script.RelPath, err)
			}
		}
	}
	return nil, nil
}

func (e *extension) writeTemplates() ([]Warning, error) {
	for _, tmpl := range e.plugin.Templates {
		if err := e.writeOut(tmpl.RelPath, []byte(tmpl.Content)); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
