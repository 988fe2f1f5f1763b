package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/i2y/plugbridge/convert"
	"github.com/i2y/plugbridge/internal/config"
	"github.com/i2y/plugbridge/plugin"
)

// NewConvertCmd creates the "convert" subcommand.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <plugin-dir>...",
		Short: "Convert Claude Code plugins into Gemini CLI extensions",
		Long: "Convert one or more Claude Code plugin directories. Each plugin is written\n" +
			"to <output>/<plugin-dir-name>. With --all, every plugin found in the given\n" +
			"directories (or the working directory) is converted.",
		RunE: runConvert,
	}

	cmd.Flags().StringP("output", "o", "dist", "Directory extensions are written under")
	cmd.Flags().Bool("dry-run", false, "List the files that would be written without writing them")
	cmd.Flags().IntP("concurrency", "j", 4, "Number of plugins converted in parallel")
	cmd.Flags().Bool("all", false, "Discover and convert every plugin below the given directories")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dirs, err := pluginDirs(args, opts.All)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	logger.Info("converting plugins", "count", len(dirs), "output", opts.Output, "dry_run", opts.DryRun)

	w := convert.NewWriter(convert.WithLogger(logger))
	results, err := convertAll(cmd.Context(), w, logger, dirs, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == config.FormatJSON {
		if err := writeJSON(out, convertReport{RunID: runID, DryRun: opts.DryRun, Results: results}); err != nil {
			return err
		}
	} else {
		renderConvertText(out, results, opts.Output, opts.DryRun)
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		return exitError(exitFailed, "%d of %d plugins failed to convert", failed, len(results))
	}
	return nil
}

// pluginDirs resolves the plugin directories named on the command line.
func pluginDirs(args []string, all bool) ([]string, error) {
	if !all {
		if len(args) == 0 {
			return nil, exitError(exitUsage, "no plugin directories given (use --all to discover plugins)")
		}
		return args, nil
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	var dirs []string
	for _, root := range roots {
		found, err := plugin.Discover(root)
		if err != nil {
			return nil, fmt.Errorf("discovering plugins in %s: %w", root, err)
		}
		dirs = append(dirs, found...)
	}
	if len(dirs) == 0 {
		return nil, exitError(exitFailed, "no plugins found")
	}
	return dirs, nil
}

// convertAll converts dirs in parallel. Results keep the order of dirs.
// Per-plugin failures are reported in the results; the error is only set
// when ctx is cancelled. Plugins that would share an output directory are
// failed up front and never written.
func convertAll(ctx context.Context, w *convert.Writer, logger *slog.Logger, dirs []string, opts config.Options) ([]convert.Result, error) {
	results := make([]convert.Result, len(dirs))
	collisions := outputCollisions(dirs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, dir := range dirs {
		if others, ok := collisions[i]; ok {
			err := fmt.Errorf("output directory %s is also the target of %s",
				filepath.Join(opts.Output, pluginName(dir)), strings.Join(others, ", "))
			logger.Error("plugin output collides", "dir", dir, "error", err)
			results[i] = failedResult(dir, err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = convertOne(w, logger, dir, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func convertOne(w *convert.Writer, logger *slog.Logger, dir string, opts config.Options) convert.Result {
	p, err := plugin.Load(dir)
	if err != nil {
		logger.Error("loading plugin failed", "dir", dir, "error", err)
		return failedResult(dir, err)
	}
	for _, skipped := range p.Skipped {
		logger.Warn("skipped unparseable file", "plugin", p.DirName, "file", skipped)
	}
	return w.Write(p, opts.Output, opts.DryRun)
}

func failedResult(dir string, err error) convert.Result {
	return convert.Result{
		Plugin:       pluginName(dir),
		Target:       convert.Target,
		FilesWritten: []string{},
		Warnings:     []convert.Warning{},
		Errors:       []string{err.Error()},
	}
}

// pluginName is the output directory name of the plugin at dir, the same
// name plugin.Load records as DirName.
func pluginName(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return filepath.Base(abs)
	}
	return filepath.Base(filepath.Clean(dir))
}

// outputCollisions maps the index of every dir whose output directory name
// is shared with another dir to the other dirs involved.
func outputCollisions(dirs []string) map[int][]string {
	byName := make(map[string][]int, len(dirs))
	for i, dir := range dirs {
		name := pluginName(dir)
		byName[name] = append(byName[name], i)
	}

	collisions := make(map[int][]string)
	for _, idx := range byName {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			for _, j := range idx {
				if j != i {
					collisions[i] = append(collisions[i], dirs[j])
				}
			}
		}
	}
	return collisions
}

type convertReport struct {
	RunID   string           `json:"runId"`
	DryRun  bool             `json:"dryRun"`
	Results []convert.Result `json:"results"`
}
