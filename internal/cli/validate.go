package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i2y/plugbridge/internal/config"
	"github.com/i2y/plugbridge/plugin"
	"github.com/i2y/plugbridge/schema"
	"github.com/i2y/plugbridge/validate"
)

// schemaGenerators backs --print-schema.
var schemaGenerators = map[validate.Kind]func() (json.RawMessage, error){
	validate.KindSkill:   schema.Generate[plugin.SkillFrontmatter],
	validate.KindCommand: schema.Generate[plugin.CommandFrontmatter],
	validate.KindAgent:   schema.Generate[plugin.AgentFrontmatter],
	validate.KindPower:   schema.Generate[plugin.PowerFrontmatter],
}

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [root]",
		Short: "Validate plugin frontmatter against its schema",
		Long: "Validate the YAML frontmatter of every SKILL.md, command, agent and POWER.md\n" +
			"file below root (default: the working directory).",
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().String("print-schema", "", "Print the JSON Schema for a kind (SKILL.md | command | agent | POWER.md) and exit")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if kind, _ := cmd.Flags().GetString("print-schema"); kind != "" {
		gen, ok := schemaGenerators[validate.Kind(kind)]
		if !ok {
			return exitError(exitUsage, "unknown frontmatter kind %q", kind)
		}
		raw, err := gen()
		if err != nil {
			return fmt.Errorf("generating schema: %w", err)
		}
		return writeJSON(out, raw)
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	report, err := validate.Frontmatter(root)
	if err != nil {
		return fmt.Errorf("validating %s: %w", root, err)
	}
	logger.Debug("validated frontmatter", "root", root, "files", len(report.Results))

	if opts.Format == config.FormatJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		renderValidateText(out, report)
	}

	if report.HasErrors {
		return exitError(exitFailed, "frontmatter validation failed")
	}
	return nil
}
