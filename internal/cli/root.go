// Package cli implements the plugbridge command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/i2y/plugbridge/internal/config"
)

// NewRootCmd creates the plugbridge root command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "plugbridge",
		Short: "Convert Claude Code plugins into Gemini CLI extensions",
		Long: "plugbridge converts Claude Code plugin directories into Gemini CLI extensions,\n" +
			"validates plugin frontmatter and serves both operations over MCP.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Config file (default: ./plugbridge.yaml or $HOME/.config/plugbridge/plugbridge.yaml)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug | info | warn | error")
	root.PersistentFlags().String("format", config.FormatText, "Output format: text | json")
	root.SetVersionTemplate("plugbridge version {{.Version}}\n")

	root.AddCommand(NewConvertCmd())
	root.AddCommand(NewValidateCmd())
	root.AddCommand(NewMCPCmd(version))

	return root
}

// loadConfig merges configuration for cmd. Logs go to the command's stderr.
func loadConfig(cmd *cobra.Command) (config.Options, *slog.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	opts, logger, err := config.Load(cfgFile, cmd.Flags(), cmd.ErrOrStderr())
	if err != nil {
		return opts, nil, exitError(exitUsage, "%v", err)
	}
	return opts, logger, nil
}
