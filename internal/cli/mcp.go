package cli

import (
	"github.com/spf13/cobra"

	"github.com/i2y/plugbridge/convert"
	"github.com/i2y/plugbridge/mcp"
)

// NewMCPCmd creates the "mcp" subcommand, which serves the conversion and
// validation tools over stdio.
func NewMCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve plugbridge tools over the Model Context Protocol (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger.Info("serving MCP over stdio", "version", version)

			server := mcp.NewServer(version, convert.NewWriter(convert.WithLogger(logger)))
			return mcp.Serve(cmd.Context(), server)
		},
	}
}
