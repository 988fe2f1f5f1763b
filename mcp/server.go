// Package mcp exposes plugin conversion and frontmatter validation as tools
// of a Model Context Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/i2y/plugbridge/convert"
	"github.com/i2y/plugbridge/plugin"
	"github.com/i2y/plugbridge/validate"
)

// ConvertInput defines the input of the convert_plugin tool.
type ConvertInput struct {
	Path   string `json:"path" jsonschema:"Path of the Claude Code plugin directory to convert"`
	Output string `json:"output,omitempty" jsonschema:"Directory the Gemini extension is written under"`
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"List the files that would be written without writing them"`
}

// ValidateInput defines the input of the validate_frontmatter tool.
type ValidateInput struct {
	Root string `json:"root,omitempty" jsonschema:"Directory searched for skill, command, agent and POWER.md files"`
}

var errPathRequired = errors.New("path is required")

// NewServer creates an MCP server with the convert_plugin and
// validate_frontmatter tools. Conversions go through w.
//
// Example:
//
//	server := mcp.NewServer("1.0.0", convert.NewWriter())
//	if err := mcp.Serve(ctx, server); err != nil {
//	    return err
//	}
func NewServer(version string, w *convert.Writer) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "plugbridge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_plugin",
		Description: "Convert a Claude Code plugin directory into a Gemini CLI extension.",
	}, convertHandler(w))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_frontmatter",
		Description: "Validate the YAML frontmatter of plugin markdown files against their schemas.",
	}, validateHandler)

	return server
}

// Serve runs server over stdin/stdout until the client disconnects or ctx ends.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func convertHandler(w *convert.Writer) mcp.ToolHandlerFor[ConvertInput, convert.Result] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in ConvertInput) (*mcp.CallToolResult, convert.Result, error) {
		if in.Path == "" {
			return nil, convert.Result{}, errPathRequired
		}
		p, err := plugin.Load(in.Path)
		if err != nil {
			return nil, convert.Result{}, fmt.Errorf("loading plugin: %w", err)
		}
		output := in.Output
		if output == "" {
			output = "dist"
		}
		return nil, w.Write(p, output, in.DryRun), nil
	}
}

func validateHandler(ctx context.Context, req *mcp.CallToolRequest, in ValidateInput) (*mcp.CallToolResult, validate.Report, error) {
	root := in.Root
	if root == "" {
		root = "."
	}
	report, err := validate.Frontmatter(root)
	if err != nil {
		return nil, validate.Report{}, err
	}
	return nil, *report, nil
}
