package convert

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/i2y/plugbridge/plugin"
)

// argumentsLine opens the prompt of commands that declare an argument hint.
const argumentsLine = "Arguments: {{args}}"

// CommandFile is the TOML document of a Gemini custom command.
// Field order is the output key order.
type CommandFile struct {
	Description string `toml:"description"`
	Prompt      string `toml:"prompt,multiline"`
}

// replacementChar stands in for invalid UTF-8 in command text. TOML
// documents must be valid UTF-8.
const replacementChar = "\uFFFD"

// LowerCommand converts a markdown command into its TOML form.
func LowerCommand(cmd plugin.Command) (string, error) {
	var prompt strings.Builder
	if cmd.ArgumentHint != "" {
		prompt.WriteString(argumentsLine)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString(Substitute(cmd.Body, Vars))

	out, err := toml.Marshal(CommandFile{
		Description: strings.ToValidUTF8(cmd.Description, replacementChar),
		Prompt:      strings.ToValidUTF8(prompt.String(), replacementChar),
	})
	if err != nil {
		return "", fmt.Errorf("encoding command %s: %w", cmd.RelPath, err)
	}
	return string(out), nil
}

// CommandPath returns the TOML path for a markdown command path.
func CommandPath(relPath string) string {
	if strings.HasSuffix(relPath, ".md") {
		return strings.TrimSuffix(relPath, ".md") + ".toml"
	}
	return relPath
}
