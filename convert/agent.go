package convert

import (
	"strings"

	"github.com/i2y/plugbridge/plugin"
)

// MapAgent rewrites an agent file for Gemini. Only name and description
// survive in the frontmatter; tools and model have no Gemini slot.
func MapAgent(a plugin.Agent) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("name: " + a.Name + "\n")
	b.WriteString(`description: "` + strings.ReplaceAll(a.Description, `"`, `\"`) + "\"\n")
	b.WriteString("---\n\n")
	b.WriteString(Substitute(a.Body, Vars))
	b.WriteString("\n")
	return b.String()
}
