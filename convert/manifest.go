package convert

import (
	"bytes"
	"encoding/json"

	"github.com/i2y/plugbridge/plugin"
)

const (
	// ManifestFile is the extension manifest written at the extension root.
	ManifestFile = "gemini-extension.json"

	sourceHeader      = "X-AI-Source"
	sourceHeaderValue = "gemini-extension"
)

// Manifest is the gemini-extension.json document. Maps that were declared
// in the source are written even when empty; omitzero only drops nil maps.
type Manifest struct {
	Name        string                  `json:"name"`
	Version     string                  `json:"version,omitempty"`
	Description string                  `json:"description,omitempty"`
	MCPServers  map[string]ServerConfig `json:"mcpServers,omitzero"`
}

// ServerConfig is one MCP server entry of the extension manifest.
type ServerConfig struct {
	HTTPURL string            `json:"httpUrl,omitempty"`
	OAuth   *OAuthConfig      `json:"oauth,omitempty"`
	Headers map[string]string `json:"headers,omitzero"`

	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// OAuthConfig enables OAuth for an HTTP server.
type OAuthConfig struct {
	Enabled bool `json:"enabled"`
}

// BuildManifest maps the plugin manifest and its MCP servers to an extension manifest.
func BuildManifest(p *plugin.Plugin) Manifest {
	m := Manifest{
		Name:        p.Manifest.Name,
		Version:     p.Manifest.Version,
		Description: p.Manifest.Description,
	}

	if p.MCPServers == nil {
		return m
	}

	m.MCPServers = make(map[string]ServerConfig, len(p.MCPServers))
	for name, server := range p.MCPServers {
		m.MCPServers[name] = buildServer(server)
	}
	return m
}

func buildServer(s plugin.ServerDescriptor) ServerConfig {
	var out ServerConfig

	if s.URL != "" {
		out.HTTPURL = s.URL
	}
	if s.HTTPURL != "" {
		out.HTTPURL = s.HTTPURL
	}
	if s.HTTPCapable() {
		out.OAuth = &OAuthConfig{Enabled: true}
	}

	if s.Headers != nil {
		out.Headers = make(map[string]string, len(s.Headers))
		for k, v := range s.Headers {
			out.Headers[k] = v
		}
		if out.Headers[sourceHeader] != "" {
			out.Headers[sourceHeader] = sourceHeaderValue
		}
	}

	if s.Command != "" {
		out.Command = Substitute(s.Command, Vars)
		for _, arg := range s.Args {
			out.Args = append(out.Args, Substitute(arg, Vars))
		}
		if s.Env != nil {
			out.Env = make(map[string]string, len(s.Env))
			for k, v := range s.Env {
				out.Env[k] = Substitute(v, Vars)
			}
		}
	}

	return out
}

// marshalJSON encodes v with two-space indentation, no HTML escaping and a
// trailing newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
