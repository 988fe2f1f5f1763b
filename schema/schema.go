// Package schema provides JSON Schema generation from Go types.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Reflector is configured for frontmatter schemas.
// DoNotReference inlines all definitions to avoid $ref. Frontmatter blocks
// commonly carry keys for other tools, so additional properties are allowed.
// Fields without omitempty in their json tag are required.
var Reflector = &jsonschema.Reflector{
	DoNotReference:            true,
	Anonymous:                 true,
	AllowAdditionalProperties: true,
}

// Generate creates a JSON Schema from a Go type.
// The type should be a struct with json and jsonschema tags.
//
// Example:
//
//	type SkillFrontmatter struct {
//	    Name        string `json:"name" jsonschema:"pattern=^[a-z0-9-]+$"`
//	    Description string `json:"description" jsonschema:"minLength=1"`
//	}
//
//	schema, err := schema.Generate[SkillFrontmatter]()
func Generate[T any]() (json.RawMessage, error) {
	var zero T
	schema := Reflector.Reflect(&zero)
	return json.Marshal(schema)
}

// MustGenerate is like Generate but panics on error.
// Useful for package-level schema definitions.
func MustGenerate[T any]() json.RawMessage {
	schema, err := Generate[T]()
	if err != nil {
		panic(err)
	}
	return schema
}
