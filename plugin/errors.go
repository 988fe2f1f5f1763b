package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDirectory is returned when the plugin path is not a directory.
	ErrNotDirectory = errors.New("plugin path must be a directory")
	// ErrManifestMissing is returned when .claude-plugin/plugin.json does not exist.
	ErrManifestMissing = errors.New("plugin manifest not found")
	// ErrNameRequired is returned when the manifest has no name.
	ErrNameRequired = errors.New("plugin name is required in manifest")
)

// LoadError reports a failure to load one file of a plugin.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
