// Package convert turns a loaded Claude Code plugin into a Gemini CLI extension.
//
// Each artifact kind has a pure transformer (BuildManifest, LowerCommand,
// ConvertHooks, MapAgent, Substitute). The Writer runs them in a fixed order
// and is the only part of the package that touches the filesystem.
package convert

// Target identifies the extension format this package produces.
const Target = "gemini"

// Warning is a non-fatal problem found while converting a plugin.
type Warning struct {
	Plugin  string `json:"plugin"`
	Message string `json:"message"`
}

// Result is the outcome of converting one plugin.
type Result struct {
	Plugin  string `json:"plugin"`
	Target  string `json:"target"`
	Success bool   `json:"success"`

	// FilesWritten holds slash-separated paths relative to the output
	// directory. In dry-run mode it lists the paths that would be written.
	FilesWritten []string  `json:"filesWritten"`
	Warnings     []Warning `json:"warnings"`
	Errors       []string  `json:"errors"`
}
