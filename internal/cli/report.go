package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/i2y/plugbridge/convert"
	"github.com/i2y/plugbridge/validate"
)

var (
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

func renderConvertText(w io.Writer, results []convert.Result, output string, dryRun bool) {
	converted := 0
	for _, r := range results {
		if r.Success {
			converted++
			fmt.Fprintf(w, "%s %s -> %s (%d files)\n",
				okStyle.Render("ok"), titleStyle.Render(r.Plugin), filepath.Join(output, r.Plugin), len(r.FilesWritten))
		} else {
			fmt.Fprintf(w, "%s %s\n", failStyle.Render("FAIL"), titleStyle.Render(r.Plugin))
		}
		if dryRun {
			for _, f := range r.FilesWritten {
				fmt.Fprintf(w, "    %s\n", dimStyle.Render(f))
			}
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("warning:"), warn.Message)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", failStyle.Render("error:"), e)
		}
	}

	summary := fmt.Sprintf("%d of %d plugins converted", converted, len(results))
	if dryRun {
		summary += " (dry run, nothing written)"
	}
	fmt.Fprintln(w, dimStyle.Render(summary))
}

func renderValidateText(w io.Writer, report *validate.Report) {
	invalid := 0
	for _, r := range report.Results {
		if r.Valid {
			fmt.Fprintf(w, "%s %s\n", okStyle.Render("ok"), r.File)
			continue
		}
		invalid++
		fmt.Fprintf(w, "%s %s %s\n", failStyle.Render("FAIL"), r.File, dimStyle.Render("("+string(r.Kind)+")"))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d files checked, %d invalid", len(report.Results), invalid)))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
