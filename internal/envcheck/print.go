package envcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	colorGreen  = "42"
	colorYellow = "220"
	colorRed    = "196"
	colorGray   = "245"
)

// Styles colors the printed report.
type Styles struct {
	Header  lipgloss.Style
	Section lipgloss.Style
	Pass    lipgloss.Style
	Warn    lipgloss.Style
	Fail    lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true),
		Section: lipgloss.NewStyle().Bold(true).Underline(true),
		Pass:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
	}
}

// NoColorStyles returns styles that render text unchanged.
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Section: lipgloss.NewStyle(),
		Pass:    lipgloss.NewStyle(),
		Warn:    lipgloss.NewStyle(),
		Fail:    lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// StylesFor picks DefaultStyles for a terminal without NO_COLOR, NoColorStyles otherwise.
func StylesFor(w io.Writer) Styles {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return NoColorStyles()
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return DefaultStyles()
	}
	return NoColorStyles()
}

func (c *Checker) badge(s CheckStatus) string {
	switch s {
	case StatusPass:
		return c.styles.Pass.Render("[PASS]")
	case StatusWarn:
		return c.styles.Warn.Render("[WARN]")
	default:
		return c.styles.Fail.Render("[FAIL]")
	}
}

var sectionTitles = []struct {
	category Category
	title    string
}{
	{CategoryProject, "Project"},
	{CategoryTools, "Tools"},
	{CategoryMCP, "MCP configuration"},
	{CategoryDirs, "Project structure"},
	{CategoryEnv, "Environment variables"},
}

// PrintReport writes r as grouped, human readable text.
func (c *Checker) PrintReport(r *Report) {
	w := c.output
	_, _ = fmt.Fprintln(w, c.styles.Header.Render("Datathon Environment Status Check"))

	for _, sec := range sectionTitles {
		var lines []CheckResult
		for _, res := range r.Results {
			if res.Category == sec.category {
				lines = append(lines, res)
			}
		}
		if len(lines) == 0 {
			continue
		}
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, c.styles.Section.Render(sec.title))
		for _, res := range lines {
			_, _ = fmt.Fprintf(w, "  %s %s %s\n", c.badge(res.Status), res.Name, c.styles.Dim.Render(res.Message))
		}
		if sec.category == CategoryMCP {
			for _, s := range r.MCPServers {
				_, _ = fmt.Fprintf(w, "      - %s\n", s)
			}
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(w, "Status: %s\n", strings.ToUpper(r.Status))
	if len(r.MissingTools) > 0 {
		_, _ = fmt.Fprintln(w, c.styles.Warn.Render("Setup incomplete, install missing tools: "+strings.Join(r.MissingTools, " ")))
	} else if r.Status != "failed" {
		_, _ = fmt.Fprintln(w, c.styles.Pass.Render("Environment looks good!"))
	}

	if len(r.NextSteps) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, c.styles.Section.Render("Next steps"))
		for i, step := range r.NextSteps {
			_, _ = fmt.Fprintf(w, "%d. %s\n", i+1, step)
		}
	}
}

// PrintJSON writes r as indented JSON.
func (c *Checker) PrintJSON(r *Report) error {
	enc := json.NewEncoder(c.output)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
