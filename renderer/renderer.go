// Package renderer formats ledger results as markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/cryptotax"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

// Summary is the data of the summary report.
type Summary struct {
	Title        string
	Method       string
	Currency     string
	ShortTerm    string
	LongTerm     string
	CapitalGains string
	Income       string
	Transactions int
	Records      int
	Incomes      int
	Assets       []string
	Diagnostics  int
	Open         int // Open is the number of assets still held.
}

// NewSummary collects the totals of r.
func NewSummary(title string, r *cryptotax.Result) *Summary {
	return &Summary{
		Title:        title,
		Method:       strings.ToUpper(r.Method.String()),
		Currency:     r.Currency,
		ShortTerm:    r.ShortTerm.SignedString(),
		LongTerm:     r.LongTerm.SignedString(),
		CapitalGains: r.CapitalGains().SignedString(),
		Income:       r.Income.String(),
		Transactions: r.Transactions,
		Records:      len(r.Gains),
		Incomes:      len(r.Incomes),
		Assets:       r.Assets(),
		Diagnostics:  len(r.Diagnostics),
		Open:         len(r.Holdings),
	}
}

// SummaryMarkdown renders the summary report of r.
func SummaryMarkdown(title string, r *cryptotax.Result) string {
	partials := map[string]string{
		"summary_totals": "summary_totals.md",
		"summary_counts": "summary_counts.md",
	}
	return renderTemplate("summary", "summary.md", partials, NewSummary(title, r))
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(template.FuncMap{"join": strings.Join}).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
