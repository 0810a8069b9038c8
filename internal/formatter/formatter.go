// package formatter renders search results, detail records, and the
// side-by-side provider comparison table for the terminal, plus JSON output
package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/search"
	"github.com/tunedex/tunedex/internal/shared"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// FormatResults renders per-provider search results as plain text, one
// section per provider in the given order. An empty provider slot renders
// as "no results".
func FormatResults(results map[string][]providers.Result, order []string) string {
	var buf bytes.Buffer

	for _, name := range order {
		buf.WriteString(headerStyle.Render(strings.ToUpper(name)))
		buf.WriteString("\n")

		items := results[name]
		if len(items) == 0 {
			buf.WriteString(dimStyle.Render("  no results"))
			buf.WriteString("\n\n")
			continue
		}

		for i, item := range items {
			buf.WriteString(fmt.Sprintf("%2d. %s", i+1, item.Name))
			if item.Artist != "" {
				buf.WriteString(fmt.Sprintf(" - %s", item.Artist))
			}
			if item.Year != "" {
				buf.WriteString(fmt.Sprintf(" (%s)", item.Year))
			}
			if item.Length != "" {
				buf.WriteString(fmt.Sprintf(" [%s]", item.Length))
			}
			buf.WriteString(dimStyle.Render(fmt.Sprintf("  id=%s", item.ID)))
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatDetails renders one detail record as labeled lines, skipping empty fields.
func FormatDetails(d *providers.Details) string {
	if d == nil {
		return "not found\n"
	}

	var buf bytes.Buffer
	buf.WriteString(headerStyle.Render(d.Name))
	buf.WriteString("\n")

	writeField(&buf, "Provider", d.Provider)
	writeField(&buf, "ID", d.ID)
	writeField(&buf, "Artist", d.Artist)
	writeField(&buf, "Album", d.Album)
	writeField(&buf, "Year", d.Year)
	writeField(&buf, "Length", d.Length)
	writeField(&buf, "Website", d.URL)
	writeField(&buf, "Genres", strings.Join(d.Genres, ", "))
	writeField(&buf, "Members", strings.Join(d.Members, ", "))
	writeField(&buf, "Labels", strings.Join(d.Labels, ", "))

	if d.Profile != "" {
		buf.WriteString("\n")
		buf.WriteString(d.Profile)
		buf.WriteString("\n")
	}

	if len(d.Tracklist) > 0 {
		buf.WriteString("\n")
		buf.WriteString(labelStyle.Render("Tracklist"))
		buf.WriteString("\n")
		for _, track := range d.Tracklist {
			position := track.Position
			if position == "" {
				position = "-"
			}
			buf.WriteString(fmt.Sprintf("  %s  %s", position, track.Name))
			if track.Length != "" {
				buf.WriteString(fmt.Sprintf(" [%s]", track.Length))
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// FormatComparison renders the field-by-field comparison table for the
// given kind: one row per comparable field, one column per provider.
// Fields empty on every provider are dropped from the table, matching
// what the merge offers for selection.
func FormatComparison(kind string, selections map[string]*providers.Details) string {
	order := search.ProviderOrder(selections)
	if len(order) == 0 {
		return "nothing to compare\n"
	}

	fields := search.CompareFields(kind)
	labelWidth := 0
	for _, field := range fields {
		if len(field.Label) > labelWidth {
			labelWidth = len(field.Label)
		}
	}

	colWidth := 36
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat(" ", labelWidth+2))
	for _, name := range order {
		buf.WriteString(headerStyle.Render(pad(strings.ToUpper(name), colWidth)))
	}
	buf.WriteString("\n")

	for _, field := range fields {
		if len(search.FieldOptions(selections, field.Name)) == 0 {
			continue
		}

		buf.WriteString(labelStyle.Render(pad(field.Label, labelWidth)))
		buf.WriteString("  ")
		for _, name := range order {
			value := search.FieldValue(selections[name], field.Name)
			if search.IsEmptyString(value) {
				buf.WriteString(dimStyle.Render(pad("-", colWidth)))
				continue
			}
			buf.WriteString(pad(truncate(value, colWidth-2), colWidth))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatNode renders a one-line summary of a created content node.
func FormatNode(node *models.Node) string {
	if node == nil {
		return "creation failed\n"
	}
	return fmt.Sprintf("created %s %q (%s)\n", node.Bundle, node.Title, node.ID)
}

// ResultsToJSON serializes per-provider search results as indented JSON.
func ResultsToJSON(results map[string][]providers.Result) ([]byte, error) {
	return shared.MarshalJSON(results, true)
}

// DetailsToJSON serializes one detail record as indented JSON.
func DetailsToJSON(d *providers.Details) ([]byte, error) {
	return shared.MarshalJSON(d, true)
}

func writeField(buf *bytes.Buffer, label, value string) {
	if value == "" {
		return
	}
	buf.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
	buf.WriteString(value)
	buf.WriteString("\n")
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
