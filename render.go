package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

var inlineCodePattern = regexp.MustCompile("`([^`]*)`")

type tableRenderer struct {
	entries []CommandEntry
}

func (r *tableRenderer) render(w io.Writer) {
	fmt.Fprint(w, "<table>\n")
	for _, entry := range r.entries {
		r.renderRow(w, entry)
	}
	fmt.Fprint(w, "</table>\n")
}

func (r *tableRenderer) renderRow(w io.Writer, entry CommandEntry) {
	fmt.Fprint(w, "  <tr>\n")
	writeCell(w, code(signatureLabel(entry.Name, entry.Parameters)))
	writeCell(w, descriptionHTML(entry.Description))
	fmt.Fprint(w, "  </tr>\n")
}

func (r *tableRenderer) String() string {
	var b strings.Builder
	r.render(&b)
	return b.String()
}

// renderTable builds the HTML table for entries. An empty slice yields the
// bare table container.
func renderTable(entries []CommandEntry) string {
	r := tableRenderer{entries: entries}
	return r.String()
}

func writeCell(w io.Writer, text string) {
	fmt.Fprintf(w, "    <td>%s</td>\n", text)
}

func code(text string) string {
	return "<code>" + text + "</code>"
}

func signatureLabel(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// descriptionHTML turns blank-line paragraph breaks into <br> and
// backtick spans into <code> elements.
func descriptionHTML(text string) string {
	text = strings.ReplaceAll(text, "\n\n", "<br>\n")
	return inlineCodePattern.ReplaceAllString(text, code("${1}"))
}
