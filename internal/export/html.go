package export

import (
	"fmt"
	"html"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/microcosm-cc/bluemonday"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

const htmlStyle = `table.people { border-collapse: collapse; font-family: sans-serif; font-size: 13px; }
table.people th, table.people td { border: 1px solid #ccc; padding: 4px 6px; vertical-align: top; }
table.people th { background: #0a66c2; color: #fff; position: sticky; top: 0; }
table.people tr:nth-child(even) td { background: #f3f6f8; }`

var strict = bluemonday.StrictPolicy()

// cell strips any markup from scraped text and escapes what is left.
func cell(text string) string {
	return strict.Sanitize(text)
}

// renderTable renders the people table only, without a surrounding document.
func renderTable(people []person.Person, columns []Column) string {
	tw := table.NewWriter()

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = cell(c.Label)
	}
	tw.AppendHeader(header)

	for _, p := range people {
		values := Row(p, columns)
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = cell(v)
		}
		// profile urls are canonical, safe to link
		if i := columnIndex(columns, "profileUrl"); i >= 0 && p.ProfileURL != "" {
			row[i] = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(p.ProfileURL), cell(p.ProfileURL))
		}
		tw.AppendRow(row)
	}

	// labels are rendered as given, not upper cased
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().HTML = table.HTMLOptions{
		CSSClass:    "people",
		EmptyColumn: "",
		EscapeText:  false,
		Newline:     "<br/>",
	}
	return tw.RenderHTML()
}

func columnIndex(columns []Column, key string) int {
	for i, c := range columns {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// WriteHTML writes a standalone HTML document holding the people table.
func WriteHTML(w io.Writer, people []person.Person, columns []Column, title string) error {
	escapedTitle := html.EscapeString(title)
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
<h1>%s</h1>
<p>%d people</p>
%s
</body>
</html>
`, escapedTitle, htmlStyle, escapedTitle, len(people), renderTable(people, columns))
	return err
}
