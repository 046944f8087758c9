package render

import (
	"html/template"
	"io"

	"github.com/roach88/expertlog/internal/record"
)

// ContentType is the media type of every rendered document.
const ContentType = "text/html; charset=utf-8"

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<table border="1">
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

// table is the data handed to the page template.
type table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Logs writes an HTML document with one row per log, in the given order.
func Logs(w io.Writer, logs []record.ExpertLog) error {
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, l.Cells())
	}
	return page.Execute(w, table{Title: "Expert Logs", Headers: labels(record.LogColumns), Rows: rows})
}

// Camps writes an HTML document with one row per camp, in the given order.
func Camps(w io.Writer, camps []record.ExpertCamp) error {
	rows := make([][]string, 0, len(camps))
	for _, c := range camps {
		rows = append(rows, c.Cells())
	}
	return page.Execute(w, table{Title: "Expert Camps", Headers: labels(record.CampColumns), Rows: rows})
}

func labels(cols []record.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}
