package report

import (
	"html/template"
	"io"
	"time"

	"github.com/matzehuels/debgems/pkg/deps"
)

// Page is the data behind the HTML status page.
type Page struct {
	App       string
	Generated time.Time
	Summary   Summary
	Records   []*deps.Record
}

var pageTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.App}}: Debian packaging status</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: left; }
.progress { background: #eee; width: 100%; height: 1.5em; margin: 1em 0; }
.progress div { background: #4caf50; height: 100%; color: #fff; text-align: center; }
.green { background: #c8e6c9; }
.yellow { background: #fff59d; }
.blue { background: #bbdefb; }
.cyan { background: #b2ebf2; }
.red { background: #ffcdd2; }
.violet { background: #e1bee7; }
</style>
</head>
<body>
<h1>{{.App}}</h1>
<p>{{.Summary.Packaged}} packaged, {{.Summary.ITP}} ITP, {{.Summary.Unpackaged}} unpackaged of {{.Summary.Total}} gems.</p>
<div class="progress"><div style="width: {{.Summary.Percent}}%">{{.Summary.Percent}}%</div></div>
<table>
<tr><th>Gem</th><th>Requirement</th><th>Debian package</th><th>Version</th><th>Suite</th><th>Required by</th></tr>
{{- range .Records}}
<tr class="{{.Color}}">
<td>{{.Name}}</td>
<td>{{.Requirement}}</td>
<td>{{if .Link}}<a href="{{.Link}}">{{.DebianName}}</a>{{else}}{{.DebianName}}{{end}}</td>
<td>{{.Version}}</td>
<td>{{.Suite}}</td>
<td>{{range $i, $p := .Parents}}{{if $i}}, {{end}}{{$p}}{{end}}</td>
</tr>
{{- end}}
</table>
<p><small>Generated {{.Generated.Format "2006-01-02 15:04 MST"}}</small></p>
</body>
</html>
`))

// NewPage builds the page data for set.
func NewPage(app string, set *deps.WorkingSet) Page {
	return Page{
		App:       app,
		Generated: time.Now().UTC(),
		Summary:   Summarize(set),
		Records:   set.Records(),
	}
}

// WriteHTML renders the status page for set.
func WriteHTML(w io.Writer, app string, set *deps.WorkingSet) error {
	return RenderPage(w, NewPage(app, set))
}

// RenderPage renders p.
func RenderPage(w io.Writer, p Page) error {
	return pageTemplate.Execute(w, p)
}
