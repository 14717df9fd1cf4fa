package display

import (
	"html/template"
	"io"

	"github.com/CarlColglazier/frc-elo/internal/core/rating"
)

// EventSection is one event's per-event ranking: the teams that appeared
// there, ordered by current rating.
type EventSection struct {
	ID    string
	Name  string
	Teams []TeamRow
}

// WeekSection groups a season week's events.
type WeekSection struct {
	Week   int
	Events []EventSection
}

// Page is the full rendered ranking page.
type Page struct {
	Year     int
	Overall  []TeamRow
	Weeks    []WeekSection
	Accuracy rating.Accuracy
}

var pageTemplate = template.Must(template.New("rankings").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>FRC Elo ratings {{.Year}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
td, th { border: 1px solid #ccc; padding: 0.25em 0.75em; text-align: left; }
th { background: #eee; }
footer { color: #666; font-size: 0.9em; }
</style>
</head>
<body>
<h1>FRC Elo ratings {{.Year}}</h1>

<h2>Overall</h2>
<table>
<tr><th>Rank</th><th>Team</th><th>Elo</th></tr>
{{range .Overall}}<tr><td>{{.Rank}}</td><td>{{.Team}}</td><td>{{printf "%.1f" .Rating}}</td></tr>
{{end}}</table>

{{range .Weeks}}
<h2>Week {{.Week}}</h2>
{{range .Events}}
<h3>{{.Name}} ({{.ID}})</h3>
<table>
<tr><th>Rank</th><th>Team</th><th>Elo</th></tr>
{{range .Teams}}<tr><td>{{.Rank}}</td><td>{{.Team}}</td><td>{{printf "%.1f" .Rating}}</td></tr>
{{end}}</table>
{{end}}
{{end}}

<footer>
{{if .Accuracy.Total}}Brier {{printf "%.4f" .Accuracy.BrierMean}} ·
BSS {{printf "%.4f" .Accuracy.BSS}} ·
{{.Accuracy.WinsCorrect}}/{{.Accuracy.Total}} winners called{{end}}
</footer>
</body>
</html>
`))

// WriteHTML renders the ranking page.
func WriteHTML(w io.Writer, page Page) error {
	return pageTemplate.Execute(w, page)
}
