/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: html.go
Description: Standalone HTML rendering of an analysis report. Results are listed in rank
order with their properties, followed by the offset-ordered structure map.
*/

package reporting

import (
	"fmt"
	"html/template"
	"io"

	"github.com/kleascm/hexaminer/pkg/core"
)

// reportTemplate is the HTML template for an analysis report
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Source}} - Hexaminer Report</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 2em; color: #333; }
        h1 { border-bottom: 2px solid #667eea; padding-bottom: 0.3em; }
        .meta { color: #666; font-size: 0.9em; }
        .result { border: 1px solid #ddd; border-radius: 6px; padding: 1em; margin: 1em 0; }
        .confidence { float: right; font-weight: bold; color: #764ba2; }
        table { border-collapse: collapse; width: 100%; }
        td, th { border-bottom: 1px solid #eee; padding: 4px 8px; text-align: left; font-family: monospace; }
    </style>
</head>
<body>
    <h1>Analysis Results for {{.Source}}</h1>
    <p class="meta">Session {{.SessionID}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}} &middot; {{.Size}} bytes from offset {{hex .Offset}}</p>
{{range .Results}}
    <div class="result">
        <span class="confidence">{{percent .Confidence}}</span>
        <h2>{{.AnalyzerName}}</h2>
        <p>Data Type: {{.DataType}}</p>
        {{if .Properties.Len}}<table>
            {{$props := .Properties}}{{range $props.Keys}}<tr><th>{{.}}</th><td>{{prop $props .}}</td></tr>
            {{end}}
        </table>{{end}}
    </div>
{{else}}
    <p>No analyzer recognised the data.</p>
{{end}}
{{if .Structures}}
    <h2>Structures</h2>
    <table>
        <tr><th>Offset</th><th>Size</th><th>Name</th><th>Type</th></tr>
        {{range .Structures}}<tr><td>{{hex .Offset}}</td><td>{{.Size}}</td><td>{{.Name}}</td><td>{{.Type}}</td></tr>
        {{end}}
    </table>
{{end}}
</body>
</html>
`

var reportFuncs = template.FuncMap{
	"hex": func(v int64) string {
		return fmt.Sprintf("0x%X", v)
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v*100)
	},
	"prop": func(props *core.Properties, key string) string {
		v, _ := props.Get(key)
		return v.String()
	},
}

var htmlTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

// RenderHTML writes the report as a standalone HTML page
func RenderHTML(w io.Writer, report *Report) error {
	if err := htmlTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
