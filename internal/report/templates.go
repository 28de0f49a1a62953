package report

import (
	htmltemplate "html/template"
	"os"
	"path/filepath"
	texttemplate "text/template"
)

// renderFile executes the right template flavor for the file. HTML output
// goes through html/template for escaping; markdown stays text/template.
func renderFile(path, tmpl string, data reportData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if filepath.Ext(path) == ".html" {
		t, err := htmltemplate.New("report").Parse(tmpl)
		if err != nil {
			return err
		}
		return t.Execute(f, data)
	}

	t, err := texttemplate.New("report").Parse(tmpl)
	if err != nil {
		return err
	}
	return t.Execute(f, data)
}

const htmlReport = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Data Quality Report - Weather Collector</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f4f7f6; }
        .container { max-width: 900px; margin: auto; background: white; padding: 25px; border-radius: 8px; }
        h1 { color: #007bff; border-bottom: 2px solid #007bff; padding-bottom: 10px; }
        h2 { color: #333; margin-top: 25px; }
        table { width: 100%; border-collapse: collapse; margin-top: 15px; }
        th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        th { background-color: #f2f2f2; color: #333; }
        .metric-box { background-color: #e9ecef; padding: 15px; border-radius: 6px; margin-bottom: 20px; }
        .success { color: green; font-weight: bold; }
        .failure { color: red; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Weather Collector Data Quality Report</h1>
        <p>Report Generated: {{.GeneratedAt}} (run {{.Runstamp}})</p>

        <h2>Overall Collection Metrics</h2>
        <div class="metric-box">
            <p><strong>Targets Configured:</strong> {{.TargetsConfigured}}</p>
            <p><strong>Targets Attempted:</strong> {{.TargetsAttempted}}</p>
            <p><strong>Records Collected:</strong> {{.RecordsCollected}}</p>
            <p><strong>Total Requests Sent:</strong> {{.RequestsSent}}</p>
            <p><strong>Collection Success Rate:</strong> <span class="{{if gt .SuccessRate 90.0}}success{{else}}failure{{end}}">{{printf "%.2f" .SuccessRate}}%</span></p>
            {{if .Misconfigured}}<p class="failure">No targets were attempted: check the collector configuration.</p>{{end}}
        </div>

        <h2>Quality Assessment Metrics</h2>
        <div class="metric-box">
            <p><strong>Average Composite Quality Score:</strong> {{printf "%.2f" .AverageQuality}}/100</p>
            <p><strong>Issues Logged:</strong> {{len .Issues}}</p>
        </div>

        <h2>Provider Breakdown</h2>
        <table>
            <tr><th>Provider</th><th>Successful Targets</th><th>Failed Attempt Sequences</th></tr>
            {{range .Providers}}<tr><td>{{.Name}}</td><td>{{.Successes}}</td><td>{{.Failures}}</td></tr>
            {{end}}
        </table>

        <h2>Per-Record Quality Details</h2>
        <table>
            <tr><th>#</th><th>Target</th><th>Provider</th><th>Composite Score</th><th>Notes</th></tr>
            {{range .Records}}<tr><td>{{.Index}}</td><td>{{.Target}}</td><td>{{.Provider}}</td><td>{{printf "%.1f" .Score}}/100</td><td>{{.Notes}}</td></tr>
            {{end}}
        </table>

        {{if .HardFailures}}
        <h2>Hard Failures</h2>
        <ul>
            {{range .HardFailures}}<li class="failure">{{.}}</li>
            {{end}}
        </ul>
        {{end}}
    </div>
</body>
</html>
`

const markdownSummary = `# Weather Collector Summary Report

**Run:** {{.Runstamp}}
**Generated:** {{.GeneratedAt}}

## 1. Collection Performance

| Metric | Value |
| :--- | :--- |
| **Targets Configured** | {{.TargetsConfigured}} |
| **Targets Attempted** | {{.TargetsAttempted}} |
| **Records Collected** | {{.RecordsCollected}} |
| **Requests Sent** | {{.RequestsSent}} |
| **Collection Success Rate** | {{printf "%.2f" .SuccessRate}}% |
| **Hard Failures** | {{len .HardFailures}} |
{{if .Misconfigured}}
**Warning:** zero targets were attempted; the collector configuration is empty or invalid.
{{end}}

## 2. Provider Breakdown

| Provider | Successful Targets | Failed Attempt Sequences |
| :--- | :--- | :--- |
{{range .Providers}}| **{{.Name}}** | {{.Successes}} | {{.Failures}} |
{{end}}

## 3. Quality Metrics

- **Average Composite Quality Score:** **{{printf "%.2f" .AverageQuality}}/100**

## 4. Issues Encountered
{{if .Issues}}{{range .Issues}}
- {{.}}{{end}}
{{else}}
- No issues requiring manual intervention were recorded.
{{end}}
`
