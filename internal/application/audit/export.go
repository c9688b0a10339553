package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/uxlens/backend/internal/domain/audit"
)

// Export formats
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// Exporter renders a stored audit into a downloadable document. All
// model-derived and user-derived text goes through html/template, so every
// field is escaped.
type Exporter struct {
	tmpl *template.Template
}

// NewExporter creates a new Exporter
func NewExporter() *Exporter {
	return &Exporter{
		tmpl: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// Export renders the record in the requested format. Unknown formats are
// an error; the handler validates them first.
func (e *Exporter) Export(rec *audit.Record, format string) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		data, err := e.exportJSON(rec)
		return data, "application/json", err
	case FormatHTML:
		data, err := e.exportHTML(rec)
		return data, "text/html; charset=utf-8", err
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func (e *Exporter) exportJSON(rec *audit.Record) ([]byte, error) {
	doc := exportDocument{
		AuditID:   rec.ID.String(),
		PageType:  rec.PageType.String(),
		TargetURL: rec.TargetURL,
		ImageURL:  rec.ImageURL,
		State:     rec.State.String(),
		CreatedAt: rec.CreatedAt,
		Report:    rec.Report,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (e *Exporter) exportHTML(rec *audit.Record) ([]byte, error) {
	var buf bytes.Buffer
	data := htmlData{
		AuditID:   rec.ID.String(),
		PageType:  rec.PageType.String(),
		TargetURL: rec.TargetURL,
		State:     rec.State.String(),
		Degraded:  rec.State.Degraded(),
		CreatedAt: rec.CreatedAt.Format("January 2, 2006"),
		Report:    rec.Report,
	}
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

type exportDocument struct {
	AuditID   string        `json:"audit_id"`
	PageType  string        `json:"page_type"`
	TargetURL string        `json:"target_url,omitempty"`
	ImageURL  string        `json:"image_url,omitempty"`
	State     string        `json:"analysis_state"`
	CreatedAt time.Time     `json:"created_at"`
	Report    *audit.Report `json:"report"`
}

type htmlData struct {
	AuditID   string
	PageType  string
	TargetURL string
	State     string
	Degraded  bool
	CreatedAt string
	Report    *audit.Report
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>UX Audit Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #1a202c; }
h1 { font-size: 1.6rem; } h2 { font-size: 1.2rem; margin-top: 2rem; }
.score { font-size: 2.4rem; font-weight: 700; }
.meta { color: #718096; font-size: 0.85rem; }
.issue { border: 1px solid #e2e8f0; border-radius: 8px; padding: 1rem; margin: 1rem 0; }
.severity { text-transform: lowercase; font-size: 0.8rem; color: #718096; }
.degraded { background: #fffbea; border: 1px solid #ecc94b; border-radius: 8px; padding: 0.75rem; }
ul { padding-left: 1.2rem; }
</style>
</head>
<body>
<h1>UX Audit Report</h1>
<p class="meta">{{.PageType}} page{{if .TargetURL}} &middot; {{.TargetURL}}{{end}} &middot; {{.CreatedAt}} &middot; {{.AuditID}}</p>
{{if .Degraded}}<p class="degraded">This report was generated from the standing review checklist. A complete analysis was not available for this request.</p>{{end}}
<p class="score">{{.Report.UXScore}}/100</p>

<h2>Top priorities</h2>
<ul>
{{range .Report.Summary.Priorities}}<li>{{.}}</li>
{{end}}</ul>
{{if .Report.Summary.Notes}}<p>{{.Report.Summary.Notes}}</p>{{end}}

<h2>Issues</h2>
{{range .Report.Issues}}<div class="issue">
<h3>{{.Title}} <span class="severity">{{.Severity}} &middot; {{.Category}}</span></h3>
<p>{{.Problem}}</p>
{{if .Evidence}}<p><em>{{.Evidence}}</em></p>{{end}}
<ul>
{{range .Recommendations}}<li>{{.}}</li>
{{end}}</ul>
<p>{{.ExpectedImpact}}</p>
</div>
{{end}}

<h2>Quick wins</h2>
<ul>
{{range .Report.QuickWins}}<li><strong>{{.Title}}</strong> &mdash; {{.Detail}}</li>
{{end}}</ul>

<h2>Next steps</h2>
<ul>
{{range .Report.NextSteps}}<li>{{.}}</li>
{{end}}</ul>
{{if .Report.WhyThisMatters}}<h2>Why this matters</h2>
<p>{{.Report.WhyThisMatters}}</p>{{end}}
</body>
</html>
`
