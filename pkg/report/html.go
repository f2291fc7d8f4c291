package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/devicelab-dev/reportsections/pkg/dom"
	"github.com/devicelab-dev/reportsections/pkg/jsbridge"
	"github.com/devicelab-dev/reportsections/pkg/logger"
	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath string   // Path to write the HTML file (default: report.html)
	Title      string   // Overrides the definition title
	Collapsed  []string // Extra section ids to start collapsed
	Expanded   []string // Extra section ids to start expanded; wins over Collapsed
	IndexPath  string   // Also write a JSON index here when set
}

// GenerateHTML renders def and writes it to cfg.OutputPath.
func GenerateHTML(def *Definition, cfg HTMLConfig) error {
	if cfg.OutputPath == "" {
		cfg.OutputPath = "report.html"
	}

	doc, err := Render(def, cfg)
	if err != nil {
		return err
	}

	if err := doc.WriteFile(cfg.OutputPath); err != nil {
		return err
	}

	if cfg.IndexPath != "" {
		if err := WriteIndex(cfg.IndexPath, BuildIndex(def, doc, cfg.Title)); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
	}

	logger.Info("wrote report %s with %d sections", cfg.OutputPath, len(def.Sections))
	return nil
}

// Render builds the report document with collapsed sections already hidden.
func Render(def *Definition, cfg HTMLConfig) (*dom.Document, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validate definition: %w", err)
	}

	data := buildHTMLData(def, cfg)

	html, err := renderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	doc, err := dom.Parse(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	tg := visibility.New(doc.ByID())
	for _, id := range initiallyCollapsed(def, cfg) {
		tg.Hide(visibility.ElementID(id))
	}

	return doc, nil
}

// initiallyCollapsed returns the ids of sections that start hidden.
func initiallyCollapsed(def *Definition, cfg HTMLConfig) []string {
	override := make(map[string]bool)
	for _, id := range cfg.Collapsed {
		override[id] = true
	}
	for _, id := range cfg.Expanded {
		override[id] = false
	}

	var ids []string
	for _, sec := range def.Sections {
		collapsed := sec.IsCollapsed()
		if v, ok := override[sec.ID]; ok {
			collapsed = v
		}
		if collapsed {
			ids = append(ids, sec.ID)
		}
	}
	return ids
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title       string
	Build       string
	GeneratedAt string
	Summary     Summary
	PassRate    float64
	Sections    []SectionHTMLData
	Script      template.JS
}

// SectionHTMLData contains section data formatted for HTML.
type SectionHTMLData struct {
	Section
	StatusClass string
	DurationStr string
}

func buildHTMLData(def *Definition, cfg HTMLConfig) HTMLData {
	title := def.Title
	if cfg.Title != "" {
		title = cfg.Title
	}
	if title == "" {
		title = "Build Report"
	}

	sections := make([]SectionHTMLData, len(def.Sections))
	for i, sec := range def.Sections {
		sections[i] = SectionHTMLData{
			Section:     sec,
			StatusClass: string(sec.StatusOrDefault()),
			DurationStr: formatDuration(sec.Duration),
		}
	}

	summary := def.Summarize()
	var passRate float64
	if decided := summary.Passed + summary.Failed; decided > 0 {
		passRate = float64(summary.Passed) / float64(decided) * 100
	}

	return HTMLData{
		Title:       title,
		Build:       def.Build,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Summary:     summary,
		PassRate:    passRate,
		Sections:    sections,
		Script:      template.JS(jsbridge.Script),
	}
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return ""
	}
	d := time.Duration(*ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", *ms)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func renderHTML(data HTMLData) ([]byte, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-primary: #000000;
            --text-muted: rgb(107, 114, 128);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --failed: #ef4444;
            --skipped: #eab308;
            --info: #06b6d4;
        }

        * {
            box-sizing: border-box;
            margin: 0;
            padding: 0;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }

        .header {
            background: var(--bg-secondary);
            border-bottom: 1px solid var(--border-color);
            padding: 16px 24px;
        }

        .header-title-sub,
        .summary,
        .duration {
            color: var(--text-muted);
            font-size: 12px;
        }

        .counts span {
            margin-right: 12px;
        }

        .section {
            border-bottom: 1px solid var(--border-color);
        }

        .section-header {
            cursor: pointer;
            font-size: 15px;
            padding: 10px 24px;
            user-select: none;
        }

        .section-header .dot {
            display: inline-block;
            width: 10px;
            height: 10px;
            border-radius: 50%;
            margin-right: 8px;
            background: var(--info);
        }

        .section.passed .dot { background: var(--passed); }
        .section.failed .dot { background: var(--failed); }
        .section.skipped .dot { background: var(--skipped); }

        .section-body {
            padding: 8px 24px 16px 42px;
        }

        .section-body pre {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            font-size: 12px;
            overflow-x: auto;
            padding: 8px;
        }
    </style>
    <script>
{{.Script}}
    </script>
</head>
<body>
    <div class="header">
        <h1 class="header-title-main">{{.Title}}</h1>
        <div class="header-title-sub">{{if .Build}}Build {{.Build}} &middot; {{end}}Generated {{.GeneratedAt}}</div>
        <div class="counts">
            <span>{{.Summary.Total}} sections</span>
            <span>{{.Summary.Passed}} passed</span>
            <span>{{.Summary.Failed}} failed</span>
            <span>{{.Summary.Skipped}} skipped</span>
            <span>{{printf "%.0f" .PassRate}}% pass rate</span>
        </div>
    </div>
    {{range .Sections}}
    <div class="section {{.StatusClass}}">
        <h2 class="section-header" onclick="toggleElement('{{.ID}}')">
            <span class="dot"></span>{{.Title}}
            {{if .Lines}}<span class="duration">({{len .Lines}})</span>{{end}}
            {{if .DurationStr}}<span class="duration">{{.DurationStr}}</span>{{end}}
        </h2>
        <div id="{{.ID}}" class="section-body" data-section="{{.StatusClass}}">
            {{if .Summary}}<p class="summary">{{.Summary}}</p>{{end}}
            {{if .Lines}}<ul>{{range .Lines}}
                <li>{{.}}</li>{{end}}
            </ul>{{end}}
            {{if .Body}}<pre>{{.Body}}</pre>{{end}}
        </div>
    </div>
    {{end}}
</body>
</html>
`
