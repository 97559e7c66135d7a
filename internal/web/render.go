package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/ops"
)

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes an error response as a JSON envelope, mapping known
// error codes to their HTTP status.
func renderError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternal(err)
	}
	if appErr.Status >= 500 {
		log.Error().Err(err).Msg("request failed")
	}

	renderJSON(w, appErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(appErr.Code),
			"message": appErr.Message,
			"status":  appErr.Status,
		},
	})
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// decisionRow is the template data for one decision log entry.
type decisionRow struct {
	ID        int64
	Rendered  template.HTML
	Source    string
	SourceRef string
	Dangling  bool
	Created   string
}

// decisionsPageData is the template data for the decision log page.
type decisionsPageData struct {
	Title string
	Rows  []decisionRow
}

var decisionsTmpl = template.Must(template.New("decisions").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; color: #1f2937; }
.decision { border-bottom: 1px solid #e5e7eb; padding: 1rem 0; }
.meta { color: #6b7280; font-size: 0.85rem; }
.dangling { color: #9ca3af; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if not .Rows}}<p class="meta">No decisions recorded yet.</p>{{end}}
{{range .Rows}}
<div class="decision">
<div>{{.Rendered}}</div>
<div class="meta">
{{if .Source}}{{.Source}} &middot; {{end}}{{.Created}}
{{if .SourceRef}}{{if .Dangling}}<span class="dangling">(source comment deleted)</span>{{else}}&middot; from {{.SourceRef}}{{end}}{{end}}
</div>
</div>
{{end}}
</body>
</html>
`))

// renderDecisionsPage renders the decision log as HTML. Decisions whose
// source comment was deleted show a placeholder instead of a broken link.
func renderDecisionsPage(w http.ResponseWriter, views []ops.DecisionView) {
	rows := make([]decisionRow, 0, len(views))
	for _, v := range views {
		row := decisionRow{
			ID:       v.ID,
			Rendered: renderMarkdown(v.NoteText),
			Created:  formatTime(v.CreatedAt),
		}
		if v.Source != nil {
			row.Source = *v.Source
		}
		if v.CommentID != nil {
			row.SourceRef = "comment #" + itoa64(*v.CommentID)
			row.Dangling = !v.CommentExists
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := decisionsTmpl.Execute(&buf, decisionsPageData{Title: "Decision Log", Rows: rows}); err != nil {
		log.Error().Err(err).Msg("decision page render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
