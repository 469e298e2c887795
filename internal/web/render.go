package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
}

// ReportPageData is the template data for the report page.
type ReportPageData struct {
	PageData
	Filename     string
	AverageScore int
	AverageLabel string
	Entries      []ReportEntryView
}

// ReportEntryView is one prompt on the report page.
type ReportEntryView struct {
	ops.ReportEntry
	RenderedHTML template.HTML
	Dimensions   []DimensionView
}

// DimensionView is one dimension row on the report page.
type DimensionView struct {
	Name  string
	Title string
	heuristics.DimensionScore
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"formatChars": formatChars,
		"deref":       deref,
		"hasValue":    hasValue,
		"scoreClass":  scoreClass,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"report": "report.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Error().Str("template", name).Msg("template not found")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("template execution error")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error for a page request, with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	eErr := errors.As(err)

	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		renderAPIError(w, eErr)
		return
	}

	r.renderPageStatus(w, eErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", eErr.Status),
			Version: r.version,
		},
		StatusCode: eErr.Status,
		Message:    eErr.Message,
	})
}

// renderAPIError writes {"error": {"code", "message", "status"}}.
func renderAPIError(w http.ResponseWriter, err error) {
	eErr := errors.As(err)
	if eErr.Code == errors.ErrInternal {
		log.Error().Err(err).Msg("internal error")
	}
	renderJSON(w, eErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(eErr.Code),
			"message": eErr.Message,
			"status":  eErr.Status,
		},
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is omitted (goldmark's default).
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// reportView converts a report into page data.
func reportView(rep *ops.ReportOutput, label func(int) string, version string) ReportPageData {
	data := ReportPageData{
		PageData:     PageData{Title: "Report", Version: version},
		Filename:     rep.Filename,
		AverageScore: rep.AverageScore,
		AverageLabel: label(rep.AverageScore),
		Entries:      make([]ReportEntryView, 0, len(rep.Entries)),
	}
	if rep.Filename != "" {
		data.Title = rep.Filename
	}

	for _, e := range rep.Entries {
		view := ReportEntryView{ReportEntry: e, RenderedHTML: renderMarkdown(e.Prompt.Content)}
		for _, name := range heuristics.Dimensions {
			view.Dimensions = append(view.Dimensions, DimensionView{
				Name:           name,
				Title:          heuristics.DimensionTitle(name),
				DimensionScore: *e.Result.Dimension(name),
			})
		}
		data.Entries = append(data.Entries, view)
	}
	return data
}

// scoreClass maps a score to a CSS class.
func scoreClass(score int) string {
	switch {
	case score >= 80:
		return "score-high"
	case score >= 60:
		return "score-mid"
	default:
		return "score-low"
	}
}

// formatChars formats an integer with comma thousands separators.
func formatChars(n int) string {
	if n < 0 {
		return "-" + formatChars(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// deref dereferences a pointer, returning the zero value if nil.
func deref(v any) any {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Zero(rv.Type().Elem()).Interface()
		}
		return rv.Elem().Interface()
	}
	return v
}

// hasValue checks if a pointer value is non-nil.
func hasValue(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return !rv.IsNil()
	}
	return true
}
