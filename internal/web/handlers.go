package web

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/ops"
)

// maxBodyBytes bounds JSON and multipart request bodies.
const maxBodyBytes = ops.MaxUploadBytes + 64<<10

// Handlers contains HTTP route handlers for the API and report page.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	jobs     *ops.JobRunner
	renderer *Renderer
}

// analysisRequest is the body of POST /api/analysis/heuristics and /api/analysis/llm.
type analysisRequest struct {
	PromptID string `json:"prompt_id"`
}

// updateRequest is the body of PUT /api/prompts/{id}.
type updateRequest struct {
	Content string `json:"content"`
}

// heuristicResponse wraps a heuristic result.
type heuristicResponse struct {
	Analysis any `json:"analysis"`
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleReport handles GET /, the scored report for the loaded document.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := ops.Report(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, "report", reportView(rep, h.cfg.Label, h.renderer.version))
}

// HandleParseUpload handles POST /api/prompts/parse, a multipart upload in field "file".
func (h *Handlers) HandleParseUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		renderAPIError(w, bodyError(err, "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		renderAPIError(w, errors.NewInvalidRequest("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		renderAPIError(w, bodyError(err, "failed to read upload"))
		return
	}

	out, err := ops.ParseUpload(r.Context(), h.db, header.Filename, data)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleParseText handles POST /api/prompts/parse/text.
func (h *Handlers) HandleParseText(w http.ResponseWriter, r *http.Request) {
	var input ops.ParseInput
	if err := decodeBody(w, r, &input); err != nil {
		renderAPIError(w, err)
		return
	}

	out, err := ops.ParseText(r.Context(), h.db, input)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleListPrompts handles GET /api/prompts.
func (h *Handlers) HandleListPrompts(w http.ResponseWriter, r *http.Request) {
	out, err := ops.List(r.Context(), h.db)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out.Prompts)
}

// HandleInline handles POST /api/prompts/inline.
func (h *Handlers) HandleInline(w http.ResponseWriter, r *http.Request) {
	var input ops.InlineInput
	if err := decodeBody(w, r, &input); err != nil {
		renderAPIError(w, err)
		return
	}

	p, err := ops.CreateInline(r.Context(), h.db, input)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

// HandleExport handles POST /api/prompts/export.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var input ops.ExportInput
	if err := decodeBody(w, r, &input); err != nil {
		renderAPIError(w, err)
		return
	}

	out, err := ops.Export(r.Context(), h.db, h.cfg, input)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleGetPrompt handles GET /api/prompts/{id}.
func (h *Handlers) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := ops.Get(r.Context(), h.db, chi.URLParam(r, "id"))
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

// HandleUpdatePrompt handles PUT /api/prompts/{id}.
func (h *Handlers) HandleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var body updateRequest
	if err := decodeBody(w, r, &body); err != nil {
		renderAPIError(w, err)
		return
	}

	p, err := ops.Update(r.Context(), h.db, ops.UpdateInput{ID: chi.URLParam(r, "id"), Content: body.Content})
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

// HandleRunHeuristics handles POST /api/analysis/heuristics.
func (h *Handlers) HandleRunHeuristics(w http.ResponseWriter, r *http.Request) {
	var body analysisRequest
	if err := decodeBody(w, r, &body); err != nil {
		renderAPIError(w, err)
		return
	}

	res, err := ops.RunHeuristics(r.Context(), h.db, h.cfg, body.PromptID)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, heuristicResponse{Analysis: res})
}

// HandleGetHeuristics handles GET /api/analysis/heuristics/{id}.
func (h *Handlers) HandleGetHeuristics(w http.ResponseWriter, r *http.Request) {
	res, err := ops.GetHeuristics(r.Context(), h.db, h.cfg, chi.URLParam(r, "id"))
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, heuristicResponse{Analysis: res})
}

// HandleStartLLM handles POST /api/analysis/llm.
func (h *Handlers) HandleStartLLM(w http.ResponseWriter, r *http.Request) {
	var body analysisRequest
	if err := decodeBody(w, r, &body); err != nil {
		renderAPIError(w, err)
		return
	}

	job, err := h.jobs.StartLLMAnalysis(r.Context(), body.PromptID)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusAccepted, job)
}

// HandleLLMStatus handles GET /api/analysis/llm/{jobID}/status.
func (h *Handlers) HandleLLMStatus(w http.ResponseWriter, r *http.Request) {
	out, err := ops.LLMStatus(r.Context(), h.db, chi.URLParam(r, "jobID"))
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleLLMResult handles GET /api/analysis/llm/{promptID}/result.
func (h *Handlers) HandleLLMResult(w http.ResponseWriter, r *http.Request) {
	out, err := ops.LLMResult(r.Context(), h.db, chi.URLParam(r, "promptID"))
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleSuggest handles POST /api/analysis/suggestions.
func (h *Handlers) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var input ops.SuggestInput
	if err := decodeBody(w, r, &input); err != nil {
		renderAPIError(w, err)
		return
	}

	// Suggestions are synchronous; the analyzer lookup reports LLM_UNAVAILABLE.
	analyzer, err := h.jobs.Analyzer()
	if err != nil {
		renderAPIError(w, err)
		return
	}

	s, err := ops.Suggest(r.Context(), h.db, analyzer, input)
	if err != nil {
		renderAPIError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, s)
}

// decodeBody decodes a JSON request body into dst. Unknown fields are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return errors.NewInvalidRequest("request body is required")
		}
		return bodyError(err, "invalid JSON body")
	}
	return nil
}

// bodyError maps request body read failures to INVALID_REQUEST.
func bodyError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return errors.NewInvalidRequest(fmt.Sprintf("%s: %v", msg, err))
}

// notFoundRoute reports an unknown API path.
func notFoundRoute(r *http.Request) error {
	return errors.NewNotFound("route", r.Method+" "+r.URL.Path)
}
