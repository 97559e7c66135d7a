package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pagemark/pagemark/internal/canvas"
	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
	"github.com/pagemark/pagemark/internal/ops"
	"github.com/pagemark/pagemark/internal/screenshot"
)

// Handlers contains HTTP route handlers for the feedback API.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config

	// shots is nil when no screenshot service is configured.
	shots *screenshot.Client
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandlePreflight handles CORS preflight for the widget surface.
func (h *Handlers) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	widgetCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit handles POST /api/feedback: new feedback submission from the
// widget (widget key) or the portal (token).
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	widgetCORS(w)

	var body struct {
		WidgetKey     string                    `json:"widgetKey"`
		Token         string                    `json:"token"`
		URL           string                    `json:"url"`
		ImageData     string                    `json:"imageData"`
		Annotations   []feedback.TextAnnotation `json:"textAnnotations"`
		SubmitterName string                    `json:"submitterName"`
		ProjectID     *int64                    `json:"projectId"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	widgetKey := body.WidgetKey
	if widgetKey == "" {
		widgetKey = r.Header.Get("X-Widget-Key")
	}
	token := body.Token
	if token == "" {
		token = bearerToken(r)
	}

	out, err := ops.Submit(h.db, ops.SubmitInput{
		Token:         token,
		WidgetKey:     widgetKey,
		URL:           body.URL,
		ImageData:     body.ImageData,
		Annotations:   body.Annotations,
		SubmitterName: body.SubmitterName,
		ProjectID:     body.ProjectID,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, out)
}

// HandleCapture handles POST /api/capture: the portal flow. The portal draws
// client-side and ships the element list; the server replays it over a fresh
// screenshot of the page and submits the composed result.
func (h *Handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token                string           `json:"token"`
		URL                  string           `json:"url"`
		Width                int              `json:"width"`
		Height               int              `json:"height"`
		Elements             []canvas.Element `json:"elements"`
		OpaqueTextBackground bool             `json:"opaqueTextBackground"`
		SubmitterName        string           `json:"submitterName"`
		ProjectID            *int64           `json:"projectId"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	token := body.Token
	if token == "" {
		token = bearerToken(r)
	}

	session, err := canvas.ReplaySession(body.Width, body.Height, body.Elements, body.OpaqueTextBackground)
	if err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.Capture(r.Context(), h.db, h.shots, h.cfg, ops.CaptureInput{
		Token:         token,
		URL:           body.URL,
		Session:       session,
		SubmitterName: body.SubmitterName,
		ProjectID:     body.ProjectID,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, out)
}

// HandleList handles GET /api/comments: filtered comment listing.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Token:         bearerToken(r),
		Status:        q.Get("status"),
		Priority:      q.Get("priority"),
		Assignee:      q.Get("assignee"),
		ExcludeImages: parseBoolParam(r, "excludeImages"),
		Limit:         parseIntParam(r, "limit", 0),
		Offset:        parseIntParam(r, "offset", 0),
	}
	if pid := q.Get("projectId"); pid != "" {
		id, err := strconv.ParseInt(pid, 10, 64)
		if err != nil {
			renderError(w, errors.NewInvalidRequest("projectId must be an integer"))
			return
		}
		input.ProjectID = &id
	}

	out, err := ops.List(h.db, input)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleImage handles GET /api/comments/{id}/image: single image payload.
func (h *Handlers) HandleImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.FetchImage(h.db, ops.FetchImageInput{Token: bearerToken(r), ID: id})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleImages handles POST /api/comments/images: bounded batch image fetch.
func (h *Handlers) HandleImages(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.FetchImages(h.db, h.cfg, ops.FetchImagesInput{
		Token: bearerToken(r),
		IDs:   body.IDs,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleStatus handles PATCH /api/comments/{id}/status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.SetStatus(h.db, ops.SetStatusInput{
		Token:  bearerToken(r),
		ID:     id,
		Status: body.Status,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandlePriority handles PATCH /api/comments/{id}/priority.
func (h *Handlers) HandlePriority(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Priority       string `json:"priority"`
		PriorityNumber int    `json:"priority_number"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.SetPriority(h.db, ops.SetPriorityInput{
		Token:          bearerToken(r),
		ID:             id,
		Priority:       body.Priority,
		PriorityNumber: body.PriorityNumber,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleAssignee handles PATCH /api/comments/{id}/assignee.
func (h *Handlers) HandleAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Assignee string `json:"assignee"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.SetAssignee(h.db, ops.SetAssigneeInput{
		Token:    bearerToken(r),
		ID:       id,
		Assignee: body.Assignee,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleNote handles POST /api/comments/{id}/notes: append a text note.
func (h *Handlers) HandleNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Text  string  `json:"text"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Color string  `json:"color"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.AddNote(h.db, ops.AddNoteInput{
		Token: bearerToken(r),
		ID:    id,
		Text:  body.Text,
		X:     body.X,
		Y:     body.Y,
		Color: body.Color,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, out)
}

// HandleBulkPriority handles POST /api/comments/priorities: transactional
// batch of priority_number rewrites.
func (h *Handlers) HandleBulkPriority(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Updates []db.PriorityNumberUpdate `json:"updates"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.BulkPriority(r.Context(), h.db, ops.BulkPriorityInput{
		Token:   bearerToken(r),
		Updates: body.Updates,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/comments/{id}: permanent delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.Delete(h.db, ops.DeleteInput{Token: bearerToken(r), ID: id})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandlePromoteDecision handles POST /api/decisions.
func (h *Handlers) HandlePromoteDecision(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text      string  `json:"text"`
		Source    *string `json:"source"`
		CommentID *int64  `json:"commentId"`
		NoteIndex *int    `json:"noteIndex"`
		ProjectID *int64  `json:"projectId"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.PromoteDecision(h.db, ops.PromoteDecisionInput{
		Token:     bearerToken(r),
		Text:      body.Text,
		Source:    body.Source,
		CommentID: body.CommentID,
		NoteIndex: body.NoteIndex,
		ProjectID: body.ProjectID,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, out)
}

// HandleListDecisions handles GET /api/decisions.
func (h *Handlers) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	input := ops.ListDecisionsInput{Token: bearerToken(r)}
	if pid := r.URL.Query().Get("projectId"); pid != "" {
		id, err := strconv.ParseInt(pid, 10, 64)
		if err != nil {
			renderError(w, errors.NewInvalidRequest("projectId must be an integer"))
			return
		}
		input.ProjectID = &id
	}

	out, err := ops.ListDecisions(h.db, input)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleUpdateDecision handles PATCH /api/decisions/{id}.
func (h *Handlers) HandleUpdateDecision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Text   string  `json:"text"`
		Source *string `json:"source"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.UpdateDecision(h.db, ops.UpdateDecisionInput{
		Token:  bearerToken(r),
		ID:     id,
		Text:   body.Text,
		Source: body.Source,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleDeleteDecision handles DELETE /api/decisions/{id}.
func (h *Handlers) HandleDeleteDecision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.DeleteDecision(h.db, ops.DeleteDecisionInput{Token: bearerToken(r), ID: id})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleGetSettings handles GET /api/settings: dashboard view.
func (h *Handlers) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	out, err := ops.GetSettings(h.db, ops.GetSettingsInput{Token: bearerToken(r)})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleWidgetSettings handles GET /api/widget/settings: public widget view,
// identified by widget key.
func (h *Handlers) HandleWidgetSettings(w http.ResponseWriter, r *http.Request) {
	widgetCORS(w)

	widgetKey := r.Header.Get("X-Widget-Key")
	if widgetKey == "" {
		widgetKey = r.URL.Query().Get("widgetKey")
	}

	out, err := ops.GetSettings(h.db, ops.GetSettingsInput{WidgetKey: widgetKey})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleUpdateSettings handles PUT /api/settings.
func (h *Handlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body feedback.WidgetSettings
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.UpdateSettings(h.db, ops.UpdateSettingsInput{
		Token:    bearerToken(r),
		Settings: body,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleListProjects handles GET /api/projects.
func (h *Handlers) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListProjects(h.db, ops.ListProjectsInput{Token: bearerToken(r)})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleCreateProject handles POST /api/projects.
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.CreateProject(h.db, ops.CreateProjectInput{
		Token: bearerToken(r),
		Name:  body.Name,
		URL:   body.URL,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, out)
}

// HandleListAssignees handles GET /api/assignees.
func (h *Handlers) HandleListAssignees(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListAssignees(h.db, ops.ListAssigneesInput{Token: bearerToken(r)})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleCreateAssignee handles POST /api/assignees.
func (h *Handlers) HandleCreateAssignee(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.CreateAssignee(h.db, ops.CreateAssigneeInput{
		Token: bearerToken(r),
		Name:  body.Name,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, out)
}

// HandleWidgetScript handles GET /widget.js: the embed loader.
func (h *Handlers) HandleWidgetScript(w http.ResponseWriter, r *http.Request) {
	widgetCORS(w)

	script, err := widgetJS.ReadFile("static/widget.js")
	if err != nil {
		renderError(w, errors.NewInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(script)
}

// HandleDecisionsPage handles GET /decisions: the HTML decision log.
func (h *Handlers) HandleDecisionsPage(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	out, err := ops.ListDecisions(h.db, ops.ListDecisionsInput{Token: token})
	if err != nil {
		renderError(w, err)
		return
	}

	renderDecisionsPage(w, out.Decisions)
}

// decodeBody decodes a JSON request body.
func decodeBody(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return errors.NewInvalidRequest("invalid JSON body")
	}
	return nil
}

// bearerToken extracts the access token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("id must be a positive integer")
	}
	return id, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// itoa64 formats an int64 for display.
func itoa64(id int64) string {
	return strconv.FormatInt(id, 10)
}
