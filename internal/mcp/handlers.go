package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// ListRequest represents the arguments for comment_list.
type ListRequest struct {
	Token         string `json:"token"`
	ProjectID     *int64 `json:"project_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Priority      string `json:"priority,omitempty"`
	Assignee      string `json:"assignee,omitempty"`
	IncludeImages bool   `json:"include_images,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// ImageRequest represents the arguments for comment_image.
type ImageRequest struct {
	Token string `json:"token"`
	ID    int64  `json:"id"`
}

// StatusRequest represents the arguments for comment_status.
type StatusRequest struct {
	Token  string `json:"token"`
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// PriorityRequest represents the arguments for comment_priority.
type PriorityRequest struct {
	Token          string `json:"token"`
	ID             int64  `json:"id"`
	Priority       string `json:"priority"`
	PriorityNumber int    `json:"priority_number,omitempty"`
}

// PriorityBulkRequest represents the arguments for comment_priority_bulk.
type PriorityBulkRequest struct {
	Token   string                    `json:"token"`
	Updates []db.PriorityNumberUpdate `json:"updates"`
}

// AssigneeRequest represents the arguments for comment_assignee.
type AssigneeRequest struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Assignee string `json:"assignee,omitempty"`
}

// NoteRequest represents the arguments for comment_note.
type NoteRequest struct {
	Token string  `json:"token"`
	ID    int64   `json:"id"`
	Text  string  `json:"text"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Color string  `json:"color,omitempty"`
}

// DeleteRequest represents the arguments for comment_delete.
type DeleteRequest struct {
	Token string `json:"token"`
	ID    int64  `json:"id"`
}

// PromoteRequest represents the arguments for decision_promote.
type PromoteRequest struct {
	Token     string  `json:"token"`
	Text      string  `json:"text"`
	Source    *string `json:"source,omitempty"`
	CommentID *int64  `json:"comment_id,omitempty"`
	NoteIndex *int    `json:"note_index,omitempty"`
	ProjectID *int64  `json:"project_id,omitempty"`
}

// DecisionListRequest represents the arguments for decision_list.
type DecisionListRequest struct {
	Token     string `json:"token"`
	ProjectID *int64 `json:"project_id,omitempty"`
}

// DecisionUpdateRequest represents the arguments for decision_update.
type DecisionUpdateRequest struct {
	Token  string  `json:"token"`
	ID     int64   `json:"id"`
	Text   string  `json:"text"`
	Source *string `json:"source,omitempty"`
}

// DecisionDeleteRequest represents the arguments for decision_delete.
type DecisionDeleteRequest struct {
	Token string `json:"token"`
	ID    int64  `json:"id"`
}

// Handler implementations

// HandleList handles the comment_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(h.db, ops.ListInput{
		Token:         input.Token,
		ProjectID:     input.ProjectID,
		Status:        input.Status,
		Priority:      input.Priority,
		Assignee:      input.Assignee,
		ExcludeImages: !input.IncludeImages,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImage handles the comment_image tool call.
func (h *Handlers) HandleImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImageRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.FetchImage(h.db, ops.FetchImageInput{Token: input.Token, ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the comment_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SetStatus(h.db, ops.SetStatusInput{
		Token:  input.Token,
		ID:     input.ID,
		Status: input.Status,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePriority handles the comment_priority tool call.
func (h *Handlers) HandlePriority(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PriorityRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SetPriority(h.db, ops.SetPriorityInput{
		Token:          input.Token,
		ID:             input.ID,
		Priority:       input.Priority,
		PriorityNumber: input.PriorityNumber,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePriorityBulk handles the comment_priority_bulk tool call.
func (h *Handlers) HandlePriorityBulk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PriorityBulkRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.BulkPriority(ctx, h.db, ops.BulkPriorityInput{
		Token:   input.Token,
		Updates: input.Updates,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAssignee handles the comment_assignee tool call.
func (h *Handlers) HandleAssignee(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AssigneeRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SetAssignee(h.db, ops.SetAssigneeInput{
		Token:    input.Token,
		ID:       input.ID,
		Assignee: input.Assignee,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNote handles the comment_note tool call.
func (h *Handlers) HandleNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddNote(h.db, ops.AddNoteInput{
		Token: input.Token,
		ID:    input.ID,
		Text:  input.Text,
		X:     input.X,
		Y:     input.Y,
		Color: input.Color,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the comment_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(h.db, ops.DeleteInput{Token: input.Token, ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePromote handles the decision_promote tool call.
func (h *Handlers) HandlePromote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PromoteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.PromoteDecision(h.db, ops.PromoteDecisionInput{
		Token:     input.Token,
		Text:      input.Text,
		Source:    input.Source,
		CommentID: input.CommentID,
		NoteIndex: input.NoteIndex,
		ProjectID: input.ProjectID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDecisionList handles the decision_list tool call.
func (h *Handlers) HandleDecisionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DecisionListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListDecisions(h.db, ops.ListDecisionsInput{
		Token:     input.Token,
		ProjectID: input.ProjectID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDecisionUpdate handles the decision_update tool call.
func (h *Handlers) HandleDecisionUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DecisionUpdateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.UpdateDecision(h.db, ops.UpdateDecisionInput{
		Token:  input.Token,
		ID:     input.ID,
		Text:   input.Text,
		Source: input.Source,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDecisionDelete handles the decision_delete tool call.
func (h *Handlers) HandleDecisionDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DecisionDeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DeleteDecision(h.db, ops.DeleteDecisionInput{Token: input.Token, ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if appErr, ok := err.(*errors.AppError); ok {
		errorObj := map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
			"status":  appErr.Status,
		}
		if appErr.Code != errors.ErrInternal && appErr.Details != nil {
			errorObj["details"] = appErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
