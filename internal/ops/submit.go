package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// SubmitInput contains parameters for the Submit operation.
type SubmitInput struct {
	// Identification: exactly one of Token (portal flow) or WidgetKey
	// (public embed).
	Token     string
	WidgetKey string

	URL           string
	ImageData     string
	Annotations   []feedback.TextAnnotation
	SubmitterName string

	// ProjectID optionally pins the target project (portal flow only);
	// widget submissions resolve the project from the URL origin.
	ProjectID *int64
}

// SubmitOutput contains the result of the Submit operation.
type SubmitOutput struct {
	ID          int64  `json:"id"`
	PageSection string `json:"page_section"`
}

// Submit validates identification, resolves the owning tenant and project,
// and persists a new comment.
func Submit(database *sql.DB, input SubmitInput) (*SubmitOutput, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}
	if input.ImageData == "" {
		return nil, errors.NewInvalidRequest("imageData is required")
	}
	if !strings.HasPrefix(input.ImageData, "data:image/") {
		return nil, errors.NewInvalidRequest("imageData must be an image data URI")
	}

	client, err := ResolveClient(database, input.Token, input.WidgetKey)
	if err != nil {
		return nil, err
	}

	var project *feedback.Project
	if input.WidgetKey != "" {
		project, err = ResolveProjectByOrigin(database, client, input.URL)
	} else if input.ProjectID != nil {
		project, err = requireProjectOwnership(database, client, *input.ProjectID)
	}
	if err != nil {
		return nil, err
	}

	annotations := input.Annotations
	if annotations == nil {
		annotations = []feedback.TextAnnotation{}
	}

	now := time.Now().Unix()
	comment := &feedback.Comment{
		ClientID:       &client.ID,
		URL:            input.URL,
		PageSection:    feedback.PageSection(input.URL),
		Image:          input.ImageData,
		Annotations:    annotations,
		Status:         feedback.StatusOpen,
		Priority:       feedback.PriorityMed,
		PriorityNumber: 0,
		Assignee:       feedback.DefaultAssignee,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if project != nil {
		comment.ProjectID = &project.ID
	}
	if name := strings.TrimSpace(input.SubmitterName); name != "" {
		comment.SubmitterName = &name
	}

	if err := db.InsertComment(database, comment); err != nil {
		return nil, err
	}

	return &SubmitOutput{
		ID:          comment.ID,
		PageSection: comment.PageSection,
	}, nil
}
