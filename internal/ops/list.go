package ops

import (
	"database/sql"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// ListInput contains parameters for the List operation. Token scopes the
// listing to a tenant; ProjectID/Status/Priority/Assignee narrow it further.
type ListInput struct {
	Token     string
	ProjectID *int64
	Status    string
	Priority  string
	Assignee  string

	// ExcludeImages omits the image payloads; they dominate response size
	// and most triage interactions never need them.
	ExcludeImages bool

	Limit  int
	Offset int
}

// ListItem is one comment in a list response. Image is present only when
// the caller did not exclude images.
type ListItem struct {
	ID             int64                     `json:"id"`
	ClientID       *int64                    `json:"client_id,omitempty"`
	ProjectID      *int64                    `json:"project_id,omitempty"`
	URL            string                    `json:"url"`
	PageSection    string                    `json:"page_section"`
	Image          string                    `json:"image,omitempty"`
	Annotations    []feedback.TextAnnotation `json:"annotations"`
	Status         feedback.Status           `json:"status"`
	Priority       feedback.Priority         `json:"priority"`
	PriorityNumber int                       `json:"priority_number"`
	Assignee       string                    `json:"assignee"`
	SubmitterName  *string                   `json:"submitter_name,omitempty"`
	CreatedAt      int64                     `json:"created_at"`
	UpdatedAt      int64                     `json:"updated_at"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// List retrieves comments for a tenant in the default triage order:
// priority class ascending, priority_number ascending within class, newest
// first as final tiebreak.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	filters := db.CommentFilters{ClientID: &client.ID}

	if input.ProjectID != nil {
		if _, err := requireProjectOwnership(database, client, *input.ProjectID); err != nil {
			return nil, err
		}
		filters.ProjectID = input.ProjectID
	}
	if input.Status != "" {
		status := feedback.Status(input.Status)
		if !status.Valid() {
			return nil, errors.NewInvalidRequest("status must be one of: open, resolved")
		}
		filters.Status = &status
	}
	if input.Priority != "" {
		priority := feedback.Priority(input.Priority)
		if !priority.Valid() {
			return nil, errors.NewInvalidRequest("priority must be one of: high, med, low")
		}
		filters.Priority = &priority
	}
	if input.Assignee != "" {
		filters.Assignee = &input.Assignee
	}

	limit := clampLimit(input.Limit)
	offset := max(input.Offset, 0)

	comments, total, err := db.ListComments(database, filters, !input.ExcludeImages, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, toListItem(c))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}

func toListItem(c feedback.Comment) ListItem {
	return ListItem{
		ID:             c.ID,
		ClientID:       c.ClientID,
		ProjectID:      c.ProjectID,
		URL:            c.URL,
		PageSection:    c.PageSection,
		Image:          c.Image,
		Annotations:    c.Annotations,
		Status:         c.Status,
		Priority:       c.Priority,
		PriorityNumber: c.PriorityNumber,
		Assignee:       c.Assignee,
		SubmitterName:  c.SubmitterName,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
