package ops

import (
	"database/sql"
	"strings"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/feedback"
)

// SetAssigneeInput contains parameters for the SetAssignee operation.
type SetAssigneeInput struct {
	Token    string
	ID       int64
	Assignee string
}

// SetAssigneeOutput contains the result of the SetAssignee operation.
type SetAssigneeOutput struct {
	ID       int64  `json:"id"`
	Assignee string `json:"assignee"`
}

// SetAssignee rewrites a comment's assignee. An empty name falls back to the
// unassigned sentinel.
func SetAssignee(database *sql.DB, input SetAssigneeInput) (*SetAssigneeOutput, error) {
	assignee := strings.TrimSpace(input.Assignee)
	if assignee == "" {
		assignee = feedback.DefaultAssignee
	}

	if err := requireCommentOwnership(database, input.Token, input.ID); err != nil {
		return nil, err
	}

	if err := db.UpdateAssignee(database, input.ID, assignee); err != nil {
		return nil, err
	}

	return &SetAssigneeOutput{ID: input.ID, Assignee: assignee}, nil
}
