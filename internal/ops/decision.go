package ops

import (
	"database/sql"
	"strings"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// PromoteDecisionInput contains parameters for the PromoteDecision operation.
type PromoteDecisionInput struct {
	Token     string
	Text      string
	Source    *string
	CommentID *int64
	NoteIndex *int
	ProjectID *int64
}

// PromoteDecisionOutput contains the result of the PromoteDecision operation.
type PromoteDecisionOutput struct {
	Decision feedback.DecisionItem `json:"decision"`
}

// PromoteDecision copies a note into the decision log. The comment
// back-reference is recorded verbatim and never validated against the
// comments table, so promotion survives later comment deletion.
func PromoteDecision(database *sql.DB, input PromoteDecisionInput) (*PromoteDecisionOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}
	if (input.CommentID == nil) != (input.NoteIndex == nil) {
		return nil, errors.NewInvalidRequest("commentId and noteIndex must be provided together")
	}

	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}
	if input.ProjectID != nil {
		if _, err := requireProjectOwnership(database, client, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	d := feedback.DecisionItem{
		NoteText:  text,
		Source:    input.Source,
		CommentID: input.CommentID,
		NoteIndex: input.NoteIndex,
		ProjectID: input.ProjectID,
	}
	if err := db.InsertDecision(database, &d); err != nil {
		return nil, err
	}

	return &PromoteDecisionOutput{Decision: d}, nil
}

// UpdateDecisionInput contains parameters for the UpdateDecision operation.
type UpdateDecisionInput struct {
	Token  string
	ID     int64
	Text   string
	Source *string
}

// UpdateDecisionOutput contains the result of the UpdateDecision operation.
type UpdateDecisionOutput struct {
	ID int64 `json:"id"`
}

// UpdateDecision rewrites a decision item's text and source label. The
// back-reference fields cannot be changed after promotion.
func UpdateDecision(database *sql.DB, input UpdateDecisionInput) (*UpdateDecisionOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}
	if _, err := ResolveClient(database, input.Token, ""); err != nil {
		return nil, err
	}

	if err := db.UpdateDecision(database, input.ID, text, input.Source); err != nil {
		return nil, err
	}

	return &UpdateDecisionOutput{ID: input.ID}, nil
}

// DeleteDecisionInput contains parameters for the DeleteDecision operation.
type DeleteDecisionInput struct {
	Token string
	ID    int64
}

// DeleteDecisionOutput contains the result of the DeleteDecision operation.
type DeleteDecisionOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// DeleteDecision removes a decision item from the log.
func DeleteDecision(database *sql.DB, input DeleteDecisionInput) (*DeleteDecisionOutput, error) {
	if _, err := ResolveClient(database, input.Token, ""); err != nil {
		return nil, err
	}

	if err := db.DeleteDecision(database, input.ID); err != nil {
		return nil, err
	}

	return &DeleteDecisionOutput{ID: input.ID, Deleted: true}, nil
}

// DecisionView pairs a decision item with the current state of its
// back-reference so callers can render a placeholder for deleted comments.
type DecisionView struct {
	feedback.DecisionItem
	CommentExists bool `json:"commentExists"`
}

// ListDecisionsInput contains parameters for the ListDecisions operation.
type ListDecisionsInput struct {
	Token     string
	ProjectID *int64
}

// ListDecisionsOutput contains the result of the ListDecisions operation.
type ListDecisionsOutput struct {
	Decisions []DecisionView `json:"decisions"`
}

// ListDecisions returns the decision log, newest first, optionally scoped to
// a single project.
func ListDecisions(database *sql.DB, input ListDecisionsInput) (*ListDecisionsOutput, error) {
	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}
	if input.ProjectID != nil {
		if _, err := requireProjectOwnership(database, client, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	items, err := db.ListDecisions(database, input.ProjectID)
	if err != nil {
		return nil, err
	}

	views := make([]DecisionView, 0, len(items))
	for _, item := range items {
		view := DecisionView{DecisionItem: item}
		if item.CommentID != nil {
			if _, err := db.GetCommentByID(database, *item.CommentID); err == nil {
				view.CommentExists = true
			} else if !errors.Is(err, errors.ErrNotFound) {
				return nil, err
			}
		}
		views = append(views, view)
	}

	return &ListDecisionsOutput{Decisions: views}, nil
}
