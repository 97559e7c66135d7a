package ops

import (
	"database/sql"
	"strings"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// AddNoteInput contains parameters for the AddNote operation.
type AddNoteInput struct {
	Token string
	ID    int64
	Text  string
	X     float64
	Y     float64
	Color string
}

// AddNoteOutput contains the result of the AddNote operation.
type AddNoteOutput struct {
	ID    int64 `json:"id"`
	Index int   `json:"index"`
}

// AddNote appends a text annotation to a comment. Existing annotations are
// never rewritten, so the returned index stays stable for back-references.
func AddNote(database *sql.DB, input AddNoteInput) (*AddNoteOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	if err := requireCommentOwnership(database, input.Token, input.ID); err != nil {
		return nil, err
	}

	note := feedback.TextAnnotation{
		Text:  text,
		X:     input.X,
		Y:     input.Y,
		Color: input.Color,
	}
	index, err := db.AppendAnnotation(database, input.ID, note)
	if err != nil {
		return nil, err
	}

	return &AddNoteOutput{ID: input.ID, Index: index}, nil
}
