package ops

import (
	"database/sql"

	"github.com/pagemark/pagemark/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Token string
	ID    int64
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// Delete removes a comment permanently. Decisions promoted from the comment
// are left in place; their back-references simply stop resolving.
func Delete(database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	if err := requireCommentOwnership(database, input.Token, input.ID); err != nil {
		return nil, err
	}

	if err := db.DeleteComment(database, input.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{ID: input.ID, Deleted: true}, nil
}
