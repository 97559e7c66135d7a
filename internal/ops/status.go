package ops

import (
	"database/sql"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// SetStatusInput contains parameters for the SetStatus operation.
type SetStatusInput struct {
	Token  string
	ID     int64
	Status string
}

// SetStatusOutput contains the result of the SetStatus operation.
type SetStatusOutput struct {
	ID     int64           `json:"id"`
	Status feedback.Status `json:"status"`
}

// SetStatus changes a comment's lifecycle status. Resolving a comment zeroes
// its priority_number: the ordering marker is meaningless once closed, and
// reopening later does not restore it.
func SetStatus(database *sql.DB, input SetStatusInput) (*SetStatusOutput, error) {
	status := feedback.Status(input.Status)
	if !status.Valid() {
		return nil, errors.NewInvalidRequest("status must be one of: open, resolved")
	}

	if err := requireCommentOwnership(database, input.Token, input.ID); err != nil {
		return nil, err
	}

	zeroPriorityNumber := status == feedback.StatusResolved
	if err := db.UpdateStatus(database, input.ID, status, zeroPriorityNumber); err != nil {
		return nil, err
	}

	return &SetStatusOutput{ID: input.ID, Status: status}, nil
}

// requireCommentOwnership resolves the token's tenant and checks the comment
// belongs to it. Foreign comments read as not-found rather than forbidden,
// to avoid confirming their existence.
func requireCommentOwnership(database *sql.DB, token string, id int64) error {
	client, err := ResolveClient(database, token, "")
	if err != nil {
		return err
	}

	comment, err := db.GetCommentByID(database, id)
	if err != nil {
		return err
	}
	if comment.ClientID == nil || *comment.ClientID != client.ID {
		return errors.NewNotFound("comment", itoa(id))
	}

	return nil
}
