package ops

import (
	"context"
	"database/sql"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// SetPriorityInput contains parameters for the SetPriority operation.
type SetPriorityInput struct {
	Token          string
	ID             int64
	Priority       string
	PriorityNumber int
}

// SetPriorityOutput contains the result of the SetPriority operation.
type SetPriorityOutput struct {
	ID             int64             `json:"id"`
	Priority       feedback.Priority `json:"priority"`
	PriorityNumber int               `json:"priority_number"`
}

// SetPriority rewrites a comment's priority class and number.
func SetPriority(database *sql.DB, input SetPriorityInput) (*SetPriorityOutput, error) {
	priority := feedback.Priority(input.Priority)
	if !priority.Valid() {
		return nil, errors.NewInvalidRequest("priority must be one of: high, med, low")
	}

	if err := requireCommentOwnership(database, input.Token, input.ID); err != nil {
		return nil, err
	}

	if err := db.UpdatePriority(database, input.ID, priority, input.PriorityNumber); err != nil {
		return nil, err
	}

	return &SetPriorityOutput{
		ID:             input.ID,
		Priority:       priority,
		PriorityNumber: input.PriorityNumber,
	}, nil
}

// BulkPriorityInput contains parameters for the BulkPriority operation.
type BulkPriorityInput struct {
	Token   string
	Updates []db.PriorityNumberUpdate
}

// BulkPriorityOutput contains the result of the BulkPriority operation.
type BulkPriorityOutput struct {
	Updated int `json:"updated"`
}

// BulkPriority applies a batch of priority_number rewrites as one
// all-or-nothing transaction: a failure anywhere in the batch leaves every
// row untouched.
func BulkPriority(ctx context.Context, database *sql.DB, input BulkPriorityInput) (*BulkPriorityOutput, error) {
	if len(input.Updates) == 0 {
		return nil, errors.NewInvalidRequest("updates is required")
	}

	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	// Ownership is checked up front so the transaction only ever fails on
	// genuinely missing rows.
	for _, u := range input.Updates {
		comment, err := db.GetCommentByID(database, u.ID)
		if err != nil {
			return nil, err
		}
		if comment.ClientID == nil || *comment.ClientID != client.ID {
			return nil, errors.NewNotFound("comment", itoa(u.ID))
		}
	}

	if err := db.BulkUpdatePriorityNumbers(ctx, database, input.Updates); err != nil {
		return nil, err
	}

	return &BulkPriorityOutput{Updated: len(input.Updates)}, nil
}
