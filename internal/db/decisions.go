package db

import (
	"database/sql"
	"time"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// InsertDecision stores a new decision item and sets d.ID.
// The comment back-reference is stored as-is; it is never validated, and it
// may come to dangle if the parent comment is later deleted.
func InsertDecision(db *sql.DB, d *feedback.DecisionItem) error {
	now := time.Now().Unix()
	d.CreatedAt = now
	d.UpdatedAt = now

	result, err := db.Exec(
		"INSERT INTO decisions (note_text, source, comment_id, note_index, project_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		d.NoteText, toNullString(d.Source), toNullInt64(d.CommentID),
		toNullInt(d.NoteIndex), toNullInt64(d.ProjectID), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	d.ID = id

	return nil
}

// ListDecisions returns decision items, newest first. A nil projectID
// returns items across all projects.
func ListDecisions(db *sql.DB, projectID *int64) ([]feedback.DecisionItem, error) {
	query := "SELECT id, note_text, source, comment_id, note_index, project_id, created_at, updated_at FROM decisions"
	var args []any
	if projectID != nil {
		query += " WHERE project_id = ?"
		args = append(args, *projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []feedback.DecisionItem
	for rows.Next() {
		var (
			d         feedback.DecisionItem
			source    sql.NullString
			commentID sql.NullInt64
			noteIndex sql.NullInt64
			projID    sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.NoteText, &source, &commentID, &noteIndex, &projID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		d.Source = fromNullString(source)
		d.CommentID = fromNullInt64(commentID)
		if noteIndex.Valid {
			idx := int(noteIndex.Int64)
			d.NoteIndex = &idx
		}
		d.ProjectID = fromNullInt64(projID)
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return items, nil
}

// UpdateDecision rewrites a decision item's text and source label.
// The comment back-reference is immutable.
func UpdateDecision(db *sql.DB, id int64, noteText string, source *string) error {
	result, err := db.Exec(
		"UPDATE decisions SET note_text = ?, source = ?, updated_at = ? WHERE id = ?",
		noteText, toNullString(source), time.Now().Unix(), id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("decision", itoa(id))
	}

	return nil
}

// DeleteDecision removes a decision item.
func DeleteDecision(db *sql.DB, id int64) error {
	result, err := db.Exec("DELETE FROM decisions WHERE id = ?", id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("decision", itoa(id))
	}

	return nil
}

// toNullInt converts a *int to sql.NullInt64.
func toNullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
