package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// commentColumns lists comment columns in scan order, minus the image blob.
// The image is selected separately because it dominates row size.
const commentColumns = "id, client_id, project_id, url, page_section, annotations_json, status, priority, priority_number, assignee, submitter_name, created_at, updated_at"

// CommentFilters narrows a comment listing. Nil fields are ignored.
type CommentFilters struct {
	ClientID  *int64
	ProjectID *int64
	Status    *feedback.Status
	Priority  *feedback.Priority
	Assignee  *string
}

// defaultOrder surfaces the most urgent, least-recently-bumped comments
// first, newest as final tiebreak.
var defaultOrder = []string{
	"CASE priority WHEN 'high' THEN 0 WHEN 'med' THEN 1 WHEN 'low' THEN 2 ELSE 3 END ASC",
	"priority_number ASC",
	"created_at DESC",
}

// InsertComment stores a new comment and sets c.ID from the inserted row.
func InsertComment(db *sql.DB, c *feedback.Comment) error {
	annotationsJSON, err := marshalAnnotations(c.Annotations)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO comments (
			client_id, project_id, url, page_section, image, annotations_json,
			status, priority, priority_number, assignee, submitter_name,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		toNullInt64(c.ClientID), toNullInt64(c.ProjectID), c.URL, c.PageSection,
		c.Image, annotationsJSON,
		string(c.Status), string(c.Priority), c.PriorityNumber, c.Assignee,
		toNullString(c.SubmitterName), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	c.ID = id

	return nil
}

// GetCommentByID retrieves a comment including its image payload.
func GetCommentByID(db *sql.DB, id int64) (*feedback.Comment, error) {
	query := "SELECT " + commentColumns + ", image FROM comments WHERE id = ?"

	row := db.QueryRow(query, id)
	c, err := scanComment(row, true)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("comment", itoa(id))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return c, nil
}

// ListComments retrieves comments matching the filters in the default triage
// order. When includeImages is false the Image field is left empty.
func ListComments(db *sql.DB, filters CommentFilters, includeImages bool, limit, offset int) ([]feedback.Comment, int, error) {
	cols := commentColumns
	if includeImages {
		cols += ", image"
	}

	builder := sq.Select(cols).From("comments")
	builder = applyCommentFilters(builder, filters)
	builder = builder.OrderBy(defaultOrder...)
	if limit > 0 {
		builder = builder.Limit(uint64(limit)).Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var comments []feedback.Comment
	for rows.Next() {
		c, err := scanComment(rows, includeImages)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	total, err := countComments(db, filters)
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// countComments returns the total number of comments matching the filters.
func countComments(db *sql.DB, filters CommentFilters) (int, error) {
	builder := applyCommentFilters(sq.Select("COUNT(*)").From("comments"), filters)
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	var total int
	if err := db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, errors.NewInternal(err)
	}
	return total, nil
}

// applyCommentFilters adds WHERE clauses for each non-nil filter.
func applyCommentFilters(builder sq.SelectBuilder, f CommentFilters) sq.SelectBuilder {
	if f.ClientID != nil {
		builder = builder.Where(sq.Eq{"client_id": *f.ClientID})
	}
	if f.ProjectID != nil {
		builder = builder.Where(sq.Eq{"project_id": *f.ProjectID})
	}
	if f.Status != nil {
		builder = builder.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.Priority != nil {
		builder = builder.Where(sq.Eq{"priority": string(*f.Priority)})
	}
	if f.Assignee != nil {
		builder = builder.Where(sq.Eq{"assignee": *f.Assignee})
	}
	return builder
}

// GetImages retrieves image payloads for the given comment IDs, optionally
// restricted to one tenant. Missing IDs are simply absent from the result.
func GetImages(db *sql.DB, ids []int64, clientID *int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	builder := sq.Select("id, image").From("comments").Where(sq.Eq{"id": ids})
	if clientID != nil {
		builder = builder.Where(sq.Eq{"client_id": *clientID})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	images := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var image string
		if err := rows.Scan(&id, &image); err != nil {
			return nil, errors.NewInternal(err)
		}
		images[id] = image
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return images, nil
}

// UpdateStatus changes a comment's lifecycle status. When zeroPriorityNumber
// is set the priority_number is reset to 0 in the same statement (a resolved
// comment's ordering marker is no longer relevant).
func UpdateStatus(db *sql.DB, id int64, status feedback.Status, zeroPriorityNumber bool) error {
	now := time.Now().Unix()

	var result sql.Result
	var err error
	if zeroPriorityNumber {
		result, err = db.Exec(
			"UPDATE comments SET status = ?, priority_number = 0, updated_at = ? WHERE id = ?",
			string(status), now, id,
		)
	} else {
		result, err = db.Exec(
			"UPDATE comments SET status = ?, updated_at = ? WHERE id = ?",
			string(status), now, id,
		)
	}
	if err != nil {
		return errors.NewInternal(err)
	}

	return requireRow(result, id)
}

// UpdatePriority rewrites a comment's priority class and number.
func UpdatePriority(db *sql.DB, id int64, priority feedback.Priority, number int) error {
	result, err := db.Exec(
		"UPDATE comments SET priority = ?, priority_number = ?, updated_at = ? WHERE id = ?",
		string(priority), number, time.Now().Unix(), id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, id)
}

// PriorityNumberUpdate addresses one comment in a batched priority update.
type PriorityNumberUpdate struct {
	ID     int64 `json:"id"`
	Number int   `json:"priority_number"`
}

// BulkUpdatePriorityNumbers applies all updates in one transaction.
// Any failure (including a missing row) rolls back the entire batch.
func BulkUpdatePriorityNumbers(ctx context.Context, db *sql.DB, updates []PriorityNumberUpdate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, u := range updates {
		result, err := tx.Exec(
			"UPDATE comments SET priority_number = ?, updated_at = ? WHERE id = ?",
			u.Number, now, u.ID,
		)
		if err != nil {
			return errors.NewInternal(err)
		}
		if err := requireRow(result, u.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// UpdateAssignee rewrites a comment's assignee name.
func UpdateAssignee(db *sql.DB, id int64, assignee string) error {
	result, err := db.Exec(
		"UPDATE comments SET assignee = ?, updated_at = ? WHERE id = ?",
		assignee, time.Now().Unix(), id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, id)
}

// AppendAnnotation appends one text annotation to a comment's array and
// returns the new annotation's index (= previous array length). Decision
// items may reference that index, so existing entries are never reordered.
func AppendAnnotation(db *sql.DB, id int64, ann feedback.TextAnnotation) (int, error) {
	var annotationsJSON sql.NullString
	err := db.QueryRow("SELECT annotations_json FROM comments WHERE id = ?", id).Scan(&annotationsJSON)
	if err == sql.ErrNoRows {
		return 0, errors.NewNotFound("comment", itoa(id))
	}
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	annotations, err := unmarshalAnnotations(annotationsJSON)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	index := len(annotations)
	annotations = append(annotations, ann)

	data, err := marshalAnnotations(annotations)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	result, err := db.Exec(
		"UPDATE comments SET annotations_json = ?, updated_at = ? WHERE id = ?",
		data, time.Now().Unix(), id,
	)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	if err := requireRow(result, id); err != nil {
		return 0, err
	}

	return index, nil
}

// DeleteComment removes a comment permanently. Decision items referencing
// the deleted comment are left in place (their back-reference dangles).
func DeleteComment(db *sql.DB, id int64) error {
	result, err := db.Exec("DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, id)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanComment scans one comment row. The image column must be selected last
// and only when withImage is true.
func scanComment(row rowScanner, withImage bool) (*feedback.Comment, error) {
	var (
		c               feedback.Comment
		clientID        sql.NullInt64
		projectID       sql.NullInt64
		annotationsJSON sql.NullString
		status          string
		priority        string
		submitterName   sql.NullString
	)

	dest := []any{
		&c.ID, &clientID, &projectID, &c.URL, &c.PageSection, &annotationsJSON,
		&status, &priority, &c.PriorityNumber, &c.Assignee, &submitterName,
		&c.CreatedAt, &c.UpdatedAt,
	}
	if withImage {
		dest = append(dest, &c.Image)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	c.ClientID = fromNullInt64(clientID)
	c.ProjectID = fromNullInt64(projectID)
	c.Status = feedback.Status(status)
	c.Priority = feedback.Priority(priority)
	c.SubmitterName = fromNullString(submitterName)

	annotations, err := unmarshalAnnotations(annotationsJSON)
	if err != nil {
		return nil, err
	}
	c.Annotations = annotations

	return &c, nil
}

// requireRow converts a zero-rows-affected result into a not-found error.
func requireRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("comment", itoa(id))
	}
	return nil
}

// marshalAnnotations encodes the annotation array as JSON, NULL when empty.
func marshalAnnotations(annotations []feedback.TextAnnotation) (sql.NullString, error) {
	if len(annotations) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(annotations)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalAnnotations decodes the stored JSON array, empty slice for NULL.
func unmarshalAnnotations(ns sql.NullString) ([]feedback.TextAnnotation, error) {
	if !ns.Valid || ns.String == "" {
		return []feedback.TextAnnotation{}, nil
	}
	var annotations []feedback.TextAnnotation
	if err := json.Unmarshal([]byte(ns.String), &annotations); err != nil {
		return nil, err
	}
	return annotations, nil
}
