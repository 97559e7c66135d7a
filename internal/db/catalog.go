package db

import (
	"database/sql"
	"time"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// InsertClient stores a new tenant and sets c.ID.
func InsertClient(db *sql.DB, c *feedback.Client) error {
	c.CreatedAt = time.Now().Unix()

	result, err := db.Exec(
		"INSERT INTO clients (name, token, widget_key, created_at) VALUES (?, ?, ?, ?)",
		c.Name, c.Token, c.WidgetKey, c.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateName(c.Name)
		}
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	c.ID = id

	return nil
}

// GetClientByToken resolves a tenant from its private access token.
func GetClientByToken(db *sql.DB, token string) (*feedback.Client, error) {
	return getClient(db, "token = ?", token)
}

// GetClientByWidgetKey resolves a tenant from its public widget key.
func GetClientByWidgetKey(db *sql.DB, widgetKey string) (*feedback.Client, error) {
	return getClient(db, "widget_key = ?", widgetKey)
}

// GetClientByID retrieves a tenant by row id.
func GetClientByID(db *sql.DB, id int64) (*feedback.Client, error) {
	return getClient(db, "id = ?", id)
}

func getClient(db *sql.DB, where string, arg any) (*feedback.Client, error) {
	var c feedback.Client
	err := db.QueryRow(
		"SELECT id, name, token, widget_key, created_at FROM clients WHERE "+where, arg,
	).Scan(&c.ID, &c.Name, &c.Token, &c.WidgetKey, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("client", "")
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &c, nil
}

// ListClients returns all tenants, newest first.
func ListClients(db *sql.DB) ([]feedback.Client, error) {
	rows, err := db.Query("SELECT id, name, token, widget_key, created_at FROM clients ORDER BY created_at DESC")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var clients []feedback.Client
	for rows.Next() {
		var c feedback.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Token, &c.WidgetKey, &c.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return clients, nil
}

// InsertProject stores a new project and sets p.ID.
func InsertProject(db *sql.DB, p *feedback.Project) error {
	p.CreatedAt = time.Now().Unix()

	result, err := db.Exec(
		"INSERT INTO projects (client_id, name, url, created_at) VALUES (?, ?, ?, ?)",
		p.ClientID, p.Name, p.URL, p.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	p.ID = id

	return nil
}

// ListProjectsByClient returns a tenant's projects, oldest first.
func ListProjectsByClient(db *sql.DB, clientID int64) ([]feedback.Project, error) {
	rows, err := db.Query(
		"SELECT id, client_id, name, url, created_at FROM projects WHERE client_id = ? ORDER BY created_at ASC",
		clientID,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var projects []feedback.Project
	for rows.Next() {
		var p feedback.Project
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &p.URL, &p.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return projects, nil
}

// GetProjectByID retrieves a project by row id.
func GetProjectByID(db *sql.DB, id int64) (*feedback.Project, error) {
	var p feedback.Project
	err := db.QueryRow(
		"SELECT id, client_id, name, url, created_at FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.ClientID, &p.Name, &p.URL, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("project", itoa(id))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &p, nil
}

// InsertAssignee stores a new assignee name for a tenant.
// Duplicate names within a tenant are rejected with a 409.
func InsertAssignee(db *sql.DB, a *feedback.Assignee) error {
	result, err := db.Exec(
		"INSERT INTO assignees (client_id, name) VALUES (?, ?)",
		a.ClientID, a.Name,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateName(a.Name)
		}
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	a.ID = id

	return nil
}

// ListAssigneesByClient returns a tenant's assignee names, alphabetical.
func ListAssigneesByClient(db *sql.DB, clientID int64) ([]feedback.Assignee, error) {
	rows, err := db.Query(
		"SELECT id, client_id, name FROM assignees WHERE client_id = ? ORDER BY name ASC",
		clientID,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var assignees []feedback.Assignee
	for rows.Next() {
		var a feedback.Assignee
		if err := rows.Scan(&a.ID, &a.ClientID, &a.Name); err != nil {
			return nil, errors.NewInternal(err)
		}
		assignees = append(assignees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return assignees, nil
}
