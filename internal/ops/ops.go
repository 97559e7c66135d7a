package ops

import (
	"crypto/rand"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

const (
	// DefaultListLimit applies when list callers omit a limit.
	DefaultListLimit = 50
	// MaxListLimit caps a single list page.
	MaxListLimit = 200
)

// Pagination describes a page of results.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// ResolveClient resolves a tenant from an access token or a widget key.
// Exactly one must be provided.
func ResolveClient(database *sql.DB, token, widgetKey string) (*feedback.Client, error) {
	token = strings.TrimSpace(token)
	widgetKey = strings.TrimSpace(widgetKey)

	switch {
	case token == "" && widgetKey == "":
		return nil, errors.NewUnauthorized("an access token or widget key is required")
	case token != "" && widgetKey != "":
		return nil, errors.NewInvalidRequest("provide either a token or a widget key, not both")
	case token != "":
		client, err := db.GetClientByToken(database, token)
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewUnauthorized("invalid access token")
		}
		return client, err
	default:
		client, err := db.GetClientByWidgetKey(database, widgetKey)
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewUnauthorized("invalid widget key")
		}
		return client, err
	}
}

// ResolveProjectByOrigin picks the project whose registered URL shares the
// submission URL's origin. With no origin match: a tenant owning exactly one
// project gets that project; a tenant owning several gets a 403 rather than
// a guess, to keep feedback from leaking across projects; a tenant owning
// none gets no project (the comment is attributed to the tenant only).
func ResolveProjectByOrigin(database *sql.DB, client *feedback.Client, submissionURL string) (*feedback.Project, error) {
	projects, err := db.ListProjectsByClient(database, client.ID)
	if err != nil {
		return nil, err
	}

	for i := range projects {
		if feedback.SameOrigin(projects[i].URL, submissionURL) {
			return &projects[i], nil
		}
	}

	switch len(projects) {
	case 0:
		return nil, nil
	case 1:
		return &projects[0], nil
	default:
		return nil, errors.NewDomainNotAuthorized(feedback.Origin(submissionURL))
	}
}

// requireProjectOwnership verifies an explicitly supplied project id belongs
// to the tenant.
func requireProjectOwnership(database *sql.DB, client *feedback.Client, projectID int64) (*feedback.Project, error) {
	project, err := db.GetProjectByID(database, projectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != client.ID {
		return nil, errors.NewNotFound("project", itoa(projectID))
	}
	return project, nil
}

// clampLimit applies list limit defaults and bounds.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// newULID generates a new ULID string.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// itoa formats an int64 id for error messages.
func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
