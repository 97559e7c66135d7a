package ops

import (
	"database/sql"
	"strings"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// CreateClientInput contains parameters for the CreateClient operation.
type CreateClientInput struct {
	Name string
}

// CreateClientOutput contains the result of the CreateClient operation.
type CreateClientOutput struct {
	Client feedback.Client `json:"client"`
}

// CreateClient registers a new tenant, minting its private access token and
// public widget key. Token and widget key prefixes make the two credential
// kinds easy to tell apart in logs and config files.
func CreateClient(database *sql.DB, input CreateClientInput) (*CreateClientOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	token, err := newULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	widgetKey, err := newULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	client := feedback.Client{
		Name:      name,
		Token:     "tk_" + strings.ToLower(token),
		WidgetKey: "wk_" + strings.ToLower(widgetKey),
	}
	if err := db.InsertClient(database, &client); err != nil {
		return nil, err
	}

	return &CreateClientOutput{Client: client}, nil
}

// ListClientsOutput contains the result of the ListClients operation.
type ListClientsOutput struct {
	Clients []feedback.Client `json:"clients"`
}

// ListClients returns all registered tenants, newest first.
func ListClients(database *sql.DB) (*ListClientsOutput, error) {
	clients, err := db.ListClients(database)
	if err != nil {
		return nil, err
	}
	return &ListClientsOutput{Clients: clients}, nil
}

// CreateProjectInput contains parameters for the CreateProject operation.
type CreateProjectInput struct {
	Token string
	Name  string
	URL   string
}

// CreateProjectOutput contains the result of the CreateProject operation.
type CreateProjectOutput struct {
	Project feedback.Project `json:"project"`
}

// CreateProject registers a site under a tenant. The URL's origin is what
// widget submissions are matched against.
func CreateProject(database *sql.DB, input CreateProjectInput) (*CreateProjectOutput, error) {
	name := strings.TrimSpace(input.Name)
	rawURL := strings.TrimSpace(input.URL)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if rawURL == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}
	if feedback.Origin(rawURL) == "" {
		return nil, errors.NewInvalidRequest("url must include a host")
	}

	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	project := feedback.Project{
		ClientID: client.ID,
		Name:     name,
		URL:      rawURL,
	}
	if err := db.InsertProject(database, &project); err != nil {
		return nil, err
	}

	return &CreateProjectOutput{Project: project}, nil
}

// ListProjectsInput contains parameters for the ListProjects operation.
type ListProjectsInput struct {
	Token string
}

// ListProjectsOutput contains the result of the ListProjects operation.
type ListProjectsOutput struct {
	Projects []feedback.Project `json:"projects"`
}

// ListProjects returns the tenant's projects, oldest first.
func ListProjects(database *sql.DB, input ListProjectsInput) (*ListProjectsOutput, error) {
	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	projects, err := db.ListProjectsByClient(database, client.ID)
	if err != nil {
		return nil, err
	}

	return &ListProjectsOutput{Projects: projects}, nil
}

// CreateAssigneeInput contains parameters for the CreateAssignee operation.
type CreateAssigneeInput struct {
	Token string
	Name  string
}

// CreateAssigneeOutput contains the result of the CreateAssignee operation.
type CreateAssigneeOutput struct {
	Assignee feedback.Assignee `json:"assignee"`
}

// CreateAssignee adds a name to the tenant's assignee roster. Names are
// unique per tenant; a repeat is rejected rather than silently deduplicated.
func CreateAssignee(database *sql.DB, input CreateAssigneeInput) (*CreateAssigneeOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	assignee := feedback.Assignee{ClientID: client.ID, Name: name}
	if err := db.InsertAssignee(database, &assignee); err != nil {
		return nil, err
	}

	return &CreateAssigneeOutput{Assignee: assignee}, nil
}

// ListAssigneesInput contains parameters for the ListAssignees operation.
type ListAssigneesInput struct {
	Token string
}

// ListAssigneesOutput contains the result of the ListAssignees operation.
type ListAssigneesOutput struct {
	Assignees []feedback.Assignee `json:"assignees"`
}

// ListAssignees returns the tenant's assignee roster, alphabetical.
func ListAssignees(database *sql.DB, input ListAssigneesInput) (*ListAssigneesOutput, error) {
	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	assignees, err := db.ListAssigneesByClient(database, client.ID)
	if err != nil {
		return nil, err
	}

	return &ListAssigneesOutput{Assignees: assignees}, nil
}
