package db

import (
	"testing"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

func TestInsertClientAndLookups(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	c := &feedback.Client{Name: "Acme", Token: "tok_abc", WidgetKey: "wk_abc"}
	if err := InsertClient(database, c); err != nil {
		t.Fatalf("InsertClient failed: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("InsertClient did not set ID")
	}

	byToken, err := GetClientByToken(database, "tok_abc")
	if err != nil {
		t.Fatalf("GetClientByToken failed: %v", err)
	}
	if byToken.ID != c.ID {
		t.Errorf("ID = %d, want %d", byToken.ID, c.ID)
	}

	byKey, err := GetClientByWidgetKey(database, "wk_abc")
	if err != nil {
		t.Fatalf("GetClientByWidgetKey failed: %v", err)
	}
	if byKey.ID != c.ID {
		t.Errorf("ID = %d, want %d", byKey.ID, c.ID)
	}

	if _, err := GetClientByToken(database, "tok_nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown token err = %v, want NOT_FOUND", err)
	}
}

func TestInsertProjectAndList(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	c := &feedback.Client{Name: "Acme", Token: "tok_a", WidgetKey: "wk_a"}
	if err := InsertClient(database, c); err != nil {
		t.Fatalf("InsertClient failed: %v", err)
	}

	p := &feedback.Project{ClientID: c.ID, Name: "Marketing site", URL: "https://acme.example"}
	if err := InsertProject(database, p); err != nil {
		t.Fatalf("InsertProject failed: %v", err)
	}

	projects, err := ListProjectsByClient(database, c.ID)
	if err != nil {
		t.Fatalf("ListProjectsByClient failed: %v", err)
	}
	if len(projects) != 1 || projects[0].URL != "https://acme.example" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestInsertAssigneeDuplicate(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	c := &feedback.Client{Name: "Acme", Token: "tok_a", WidgetKey: "wk_a"}
	if err := InsertClient(database, c); err != nil {
		t.Fatalf("InsertClient failed: %v", err)
	}

	if err := InsertAssignee(database, &feedback.Assignee{ClientID: c.ID, Name: "Dana"}); err != nil {
		t.Fatalf("InsertAssignee failed: %v", err)
	}

	err = InsertAssignee(database, &feedback.Assignee{ClientID: c.ID, Name: "Dana"})
	if !errors.Is(err, errors.ErrDuplicateName) {
		t.Errorf("duplicate err = %v, want DUPLICATE_NAME", err)
	}

	// Same name under another tenant is fine
	c2 := &feedback.Client{Name: "Globex", Token: "tok_b", WidgetKey: "wk_b"}
	if err := InsertClient(database, c2); err != nil {
		t.Fatalf("InsertClient failed: %v", err)
	}
	if err := InsertAssignee(database, &feedback.Assignee{ClientID: c2.ID, Name: "Dana"}); err != nil {
		t.Errorf("cross-tenant same name should be allowed: %v", err)
	}
}
