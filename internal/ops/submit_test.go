package ops

import (
	"testing"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

func TestSubmitWidgetAttributesMatchingProject(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")
	seedProject(t, database, client.ID, "Shop", "https://shop.example.com")
	docs := seedProject(t, database, client.ID, "Docs", "https://docs.example.com")

	out, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey,
		URL:       "https://docs.example.com/guides/installing",
		ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if out.PageSection != "Guides" {
		t.Errorf("PageSection = %q, want %q", out.PageSection, "Guides")
	}

	comment, err := db.GetCommentByID(database, out.ID)
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if comment.ProjectID == nil || *comment.ProjectID != docs.ID {
		t.Errorf("comment attributed to project %v, want %d", comment.ProjectID, docs.ID)
	}
	if comment.Status != feedback.StatusOpen || comment.Priority != feedback.PriorityMed {
		t.Errorf("unexpected defaults: status=%s priority=%s", comment.Status, comment.Priority)
	}
	if comment.Assignee != feedback.DefaultAssignee {
		t.Errorf("Assignee = %q, want %q", comment.Assignee, feedback.DefaultAssignee)
	}
}

func TestSubmitWidgetSoleProjectFallback(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")
	only := seedProject(t, database, client.ID, "Shop", "https://shop.example.com")

	out, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey,
		URL:       "https://totally-different.example.net/page",
		ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	comment, err := db.GetCommentByID(database, out.ID)
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if comment.ProjectID == nil || *comment.ProjectID != only.ID {
		t.Errorf("comment attributed to project %v, want sole project %d", comment.ProjectID, only.ID)
	}
}

func TestSubmitWidgetMultipleProjectsNoMatchRejectedWithoutPersisting(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")
	seedProject(t, database, client.ID, "Shop", "https://shop.example.com")
	seedProject(t, database, client.ID, "Docs", "https://docs.example.com")

	_, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey,
		URL:       "https://unknown.example.org/page",
		ImageData: testImageData,
	})
	if !errors.Is(err, errors.ErrDomainNotAuthorized) {
		t.Fatalf("expected DOMAIN_NOT_AUTHORIZED, got %v", err)
	}

	out, err := List(database, ListInput{Token: client.Token})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 0 {
		t.Errorf("rejected submission persisted %d comments", len(out.Items))
	}
}

func TestSubmitWidgetNoProjectsStillAccepted(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	out, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey,
		URL:       "https://anything.example.com/",
		ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	comment, err := db.GetCommentByID(database, out.ID)
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if comment.ProjectID != nil {
		t.Errorf("expected nil project attribution, got %d", *comment.ProjectID)
	}
	if comment.ClientID == nil || *comment.ClientID != client.ID {
		t.Errorf("comment attributed to client %v, want %d", comment.ClientID, client.ID)
	}
}

func TestSubmitTokenWithExplicitProject(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")
	docs := seedProject(t, database, client.ID, "Docs", "https://docs.example.com")

	out, err := Submit(database, SubmitInput{
		Token:         client.Token,
		URL:           "https://docs.example.com/api-reference",
		ImageData:     testImageData,
		SubmitterName: "Dana",
		ProjectID:     &docs.ID,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	comment, err := db.GetCommentByID(database, out.ID)
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if comment.SubmitterName == nil || *comment.SubmitterName != "Dana" {
		t.Errorf("SubmitterName = %v, want Dana", comment.SubmitterName)
	}
	if comment.PageSection != "Api Reference" {
		t.Errorf("PageSection = %q, want %q", comment.PageSection, "Api Reference")
	}
}

func TestSubmitTokenForeignProjectReadsAsNotFound(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")
	other := seedClient(t, database, "globex")
	foreign := seedProject(t, database, other.ID, "Theirs", "https://theirs.example.com")

	_, err := Submit(database, SubmitInput{
		Token:     client.Token,
		URL:       "https://theirs.example.com/",
		ImageData: testImageData,
		ProjectID: &foreign.ID,
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND for foreign project, got %v", err)
	}
}

func TestSubmitValidatesImageData(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	cases := []struct {
		name      string
		url       string
		imageData string
	}{
		{"missing url", "", testImageData},
		{"missing image", "https://example.com", ""},
		{"not a data uri", "https://example.com", "hello world"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Submit(database, SubmitInput{
				WidgetKey: client.WidgetKey,
				URL:       tc.url,
				ImageData: tc.imageData,
			})
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected INVALID_REQUEST, got %v", err)
			}
		})
	}
}
