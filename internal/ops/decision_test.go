package ops

import (
	"testing"

	"github.com/pagemark/pagemark/internal/errors"
)

func TestPromoteDecisionFromNote(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	note, err := AddNote(database, AddNoteInput{
		Token: client.Token, ID: sub.ID, Text: "ship the blue variant",
	})
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	source := "triage"
	out, err := PromoteDecision(database, PromoteDecisionInput{
		Token:     client.Token,
		Text:      "ship the blue variant",
		Source:    &source,
		CommentID: &sub.ID,
		NoteIndex: &note.Index,
	})
	if err != nil {
		t.Fatalf("PromoteDecision failed: %v", err)
	}
	if out.Decision.ID == 0 {
		t.Error("decision id not set")
	}
	if out.Decision.CommentID == nil || *out.Decision.CommentID != sub.ID {
		t.Errorf("CommentID = %v, want %d", out.Decision.CommentID, sub.ID)
	}
}

func TestPromoteDecisionRequiresPairedBackReference(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	id := int64(1)
	_, err := PromoteDecision(database, PromoteDecisionInput{
		Token: client.Token, Text: "half a back-reference", CommentID: &id,
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST with commentId alone, got %v", err)
	}

	idx := 0
	_, err = PromoteDecision(database, PromoteDecisionInput{
		Token: client.Token, Text: "half a back-reference", NoteIndex: &idx,
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST with noteIndex alone, got %v", err)
	}
}

func TestPromoteDecisionStandalone(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	out, err := PromoteDecision(database, PromoteDecisionInput{
		Token: client.Token, Text: "use ULIDs for all credentials",
	})
	if err != nil {
		t.Fatalf("PromoteDecision failed: %v", err)
	}
	if out.Decision.CommentID != nil || out.Decision.NoteIndex != nil {
		t.Errorf("standalone decision carries back-reference: %+v", out.Decision)
	}
}

func TestListDecisionsFlagsDanglingBackReference(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	idx := 0
	if _, err := PromoteDecision(database, PromoteDecisionInput{
		Token: client.Token, Text: "keep the banner", CommentID: &sub.ID, NoteIndex: &idx,
	}); err != nil {
		t.Fatalf("PromoteDecision failed: %v", err)
	}

	out, err := ListDecisions(database, ListDecisionsInput{Token: client.Token})
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(out.Decisions) != 1 {
		t.Fatalf("listed %d decisions, want 1", len(out.Decisions))
	}
	if !out.Decisions[0].CommentExists {
		t.Error("CommentExists = false while the comment is still present")
	}

	// Deleting the comment leaves the decision, now dangling.
	if _, err := Delete(database, DeleteInput{Token: client.Token, ID: sub.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	out, err = ListDecisions(database, ListDecisionsInput{Token: client.Token})
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(out.Decisions) != 1 {
		t.Fatalf("listed %d decisions after comment delete, want 1", len(out.Decisions))
	}
	d := out.Decisions[0]
	if d.CommentExists {
		t.Error("CommentExists = true after the comment was deleted")
	}
	if d.CommentID == nil || *d.CommentID != sub.ID {
		t.Errorf("back-reference rewritten: %v", d.CommentID)
	}
}

func TestUpdateDecisionKeepsBackReference(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	idx := 0
	promoted, err := PromoteDecision(database, PromoteDecisionInput{
		Token: client.Token, Text: "initial wording", CommentID: &sub.ID, NoteIndex: &idx,
	})
	if err != nil {
		t.Fatalf("PromoteDecision failed: %v", err)
	}

	if _, err := UpdateDecision(database, UpdateDecisionInput{
		Token: client.Token, ID: promoted.Decision.ID, Text: "final wording",
	}); err != nil {
		t.Fatalf("UpdateDecision failed: %v", err)
	}

	out, err := ListDecisions(database, ListDecisionsInput{Token: client.Token})
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	d := out.Decisions[0]
	if d.NoteText != "final wording" {
		t.Errorf("NoteText = %q, want %q", d.NoteText, "final wording")
	}
	if d.CommentID == nil || *d.CommentID != sub.ID {
		t.Errorf("back-reference lost on update: %v", d.CommentID)
	}
}

func TestDeleteDecision(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	promoted, err := PromoteDecision(database, PromoteDecisionInput{
		Token: client.Token, Text: "short-lived",
	})
	if err != nil {
		t.Fatalf("PromoteDecision failed: %v", err)
	}

	if _, err := DeleteDecision(database, DeleteDecisionInput{
		Token: client.Token, ID: promoted.Decision.ID,
	}); err != nil {
		t.Fatalf("DeleteDecision failed: %v", err)
	}

	_, err = DeleteDecision(database, DeleteDecisionInput{
		Token: client.Token, ID: promoted.Decision.ID,
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND on second delete, got %v", err)
	}
}

func TestListDecisionsByProject(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")
	shop := seedProject(t, database, client.ID, "Shop", "https://shop.example.com")
	docs := seedProject(t, database, client.ID, "Docs", "https://docs.example.com")

	for _, p := range []int64{shop.ID, shop.ID, docs.ID} {
		pid := p
		if _, err := PromoteDecision(database, PromoteDecisionInput{
			Token: client.Token, Text: "scoped decision", ProjectID: &pid,
		}); err != nil {
			t.Fatalf("PromoteDecision failed: %v", err)
		}
	}

	out, err := ListDecisions(database, ListDecisionsInput{Token: client.Token, ProjectID: &shop.ID})
	if err != nil {
		t.Fatalf("ListDecisions failed: %v", err)
	}
	if len(out.Decisions) != 2 {
		t.Errorf("listed %d decisions for project, want 2", len(out.Decisions))
	}
}
