package ops

import (
	"context"
	"testing"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

func TestListDefaultOrdering(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	// Four submissions, then re-prioritized into the triage order
	// [high 1], [high 2], [med 0], [low 5].
	ids := make([]int64, 4)
	for i := range ids {
		out, err := Submit(database, SubmitInput{
			WidgetKey: client.WidgetKey,
			URL:       "https://example.com/pricing",
			ImageData: testImageData,
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		ids[i] = out.ID
	}

	set := func(id int64, priority string, number int) {
		t.Helper()
		_, err := SetPriority(database, SetPriorityInput{
			Token: client.Token, ID: id, Priority: priority, PriorityNumber: number,
		})
		if err != nil {
			t.Fatalf("SetPriority failed: %v", err)
		}
	}
	set(ids[0], "med", 0)
	set(ids[1], "high", 2)
	set(ids[2], "high", 1)
	set(ids[3], "low", 5)

	out, err := List(database, ListInput{Token: client.Token, ExcludeImages: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []int64{ids[2], ids[1], ids[0], ids[3]}
	if len(out.Items) != len(want) {
		t.Fatalf("listed %d comments, want %d", len(out.Items), len(want))
	}
	for i, item := range out.Items {
		if item.ID != want[i] {
			t.Errorf("position %d: got id %d, want %d", i, item.ID, want[i])
		}
		if item.Image != "" {
			t.Errorf("position %d: image present despite ExcludeImages", i)
		}
	}
}

func TestListRejectsUnknownEnums(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	_, err := List(database, ListInput{Token: client.Token, Status: "archived"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for unknown status, got %v", err)
	}

	_, err = List(database, ListInput{Token: client.Token, Priority: "urgent"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for unknown priority, got %v", err)
	}
}

func TestListScopedToTenant(t *testing.T) {
	database := testDB(t)
	acme := seedClient(t, database, "acme")
	globex := seedClient(t, database, "globex")

	if _, err := Submit(database, SubmitInput{
		WidgetKey: acme.WidgetKey, URL: "https://a.example.com", ImageData: testImageData,
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	out, err := List(database, ListInput{Token: globex.Token})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 0 {
		t.Errorf("tenant sees %d foreign comments", len(out.Items))
	}
}

func TestSetStatusResolveZeroesPriorityNumber(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := SetPriority(database, SetPriorityInput{
		Token: client.Token, ID: sub.ID, Priority: "high", PriorityNumber: 7,
	}); err != nil {
		t.Fatalf("SetPriority failed: %v", err)
	}

	if _, err := SetStatus(database, SetStatusInput{
		Token: client.Token, ID: sub.ID, Status: "resolved",
	}); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	comment, err := db.GetCommentByID(database, sub.ID)
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if comment.PriorityNumber != 0 {
		t.Errorf("resolved comment has priority_number %d, want 0", comment.PriorityNumber)
	}

	// Reopening does not restore the old number.
	if _, err := SetStatus(database, SetStatusInput{
		Token: client.Token, ID: sub.ID, Status: "open",
	}); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	comment, err = db.GetCommentByID(database, sub.ID)
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if comment.PriorityNumber != 0 {
		t.Errorf("reopened comment has priority_number %d, want 0", comment.PriorityNumber)
	}
}

func TestSetStatusForeignCommentNotFound(t *testing.T) {
	database := testDB(t)
	acme := seedClient(t, database, "acme")
	globex := seedClient(t, database, "globex")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: acme.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, err = SetStatus(database, SetStatusInput{
		Token: globex.Token, ID: sub.ID, Status: "resolved",
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND for foreign comment, got %v", err)
	}
}

func TestBulkPriorityAllOrNothing(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	var ids []int64
	for range 3 {
		out, err := Submit(database, SubmitInput{
			WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		ids = append(ids, out.ID)
	}

	updates := []db.PriorityNumberUpdate{
		{ID: ids[0], Number: 3},
		{ID: ids[1], Number: 1},
		{ID: 99999, Number: 2},
	}
	_, err := BulkPriority(context.Background(), database, BulkPriorityInput{
		Token: client.Token, Updates: updates,
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND for missing row, got %v", err)
	}

	for _, id := range ids[:2] {
		comment, err := db.GetCommentByID(database, id)
		if err != nil {
			t.Fatalf("GetCommentByID failed: %v", err)
		}
		if comment.PriorityNumber != 0 {
			t.Errorf("comment %d has priority_number %d after failed batch, want 0", id, comment.PriorityNumber)
		}
	}

	out, err := BulkPriority(context.Background(), database, BulkPriorityInput{
		Token: client.Token,
		Updates: []db.PriorityNumberUpdate{
			{ID: ids[0], Number: 3},
			{ID: ids[1], Number: 1},
			{ID: ids[2], Number: 2},
		},
	})
	if err != nil {
		t.Fatalf("BulkPriority failed: %v", err)
	}
	if out.Updated != 3 {
		t.Errorf("Updated = %d, want 3", out.Updated)
	}

	comment, err := db.GetCommentByID(database, ids[1])
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if comment.PriorityNumber != 1 {
		t.Errorf("priority_number = %d, want 1", comment.PriorityNumber)
	}
}

func TestAddNoteReturnsStableIndex(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey:   client.WidgetKey,
		URL:         "https://example.com",
		ImageData:   testImageData,
		Annotations: []feedback.TextAnnotation{{Text: "from the widget", X: 10, Y: 20}},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	note, err := AddNote(database, AddNoteInput{
		Token: client.Token, ID: sub.ID, Text: "triage note", X: 5, Y: 5,
	})
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if note.Index != 1 {
		t.Errorf("Index = %d, want 1", note.Index)
	}

	comment, err := db.GetCommentByID(database, sub.ID)
	if err != nil {
		t.Fatalf("GetCommentByID failed: %v", err)
	}
	if len(comment.Annotations) != 2 {
		t.Fatalf("comment has %d annotations, want 2", len(comment.Annotations))
	}
	if comment.Annotations[0].Text != "from the widget" {
		t.Errorf("existing annotation rewritten: %q", comment.Annotations[0].Text)
	}
	if comment.Annotations[1].Text != "triage note" {
		t.Errorf("appended annotation = %q, want %q", comment.Annotations[1].Text, "triage note")
	}
}

func TestAddNoteRejectsEmptyText(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, err = AddNote(database, AddNoteInput{Token: client.Token, ID: sub.ID, Text: "   "})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestSetAssigneeEmptyFallsBackToUnassigned(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	out, err := SetAssignee(database, SetAssigneeInput{Token: client.Token, ID: sub.ID, Assignee: "Pat"})
	if err != nil {
		t.Fatalf("SetAssignee failed: %v", err)
	}
	if out.Assignee != "Pat" {
		t.Errorf("Assignee = %q, want Pat", out.Assignee)
	}

	out, err = SetAssignee(database, SetAssigneeInput{Token: client.Token, ID: sub.ID, Assignee: "  "})
	if err != nil {
		t.Fatalf("SetAssignee failed: %v", err)
	}
	if out.Assignee != feedback.DefaultAssignee {
		t.Errorf("Assignee = %q, want %q", out.Assignee, feedback.DefaultAssignee)
	}
}

func TestDeleteIsPermanent(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")

	sub, err := Submit(database, SubmitInput{
		WidgetKey: client.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := Delete(database, DeleteInput{Token: client.Token, ID: sub.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = Delete(database, DeleteInput{Token: client.Token, ID: sub.ID})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND on second delete, got %v", err)
	}
}

func TestFetchImagesBatchCap(t *testing.T) {
	database := testDB(t)
	client := seedClient(t, database, "acme")
	cfg := config.DefaultConfig()

	ids := make([]int64, cfg.ImageBatchMax+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	_, err := FetchImages(database, cfg, FetchImagesInput{Token: client.Token, IDs: ids})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST over batch cap, got %v", err)
	}

	_, err = FetchImages(database, cfg, FetchImagesInput{Token: client.Token, IDs: nil})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for empty batch, got %v", err)
	}
}

func TestFetchImagesSkipsForeignComments(t *testing.T) {
	database := testDB(t)
	acme := seedClient(t, database, "acme")
	globex := seedClient(t, database, "globex")
	cfg := config.DefaultConfig()

	mine, err := Submit(database, SubmitInput{
		WidgetKey: acme.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	theirs, err := Submit(database, SubmitInput{
		WidgetKey: globex.WidgetKey, URL: "https://example.com", ImageData: testImageData,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	out, err := FetchImages(database, cfg, FetchImagesInput{
		Token: acme.Token, IDs: []int64{mine.ID, theirs.ID},
	})
	if err != nil {
		t.Fatalf("FetchImages failed: %v", err)
	}
	if _, ok := out.Images[mine.ID]; !ok {
		t.Errorf("own image missing from batch")
	}
	if _, ok := out.Images[theirs.ID]; ok {
		t.Errorf("foreign image leaked into batch")
	}
}
