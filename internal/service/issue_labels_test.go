package service

import (
	"context"
	"errors"
	"testing"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

func TestSetLabels_ReplacesSetAndDropsUnknownIDs(t *testing.T) {
	svc, store, obs := newTestIssueService()
	store.addLabel(1, "bug")
	store.addLabel(2, "ui")
	store.addLabel(3, "backend")
	issue := createIssue(t, svc, model.NewIssue{Title: "x"})

	if _, err := svc.SetLabels(context.Background(), issue.ID, []int64{3}); err != nil {
		t.Fatalf("SetLabels returned unexpected error: %v", err)
	}
	labels, err := svc.SetLabels(context.Background(), issue.ID, []int64{2, 1, 2, 999})
	if err != nil {
		t.Fatalf("SetLabels returned unexpected error: %v", err)
	}
	if len(labels) != 2 || labels[0].Name != "bug" || labels[1].Name != "ui" {
		t.Errorf("expected [bug ui], got %+v", labels)
	}

	got, err := svc.GetByID(context.Background(), issue.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Labels) != 2 {
		t.Errorf("expected label 3 to be replaced, got %+v", got.Labels)
	}
	if got.Version != 1 {
		t.Errorf("label changes must not bump the version, got %d", got.Version)
	}

	history := store.historyFor(issue.ID)
	last := history[len(history)-1]
	if last.EventType != model.EventLabelsUpdated {
		t.Errorf("expected labels_updated, got %q", last.EventType)
	}
	if want := "Labels updated to: bug, ui"; *last.Details != want {
		t.Errorf("expected details %q, got %q", want, *last.Details)
	}
	if obs.history[model.EventLabelsUpdated] != 2 {
		t.Errorf("expected 2 labels_updated rows observed, got %d", obs.history[model.EventLabelsUpdated])
	}
}

func TestSetLabels_EmptyListClearsLabels(t *testing.T) {
	svc, store, _ := newTestIssueService()
	store.addLabel(1, "bug")
	issue := createIssue(t, svc, model.NewIssue{Title: "x"})
	if _, err := svc.SetLabels(context.Background(), issue.ID, []int64{1}); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}

	labels, err := svc.SetLabels(context.Background(), issue.ID, nil)
	if err != nil {
		t.Fatalf("SetLabels returned unexpected error: %v", err)
	}
	if labels == nil || len(labels) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", labels)
	}
	history := store.historyFor(issue.ID)
	if want := "Labels updated to: "; *history[len(history)-1].Details != want {
		t.Errorf("expected details %q, got %q", want, *history[len(history)-1].Details)
	}
}

func TestSetLabels_UnknownIssue(t *testing.T) {
	svc, _, _ := newTestIssueService()

	_, err := svc.SetLabels(context.Background(), 42, []int64{1})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetLabels_HistoryFailureKeepsOldLabels(t *testing.T) {
	svc, store, _ := newTestIssueService()
	store.addLabel(1, "bug")
	store.addLabel(2, "ui")
	issue := createIssue(t, svc, model.NewIssue{Title: "x"})
	if _, err := svc.SetLabels(context.Background(), issue.ID, []int64{1}); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}

	store.failOn["AppendHistory"] = errors.New("disk full")
	store.failAfter["AppendHistory"] = store.calls["AppendHistory"]
	if _, err := svc.SetLabels(context.Background(), issue.ID, []int64{2}); !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure, got %v", err)
	}

	got, err := svc.GetByID(context.Background(), issue.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Labels) != 1 || got.Labels[0].Name != "bug" {
		t.Errorf("expected labels to stay [bug], got %+v", got.Labels)
	}
}

func TestUniqueIDs(t *testing.T) {
	got := uniqueIDs([]int64{3, 1, 3, 2, 1})
	want := []int64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
