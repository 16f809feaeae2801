package service

import (
	"context"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// SetLabels replaces the issue's label set with the labels that exist among
// labelIDs and records one "labels_updated" history row naming them.
func (s *IssueServiceImpl) SetLabels(ctx context.Context, id int64, labelIDs []int64) ([]model.Label, error) {
	var labels []model.Label
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetIssue(ctx, id); err != nil {
			return err
		}

		var err error
		labels, err = tx.GetLabelsByIDs(ctx, uniqueIDs(labelIDs))
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(labels))
		names := make([]string, 0, len(labels))
		for _, l := range labels {
			ids = append(ids, l.ID)
			names = append(names, l.Name)
		}
		if err := tx.ReplaceIssueLabels(ctx, id, ids); err != nil {
			return err
		}
		_, err = appendHistory(ctx, tx, id, model.EventLabelsUpdated, "Labels updated to: "+strings.Join(names, ", "))
		return err
	})
	err = classify(err)
	s.observer.MutationCompleted(OpSetLabels, outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.observer.HistoryAppended(model.EventLabelsUpdated, 1)
	if labels == nil {
		labels = []model.Label{}
	}
	return labels, nil
}

// uniqueIDs drops duplicates, keeping first occurrences in order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
