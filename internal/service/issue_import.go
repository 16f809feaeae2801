package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// Import validates each row on its own and inserts every valid row in one
// transaction. Imported issues start at version 1 and get no history row.
func (s *IssueServiceImpl) Import(ctx context.Context, rows []model.ImportRow) (model.ImportResult, error) {
	result := model.ImportResult{Errors: []model.ImportError{}}

	now := s.now().UTC()
	var issues []*model.Issue
	for i, row := range rows {
		issue, err := issueFromRow(row)
		if err != nil {
			result.Errors = append(result.Errors, model.ImportError{Row: i + 1, Data: row, Error: err.Error()})
			continue
		}
		issue.CreatedAt = now
		issues = append(issues, issue)
	}
	result.Failed = len(result.Errors)

	if len(issues) > 0 {
		err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
			for _, issue := range issues {
				if err := tx.InsertIssue(ctx, issue); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			err = classify(err)
			s.observer.MutationCompleted(OpImportIssues, outcomeOf(err))
			return model.ImportResult{}, err
		}
	}
	result.Created = len(issues)
	s.observer.MutationCompleted(OpImportIssues, OutcomeAccepted)
	return result, nil
}

// issueFromRow maps a CSV record to a new issue. The error text is what the
// caller sees for the rejected row.
func issueFromRow(row model.ImportRow) (*model.Issue, error) {
	title := row["title"]
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("Missing title")
	}

	issue := &model.Issue{Title: title, Status: row["status"]}
	if strings.TrimSpace(issue.Status) == "" {
		issue.Status = model.StatusOpen
	}
	if d, ok := row["description"]; ok && d != "" {
		issue.Description = &d
	}
	if raw := strings.TrimSpace(row["assignee_id"]); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		issue.AssigneeID = &id
	}
	return issue, nil
}

// ParseImportCSV reads a CSV with a header row into records keyed by the
// lower-cased header names. Short records simply lack the trailing keys.
func ParseImportCSV(r io.Reader) ([]model.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalidArgument("csv is empty")
	}
	if err != nil {
		return nil, invalidArgument("csv header: %v", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []model.ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalidArgument("csv: %v", err)
		}
		row := make(model.ImportRow, len(header))
		for i, value := range record {
			if i < len(header) && header[i] != "" {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ImportCSV parses r and imports its rows.
func ImportCSV(ctx context.Context, svc IssueService, r io.Reader) (model.ImportResult, error) {
	rows, err := ParseImportCSV(r)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("parse import: %w", err)
	}
	return svc.Import(ctx, rows)
}
