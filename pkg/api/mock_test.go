package api

import (
	"context"

	"oohsheets/pkg/sheets"
)

// mockStore wraps a Store and fails the operations that have an error set.
// DeleteErr applies once DeleteOK row removals have gone through.
type mockStore struct {
	sheets.Store
	ReadErr   error
	AppendErr error
	WriteErr  error
	ClearErr  error
	DeleteErr error
	DeleteOK  int

	deletes int
}

func (m *mockStore) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Store.ReadRange(ctx, spreadsheetID, rng)
}

func (m *mockStore) AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	return m.Store.AppendRow(ctx, spreadsheetID, sheetName, row)
}

func (m *mockStore) WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	return m.Store.WriteRange(ctx, spreadsheetID, rng, rows)
}

func (m *mockStore) ClearRange(ctx context.Context, spreadsheetID, rng string) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	return m.Store.ClearRange(ctx, spreadsheetID, rng)
}

func (m *mockStore) DeleteRow(ctx context.Context, spreadsheetID, sheetName string, row int) error {
	if m.DeleteErr != nil && m.deletes >= m.DeleteOK {
		return m.DeleteErr
	}
	m.deletes++
	return m.Store.DeleteRow(ctx, spreadsheetID, sheetName, row)
}
