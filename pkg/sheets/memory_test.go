package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBook = "book"

func seeded() *MemoryStore {
	m := NewMemoryStore()
	m.Seed(testBook, "Dados", [][]string{
		{"Cliente", "Investimento"},
		{"Acme", "R$ 100,00"},
		{"Beta", ""},
		{"Gama", "R$ 5,00"},
	})
	return m
}

func TestMemoryStoreReadRange(t *testing.T) {
	ctx := context.Background()
	m := seeded()

	rows, err := m.ReadRange(ctx, testBook, SheetRange("Dados"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Cliente", "Investimento"},
		{"Acme", "R$ 100,00"},
		{"Beta"},
		{"Gama", "R$ 5,00"},
	}, rows)

	rows, err = m.ReadRange(ctx, testBook, HeaderRange("Dados"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Cliente", "Investimento"}}, rows)

	rows, err = m.ReadRange(ctx, testBook, "'Dados'!B2:B3")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"R$ 100,00"}}, rows, "trailing empty rows are omitted")

	_, err = m.ReadRange(ctx, testBook, SheetRange("Missing"))
	assert.ErrorIs(t, err, ErrSheetNotFound)
	_, err = m.ReadRange(ctx, "other", SheetRange("Dados"))
	assert.ErrorIs(t, err, ErrSheetNotFound)
	_, err = m.ReadRange(ctx, testBook, "'Dados'!C1:A1")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestMemoryStoreAppendAfterLastValue(t *testing.T) {
	ctx := context.Background()
	m := seeded()
	require.NoError(t, m.ClearRange(ctx, testBook, RowRange("Dados", 4, 2)))
	require.NoError(t, m.AppendRow(ctx, testBook, "Dados", []string{"Delta", "1"}))

	rows := m.Rows(testBook, "Dados")
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Delta", "1"}, rows[3], "cleared trailing row is reused")
}

func TestMemoryStoreWriteClearDelete(t *testing.T) {
	ctx := context.Background()
	m := seeded()

	require.NoError(t, m.WriteRange(ctx, testBook, RowRange("Dados", 3, 2), [][]string{{"Beta", "R$ 7,00"}}))
	require.NoError(t, m.WriteRange(ctx, testBook, "'Dados'!A7:B7", [][]string{{"far", "away"}}))
	rows := m.Rows(testBook, "Dados")
	assert.Equal(t, []string{"Beta", "R$ 7,00"}, rows[2])
	assert.Equal(t, []string{"far", "away"}, rows[6])

	require.NoError(t, m.ClearRange(ctx, testBook, RowRange("Dados", 2, 2)))
	assert.Equal(t, []string{"", ""}, m.Rows(testBook, "Dados")[1])

	require.NoError(t, m.DeleteRow(ctx, testBook, "Dados", 2))
	rows = m.Rows(testBook, "Dados")
	assert.Equal(t, []string{"Beta", "R$ 7,00"}, rows[1])
	assert.ErrorIs(t, m.DeleteRow(ctx, testBook, "Dados", 0), ErrInvalidRange)
	assert.NoError(t, m.DeleteRow(ctx, testBook, "Dados", 100))

	assert.Len(t, m.CallsFor("delete"), 3)
	assert.Equal(t, 2, m.CallsFor("delete")[0].Row)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := seeded().ReadRange(ctx, testBook, SheetRange("Dados"))
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (r *recordingObserver) ObserveStore(op string, _ time.Duration, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	s := Instrument(seeded(), obs)

	_, err := s.ReadRange(ctx, testBook, SheetRange("Dados"))
	require.NoError(t, err)
	require.NoError(t, s.AppendRow(ctx, testBook, "Dados", []string{"x"}))
	require.NoError(t, s.WriteRange(ctx, testBook, RowRange("Dados", 2, 1), [][]string{{"y"}}))
	require.NoError(t, s.ClearRange(ctx, testBook, RowRange("Dados", 2, 1)))
	require.NoError(t, s.DeleteRow(ctx, testBook, "Dados", 2))
	_, err = s.ReadRange(ctx, testBook, SheetRange("Nope"))
	require.Error(t, err)

	assert.Equal(t, []string{"read", "append", "write", "clear", "delete", "read"}, obs.ops)
	assert.True(t, errors.Is(obs.errs[5], ErrSheetNotFound))
}

func TestUnauthenticatedStore(t *testing.T) {
	ctx := context.Background()
	var s Store = Unauthenticated{}
	_, err := s.ReadRange(ctx, testBook, "S")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, s.AppendRow(ctx, testBook, "S", nil), ErrUnauthenticated)
	assert.ErrorIs(t, s.DeleteRow(ctx, testBook, "S", 2), ErrUnauthenticated)
}

func TestCredentialsWithoutSourceAreUnauthenticated(t *testing.T) {
	_, err := NewSheetClient(context.Background(), Credentials{}, time.Second)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = NewSheetClient(context.Background(), Credentials{TokenFile: t.TempDir() + "/missing.json"}, time.Second)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMemoryStoreStopRecording(t *testing.T) {
	ctx := context.Background()
	m := seeded()
	_, err := m.ReadRange(ctx, testBook, SheetRange("Dados"))
	require.NoError(t, err)
	require.Len(t, m.CallsFor("read"), 1)

	m.StopRecording()
	assert.Empty(t, m.Calls)
	_, err = m.ReadRange(ctx, testBook, SheetRange("Dados"))
	require.NoError(t, err)
	require.NoError(t, m.AppendRow(ctx, testBook, "Dados", []string{"Delta"}))
	assert.Empty(t, m.Calls)
	assert.Len(t, m.Rows(testBook, "Dados"), 5, "the store keeps working")
}
