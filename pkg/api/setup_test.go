package api

import (
	"context"
	"path/filepath"
	"testing"

	"oohsheets/pkg/config"
	"oohsheets/pkg/records"
	"oohsheets/pkg/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	cfg := &config.Config{}
	cfg.Sheet.SpreadsheetID = book
	cfg.Sheet.Name = sheet
	cfg.Sheet.DeletePolicy = "remove"
	cfg.Store.Backend = backend
	return cfg
}

func TestNewStoreWithoutCredentialsIsUnauthenticated(t *testing.T) {
	cfg := testConfig("sheets")
	cfg.Store.TokenFile = filepath.Join(t.TempDir(), "absent.json")

	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	_, err = store.ReadRange(context.Background(), book, sheets.SheetRange(sheet))
	assert.ErrorIs(t, err, sheets.ErrUnauthenticated)
}

func TestNewStoreFallsBackToAPIKey(t *testing.T) {
	cfg := testConfig("sheets")
	cfg.Store.TokenFile = filepath.Join(t.TempDir(), ".token.json")
	cfg.Store.APIKey = "AIza-test"

	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &sheets.SheetClient{}, store)
}

func TestNewStoreMemoryStartsEmpty(t *testing.T) {
	cfg := testConfig("memory")
	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)

	svc, err := NewService(store, cfg)
	require.NoError(t, err)
	assert.Equal(t, records.RemoveRow, svc.Options().DeletePolicy)

	recs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	mem, ok := store.(*sheets.MemoryStore)
	require.True(t, ok)
	assert.Empty(t, mem.Calls, "runtime memory store keeps no call log")
}

func TestNewStoreXLSX(t *testing.T) {
	cfg := testConfig("xlsx")
	cfg.Store.XLSXPath = filepath.Join(t.TempDir(), "dados.xlsx")
	require.NoError(t, sheets.CreateWorkbook(cfg.Store.XLSXPath, sheet, []string{"Cliente", "Investimento"}))

	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	svc, err := NewService(store, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, records.Fields{"Cliente": "Acme", "Investimento": "R$ 100,00"}))
	rec, err := svc.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.Get("Cliente"))
}

func TestNewStoreUnknownBackend(t *testing.T) {
	_, err := NewStore(context.Background(), testConfig("postgres"))
	assert.Error(t, err)
}

func TestNewServiceRejectsBadPolicy(t *testing.T) {
	cfg := testConfig("memory")
	cfg.Sheet.DeletePolicy = "shred"
	_, err := NewService(sheets.NewMemoryStore(), cfg)
	assert.Error(t, err)
}
