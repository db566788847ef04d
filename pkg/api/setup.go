package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"oohsheets/pkg/config"
	"oohsheets/pkg/records"
	"oohsheets/pkg/sheets"

	log "github.com/sirupsen/logrus"
)

// NewStore builds the configured store backend. A sheets backend without
// usable credentials still starts; every call then fails as unauthenticated.
func NewStore(ctx context.Context, cfg *config.Config) (sheets.Store, error) {
	switch strings.ToLower(cfg.Store.Backend) {
	case "sheets":
		client, err := sheets.NewSheetClient(ctx, sheets.Credentials{
			ServiceAccountFile: cfg.Store.CredentialsFile,
			TokenFile:          cfg.Store.TokenFile,
			APIKey:             cfg.Store.APIKey,
		}, cfg.Store.Timeout)
		if errors.Is(err, sheets.ErrUnauthenticated) {
			log.Warnf("Google Sheets not authenticated, record calls will fail: %v", err)
			return sheets.Unauthenticated{Reason: err}, nil
		}
		if err != nil {
			return nil, err
		}
		return client, nil

	case "xlsx":
		log.Infof("Using local workbook %s", cfg.Store.XLSXPath)
		return sheets.NewXLSXStore(cfg.Store.XLSXPath), nil

	case "memory":
		log.Warn("Using in-memory store, records are lost on exit")
		mem := sheets.NewMemoryStore()
		mem.StopRecording()
		mem.Seed(cfg.Sheet.SpreadsheetID, cfg.Sheet.Name, nil)
		return mem, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// NewService wires a records.Service to store according to cfg.
func NewService(store sheets.Store, cfg *config.Config) (*records.Service, error) {
	policy, err := records.ParseDeletePolicy(cfg.Sheet.DeletePolicy)
	if err != nil {
		return nil, err
	}
	return records.NewService(store, records.Options{
		SpreadsheetID: cfg.Sheet.SpreadsheetID,
		SheetName:     cfg.Sheet.Name,
		DeletePolicy:  policy,
	}), nil
}
