package sheets

import (
	"context"
	"time"
)

// Observer receives one notification per store call.
type Observer interface {
	ObserveStore(op string, elapsed time.Duration, err error)
}

type instrumented struct {
	next Store
	obs  Observer
}

// Instrument wraps a Store so every call is reported to obs.
func Instrument(next Store, obs Observer) Store {
	return &instrumented{next: next, obs: obs}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	i.obs.ObserveStore(op, time.Since(start), err)
}

func (i *instrumented) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	start := time.Now()
	rows, err := i.next.ReadRange(ctx, spreadsheetID, rng)
	i.observe("read", start, err)
	return rows, err
}

func (i *instrumented) AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error {
	start := time.Now()
	err := i.next.AppendRow(ctx, spreadsheetID, sheetName, row)
	i.observe("append", start, err)
	return err
}

func (i *instrumented) WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string) error {
	start := time.Now()
	err := i.next.WriteRange(ctx, spreadsheetID, rng, rows)
	i.observe("write", start, err)
	return err
}

func (i *instrumented) ClearRange(ctx context.Context, spreadsheetID, rng string) error {
	start := time.Now()
	err := i.next.ClearRange(ctx, spreadsheetID, rng)
	i.observe("clear", start, err)
	return err
}

func (i *instrumented) DeleteRow(ctx context.Context, spreadsheetID, sheetName string, row int) error {
	start := time.Now()
	err := i.next.DeleteRow(ctx, spreadsheetID, sheetName, row)
	i.observe("delete", start, err)
	return err
}
