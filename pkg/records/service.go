package records

import (
	"context"
	"fmt"
	"sort"

	"oohsheets/pkg/sheets"

	log "github.com/sirupsen/logrus"
)

// Options names the tab a Service works on and how it deletes.
type Options struct {
	SpreadsheetID string
	SheetName     string
	DeletePolicy  DeletePolicy
}

// Service exposes the rows of one tab as records.
//
// Every operation reads the sheet afresh and then acts on what it read. There
// is no lock and no version check between the read and the write, so a
// concurrent edit by another client can land in between: an update or delete
// may then hit a row that now holds a different record. Ids handed out by
// List and Get are only valid against the snapshot they came from, and after a
// delete under RemoveRow every later id refers to the next record down.
type Service struct {
	store sheets.Store
	opts  Options
}

func NewService(store sheets.Store, opts Options) *Service {
	return &Service{store: store, opts: opts}
}

func (s *Service) Options() Options {
	return s.opts
}

// Snapshot is the header and records of a single read.
type Snapshot struct {
	Headers []string
	Records []Record
}

// Lookup bounds-checks id against the snapshot.
func (sn Snapshot) Lookup(id int) (Record, error) {
	if id < 0 {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	if id >= len(sn.Records) {
		return Record{}, fmt.Errorf("%w: id %d (have %d)", ErrNotFound, id, len(sn.Records))
	}
	return sn.Records[id], nil
}

// ResolveHeaders reads row 1. A tab without a header row yields an empty
// slice, not an error.
func (s *Service) ResolveHeaders(ctx context.Context) ([]string, error) {
	rows, err := s.store.ReadRange(ctx, s.opts.SpreadsheetID, sheets.HeaderRange(s.opts.SheetName))
	if err != nil {
		return nil, s.fail("resolve headers", err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return NormalizeHeaders(rows[0]), nil
}

// Snapshot reads the whole tab: row 1 is the header, every later row a record
// whose id is its position among the data rows.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.store.ReadRange(ctx, s.opts.SpreadsheetID, sheets.SheetRange(s.opts.SheetName))
	if err != nil {
		return Snapshot{}, s.fail("list", err)
	}
	sn := Snapshot{Headers: []string{}, Records: []Record{}}
	if len(rows) == 0 {
		return sn, nil
	}
	sn.Headers = NormalizeHeaders(rows[0])
	for i, row := range rows[1:] {
		rec := ToRecord(sn.Headers, row)
		rec.ID = i
		sn.Records = append(sn.Records, rec)
	}
	log.WithFields(log.Fields{"sheet": s.opts.SheetName, "records": len(sn.Records)}).Debug("Loaded records")
	return sn, nil
}

// List returns every record. An empty tab or a header-only tab gives an empty
// slice.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	sn, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return sn.Records, nil
}

// Get returns the record with the given id in a fresh snapshot.
func (s *Service) Get(ctx context.Context, id int) (Record, error) {
	if id < 0 {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	sn, err := s.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}
	return sn.Lookup(id)
}

// Create appends fields as a new row after the last row holding data. Fields
// that are not column names are dropped.
func (s *Service) Create(ctx context.Context, fields Fields) error {
	headers, err := s.ResolveHeaders(ctx)
	if err != nil {
		return err
	}
	row := ToRow(headers, fields)
	if err := s.store.AppendRow(ctx, s.opts.SpreadsheetID, s.opts.SheetName, row); err != nil {
		return s.fail("create", err)
	}
	log.WithField("sheet", s.opts.SheetName).Debug("Appended record")
	return nil
}

// Update overwrites every column of the record's row. Columns missing from
// fields are written as "", so callers must send the complete record.
func (s *Service) Update(ctx context.Context, id int, fields Fields) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	sn, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, err := sn.Lookup(id); err != nil {
		return err
	}
	row, err := RowAddress(id)
	if err != nil {
		return err
	}
	rng := sheets.RowRange(s.opts.SheetName, row, len(sn.Headers))
	if err := s.store.WriteRange(ctx, s.opts.SpreadsheetID, rng, [][]string{ToRow(sn.Headers, fields)}); err != nil {
		return s.fail("update", err)
	}
	log.WithFields(log.Fields{"sheet": s.opts.SheetName, "id": id, "row": row}).Debug("Updated record")
	return nil
}

// Delete removes one record according to the configured policy. Under
// RemoveRow every id above the deleted one shifts down by one.
func (s *Service) Delete(ctx context.Context, id int) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	sn, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, err := sn.Lookup(id); err != nil {
		return err
	}
	return s.deleteAt(ctx, sn, id)
}

// DeleteMany deletes several records of one snapshot. All ids are validated
// before anything is written, then rows go in descending id order so earlier
// removals never move the rows still queued. A failure part way leaves the
// rows already deleted deleted; the count of those is returned with the error.
func (s *Service) DeleteMany(ctx context.Context, ids []int) (int, error) {
	sn, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.deleteIDs(ctx, sn, ids)
}

// DeleteWhere deletes every record whose column equals value. A column that is
// not in the header matches nothing.
func (s *Service) DeleteWhere(ctx context.Context, column, value string) (int, error) {
	sn, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	var ids []int
	for _, rec := range sn.Records {
		if v, ok := rec.Fields[column]; ok && v == value {
			ids = append(ids, rec.ID)
		}
	}
	return s.deleteIDs(ctx, sn, ids)
}

func (s *Service) deleteIDs(ctx context.Context, sn Snapshot, ids []int) (int, error) {
	order := DeletionOrder(ids)
	for _, id := range order {
		if _, err := sn.Lookup(id); err != nil {
			return 0, err
		}
	}
	for n, id := range order {
		if err := s.deleteAt(ctx, sn, id); err != nil {
			return n, err
		}
	}
	log.WithFields(log.Fields{"sheet": s.opts.SheetName, "deleted": len(order), "policy": s.opts.DeletePolicy}).Info("Deleted records")
	return len(order), nil
}

// DeletionOrder returns ids without duplicates, highest first.
func DeletionOrder(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func (s *Service) deleteAt(ctx context.Context, sn Snapshot, id int) error {
	row, err := RowAddress(id)
	if err != nil {
		return err
	}
	switch s.opts.DeletePolicy {
	case RemoveRow:
		err = s.store.DeleteRow(ctx, s.opts.SpreadsheetID, s.opts.SheetName, row)
	default:
		err = s.store.ClearRange(ctx, s.opts.SpreadsheetID, sheets.RowRange(s.opts.SheetName, row, len(sn.Headers)))
	}
	if err != nil {
		return s.fail("delete", err)
	}
	log.WithFields(log.Fields{"sheet": s.opts.SheetName, "id": id, "row": row, "policy": s.opts.DeletePolicy}).Debug("Deleted record")
	return nil
}

func (s *Service) fail(op string, err error) error {
	err = classify(op, err)
	log.WithField("sheet", s.opts.SheetName).Errorf("Store call failed: %v", err)
	return err
}
