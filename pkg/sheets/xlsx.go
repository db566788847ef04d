package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// XLSXStore is a Store over a local workbook. The file is reopened on every
// call so edits made outside the process are always seen; writes are saved
// before the call returns. The spreadsheet id argument is ignored.
type XLSXStore struct {
	path string
	mu   sync.Mutex
}

func NewXLSXStore(path string) *XLSXStore {
	return &XLSXStore{path: path}
}

// CreateWorkbook writes a new workbook holding one tab with the given header
// row. An existing file is left untouched.
func CreateWorkbook(path, sheetName string, header []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	if len(header) > 0 {
		if err := f.SetSheetRow(sheetName, "A1", toCellRow(header)); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func (x *XLSXStore) open(sheetName string) (*excelize.File, error) {
	f, err := excelize.OpenFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: workbook %s", ErrSheetNotFound, x.path)
		}
		return nil, fmt.Errorf("open workbook %s: %w", x.path, err)
	}
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}
	return f, nil
}

// mutate opens the workbook, applies fn and saves the result.
func (x *XLSXStore) mutate(ctx context.Context, sheetName string, fn func(f *excelize.File) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	f, err := x.open(sheetName)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	if err := fn(f); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", x.path, err)
	}
	return nil
}

func (x *XLSXStore) ReadRange(ctx context.Context, _ string, rng string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	f, err := x.open(r.Sheet)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	grid, err := f.GetRows(r.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.Sheet, err)
	}
	return sliceRange(grid, r), nil
}

func (x *XLSXStore) AppendRow(ctx context.Context, _ string, sheetName string, row []string) error {
	return x.mutate(ctx, sheetName, func(f *excelize.File) error {
		grid, err := f.GetRows(sheetName)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, lastNonEmpty(grid)+2)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheetName, cell, toCellRow(row))
	})
}

func (x *XLSXStore) WriteRange(ctx context.Context, _ string, rng string, rows [][]string) error {
	r, err := ParseRange(rng)
	if err != nil {
		return err
	}
	return x.mutate(ctx, r.Sheet, func(f *excelize.File) error {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(max(r.StartCol, 1), max(r.StartRow, 1)+i)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(r.Sheet, cell, toCellRow(row)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (x *XLSXStore) ClearRange(ctx context.Context, _ string, rng string) error {
	r, err := ParseRange(rng)
	if err != nil {
		return err
	}
	return x.mutate(ctx, r.Sheet, func(f *excelize.File) error {
		grid, err := f.GetRows(r.Sheet)
		if err != nil {
			return err
		}
		endRow := r.EndRow
		if endRow == 0 || endRow > len(grid) {
			endRow = len(grid)
		}
		for row := max(r.StartRow, 1); row <= endRow; row++ {
			endCol := r.EndCol
			if endCol == 0 || endCol > len(grid[row-1]) {
				endCol = len(grid[row-1])
			}
			for col := max(r.StartCol, 1); col <= endCol; col++ {
				cell, err := excelize.CoordinatesToCellName(col, row)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(r.Sheet, cell, ""); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (x *XLSXStore) DeleteRow(ctx context.Context, _ string, sheetName string, row int) error {
	if row < 1 {
		return fmt.Errorf("%w: row %d", ErrInvalidRange, row)
	}
	return x.mutate(ctx, sheetName, func(f *excelize.File) error {
		return f.RemoveRow(sheetName, row)
	})
}

func toCellRow(row []string) *[]interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return &cells
}
