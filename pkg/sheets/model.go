package sheets

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated is returned when the store rejects or lacks credentials.
	ErrUnauthenticated = errors.New("sheets: not authenticated")

	// ErrSheetNotFound is returned when the spreadsheet or the named tab does not exist.
	ErrSheetNotFound = errors.New("sheets: sheet not found")

	// ErrInvalidRange is returned for range strings that are not valid A1 notation.
	ErrInvalidRange = errors.New("sheets: invalid range")
)

// Store is the tabular store client. Rows and columns are 1-indexed in every
// range passed to it; rows read back are plain strings with trailing empty
// cells and trailing empty rows omitted.
type Store interface {
	ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error
	WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string) error
	ClearRange(ctx context.Context, spreadsheetID, rng string) error
	DeleteRow(ctx context.Context, spreadsheetID, sheetName string, row int) error
}

// trimRow drops trailing empty cells.
func trimRow(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}

// lastNonEmpty returns the 0-based index of the last row holding any value, or -1.
func lastNonEmpty(rows [][]string) int {
	for i := len(rows) - 1; i >= 0; i-- {
		if len(trimRow(rows[i])) > 0 {
			return i
		}
	}
	return -1
}

// sliceRange cuts a full grid down to rng, applying the read semantics every
// backend shares.
func sliceRange(grid [][]string, rng Range) [][]string {
	startRow, endRow := rng.StartRow, rng.EndRow
	if startRow == 0 {
		startRow = 1
	}
	if endRow == 0 || endRow > len(grid) {
		endRow = len(grid)
	}
	startCol, endCol := rng.StartCol, rng.EndCol
	if startCol == 0 {
		startCol = 1
	}

	var out [][]string
	for r := startRow; r <= endRow; r++ {
		src := grid[r-1]
		last := len(src)
		if endCol != 0 && endCol < last {
			last = endCol
		}
		var row []string
		if startCol <= last {
			row = append([]string(nil), src[startCol-1:last]...)
		}
		out = append(out, trimRow(row))
	}
	n := len(out)
	for n > 0 && len(out[n-1]) == 0 {
		n--
	}
	return out[:n]
}
