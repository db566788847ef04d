package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1 reference. Zero in any bound means unbounded in that
// direction: "Sheet!A:C" has no rows set, "Sheet!1:1" has no columns set.
type Range struct {
	Sheet    string
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ColumnLetter converts a 1-based column number to its letter form
// (1 -> A, 26 -> Z, 27 -> AA). It returns "" for n < 1.
func ColumnLetter(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append(b, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// ColumnNumber is the inverse of ColumnLetter. Lowercase letters are accepted.
func ColumnNumber(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("%w: empty column", ErrInvalidRange)
	}
	n := 0
	for _, c := range strings.ToUpper(letters) {
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidRange, letters)
		}
		n = n*26 + int(c-'A'+1)
		if n > 1<<20 {
			return 0, fmt.Errorf("%w: column %q out of bounds", ErrInvalidRange, letters)
		}
	}
	return n, nil
}

// QuoteSheet wraps a tab name in single quotes, doubling embedded quotes, so
// names with spaces or punctuation ("Visão geral") are addressable.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// SheetRange addresses every cell of a tab.
func SheetRange(sheet string) string {
	return QuoteSheet(sheet)
}

// HeaderRange addresses the whole first row of a tab.
func HeaderRange(sheet string) string {
	return QuoteSheet(sheet) + "!1:1"
}

// RowRange addresses columns 1..width of a single physical row.
func RowRange(sheet string, row, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s!A%d:%s%d", QuoteSheet(sheet), row, ColumnLetter(width), row)
}

// String renders the range back to A1 notation with a quoted sheet name.
func (r Range) String() string {
	s := QuoteSheet(r.Sheet)
	if r.StartCol == 0 && r.StartRow == 0 && r.EndCol == 0 && r.EndRow == 0 {
		return s
	}
	start := cellRef(r.StartCol, r.StartRow)
	end := cellRef(r.EndCol, r.EndRow)
	if start == end && r.StartCol != 0 && r.StartRow != 0 {
		return s + "!" + start
	}
	return s + "!" + start + ":" + end
}

func cellRef(col, row int) string {
	ref := ColumnLetter(col)
	if row > 0 {
		ref += strconv.Itoa(row)
	}
	return ref
}

// ParseRange parses "Sheet", "'My Sheet'!A1:C3", "Sheet!A:C", "Sheet!1:1" and
// "Sheet!B2" forms.
func ParseRange(s string) (Range, error) {
	var r Range
	sheet, ref, err := splitSheet(s)
	if err != nil {
		return r, err
	}
	r.Sheet = sheet
	if ref == "" {
		return r, nil
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return r, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	if r.StartCol, r.StartRow, err = parseCell(parts[0]); err != nil {
		return r, err
	}
	if len(parts) == 1 {
		r.EndCol, r.EndRow = r.StartCol, r.StartRow
		return r, nil
	}
	if r.EndCol, r.EndRow, err = parseCell(parts[1]); err != nil {
		return r, err
	}
	if (r.StartCol == 0) != (r.EndCol == 0) && (r.StartRow == 0) != (r.EndRow == 0) {
		return r, fmt.Errorf("%w: mixed bounds in %q", ErrInvalidRange, s)
	}
	if r.EndCol != 0 && r.StartCol > r.EndCol || r.EndRow != 0 && r.StartRow > r.EndRow {
		return r, fmt.Errorf("%w: reversed bounds in %q", ErrInvalidRange, s)
	}
	return r, nil
}

func splitSheet(s string) (string, string, error) {
	if s == "" {
		return "", "", fmt.Errorf("%w: empty", ErrInvalidRange)
	}
	if s[0] != '\'' {
		idx := strings.LastIndex(s, "!")
		if idx < 0 {
			return s, "", nil
		}
		if idx == 0 {
			return "", "", fmt.Errorf("%w: missing sheet in %q", ErrInvalidRange, s)
		}
		return s[:idx], s[idx+1:], nil
	}

	var name strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			name.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			name.WriteByte('\'')
			i++
			continue
		}
		rest := s[i+1:]
		if name.Len() == 0 {
			return "", "", fmt.Errorf("%w: empty sheet name", ErrInvalidRange)
		}
		if rest == "" {
			return name.String(), "", nil
		}
		if rest[0] != '!' {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		return name.String(), rest[1:], nil
	}
	return "", "", fmt.Errorf("%w: unterminated quote in %q", ErrInvalidRange, s)
}

func parseCell(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	letters, digits := ref[:i], ref[i:]
	if letters == "" && digits == "" {
		return 0, 0, fmt.Errorf("%w: empty reference", ErrInvalidRange)
	}
	if letters != "" {
		if col, err = ColumnNumber(letters); err != nil {
			return 0, 0, err
		}
	}
	if digits != "" {
		row, err = strconv.Atoi(digits)
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("%w: row %q", ErrInvalidRange, digits)
		}
	}
	return col, row, nil
}
