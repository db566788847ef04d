package records

import (
	"fmt"
	"strings"
)

// DeletePolicy selects what deleting a record does to the sheet.
type DeletePolicy int

const (
	// ClearContent blanks the record's cells and leaves an empty row behind,
	// so the ids of later records do not move.
	ClearContent DeletePolicy = iota

	// RemoveRow removes the physical row. Every record after it moves up one
	// id; lists fetched before the delete must be fetched again.
	RemoveRow
)

func (p DeletePolicy) String() string {
	switch p {
	case ClearContent:
		return "clear"
	case RemoveRow:
		return "remove"
	}
	return fmt.Sprintf("DeletePolicy(%d)", int(p))
}

// ParseDeletePolicy accepts "clear" and "remove" in any case.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clear", "":
		return ClearContent, nil
	case "remove":
		return RemoveRow, nil
	}
	return 0, fmt.Errorf("unknown delete policy %q (want clear or remove)", s)
}

func (p DeletePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *DeletePolicy) UnmarshalText(b []byte) error {
	v, err := ParseDeletePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
