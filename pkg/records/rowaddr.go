package records

import "fmt"

// headerRows is the number of physical rows above the first record.
const headerRows = 1

// RowAddress converts an external id to the 1-indexed physical row holding it:
// row 1 is the header, so id 0 lives on row 2.
func RowAddress(id int) (int, error) {
	if id < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return id + headerRows + 1, nil
}
