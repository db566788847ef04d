package records

import (
	"errors"
	"fmt"

	"oohsheets/pkg/sheets"
)

// Error kinds surfaced to callers. Store failures are wrapped so that both the
// kind and the original store error match with errors.Is.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidID       = errors.New("invalid record id")
	ErrInvalidAction   = errors.New("invalid action")
	ErrInvalidBody     = errors.New("invalid request body")
	ErrStore           = errors.New("store error")
	ErrRouteNotFound   = errors.New("route not found")
)

// classify re-raises a store error as one of the kinds above, keeping the
// original message.
func classify(op string, err error) error {
	kind := ErrStore
	switch {
	case errors.Is(err, sheets.ErrUnauthenticated):
		kind = ErrUnauthenticated
	case errors.Is(err, sheets.ErrSheetNotFound):
		kind = ErrSheetNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
