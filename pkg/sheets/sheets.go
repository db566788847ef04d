package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Credentials selects how the Sheets API is reached. Sources are tried in
// declaration order; an unusable token file (missing, unreadable JSON or no
// access token) falls through to the API key. An API key only grants read
// access.
type Credentials struct {
	ServiceAccountFile string
	TokenFile          string
	APIKey             string
}

func (c Credentials) clientOption() (option.ClientOption, error) {
	if c.ServiceAccountFile != "" {
		return option.WithCredentialsFile(c.ServiceAccountFile), nil
	}
	var tokenErr error
	if c.TokenFile != "" {
		opt, err := c.tokenOption()
		if err == nil {
			return opt, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
		tokenErr = err
	}
	if c.APIKey != "" {
		if tokenErr != nil {
			log.Debugf("Falling back to API key: %v", tokenErr)
		}
		return option.WithAPIKey(c.APIKey), nil
	}
	if tokenErr != nil {
		return nil, tokenErr
	}
	return nil, fmt.Errorf("%w: no credentials configured", ErrUnauthenticated)
}

func (c Credentials) tokenOption() (option.ClientOption, error) {
	b, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: token file %s missing", ErrUnauthenticated, c.TokenFile)
		}
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("%w: token file %s: %v", ErrUnauthenticated, c.TokenFile, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: token file %s has no access token", ErrUnauthenticated, c.TokenFile)
	}
	return option.WithTokenSource(oauth2.StaticTokenSource(&tok)), nil
}

// SheetClient is the Store backed by the Google Sheets v4 API. Every call is
// bounded by the client timeout and is never retried.
type SheetClient struct {
	service *sheets.Service
	timeout time.Duration
}

func NewSheetClient(ctx context.Context, creds Credentials, timeout time.Duration) (*SheetClient, error) {
	opt, err := creds.clientOption()
	if err != nil {
		return nil, err
	}
	srv, err := sheets.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return &SheetClient{service: srv, timeout: timeout}, nil
}

func (s *SheetClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SheetClient) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, mapError("read "+rng, err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = trimRow(cells)
	}
	n := len(out)
	for n > 0 && len(out[n-1]) == 0 {
		n--
	}
	return out[:n], nil
}

func (s *SheetClient) AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.service.Spreadsheets.Values.Append(
		spreadsheetID,
		QuoteSheet(sheetName),
		&sheets.ValueRange{Values: toValues([][]string{row})},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return mapError("append "+sheetName, err)
	}
	return nil
}

func (s *SheetClient) WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.service.Spreadsheets.Values.Update(
		spreadsheetID,
		rng,
		&sheets.ValueRange{Values: toValues(rows)},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return mapError("write "+rng, err)
	}
	return nil
}

func (s *SheetClient) ClearRange(ctx context.Context, spreadsheetID, rng string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return mapError("clear "+rng, err)
	}
	return nil
}

// DeleteRow removes a physical row, shifting every row below it up by one.
func (s *SheetClient) DeleteRow(ctx context.Context, spreadsheetID, sheetName string, row int) error {
	if row < 1 {
		return fmt.Errorf("%w: row %d", ErrInvalidRange, row)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	tabID, err := s.tabID(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	req := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:         tabID,
				Dimension:       "ROWS",
				StartIndex:      int64(row - 1),
				EndIndex:        int64(row),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	}
	_, err = s.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{req},
	}).Context(ctx).Do()
	if err != nil {
		return mapError(fmt.Sprintf("delete row %d", row), err)
	}
	return nil
}

// tabID resolves the numeric id of a tab, which row removal needs instead of its title.
func (s *SheetClient) tabID(ctx context.Context, spreadsheetID, sheetName string) (int64, error) {
	ss, err := s.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties(sheetId,title)").Context(ctx).Do()
	if err != nil {
		return 0, mapError("get spreadsheet", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}

func mapError(op string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch {
		case gErr.Code == http.StatusUnauthorized || gErr.Code == http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", op, ErrUnauthenticated, err)
		case gErr.Code == http.StatusNotFound,
			gErr.Code == http.StatusBadRequest && strings.Contains(gErr.Message, "Unable to parse range"):
			return fmt.Errorf("%s: %w: %v", op, ErrSheetNotFound, err)
		}
		log.WithField("code", gErr.Code).Debugf("Sheets API error on %s: %v", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Unauthenticated is the Store used when no credential is available. Every
// call fails with ErrUnauthenticated so the API can answer 401 until the
// operator provides credentials.
type Unauthenticated struct {
	Reason error
}

func (u Unauthenticated) err() error {
	if u.Reason != nil {
		return u.Reason
	}
	return ErrUnauthenticated
}

func (u Unauthenticated) ReadRange(context.Context, string, string) ([][]string, error) {
	return nil, u.err()
}

func (u Unauthenticated) AppendRow(context.Context, string, string, []string) error {
	return u.err()
}

func (u Unauthenticated) WriteRange(context.Context, string, string, [][]string) error {
	return u.err()
}

func (u Unauthenticated) ClearRange(context.Context, string, string) error {
	return u.err()
}

func (u Unauthenticated) DeleteRow(context.Context, string, string, int) error {
	return u.err()
}
