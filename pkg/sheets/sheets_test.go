package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

func TestCredentialsFallThroughToAPIKey(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"access_token":""}`), 0600))

	for name, tokenFile := range map[string]string{
		"missing token file":  filepath.Join(dir, "absent.json"),
		"token without value": empty,
		"no token file":       "",
	} {
		t.Run(name, func(t *testing.T) {
			creds := Credentials{TokenFile: tokenFile, APIKey: "AIza-test"}
			opt, err := creds.clientOption()
			require.NoError(t, err)
			assert.NotNil(t, opt)

			client, err := NewSheetClient(context.Background(), creds, time.Second)
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestCredentialsWithoutUsableSource(t *testing.T) {
	_, err := Credentials{TokenFile: filepath.Join(t.TempDir(), "absent.json")}.clientOption()
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Contains(t, err.Error(), "absent.json")

	_, err = Credentials{}.clientOption()
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCredentialsPreferTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"ya29.x","token_type":"Bearer"}`), 0600))
	_, err := Credentials{TokenFile: path, APIKey: "AIza-test"}.clientOption()
	assert.NoError(t, err)
}

// fakeSheetsAPI serves handler as the Sheets endpoint and returns a client
// pointed at it.
func fakeSheetsAPI(t *testing.T, handler http.HandlerFunc) *SheetClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := gsheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return &SheetClient{service: svc, timeout: time.Second}
}

func TestAppendRowTargetsWholeTab(t *testing.T) {
	var path string
	var query map[string][]string
	client := fakeSheetsAPI(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, client.AppendRow(context.Background(), "planilha", "Visão geral", []string{"Acme", "R$ 100,00"}))
	assert.Equal(t, "/v4/spreadsheets/planilha/values/'Visão geral':append", path)
	assert.Equal(t, []string{"USER_ENTERED"}, query["valueInputOption"])
	assert.Equal(t, []string{"INSERT_ROWS"}, query["insertDataOption"])
}

func TestSheetClientMapsAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, "Request had invalid credentials", ErrUnauthenticated},
		{"forbidden", http.StatusForbidden, "The caller does not have permission", ErrUnauthenticated},
		{"missing tab", http.StatusBadRequest, "Unable to parse range: Nope", ErrSheetNotFound},
		{"missing spreadsheet", http.StatusNotFound, "Requested entity was not found", ErrSheetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := fakeSheetsAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, tt.status, tt.msg)
			})
			_, err := client.ReadRange(context.Background(), "planilha", SheetRange("Nope"))
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSheetClientServerErrorIsPlain(t *testing.T) {
	client := fakeSheetsAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
	})
	err := client.WriteRange(context.Background(), "planilha", RowRange("Dados", 2, 2), [][]string{{"a", "b"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
	assert.NotErrorIs(t, err, ErrSheetNotFound)
}
