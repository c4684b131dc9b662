package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeSheets struct {
	mu       sync.Mutex
	values   map[string][][]interface{}
	appended []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		rng := r.URL.Path[strings.Index(r.URL.Path, "/values/")+len("/values/"):]
		values, ok := f.values[rng]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"Unable to parse range"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		body, _ := io.ReadAll(r.Body)
		f.appended = append(f.appended, string(body))
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), "sheet-123", "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestReadRows(t *testing.T) {
	fake := &fakeSheets{values: map[string][][]interface{}{
		"'Catálogo Puestos'": {
			{"Título", "Nivel"},
			{" Commercial Analyst ", "Junior"},
			{"", ""},
			{"Controller"},
		},
	}}
	c := newTestClient(t, fake)

	rows, err := c.ReadRows(context.Background(), "Catálogo Puestos")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Título", "Nivel"},
		{"Commercial Analyst", "Junior"},
		{"Controller"},
	}, rows)
}

func TestReadRows_Error(t *testing.T) {
	c := newTestClient(t, &fakeSheets{values: map[string][][]interface{}{}})

	_, err := c.ReadRows(context.Background(), "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Missing"`)
}

func TestAppendRow(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	err := c.AppendRow(context.Background(), "Seguimiento Generaciones", []string{"2025-01-02 03:04:05", "Sales Analyst"})
	require.NoError(t, err)

	require.Len(t, fake.appended, 1)
	assert.Contains(t, fake.appended[0], "Sales Analyst")
}

func TestNew_RequiresSpreadsheet(t *testing.T) {
	_, err := New(context.Background(), "", "")
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "'Bob''s sheet'", quote("Bob's sheet"))
}
