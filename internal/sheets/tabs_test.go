package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/retry"
)

// newServerClient builds a Client whose Sheets service talks to the given
// handler, with a two-attempt backoff that never sleeps.
func newServerClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := sheetsapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication())
	require.NoError(t, err)

	return &Client{
		svc: svc,
		backoff: retry.Config{
			MaxAttempts: 2,
			Sleep:       func(ctx context.Context, d time.Duration) error { return nil },
		},
		log: logger.NewNopLogger(),
	}
}

func TestReadAllRowsOutageYieldsEmptyGrid(t *testing.T) {
	requests := 0
	client := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"error":{"code":500,"message":"backend"}}`, http.StatusInternalServerError)
	}))

	grid, err := client.ReadAllRows(context.Background(), "sheet-1", "Content_Plan")

	require.NoError(t, err, "an exhausted retry budget must read as an empty grid")
	assert.Nil(t, grid)
	assert.Equal(t, 2, requests, "the read must still use the full retry budget")
}

func TestReadAllRowsParsesGrid(t *testing.T) {
	client := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":          "'Content_Plan'!A1:C2",
			"majorDimension": "ROWS",
			"values":         [][]any{{"Estatus", "Tema"}, {"READY", 42}},
		})
	}))

	grid, err := client.ReadAllRows(context.Background(), "sheet-1", "Content_Plan")

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Estatus", "Tema"}, {"READY", "42"}}, grid)
}

func TestUpdateCellsSkipsUnknownColumn(t *testing.T) {
	var puts []string
	client := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		puts = append(puts, r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedCells": 1})
	}))

	hdr := HeaderMap{"Estatus": 1}
	err := client.UpdateCells(context.Background(), "sheet-1", "Content_Plan", 2, map[string]string{
		"Estatus":   "RUNNING",
		"No_Existe": "x",
	}, hdr)

	require.NoError(t, err)
	require.Len(t, puts, 1, "the unknown column must be skipped, not sent or failed")
	assert.True(t, strings.HasSuffix(puts[0], "'Content_Plan'!A2"), "unexpected range in %q", puts[0])
}

func TestUpdateCellsErrorStopsWithoutRollback(t *testing.T) {
	requests := 0
	client := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"error":{"code":500,"message":"backend"}}`, http.StatusInternalServerError)
	}))

	hdr := HeaderMap{"Estatus": 1}
	err := client.UpdateCells(context.Background(), "sheet-1", "Content_Plan", 2,
		map[string]string{"Estatus": "RUNNING"}, hdr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Content_Plan'!A2")
	assert.Equal(t, 2, requests)
}
