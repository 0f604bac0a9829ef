package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sdgsearch/search"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	file := filepath.Join(t.TempDir(), "index.sqlite")
	docs := []search.Document{
		{ID: 1, Title: "Solar power for rural communities", Description: "affordable clean energy from solar panels", Tags: []string{"sdg7"}},
		{ID: 2, Title: "Ocean plastic cleanup", Description: "removing plastic waste from the oceans", Tags: []string{"sdg14"}},
		{ID: 3, Title: "Education for girls", Description: "access to quality education everywhere", Tags: []string{"sdg4", "sdg5"}},
	}
	require.NoError(t, search.Build(t.Context(), file, docs))

	index, err := search.Open(t.Context(), file)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	ts := httptest.NewServer(New(index, zap.NewNop()).Handler())
	t.Cleanup(ts.Close)

	return ts
}

func TestSearchEndpoint(t *testing.T) {
	ts := createTestServer(t)

	t.Run("returns ranked results", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/search?q=solar+energy")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body searchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

		require.Equal(t, "solar energy", body.Query)
		require.NotZero(t, body.Count)
		require.Equal(t, "Solar power for rural communities", body.Results[0].Title)
	})

	t.Run("sdg query filters by goal tag", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/search?q=sdg7+clean+energy")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body searchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

		require.NotZero(t, body.Count)
		for _, result := range body.Results {
			require.Contains(t, result.Tags, "sdg7")
		}
	})

	t.Run("missing query is a bad request", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/search")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("n bounds the result count", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/search?q=clean+energy&n=1")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body searchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, 1, body.Count)
	})
}

func TestHealthEndpoint(t *testing.T) {
	ts := createTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, float64(3), body["documents"])
}

func TestSearchSocket(t *testing.T) {
	ts := createTestServer(t)

	url := strings.Replace(ts.URL, "http", "ws", 1) + "/api/search/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(socketQuery{Query: "solar energy", TopN: 2}))

	var body searchResponse
	require.NoError(t, conn.ReadJSON(&body))
	require.Equal(t, "solar energy", body.Query)
	require.NotZero(t, body.Count)

	t.Run("empty query gets an error message", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(socketQuery{}))

		var failure socketError
		require.NoError(t, conn.ReadJSON(&failure))
		require.Equal(t, "missing query", failure.Error)
	})
}
