package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"iconograph/internal/stats"
	"iconograph/internal/survey"
)

type fakePipeline struct {
	process func(ctx context.Context, query string) (*survey.QueryResult, error)
}

func (f *fakePipeline) ProcessQuery(ctx context.Context, query string) (*survey.QueryResult, error) {
	return f.process(ctx, query)
}

func sampleResult(query string) *survey.QueryResult {
	works := []survey.AnnotatedWork{
		{
			CandidateWork: survey.CandidateWork{Title: "The Last Supper", Artist: "Leonardo da Vinci", Year: "1495-1498", Era: "Renaissance"},
			ImageURL:      "https://img.example/supper.jpg",
			Annotation:    "An annotation.",
		},
	}
	return &survey.QueryResult{
		Query:                query,
		NarrativeTitle:       "A title",
		NarrativeDescription: "A description.",
		Artworks:             survey.Aggregate(works),
	}
}

func newTestServer(t *testing.T, pipeline QueryPipeline) *httptest.Server {
	t.Helper()
	tracker := stats.NewTracker(10, nil)
	srv := httptest.NewServer(New(":0", pipeline, tracker, zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postQuery(t *testing.T, srv *httptest.Server, query string) *http.Response {
	t.Helper()
	resp, err := http.PostForm(srv.URL+"/api/query", url.Values{"query": {query}})
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]json.RawMessage {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestHandleQuery(t *testing.T) {
	pipeline := &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return sampleResult(query), nil
	}}
	srv := newTestServer(t, pipeline)

	resp := postQuery(t, srv, "The Last Supper")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decodeBody(t, resp)
	assert.JSONEq(t, `"The Last Supper"`, string(body["query"]))
	assert.Contains(t, body, "artworks")
	assert.Contains(t, body, "narrative")
}

func TestHandleQueryEmpty(t *testing.T) {
	pipeline := &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return nil, survey.ErrEmptyQuery
	}}
	srv := newTestServer(t, pipeline)

	resp := postQuery(t, srv, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.JSONEq(t, `"Query is required"`, string(body["error"]))
}

func TestHandleQueryInternalError(t *testing.T) {
	pipeline := &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return nil, &survey.GenerationError{Stage: "interpret", Err: errors.New("model down")}
	}}
	srv := newTestServer(t, pipeline)

	resp := postQuery(t, srv, "anything")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.JSONEq(t, `"Failed to process query"`, string(body["error"]))
}

func TestUnknownAPIEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return nil, nil
	}})

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.JSONEq(t, `"Not found"`, string(body["error"]))
}

func TestHandleStats(t *testing.T) {
	tracker := stats.NewTracker(10, nil)
	tracker.RecordQuery("popular")
	tracker.RecordQuery("popular")
	tracker.RecordQuery("rare")

	srv := httptest.NewServer(New(":0", &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return nil, nil
	}}, tracker, zap.NewNop()).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		RecentQueries     []string           `json:"recentQueries"`
		PopularQueries    map[string]int     `json:"popularQueries"`
		TotalInteractions int                `json:"userInteractions"`
		TopQueries        []stats.QueryCount `json:"topQueries"`
	}
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	assert.Equal(t, []string{"rare", "popular", "popular"}, got.RecentQueries)
	assert.Equal(t, 2, got.PopularQueries["popular"])
	assert.Equal(t, 3, got.TotalInteractions)
	require.NotEmpty(t, got.TopQueries)
	assert.Equal(t, "popular", got.TopQueries[0].Query)
}

func wsDial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestWebSocketQueryFlow(t *testing.T) {
	pipeline := &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return sampleResult(query), nil
	}}
	srv := newTestServer(t, pipeline)
	conn := wsDial(t, srv)

	welcome := readWS(t, conn)
	assert.JSONEq(t, `"welcome"`, string(welcome["type"]))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "query", "content": "The Last Supper"}))

	status := readWS(t, conn)
	assert.JSONEq(t, `"status"`, string(status["type"]))
	assert.JSONEq(t, `"processing"`, string(status["status"]))

	results := readWS(t, conn)
	assert.JSONEq(t, `"results"`, string(results["type"]))

	var result survey.QueryResult
	require.NoError(t, json.Unmarshal(results["results"], &result))
	assert.Equal(t, "The Last Supper", result.Query)
	require.Len(t, result.Artworks.All, 1)
}

func TestWebSocketQueryError(t *testing.T) {
	pipeline := &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return nil, errors.New("pipeline exploded")
	}}
	srv := newTestServer(t, pipeline)
	conn := wsDial(t, srv)

	readWS(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "query", "content": "boom"}))

	readWS(t, conn) // status
	errMsg := readWS(t, conn)
	assert.JSONEq(t, `"error"`, string(errMsg["type"]))
	assert.JSONEq(t, `"Failed to process your request"`, string(errMsg["message"]))
}

func TestWebSocketIgnoresMalformedMessages(t *testing.T) {
	pipeline := &fakePipeline{process: func(ctx context.Context, query string) (*survey.QueryResult, error) {
		return sampleResult(query), nil
	}}
	srv := newTestServer(t, pipeline)
	conn := wsDial(t, srv)

	readWS(t, conn) // welcome

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "other"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "query", "content": "valid"}))

	status := readWS(t, conn)
	assert.JSONEq(t, `"status"`, string(status["type"]), "malformed messages are skipped without a reply")
}
