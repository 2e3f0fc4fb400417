package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricestream/internal/domain"
	"pricestream/internal/service"
)

// stubSource never has data; endpoint tests drive state via SetSymbol.
type stubSource struct{}

func (stubSource) LastTrade(ctx context.Context, symbol string) (domain.Quote, error) {
	return domain.Quote{}, domain.ErrNoQuote
}

type stubStore struct {
	saved   map[string]string
	touched []string
	recent  []domain.WatchedSymbol
}

func newStubStore() *stubStore {
	return &stubStore{saved: make(map[string]string)}
}

func (s *stubStore) SaveSetting(key, value string) error {
	s.saved[key] = value
	return nil
}

func (s *stubStore) GetSetting(key string) (string, error) {
	return s.saved[key], nil
}

func (s *stubStore) TouchSymbol(symbol string) error {
	s.touched = append(s.touched, symbol)
	return nil
}

func (s *stubStore) RecentSymbols(limit int) ([]domain.WatchedSymbol, error) {
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func newTestServer(store domain.SymbolRepository) (*Server, *service.Feed) {
	feed := service.NewFeed(stubSource{}, store, service.FeedConfig{WindowSize: 100})
	srv := New(Config{Addr: ":0", AppName: "pricestream", Version: "test"}, feed, store)
	return srv, feed
}

func TestServer_Index(t *testing.T) {
	srv, _ := newTestServer(nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Contains(t, body.String(), "Real-Time Price Plot from IEX")

	missing, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServer_Series(t *testing.T) {
	srv, feed := newTestServer(nil)
	feed.SetSymbol("aapl")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/series")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap service.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))

	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, "IEX Real-Time Price: AAPL", snap.Title)
	assert.Equal(t, 100, snap.Capacity)
	assert.Empty(t, snap.Points, "a just-watched symbol has nothing plotted yet")
}

func TestServer_Series_Idle(t *testing.T) {
	srv, _ := newTestServer(nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/series")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap service.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))

	assert.Equal(t, "", snap.Symbol)
	require.Len(t, snap.Points, 1, "idle feed snapshots the zero placeholder")
	assert.Zero(t, snap.Points[0].Price)
}

func TestServer_SetSymbol(t *testing.T) {
	t.Run("Normalizes And Persists", func(t *testing.T) {
		store := newStubStore()
		srv, feed := newTestServer(store)
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/api/symbol", "application/json",
			strings.NewReader(`{"symbol":"  aapl "}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "AAPL", out["symbol"])
		assert.Equal(t, "AAPL", feed.Symbol())
		assert.Equal(t, "AAPL", store.saved[domain.SettingLastSymbol])
		assert.Equal(t, []string{"AAPL"}, store.touched)
	})

	t.Run("Rejects GET", func(t *testing.T) {
		srv, _ := newTestServer(nil)
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/api/symbol")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("Rejects Bad JSON", func(t *testing.T) {
		srv, _ := newTestServer(nil)
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/api/symbol", "application/json",
			strings.NewReader(`{"symbol":`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_Recent(t *testing.T) {
	store := newStubStore()
	store.recent = []domain.WatchedSymbol{
		{Symbol: "AAPL", WatchCount: 3},
		{Symbol: "GOOG", WatchCount: 1},
	}
	srv, _ := newTestServer(store)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/recent")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Count   int                    `json:"count"`
		Symbols []domain.WatchedSymbol `json:"symbols"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Count)
	require.Len(t, out.Symbols, 2)
	assert.Equal(t, "AAPL", out.Symbols[0].Symbol)
}

func TestServer_Recent_NoStore(t *testing.T) {
	srv, _ := newTestServer(nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/recent")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.EqualValues(t, 0, out["count"])
}

func TestServer_Health(t *testing.T) {
	srv, feed := newTestServer(nil)
	feed.SetSymbol("TSLA")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "pricestream", out["app"])
	assert.Equal(t, "TSLA", out["symbol"])
	assert.Contains(t, out, "metrics")

	window, ok := out["window"].(map[string]any)
	require.True(t, ok, "window fill missing")
	assert.EqualValues(t, 0, window["len"])
	assert.EqualValues(t, 100, window["capacity"])
}

func TestServer_ChartPNG(t *testing.T) {
	srv, _ := newTestServer(nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/chart.png?width=400&height=300")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestServer_WebSocket(t *testing.T) {
	srv, feed := newTestServer(nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first service.Update
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, service.UpdateSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.NotEmpty(t, first.Snapshot.Points)

	feed.SetSymbol("GOOG")

	var second service.Update
	require.NoError(t, conn.ReadJSON(&second))
	require.Equal(t, service.UpdateSnapshot, second.Type)
	assert.Equal(t, "GOOG", second.Snapshot.Symbol)
	assert.Empty(t, second.Snapshot.Points)
}

func TestRenderPNG(t *testing.T) {
	snap := service.Snapshot{
		Symbol:   "AAPL",
		Title:    "IEX Real-Time Price: AAPL",
		Capacity: 3600,
		Points: []service.Point{
			{Time: 1748874615000, DisplayTime: "2025-06-02 10:30:15", Price: 201.10},
			{Time: 1748874616000, DisplayTime: "2025-06-02 10:30:16", Price: 201.45},
			{Time: 1748874617000, DisplayTime: "2025-06-02 10:30:17", Price: 201.20},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, snap, 1000, 500))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

func TestRenderPNG_TooSmall(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPNG(&buf, service.Snapshot{}, 50, 50)
	assert.Error(t, err)
}
