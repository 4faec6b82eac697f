package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posterlights/internal/engine"
	"posterlights/internal/httpapi"
	"posterlights/internal/strip"
	"posterlights/internal/timebase"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine, *httpapi.Server) {
	t.Helper()
	clk := &timebase.Fake{}
	eng := engine.New(engine.Options{Clock: clk, Driver: strip.NewSim(), Pixels: 20, Brightness: 0.6})
	api := httpapi.NewServer(eng, zerolog.Nop())
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv, eng, api
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestStatusEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	code, body := getJSON(t, srv.URL+"/api/status")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, float64(20), body["count"])
	assert.Contains(t, body, "progress_mode_enabled")
	assert.Contains(t, body, "show_ms_remaining")
	assert.Contains(t, body, "idle_modes")
	assert.Contains(t, body, "events")
}

func TestShowStartAndStop(t *testing.T) {
	srv, eng, _ := newTestServer(t)

	code, body := getJSON(t, srv.URL+"/api/show?name=double&seconds=5")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "double", body["show"])
	assert.Equal(t, float64(5), body["seconds"])
	assert.True(t, eng.Status().ShowActive)

	code, body = getJSON(t, srv.URL+"/api/show?name=stop")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.False(t, eng.Status().ShowActive)
}

func TestShowRejectedWhileProgressActive(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, body := getJSON(t, srv.URL+"/api/progress_mode?on=1")
	require.Equal(t, true, body["ok"])
	code, body := getJSON(t, srv.URL+"/api/progress?pct=0.4&state=playing")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["ok"])

	code, body = getJSON(t, srv.URL+"/api/show?name=double&seconds=10")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "ignored, progress active", body["message"])
}

func TestUnknownNamesAndEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	code, body := getJSON(t, srv.URL+"/api/show?name=lava")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["ok"])

	code, body = getJSON(t, srv.URL+"/api/event?name=lava")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["ok"])

	code, body = getJSON(t, srv.URL+"/api/frobnicate")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "unknown endpoint", body["message"])
}

func TestConfigPartialUpdate(t *testing.T) {
	srv, eng, _ := newTestServer(t)

	_, body := getJSON(t, srv.URL+"/api/config?brightness=0.3")
	assert.Equal(t, 0.3, body["brightness"])
	assert.Equal(t, 1.0, body["speed"], "missing speed keeps current value")

	_, body = getJSON(t, srv.URL+"/api/config?speed=2.5")
	assert.Equal(t, 0.3, body["brightness"])
	assert.Equal(t, 2.5, body["speed"])
	assert.Equal(t, 0.3, eng.Brightness())
}

func TestProgressDefaults(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, body := getJSON(t, srv.URL+"/api/progress?pct=0.6")
	assert.Equal(t, 0.6, body["progress_pct"])
	assert.Equal(t, "playing", body["progress_state"])

	// Omitting pct keeps the last fraction.
	_, body = getJSON(t, srv.URL+"/api/progress?state=paused")
	assert.Equal(t, 0.6, body["progress_pct"])
	assert.Equal(t, "paused", body["progress_state"])
}

func TestArcEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	_, body := getJSON(t, srv.URL+"/api/arc?start=1&end=18")
	assert.Equal(t, float64(1), body["arc_start"])
	assert.Equal(t, float64(18), body["arc_end"])

	// Missing params keep the stored arc.
	_, body = getJSON(t, srv.URL+"/api/arc?start=2")
	assert.Equal(t, float64(2), body["arc_start"])
	assert.Equal(t, float64(18), body["arc_end"])
}

func TestEventEndpointRotates(t *testing.T) {
	srv, _, _ := newTestServer(t)
	_, body := getJSON(t, srv.URL+"/api/event?name=bulb_change")
	require.Equal(t, true, body["ok"])
	assert.Equal(t, "wipe", body["show"])

	_, body = getJSON(t, srv.URL+"/api/event?name=bulb_change")
	assert.Equal(t, "double", body["show"])
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/status", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestFramesWebsocket(t *testing.T) {
	srv, eng, api := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// First message is a status snapshot.
	var first map[string]any
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "status", first["type"])

	// A rendered frame fans out to connected viewers.
	frame, id := eng.Frame()
	api.Frame(id+1, frame)

	var second map[string]any
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "frame", second["type"])
	assert.Equal(t, float64(id+1), second["frame_id"])
}

func TestFrameBroadcastDuringConnect(t *testing.T) {
	srv, eng, api := newTestServer(t)
	frame, _ := eng.Frame()

	// Hammer the fan-out while clients connect; the connect-time status
	// write must never interleave with a broadcast on the same socket.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			api.Frame(uint64(i+1), frame)
		}
	}()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	for i := 0; i < 5; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		var first map[string]any
		require.NoError(t, conn.ReadJSON(&first))
		assert.Equal(t, "status", first["type"], "dial %d", i)
		conn.Close()
	}
	<-done
}
