package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posterlights/internal/apiclient"
)

func TestRetriesTransientServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"message":"OK"}`))
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL, time.Second)
	res, err := c.Enable(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRejectionIsNotATransportError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"ok":false,"message":"ignored, progress active"}`))
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL, time.Second)
	res, err := c.StartShow(context.Background(), "double", 10)
	require.NoError(t, err, "4xx decodes as a rejection, no retry")
	assert.False(t, res.OK)
	assert.Equal(t, "ignored, progress active", res.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPushProgressOmitsNegativeFraction(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"message":"OK"}`))
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL, time.Second)
	_, err := c.PushProgress(context.Background(), -1, "paused")
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "pct=")
	assert.Contains(t, gotQuery, "state=paused")

	_, err = c.PushProgress(context.Background(), 0.25, "playing")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "pct=0.2500")
}

func TestStatusDecodesProgressMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"enabled":true,"count":20,"progress_mode_enabled":true,"idle":"twinkle"}`))
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL, time.Second)
	st, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.ProgressModeEnabled)
	assert.Equal(t, 20, st.Count)
	assert.Equal(t, "twinkle", st.Idle)
}
