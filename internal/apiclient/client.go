// Package apiclient is the HTTP client side of the engine's control surface,
// shared by the playback bridge and the command line tool.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"posterlights/internal/engine"
)

type Client struct {
	base    string
	http    *http.Client
	retries int
	backoff time.Duration
}

func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
		retries: 2,
		backoff: 250 * time.Millisecond,
	}
}

// do issues one control call, retrying transport errors and 5xx responses a
// couple of times. 4xx responses decode normally so callers see ok:false.
func (c *Client) do(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("build request %s: %w", path, err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("call %s: %w", path, err)
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("call %s: status %d", path, resp.StatusCode)
			continue
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) result(ctx context.Context, path string, q url.Values) (engine.Result, error) {
	var res engine.Result
	err := c.do(ctx, path, q, &res)
	return res, err
}

// Status fetches the full engine snapshot.
func (c *Client) Status(ctx context.Context) (engine.Status, error) {
	var st engine.Status
	err := c.do(ctx, "/api/status", nil, &st)
	return st, err
}

func (c *Client) Enable(ctx context.Context) (engine.Result, error) {
	return c.result(ctx, "/api/np_on", nil)
}

func (c *Client) Disable(ctx context.Context) (engine.Result, error) {
	return c.result(ctx, "/api/np_off", nil)
}

func (c *Client) SetIdle(ctx context.Context, name string) (engine.Result, error) {
	return c.result(ctx, "/api/mode", url.Values{"name": {name}})
}

func (c *Client) StartShow(ctx context.Context, name string, seconds int) (engine.Result, error) {
	q := url.Values{"name": {name}}
	if seconds > 0 {
		q.Set("seconds", strconv.Itoa(seconds))
	}
	return c.result(ctx, "/api/show", q)
}

func (c *Client) StopShow(ctx context.Context) (engine.Result, error) {
	return c.result(ctx, "/api/show", url.Values{"name": {"stop"}})
}

// TriggerEvent fires a named event. seconds <= 0 keeps the event's configured
// duration.
func (c *Client) TriggerEvent(ctx context.Context, name string, seconds int) (engine.Result, error) {
	q := url.Values{"name": {name}}
	if seconds > 0 {
		q.Set("seconds", strconv.Itoa(seconds))
	}
	return c.result(ctx, "/api/event", q)
}

func (c *Client) SetDemo(ctx context.Context, on bool, intervalS int) (engine.Result, error) {
	q := url.Values{"on": {boolParam(on)}}
	if intervalS > 0 {
		q.Set("interval", strconv.Itoa(intervalS))
	}
	return c.result(ctx, "/api/demo", q)
}

// SetConfig updates brightness and speed; pass a negative value to leave that
// knob unchanged.
func (c *Client) SetConfig(ctx context.Context, brightness, speed float64) (engine.Result, error) {
	q := url.Values{}
	if brightness >= 0 {
		q.Set("brightness", floatParam(brightness))
	}
	if speed >= 0 {
		q.Set("speed", floatParam(speed))
	}
	return c.result(ctx, "/api/config", q)
}

func (c *Client) SetProgressMode(ctx context.Context, on bool) (engine.Result, error) {
	return c.result(ctx, "/api/progress_mode", url.Values{"on": {boolParam(on)}})
}

func (c *Client) SetArc(ctx context.Context, start, end int) (engine.Result, error) {
	return c.result(ctx, "/api/arc", url.Values{
		"start": {strconv.Itoa(start)},
		"end":   {strconv.Itoa(end)},
	})
}

// PushProgress reports playback state. pct < 0 omits the fraction so the
// engine keeps its last value.
func (c *Client) PushProgress(ctx context.Context, pct float64, state string) (engine.Result, error) {
	q := url.Values{"state": {state}}
	if pct >= 0 {
		q.Set("pct", floatParam(pct))
	}
	return c.result(ctx, "/api/progress", q)
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func floatParam(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
