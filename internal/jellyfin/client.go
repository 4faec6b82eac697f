// Package jellyfin is a minimal read-only client for the Jellyfin Sessions
// endpoint, which is all the playback tracker needs.
package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Session is one active client session as reported by /Sessions.
type Session struct {
	DeviceName     string     `json:"DeviceName"`
	Client         string     `json:"Client"`
	NowPlayingItem *Item      `json:"NowPlayingItem"`
	PlayState      *PlayState `json:"PlayState"`
}

// Item is the media item a session is playing.
type Item struct {
	Id           string `json:"Id"`
	Name         string `json:"Name"`
	SeriesName   string `json:"SeriesName"`
	SeasonName   string `json:"SeasonName"`
	RunTimeTicks int64  `json:"RunTimeTicks"`
}

// PlayState carries playback position and pause state. Ticks are Jellyfin's
// 100ns units.
type PlayState struct {
	PositionTicks int64 `json:"PositionTicks"`
	IsPaused      bool  `json:"IsPaused"`
}

type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(base, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

// Sessions fetches the current session list.
func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/Sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("build sessions request: %w", err)
	}
	req.Header.Set("X-MediaBrowser-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sessions: unexpected status %d", resp.StatusCode)
	}
	var sessions []Session
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

// FindDevice returns the first session whose device name matches name,
// case-insensitively, preferring sessions that are actually playing something.
func FindDevice(sessions []Session, name string) *Session {
	want := strings.ToLower(strings.TrimSpace(name))
	var idle *Session
	for i := range sessions {
		s := &sessions[i]
		if strings.ToLower(strings.TrimSpace(s.DeviceName)) != want {
			continue
		}
		if s.NowPlayingItem != nil {
			return s
		}
		if idle == nil {
			idle = s
		}
	}
	return idle
}
