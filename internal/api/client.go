package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"
)

// ErrTransport covers every non-success response from the remote service.
var ErrTransport = errors.New("transport error")

const (
	loginPath  = "/api/4/login"
	tracksPath = "/api/5/tracks"
	detailPath = "/api/4/tracks/"
)

// Client is a session-holding client for the schweizmobil.ch track API.
// Login must succeed before the track endpoints are usable; the session
// cookie lives in the client's jar.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

func NewClient(base string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(4), 2),
	}
}

// Login authenticates the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, c.base+loginPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: login returned status %d", ErrTransport, resp.StatusCode)
	}
	return nil
}

// ListTracks fetches the account's full track list.
func (c *Client) ListTracks(ctx context.Context) ([]TrackSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, c.base+tracksPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: track list returned status %d", ErrTransport, resp.StatusCode)
	}

	var tracks []TrackSummary
	if err := json.NewDecoder(resp.Body).Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode track list: %w", err)
	}
	return tracks, nil
}

// TrackDetail fetches the detail record for one track.
func (c *Client) TrackDetail(ctx context.Context, id int64) (TrackDetail, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s%s%d", c.base, detailPath, id), nil)
	if err != nil {
		return TrackDetail{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TrackDetail{}, fmt.Errorf("%w: track %d detail returned status %d", ErrTransport, id, resp.StatusCode)
	}

	var detail TrackDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return TrackDetail{}, fmt.Errorf("decode track %d detail: %w", id, err)
	}
	return detail, nil
}

func (c *Client) do(ctx context.Context, method, url string, body *bytes.Reader) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}
