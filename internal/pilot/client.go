package pilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/command"
)

// ErrUnexpectedStatus is returned for non-200 responses.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Attitude is the /sensor response.
type Attitude struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

// Client talks to one flight daemon.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A non-empty token is sent as a
// bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Control sends the full stick state, including the arm switch.
func (c *Client) Control(ctx context.Context, s Sticks) (command.Status, error) {
	arm := "0"
	if s.Armed {
		arm = "1"
	}
	q := url.Values{
		"throttle": {strconv.Itoa(s.Throttle)},
		"pitch":    {strconv.Itoa(s.Pitch)},
		"roll":     {strconv.Itoa(s.Roll)},
		"yaw":      {strconv.Itoa(s.Yaw)},
		"arm":      {arm},
	}

	var st command.Status
	err := c.getJSON(ctx, "/control?"+q.Encode(), &st)
	return st, err
}

// Sensor reads the latest orientation.
func (c *Client) Sensor(ctx context.Context) (Attitude, error) {
	var a Attitude
	err := c.getJSON(ctx, "/sensor", &a)
	return a, err
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
