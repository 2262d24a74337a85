package thingspeak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ecoviewer/internal/models"
)

// DefaultBaseURL is the public feed API.
const DefaultBaseURL = "https://api.thingspeak.com"

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20 // 8 MB
)

// ErrDecode is wrapped by FetchFeeds when a successful response is not a feed payload.
var ErrDecode = errors.New("decode feed payload")

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "feed request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Message is the server's error text, if it sent one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("feed request failed with status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("feed request failed with status %d", e.Code)
}

// FeedResult is a decoded payload together with the body it was decoded from.
type FeedResult struct {
	Payload FeedPayload
	Raw     json.RawMessage
}

// Client reads channel feeds.
type Client struct {
	baseURL string
	http    HTTPDoer
}

// NewClient returns a client using an *http.Client with the given timeout (0 = default).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithDoer(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithDoer returns a client sending requests through doer.
func NewClientWithDoer(baseURL string, doer HTTPDoer) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
	}
}

// FeedsURL builds {base}/channels/{id}/feeds.json, adding api_key only for private access.
func (c *Client) FeedsURL(creds models.ChannelCredentials) string {
	u := fmt.Sprintf("%s/channels/%s/feeds.json", c.baseURL, url.PathEscape(creds.ChannelID))
	if creds.Private() {
		u += "?api_key=" + url.QueryEscape(creds.AccessKey)
	}
	return u
}

// FetchFeeds issues one GET for the channel feed.
func (c *Client) FetchFeeds(ctx context.Context, creds models.ChannelCredentials) (FeedResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FeedsURL(creds), nil)
	if err != nil {
		return FeedResult{}, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return FeedResult{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return FeedResult{}, &TransportError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return FeedResult{}, &StatusError{Code: resp.StatusCode, Message: errorMessage(body)}
	}

	payload, err := Decode(body)
	if err != nil {
		return FeedResult{}, err
	}
	return FeedResult{Payload: payload, Raw: json.RawMessage(body)}, nil
}

// errorMessage extracts "error" from an error body. The field is either a string or an
// object carrying "message"/"details".
func errorMessage(body []byte) string {
	var wrapper struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil || len(wrapper.Error) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(wrapper.Error, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(wrapper.Error, &obj); err == nil {
		if obj.Message != "" {
			return strings.TrimSpace(obj.Message)
		}
		return strings.TrimSpace(obj.Details)
	}
	return ""
}
