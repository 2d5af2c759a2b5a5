package thingspeak

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"smarthome_dw/internal/models"
)

// DefaultBaseURL is the public ThingSpeak API endpoint.
const DefaultBaseURL = "https://api.thingspeak.com"

// fieldKeyPattern is the channel's generic field-naming convention (field1..fieldN).
var fieldKeyPattern = regexp.MustCompile(`^field\d+$`)

// IsFieldKey reports whether key follows the generic fieldN naming convention.
func IsFieldKey(key string) bool {
	return fieldKeyPattern.MatchString(key)
}

// Channel holds the feed's channel metadata: identity plus the human-readable
// labels the channel owner assigned to each fieldN key.
type Channel struct {
	ID     int64
	Name   string
	Labels map[string]string // fieldN -> label, only non-empty string values
}

// Entry is one timestamped observation. Field values arrive as strings (or
// null) and stay raw here; coercion is the normalizer's job.
type Entry struct {
	CreatedAt string
	EntryID   int64
	Fields    map[string]string // fieldN -> raw value
}

// Payload is one fetched page of a channel feed.
type Payload struct {
	Channel Channel
	Feeds   []Entry
}

// UnmarshalJSON extracts identity keys and collects every fieldN label.
func (c *Channel) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Labels = make(map[string]string)
	for k, v := range raw {
		switch {
		case k == "id":
			_ = json.Unmarshal(v, &c.ID)
		case k == "name":
			_ = json.Unmarshal(v, &c.Name)
		case IsFieldKey(k):
			var label string
			if err := json.Unmarshal(v, &label); err == nil && label != "" {
				c.Labels[k] = label
			}
		}
	}
	return nil
}

// UnmarshalJSON splits an entry into its envelope (created_at, entry_id) and
// the dynamic fieldN values.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Fields = make(map[string]string)
	for k, v := range raw {
		switch {
		case k == "created_at":
			_ = json.Unmarshal(v, &e.CreatedAt)
		case k == "entry_id":
			_ = json.Unmarshal(v, &e.EntryID)
		case IsFieldKey(k):
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				e.Fields[k] = s
			}
			// null or non-string values are left absent; the normalizer
			// treats missing values as NULL anyway
		}
	}
	return nil
}

// Client fetches feed pages from one ThingSpeak channel.
type Client struct {
	baseURL    string
	channelID  string
	readAPIKey string
	maxResults int
	httpClient *http.Client
}

// NewClient builds a client for the given channel. readAPIKey may be empty for
// public channels. maxResults bounds the bootstrap fetch when no prior
// timestamp exists.
func NewClient(baseURL, channelID, readAPIKey string, maxResults int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		channelID:  channelID,
		readAPIKey: readAPIKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchFeed retrieves a page of feed entries. With since == nil it asks for the
// maxResults most recent records (bootstrap). Otherwise it asks only for
// records from since+1s onward; the API's start filter is inclusive, so the +1
// avoids re-fetching the last ingested record.
func (c *Client) FetchFeed(ctx context.Context, since *time.Time) (*Payload, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/feeds.json", c.baseURL, c.channelID)

	params := url.Values{}
	if c.readAPIKey != "" {
		params.Set("api_key", c.readAPIKey)
	}
	if since != nil {
		params.Set("start", since.Add(time.Second).Format(models.TimestampLayout))
	} else {
		params.Set("results", fmt.Sprintf("%d", c.maxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request for channel %s: %w", c.channelID, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s feed: %w", c.channelID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch channel %s feed: unexpected status %s", c.channelID, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read channel %s feed body: %w", c.channelID, err)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode channel %s feed: %w", c.channelID, err)
	}
	return &payload, nil
}
