// Package fflogs is a client for the FFLogs v1 report API: fight lookup and
// the casts, damage-taken and summary event streams of one fight.
package fflogs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/logger"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/metrics"
)

// Client configuration defaults.
const (
	defaultTimeout  = 30 * time.Second
	defaultMaxPages = 1000
	errorBodyLimit  = 512
)

// Endpoint names, also used as metric labels.
const (
	EndpointFights      = "fights"
	EndpointCasts       = "casts"
	EndpointDamageTaken = "damage-taken"
	EndpointSummary     = "summary"
)

// hostileSide selects events whose source is an enemy.
const hostileSide = "1"

// Client talks to one report API base URL with one API key.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	timeout  time.Duration
	maxPages int
	logger   logger.Logger
}

// NewClient creates a client. baseURL is the API root, e.g. "https://cn.fflogs.com/v1".
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		timeout:  defaultTimeout,
		maxPages: defaultMaxPages,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

type reportFights struct {
	Fights []struct {
		ID        int   `json:"id"`
		StartTime int64 `json:"start_time"`
		EndTime   int64 `json:"end_time"`
	} `json:"fights"`
}

type eventsPage[T any] struct {
	Events            []T    `json:"events"`
	NextPageTimestamp *int64 `json:"nextPageTimestamp"`
}

// Fight looks up the bounds of fightID in the report. It returns an error
// wrapping model.ErrFightNotFound when the report has no such fight.
func (c *Client) Fight(ctx context.Context, reportID string, fightID int) (model.Fight, error) {
	var report reportFights
	if err := c.getJSON(ctx, EndpointFights, "/report/fights/"+url.PathEscape(reportID), nil, &report); err != nil {
		return model.Fight{}, err
	}
	for _, f := range report.Fights {
		if f.ID == fightID {
			return model.Fight{ID: f.ID, StartTime: f.StartTime, EndTime: f.EndTime}, nil
		}
	}
	return model.Fight{}, fmt.Errorf("%w: report %s has no fight %d", model.ErrFightNotFound, reportID, fightID)
}

// Casts returns the hostile casts of the fight, ordered by timestamp.
func (c *Client) Casts(ctx context.Context, reportID string, fight model.Fight) ([]model.CastEvent, error) {
	return fetchEvents[model.CastEvent](ctx, c, EndpointCasts, reportID, fight, url.Values{"hostility": {hostileSide}})
}

// DamageTaken returns the damage-taken events of the fight, ordered by timestamp.
func (c *Client) DamageTaken(ctx context.Context, reportID string, fight model.Fight) ([]model.DamageEvent, error) {
	return fetchEvents[model.DamageEvent](ctx, c, EndpointDamageTaken, reportID, fight, nil)
}

// Summary returns the summary events of the fight, ordered by timestamp.
func (c *Client) Summary(ctx context.Context, reportID string, fight model.Fight) ([]model.SummaryEvent, error) {
	return fetchEvents[model.SummaryEvent](ctx, c, EndpointSummary, reportID, fight, nil)
}

// fetchEvents follows nextPageTimestamp until the stream is exhausted.
func fetchEvents[T any](ctx context.Context, c *Client, endpoint, reportID string, fight model.Fight, extra url.Values) ([]T, error) {
	var events []T
	start := fight.StartTime
	for page := 0; page < c.maxPages; page++ {
		query := url.Values{
			"start": {strconv.FormatInt(start, 10)},
			"end":   {strconv.FormatInt(fight.EndTime, 10)},
		}
		for k, v := range extra {
			query[k] = v
		}

		var p eventsPage[T]
		if err := c.getJSON(ctx, endpoint, "/report/events/"+endpoint+"/"+url.PathEscape(reportID), query, &p); err != nil {
			return nil, err
		}
		events = append(events, p.Events...)

		if p.NextPageTimestamp == nil || *p.NextPageTimestamp <= start || *p.NextPageTimestamp >= fight.EndTime {
			metrics.RecordEventsFetched(endpoint, len(events))
			c.logger.Debug(ctx, "event stream fetched",
				logger.String("endpoint", endpoint),
				logger.Int("events", len(events)),
				logger.Int("pages", page+1))
			return events, nil
		}
		start = *p.NextPageTimestamp
	}
	c.logger.Warn(ctx, "event stream truncated at page limit",
		logger.String("endpoint", endpoint),
		logger.Int("maxPages", c.maxPages))
	metrics.RecordEventsFetched(endpoint, len(events))
	return events, nil
}

// getJSON performs a GET against path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	target := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequest, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(endpoint, "error", time.Since(began).Seconds())
		metrics.RecordError("fflogs", "request")
		return fmt.Errorf("%w: %s: %w", ErrRequest, endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()
	metrics.RecordAPIRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(began).Seconds())

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		metrics.RecordError("fflogs", "status")
		return fmt.Errorf("%w: %s: %d %s", ErrUnexpectedStatus, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordError("fflogs", "read")
		return fmt.Errorf("%w: %s: %w", ErrRequest, endpoint, err)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		metrics.RecordError("fflogs", "decode")
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	return nil
}
