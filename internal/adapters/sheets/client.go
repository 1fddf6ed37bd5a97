// Package sheets talks to the spreadsheet web app through the callback bridge.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/okian/tally/internal/adapters/jsonp"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Backend actions.
const (
	ActionGetEvents   = "getEvents"
	ActionGetUsers    = "getUsers"
	ActionGetRecords  = "getRecords"
	ActionAddEvent    = "addEvent"
	ActionUpdateEvent = "updateEvent"
	ActionAddRecord   = "addRecord"
	ActionTest        = "test"
)

// Requester issues one callback-wrapped request. *jsonp.Bridge implements it.
type Requester interface {
	Request(ctx context.Context, url string, timeout time.Duration) (json.RawMessage, error)
}

// Client exposes the backend actions.
type Client struct {
	baseURL      string
	bridge       Requester
	readTimeout  time.Duration
	writeTimeout time.Duration
	testTimeout  time.Duration
	log          logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithReadTimeout bounds getEvents, getUsers and getRecords.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// WithWriteTimeout bounds addRecord, addEvent and updateEvent.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithTestTimeout bounds the connectivity test.
func WithTestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.testTimeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Client for the web app at baseURL.
func New(baseURL string, bridge Requester, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimSpace(baseURL),
		bridge:       bridge,
		readTimeout:  15 * time.Second,
		writeTimeout: 10 * time.Second,
		testTimeout:  30 * time.Second,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// actionURL renders baseURL with the action and params in its query string.
func (c *Client) actionURL(action string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("action", action)
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

func (c *Client) call(ctx context.Context, action string, params url.Values, timeout time.Duration) (json.RawMessage, error) {
	start := time.Now()
	raw, err := c.bridge.Request(ctx, c.actionURL(action, params), timeout)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		outcome := metrics.OutcomeTransport
		switch {
		case errors.Is(err, jsonp.ErrTimeout):
			outcome = metrics.OutcomeTimeout
		case errors.Is(err, context.Canceled):
			outcome = metrics.OutcomeCanceled
		}
		metrics.RecordBridgeRequest(action, outcome, elapsed)
		c.log.Warn(ctx, "backend call failed", logger.String("action", action), logger.Error(err))
		return nil, goerr.Wrap(err, "backend call", goerr.V("action", action))
	}
	metrics.RecordBridgeRequest(action, metrics.OutcomeSuccess, elapsed)
	return raw, nil
}

func (c *Client) read(ctx context.Context, action string) ([]model.RemoteRecord, error) {
	raw, err := c.call(ctx, action, nil, c.readTimeout)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(raw)
	if err != nil {
		metrics.RecordErrorByComponent("sheets", "malformed")
		return nil, goerr.Wrap(err, "decode rows", goerr.V("action", action))
	}
	c.log.Debug(ctx, "backend rows loaded", logger.String("action", action), logger.Int("rows", len(rows)))
	return rows, nil
}

// Events loads the raw events sheet.
func (c *Client) Events(ctx context.Context) ([]model.RemoteRecord, error) {
	return c.read(ctx, ActionGetEvents)
}

// Users loads the raw participant directory.
func (c *Client) Users(ctx context.Context) ([]model.RemoteRecord, error) {
	return c.read(ctx, ActionGetUsers)
}

// Records loads the raw attendance sheet.
func (c *Client) Records(ctx context.Context) ([]model.RemoteRecord, error) {
	return c.read(ctx, ActionGetRecords)
}

func (c *Client) write(ctx context.Context, action string, params url.Values) (WriteResult, error) {
	raw, err := c.call(ctx, action, params, c.writeTimeout)
	if err != nil {
		return WriteResult{}, err
	}
	res, err := decodeWrite(raw)
	if err != nil {
		return WriteResult{}, goerr.Wrap(err, "decode write result", goerr.V("action", action))
	}
	return res, res.err()
}

// AddRecord appends one attendance row. A backend duplicate is ErrDuplicate.
func (c *Client) AddRecord(ctx context.Context, s model.Submission) (WriteResult, error) {
	return c.write(ctx, ActionAddRecord, url.Values{
		"name":       {s.Name},
		"position":   {s.Position},
		"department": {s.Department},
		"event":      {s.Event},
		"points":     {strconv.Itoa(s.Points)},
		"date":       {s.Date},
	})
}

// AddEvent creates an event. Status defaults to active.
func (c *Client) AddEvent(ctx context.Context, ev model.Event) (WriteResult, error) {
	status := string(ev.Status)
	if status == "" {
		status = string(model.StatusActive)
	}
	return c.write(ctx, ActionAddEvent, url.Values{
		"name":        {ev.Name},
		"category":    {ev.Category},
		"points":      {strconv.Itoa(ev.Points)},
		"date":        {ev.Date},
		"organizer":   {ev.Organizer},
		"status":      {status},
		"description": {ev.Description},
	})
}

// UpdateEvent rewrites an event by id. Points go out as both point and points.
func (c *Client) UpdateEvent(ctx context.Context, ev model.Event) (WriteResult, error) {
	points := strconv.Itoa(ev.Points)
	return c.write(ctx, ActionUpdateEvent, url.Values{
		"id":          {ev.ID},
		"name":        {ev.Name},
		"category":    {ev.Category},
		"point":       {points},
		"points":      {points},
		"date":        {ev.Date},
		"organizer":   {ev.Organizer},
		"status":      {string(ev.Status)},
		"description": {ev.Description},
	})
}

// Test performs the connectivity round trip and returns the raw payload.
func (c *Client) Test(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, ActionTest, nil, c.testTimeout)
}
