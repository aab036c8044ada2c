package spond

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
	"github.com/riskibarqy/clubsync/internal/platform/resilience"
	"github.com/riskibarqy/clubsync/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL   = "https://api.spond.com/core/v1"
	maxResponseBytes = 6 << 20
	maxEventsPerList = 500
	maxLoggedBody    = 240
	defaultTimeout   = 20 * time.Second
	redacted         = "REDACTED"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Email          string
	Password       string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Clock          clockwork.Clock
}

// Client talks to the Spond API. The login token is cached for the lifetime
// of the client and refreshed at most once per failing call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	password   string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker

	mu    sync.RWMutex
	token string
	login resilience.Flight[string]
}

var _ usecase.RemoteClient = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	// A caller supplied client is shared and used as is.
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		email:      strings.TrimSpace(cfg.Email),
		password:   cfg.Password,
		logger:     logger.With("component", "spond_client"),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker, cfg.Clock),
	}
}

// Authenticate discards any cached token and logs in again.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	_, err := c.ensureToken(ctx)
	return err
}

func (c *Client) ListGroups(ctx context.Context) ([]usecase.RemoteGroup, error) {
	var groups []groupDTO
	if err := c.call(ctx, http.MethodGet, "/groups/", nil, nil, &groups); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	out := make([]usecase.RemoteGroup, 0, len(groups))
	for _, g := range groups {
		if strings.TrimSpace(g.ID) == "" {
			continue
		}
		out = append(out, mapGroup(g))
	}
	return out, nil
}

// ListEventsInRange lists events of every group whose start is in [from, to),
// deduplicated and ordered by start then id.
func (c *Client) ListEventsInRange(ctx context.Context, groupIDs []string, from, to time.Time) ([]usecase.RemoteEvent, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("invalid range: to must be after from")
	}

	seenGroups := make(map[string]struct{}, len(groupIDs))
	byID := make(map[string]usecase.RemoteEvent)
	for _, groupID := range groupIDs {
		groupID = strings.TrimSpace(groupID)
		if groupID == "" {
			continue
		}
		if _, ok := seenGroups[groupID]; ok {
			continue
		}
		seenGroups[groupID] = struct{}{}

		query := url.Values{}
		query.Set("groupId", groupID)
		query.Set("minStartTimestamp", formatTimestamp(from))
		query.Set("maxStartTimestamp", formatTimestamp(to))
		query.Set("max", fmt.Sprint(maxEventsPerList))
		query.Set("order", "asc")
		query.Set("includeHidden", "false")
		query.Set("scheduled", "true")

		var items []spondDTO
		if err := c.call(ctx, http.MethodGet, "/sponds/", query, nil, &items); err != nil {
			return nil, fmt.Errorf("list events group_id=%s: %w", groupID, err)
		}
		for _, item := range items {
			ev, ok := mapEvent(item)
			if !ok {
				c.logger.WarnContext(ctx, "skip spond event with unusable payload", "event_id", item.ID, "group_id", groupID)
				continue
			}
			if ev.StartAt.Before(from) || !ev.StartAt.Before(to) {
				continue
			}
			if _, dup := byID[ev.ID]; dup {
				continue
			}
			if ev.GroupID == "" {
				ev.GroupID = groupID
			}
			byID[ev.ID] = ev
		}
	}

	out := make([]usecase.RemoteEvent, 0, len(byID))
	for _, ev := range byID {
		out = append(out, ev)
	}
	sortEvents(out)
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, groupID string, payload usecase.RemoteEventPayload) (string, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return "", fmt.Errorf("group id is required")
	}

	var created createResponse
	if err := c.call(ctx, http.MethodPost, "/sponds/", nil, mapWrite(groupID, payload), &created); err != nil {
		return "", fmt.Errorf("create event group_id=%s: %w", groupID, err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return "", crerr.Newf("create event group_id=%s: response carried no id", groupID)
	}
	return strings.TrimSpace(created.ID), nil
}

// UpdateEvent keeps the event's current recipients unless payload names subgroups.
func (c *Client) UpdateEvent(ctx context.Context, remoteID string, payload usecase.RemoteEventPayload) error {
	current, err := c.getEvent(ctx, remoteID)
	if err != nil {
		return fmt.Errorf("update event id=%s: %w", remoteID, err)
	}

	body := mapWrite(current.Recipients.Group.ID, payload)
	if len(payload.SubgroupIDs) == 0 {
		body.Recipients.Group.SubGroups = current.Recipients.Group.SubGroups
	}
	if err := c.call(ctx, http.MethodPost, "/sponds/"+url.PathEscape(remoteID), nil, body, nil); err != nil {
		return fmt.Errorf("update event id=%s: %w", remoteID, err)
	}
	return nil
}

func (c *Client) FetchAttendance(ctx context.Context, eventID string) (usecase.AttendanceMap, error) {
	current, err := c.getEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch attendance id=%s: %w", eventID, err)
	}
	return mapAttendance(current.Responses), nil
}

func (c *Client) getEvent(ctx context.Context, eventID string) (spondDTO, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return spondDTO{}, fmt.Errorf("event id is required")
	}

	var dto spondDTO
	if err := c.call(ctx, http.MethodGet, "/sponds/"+url.PathEscape(eventID), nil, nil, &dto); err != nil {
		return spondDTO{}, err
	}
	return dto, nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	token, err, _ := c.login.Do("login", func() (string, error) {
		return c.doLogin(ctx)
	})
	return token, err
}

func (c *Client) doLogin(ctx context.Context) (string, error) {
	if c.email == "" || c.password == "" {
		return "", fmt.Errorf("%w: credentials are missing", usecase.ErrRemoteAuthFailure)
	}

	status, raw, err := c.roundTrip(ctx, http.MethodPost, "/login", nil, loginRequest{Email: c.email, Password: c.password}, "")
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "", fmt.Errorf("%w: login rejected status=%d", usecase.ErrRemoteAuthFailure, status)
	case isUnavailableStatus(status):
		return "", fmt.Errorf("%w: login status=%d", usecase.ErrRemoteUnavailable, status)
	case status < 200 || status >= 300:
		c.logger.WarnContext(ctx, "spond login failed", "status", status, "body", c.abbreviate(raw))
		return "", crerr.Newf("login status=%d", status)
	}

	var resp loginResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return "", crerr.Wrap(err, "decode login response")
	}
	token := strings.TrimSpace(resp.LoginToken)
	if token == "" {
		return "", fmt.Errorf("%w: login response carried no token", usecase.ErrRemoteAuthFailure)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "spond login succeeded")
	return token, nil
}

// invalidate drops token unless a concurrent caller already replaced it.
func (c *Client) invalidate(token string) {
	c.mu.Lock()
	if c.token == token {
		c.token = ""
	}
	c.mu.Unlock()
}

// call performs an authenticated request. A 401/403 triggers exactly one
// re-login and one repeat; there are no other retries.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, target any) error {
	for attempt := 0; ; attempt++ {
		token, err := c.ensureToken(ctx)
		if err != nil {
			return err
		}

		status, raw, err := c.roundTrip(ctx, method, path, query, body, token)
		if err != nil {
			return err
		}

		switch {
		case status >= 200 && status < 300:
			if target == nil || len(bytes.TrimSpace(raw)) == 0 {
				return nil
			}
			if err := sonic.Unmarshal(raw, target); err != nil {
				return crerr.Wrapf(err, "decode %s %s", method, path)
			}
			return nil
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			c.invalidate(token)
			if attempt == 0 {
				c.logger.InfoContext(ctx, "spond rejected token, re-authenticating", "method", method, "path", path, "status", status)
				continue
			}
			return fmt.Errorf("%w: %s %s rejected after re-authentication status=%d", usecase.ErrRemoteAuthFailure, method, path, status)
		case isUnavailableStatus(status):
			c.logger.WarnContext(ctx, "spond request failed", "method", method, "path", path, "status", status, "body", c.abbreviate(raw))
			return fmt.Errorf("%w: %s %s status=%d", usecase.ErrRemoteUnavailable, method, path, status)
		default:
			c.logger.WarnContext(ctx, "spond request rejected", "method", method, "path", path, "status", status, "body", c.abbreviate(raw))
			return crerr.Newf("%s %s status=%d", method, path, status)
		}
	}
}

// roundTrip sends one request. Transport failures come back as
// ErrRemoteUnavailable; any HTTP status is returned to the caller.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any, token string) (int, []byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "spond circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return 0, nil, fmt.Errorf("%w: circuit open", usecase.ErrRemoteUnavailable)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := encodeBody(body)
		if err != nil {
			c.breaker.Record(false)
			return 0, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		c.breaker.Record(false)
		return 0, nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			c.breaker.Record(false)
			return 0, nil, ctx.Err()
		}
		c.breaker.Record(true)
		msg := c.sanitize(err.Error())
		c.logger.WarnContext(ctx, "spond request failed", "method", method, "path", path, "error", msg)
		return 0, nil, fmt.Errorf("%w: send request: %s", usecase.ErrRemoteUnavailable, msg)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.breaker.Record(true)
		return 0, nil, fmt.Errorf("%w: read response body: %s", usecase.ErrRemoteUnavailable, c.sanitize(err.Error()))
	}
	c.breaker.Record(isUnavailableStatus(resp.StatusCode))
	return resp.StatusCode, raw, nil
}

func encodeBody(body any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(body); err != nil {
		return nil, crerr.Wrap(err, "encode request body")
	}
	return append([]byte(nil), buf.B...), nil
}

func isUnavailableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// sanitize strips the session token from text that may end up in logs.
func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		value = strings.ReplaceAll(value, token, redacted)
	}
	return value
}

// abbreviate cuts a response body to maxLoggedBody runes for logging.
func (c *Client) abbreviate(body []byte) string {
	text := c.sanitize(strings.ToValidUTF8(string(body), "\uFFFD"))
	if utf8.RuneCountInString(text) <= maxLoggedBody {
		return text
	}
	return string([]rune(text)[:maxLoggedBody]) + "..."
}
