// Package icinga fetches notification lists from Icinga Web instances.
package icinga

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/good-yellow-bee/wtc/internal/models"
	"github.com/good-yellow-bee/wtc/pkg/config"
)

const notificationsPath = "/monitoring/list/notifications"

// Config holds the settings shared by all instance requests.
type Config struct {
	User     string
	Password string
	Lookback string        // passed to the server uninterpreted
	Timeout  time.Duration // per request, 0 disables it
}

// DecodeError is returned when an instance answers with something that is
// not a JSON notification list. Icinga Web redirects to its HTML login page
// when authentication fails, so this usually means bad credentials.
type DecodeError struct {
	Instance   string
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error decoding json from %s. Login error?", e.Instance)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client requests notifications from Icinga Web instances.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a new client.
func NewClient(cfg Config, logger *log.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// RequestURL returns the notification list URL of an instance.
func (c *Client) RequestURL(instance string) string {
	lookback := strings.ReplaceAll(url.QueryEscape(c.config.Lookback), "+", "%20")
	return strings.TrimSuffix(instance, "/") + notificationsPath + "?notification_timestamp>=" + lookback
}

// Fetch loads the notifications of one instance and decorates each with its
// instance and web UI link.
func (c *Client) Fetch(ctx context.Context, instance string) ([]*models.Notification, error) {
	reqID := uuid.New().String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(instance), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", instance, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())
	req.Header.Set("X-Request-ID", reqID)
	req.SetBasicAuth(c.config.User, c.config.Password)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to send request: %w", instance, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", instance, err)
	}

	c.logger.Debug("fetched notifications",
		"instance", instance,
		"request_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))

	var notifs []*models.Notification
	if err := json.Unmarshal(body, &notifs); err != nil {
		return nil, &DecodeError{Instance: instance, StatusCode: resp.StatusCode, Err: err}
	}

	// null array elements carry no notification and are skipped.
	decorated := notifs[:0]
	for _, n := range notifs {
		if n == nil {
			continue
		}
		n.Decorate(instance)
		decorated = append(decorated, n)
	}

	return decorated, nil
}

// FetchAll fetches each instance in order and returns one list per
// instance. The first failing instance aborts the whole batch.
func (c *Client) FetchAll(ctx context.Context, instances []string) ([][]*models.Notification, error) {
	results := make([][]*models.Notification, 0, len(instances))
	for _, instance := range instances {
		notifs, err := c.Fetch(ctx, instance)
		if err != nil {
			return nil, err
		}
		results = append(results, notifs)
	}
	return results, nil
}
