package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"
)

const defaultTimeout = 10 * time.Second

type tokenKey struct{}

// WithToken returns a context carrying the acting user's bearer token.
// Requests made with that context run as the user; otherwise the client
// falls back to its configured service token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}

// Client represents the legacy booking backend HTTP client.
type Client struct {
	baseURL string
	token   string
	ua      string
	http    *http.Client
}

// NewClient creates a new booking backend client.
func NewClient(baseURL, token string, timeout time.Duration, ua string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		ua:      ua,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// ListByOwner fetches all booking records created by the given owner.
func (c *Client) ListByOwner(ctx context.Context, ownerID int64) ([]BookingRecord, error) {
	var records []BookingRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bookings/owner/%d", ownerID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListBySitter fetches all booking records claimed by the given sitter.
func (c *Client) ListBySitter(ctx context.Context, sitterID int64) ([]BookingRecord, error) {
	var records []BookingRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bookings/sitter/%d", sitterID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListUpcoming fetches all upcoming booking records.
func (c *Client) ListUpcoming(ctx context.Context) ([]BookingRecord, error) {
	var records []BookingRecord
	if err := c.do(ctx, http.MethodGet, "/bookings/upcoming", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Create persists one booking record.
func (c *Client) Create(ctx context.Context, req CreateBookingRequest) (*BookingRecord, error) {
	var record BookingRecord
	if err := c.do(ctx, http.MethodPost, "/bookings", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update applies a partial update to one booking record.
func (c *Client) Update(ctx context.Context, id int64, patch UpdateBookingRequest) (*BookingRecord, error) {
	var record BookingRecord
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/bookings/%d", id), patch, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Remove deletes one booking record.
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/bookings/%d", id), nil, nil)
}

// SetStatus changes one record's status. A sitter id is attached when the
// transition claims the record (accept).
func (c *Client) SetStatus(ctx context.Context, id int64, statusID int, sitterID *int64) (*BookingRecord, error) {
	payload := struct {
		StatusID int    `json:"statusId"`
		SitterID *int64 `json:"sitterId,omitempty"`
	}{StatusID: statusID, SitterID: sitterID}

	var record BookingRecord
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/bookings/%d/status", id), payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetPet fetches one pet record.
func (c *Client) GetPet(ctx context.Context, id int64) (*Pet, error) {
	var pet Pet
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/pets/%d", id), nil, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// GetUser fetches one user record.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("booking api request error: client is nil")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("booking api config error: base_url is empty")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("booking api request error: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("booking api request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("booking api decode error: %w", err)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body, resp.StatusCode)}
	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("%s: %w", apiErr.Message, ErrConflict)
	}
	return apiErr
}

func (c *Client) bearer(ctx context.Context) string {
	if token := tokenFrom(ctx); token != "" {
		return token
	}
	return c.token
}

// errorMessage extracts the backend's human-readable message from an error
// body, falling back to the raw body or the status code.
func errorMessage(body io.Reader, status int) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return fmt.Sprintf("HTTP error status=%d", status)
	}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return string(raw)
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	return fmt.Errorf("booking api request error: %w", err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
