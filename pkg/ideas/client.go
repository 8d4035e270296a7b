// Package ideas is the REST client for the innovator idea collection.
//
// Every call takes the caller's bearer token explicitly; an empty token
// fails with ErrAuthRequired without touching the network. The client never
// retries: retry policy belongs to whoever drives it.
package ideas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"innovator-portal/pkg/models"
	"innovator-portal/pkg/utils"
)

// API paths, relative to the base URL.
const (
	PathList   = "/api/v1/innovator/view-ideas"
	PathCreate = "/api/v1/innovator/submit-idea"
	PathUpdate = "/api/v1/innovator/update-idea/"
	PathDelete = "/api/v1/innovator/delete-idea/"
)

// DefaultTimeout bounds each request; expiry surfaces as ErrNetworkUnavailable.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Client talks to the innovator idea endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses a copy of hc for requests; hc itself is never
// modified. Without WithTimeout the copy keeps hc's Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// 复制一份，避免改动调用方共享的 http.Client
	hc := *c.httpClient
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	return c
}

// List fetches every idea owned by the caller.
func (c *Client) List(ctx context.Context, token string) ([]models.Idea, error) {
	body, err := c.do(ctx, "list", http.MethodGet, PathList, token, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(body)
	if err != nil {
		return nil, malformed(err)
	}
	return items, nil
}

// Create submits a draft and returns the stored idea with its assigned ID.
func (c *Client) Create(ctx context.Context, token string, draft models.IdeaDraft) (models.Idea, error) {
	body, err := c.do(ctx, "create", http.MethodPost, PathCreate, token, draft.WithDefaults())
	if err != nil {
		return models.Idea{}, err
	}
	idea, err := decodeIdea(body)
	if err != nil {
		return models.Idea{}, malformed(err)
	}
	if idea.ID == "" {
		return models.Idea{}, malformed(fmt.Errorf("created idea has no id"))
	}
	return idea, nil
}

// Update sends a partial update and returns the fields the server echoed
// back. Servers may answer with the full idea, a subset of it, or no body at
// all (empty IdeaFields); the caller merges whatever is present.
func (c *Client) Update(ctx context.Context, token, id string, patch models.IdeaPatch) (models.IdeaFields, error) {
	if strings.TrimSpace(token) == "" {
		return models.IdeaFields{}, ErrAuthRequired
	}
	if strings.TrimSpace(id) == "" {
		return models.IdeaFields{}, &ValidationError{Field: "id", Message: "idea id is required"}
	}
	body, err := c.do(ctx, "update", http.MethodPut, PathUpdate+url.PathEscape(id), token, patch)
	if err != nil {
		return models.IdeaFields{}, err
	}
	if isEmptyBody(body) {
		return models.IdeaFields{}, nil
	}
	fields, err := decodeFields(body)
	if err != nil {
		return models.IdeaFields{}, malformed(err)
	}
	return fields, nil
}

// Delete removes one idea. Any 2xx counts as success; the body is ignored.
func (c *Client) Delete(ctx context.Context, token, id string) error {
	if strings.TrimSpace(token) == "" {
		return ErrAuthRequired
	}
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "idea id is required"}
	}
	_, err := c.do(ctx, "delete", http.MethodDelete, PathDelete+url.PathEscape(id), token, nil)
	return err
}

// do performs one request and returns the body of a 2xx response.
// Non-2xx responses become *RemoteRejectedError; requests with no response
// become *NetworkError.
func (c *Client) do(ctx context.Context, op, method, path, token string, payload any) ([]byte, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrAuthRequired
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ideas: failed to encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ideas: failed to create %s request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg, ok := utils.ErrorDetail(body)
	if !ok {
		msg = genericMessage(resp.StatusCode)
	}
	return nil, &RemoteRejectedError{Status: resp.StatusCode, Message: msg}
}

func malformed(err error) error {
	return &RemoteRejectedError{
		Status:  http.StatusOK,
		Message: "malformed response from server: " + err.Error(),
	}
}

func isEmptyBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))
}

// decodeList accepts a bare array or an object wrapping it under "data"
// or "ideas".
func decodeList(body []byte) ([]models.Idea, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Idea{}, nil
	}

	if trimmed[0] == '[' {
		var items []models.Idea
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var env struct {
		Data  *[]models.Idea `json:"data"`
		Ideas *[]models.Idea `json:"ideas"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	switch {
	case env.Data != nil:
		return *env.Data, nil
	case env.Ideas != nil:
		return *env.Ideas, nil
	}
	return nil, fmt.Errorf("expected a list of ideas")
}

// decodeIdea accepts a bare idea or an object wrapping it under "data" or
// "idea".
func decodeIdea(body []byte) (models.Idea, error) {
	var env struct {
		Data *models.Idea `json:"data"`
		Idea *models.Idea `json:"idea"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return models.Idea{}, err
	}
	switch {
	case env.Data != nil:
		return *env.Data, nil
	case env.Idea != nil:
		return *env.Idea, nil
	}

	var idea models.Idea
	if err := json.Unmarshal(body, &idea); err != nil {
		return models.Idea{}, err
	}
	return idea, nil
}

// decodeFields is decodeIdea keeping track of which fields were sent.
func decodeFields(body []byte) (models.IdeaFields, error) {
	var env struct {
		Data *models.IdeaFields `json:"data"`
		Idea *models.IdeaFields `json:"idea"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return models.IdeaFields{}, err
	}
	switch {
	case env.Data != nil:
		return *env.Data, nil
	case env.Idea != nil:
		return *env.Idea, nil
	}

	var fields models.IdeaFields
	if err := json.Unmarshal(body, &fields); err != nil {
		return models.IdeaFields{}, err
	}
	return fields, nil
}
