package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is the HTTP implementation of Directory. Calls are never retried.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client whose pool and timeouts come from cfg.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxConnsPerHost:       cfg.PoolLimit,
		MaxIdleConns:          cfg.PoolLimit,
		MaxIdleConnsPerHost:   cfg.PoolLimit,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   cfg.ConnectTimeout + cfg.WriteTimeout + cfg.ReadTimeout,
		},
		logger: logger.With("module", "directory"),
	}
}

// CurrentUser resolves the user owning the session carried by ctx.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if _, ok := SessionFrom(ctx); !ok {
		return nil, ErrUnauthenticated
	}

	var user User

	status, body, err := c.do(ctx, http.MethodGet, "/current-user-info", nil, &user)
	if err != nil {
		return nil, &UpstreamError{Op: "CurrentUser", Err: err}
	}

	switch status {
	case http.StatusOK:
		return &user, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("current user: %w", ErrUnauthenticated)
	default:
		return nil, &UpstreamError{Op: "CurrentUser", StatusCode: status, Body: body}
	}
}

// Users fetches the given users keyed by id. Unknown ids are absent from the map.
func (c *Client) Users(ctx context.Context, ids []string) (map[string]*User, error) {
	return fetchByIDs(ctx, c, "Users", "/event-users-info", ids, func(user *User) string { return user.ID })
}

// Organizations fetches the given organizations keyed by id.
func (c *Client) Organizations(ctx context.Context, ids []string) (map[string]*Organization, error) {
	return fetchByIDs(ctx, c, "Organizations", "/event-organizations-info", ids,
		func(organization *Organization) string { return organization.ID })
}

// ExternalUsers fetches the given external users keyed by id.
func (c *Client) ExternalUsers(ctx context.Context, ids []string) (map[string]*ExternalUser, error) {
	return fetchByIDs(ctx, c, "ExternalUsers", "/event-external-users-info", ids,
		func(user *ExternalUser) string { return user.ID })
}

// fetchByIDs posts {"ids": [...]} to path and indexes the returned array.
// No request is made for an empty id list.
func fetchByIDs[T any](ctx context.Context, c *Client, op, path string, ids []string, idOf func(*T) string) (map[string]*T, error) {
	result := make(map[string]*T)
	if len(ids) == 0 {
		return result, nil
	}

	var items []*T

	request := map[string][]string{"ids": unique(ids)}

	status, body, err := c.do(ctx, http.MethodPost, path, request, &items)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}

	if status != http.StatusOK {
		return nil, &UpstreamError{Op: op, StatusCode: status, Body: body}
	}

	for _, item := range items {
		if item != nil {
			result[idOf(item)] = item
		}
	}

	return result, nil
}

// UserIDsByRole lists the ids of every user currently holding role.
func (c *Client) UserIDsByRole(ctx context.Context, role string) ([]string, error) {
	var ids []string

	status, body, err := c.do(ctx, http.MethodPost, "/users-by-role", map[string]string{"role": role}, &ids)
	if err != nil {
		return nil, &UpstreamError{Op: "UserIDsByRole", Err: err}
	}

	if status != http.StatusOK {
		return nil, &UpstreamError{Op: "UserIDsByRole", StatusCode: status, Body: body}
	}

	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, &UpstreamError{Op: "UserIDsByRole", Err: fmt.Errorf("malformed user id %q: %w", id, err)}
		}
	}

	return ids, nil
}

// do performs one request. Non-200 responses are returned with their body and
// no error; out is only decoded on 200.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, string, error) {
	var reqBody io.Reader

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, "", fmt.Errorf("failed to encode request: %w", err)
		}

		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if sessionID, ok := SessionFrom(ctx); ok {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "directory request failed", "method", method, "path", path, "error", err)

		return 0, "", fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "directory responded with error", "method", method, "path", path, "status", resp.StatusCode)

		return resp.StatusCode, string(respBody), nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return 0, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.StatusCode, "", nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}
