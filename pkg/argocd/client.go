// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package argocd provides a thin JSON client for the ArgoCD REST API.
// Every tool exposed by the tool server ultimately goes through Client.Do.
package argocd

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/telemetry"
)

const defaultTimeout = 30 * time.Second

// Client calls the ArgoCD REST API with bearer token authentication.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. Intended
// for ArgoCD instances with self-signed certificates.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		c.httpClient = &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a new ArgoCD API client.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New(errors.CodeConfig, "ArgoCD API URL is required", nil)
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New(errors.CodeConfig, "ArgoCD token is required", nil)
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		tracer:     otel.Tracer("argonaut/argocd"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs a JSON request against the API. The path is relative to the
// base URL (e.g. "/api/v1/applications"). A nil body sends no payload.
// Responses that are not valid JSON are wrapped as {"result": <text>}.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body []byte) (json.RawMessage, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "argocd.request")
	defer span.End()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "cannot build ArgoCD request", err).
			WithContext("path", path)
	}
	request.Header.Set("Authorization", "Bearer "+c.token)
	request.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		request.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))

	c.logger.DebugContext(ctx, "argocd api request", "method", method, "path", path)

	response, err := c.httpClient.Do(request)
	if err != nil {
		span.RecordError(err)
		return nil, errors.New(errors.CodeAPIFailure, "ArgoCD request failed", err).
			WithContext("method", method).
			WithContext("path", path).
			WithRecoverable(true)
	}
	defer response.Body.Close()

	span.SetAttributes(telemetry.APIRequestAttributes(method, path, response.StatusCode)...)

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.New(errors.CodeAPIFailure, "cannot read ArgoCD response", err).
			WithContext("path", path)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, apiError(method, path, response.StatusCode, payload)
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(payload) {
		wrapped, _ := json.Marshal(map[string]string{"result": string(payload)})
		return wrapped, nil
	}
	return payload, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body []byte) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, query, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body []byte) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, query, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, query, nil)
}

func apiError(method, path string, statusCode int, payload []byte) *errors.ArgonautError {
	code := errors.CodeAPIFailure
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = errors.CodeUnauthorized
	case http.StatusNotFound:
		code = errors.CodeNotFound
	case http.StatusTooManyRequests:
		code = errors.CodeRateLimit
	}

	msg := fmt.Sprintf("ArgoCD API returned %d", statusCode)
	if detail := extractErrorMessage(payload); detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}

	err := errors.New(code, msg, nil).
		WithContext("method", method).
		WithContext("path", path).
		WithContext("status_code", statusCode)
	err.StatusCode = statusCode
	if statusCode >= 500 || statusCode == http.StatusTooManyRequests {
		return err.WithRecoverable(true)
	}
	return err
}

// extractErrorMessage pulls the error/message fields ArgoCD uses in its
// grpc-gateway error payloads.
func extractErrorMessage(payload []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return strings.TrimSpace(string(payload))
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}
