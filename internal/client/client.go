package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const NetworkError = "network error"

// TokenSource supplies the bearer token attached to every request. An empty token means the request is sent
// unauthenticated.
type TokenSource interface {
	Token() string
}

// HttpError is returned for every failed request. Status is zero when no response was received at all.
type HttpError struct {
	Status  int
	Message string
	cause   error
}

func (e *HttpError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HttpError) Unwrap() error {
	return e.cause
}

// StatusOf returns the HTTP status carried by err, or zero if err is not an HttpError or no response was received.
func StatusOf(err error) int {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsAuthError reports whether the backend refused the request because of the caller's identity.
func IsAuthError(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

func IsNetworkError(err error) bool {
	var httpErr *HttpError
	return errors.As(err, &httpErr) && httpErr.Status == 0
}

type request struct {
	query  url.Values
	form   url.Values
	bearer *string
}

type RequestOption func(*request)

func WithQuery(query url.Values) RequestOption {
	return func(r *request) {
		r.query = query
	}
}

// WithForm sends the values form-encoded instead of a JSON body.
func WithForm(form url.Values) RequestOption {
	return func(r *request) {
		r.form = form
	}
}

// WithBearer overrides the token source for a single request.
func WithBearer(token string) RequestOption {
	return func(r *request) {
		r.bearer = &token
	}
}

// HttpClient talks to the campaign manager REST API. Every path is resolved against the base URL, which
// already includes the API prefix.
type HttpClient struct {
	base   *url.URL
	tokens TokenSource
	client *http.Client
}

func New(base *url.URL, tokens TokenSource, client *http.Client) *HttpClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HttpClient{
		base:   base,
		tokens: tokens,
		client: client,
	}
}

func (c *HttpClient) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *HttpClient) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *HttpClient) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *HttpClient) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// Do sends a request and decodes the JSON response into out, if out is not nil. Non-2xx responses and
// transport failures are returned as *HttpError; nothing is retried.
func (c *HttpClient) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var r request
	for _, opt := range opts {
		opt(&r)
	}

	u := c.base.JoinPath(path)
	if r.query != nil {
		u.RawQuery = r.query.Encode()
	}

	var content io.Reader
	var contentType string
	switch {
	case r.form != nil:
		content = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case body != nil:
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		content = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), content)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token := c.token(r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Error().Err(err).Str("method", method).Str("url", u.String()).Msg("request failed")
		return &HttpError{Message: NetworkError, cause: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		content, _ := io.ReadAll(res.Body)
		httpErr := &HttpError{
			Status:  res.StatusCode,
			Message: errorMessage(res, content),
		}
		log.Debug().
			Str("method", method).
			Str("url", u.String()).
			Int("status", res.StatusCode).
			Str("message", httpErr.Message).
			Msg("request rejected")
		return httpErr
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err = json.NewDecoder(res.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("url", u.String()).Msg("response body unmarshaling error")
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HttpClient) token(r request) string {
	if r.bearer != nil {
		return *r.bearer
	}
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// errorMessage extracts the backend's error detail, which is either a string or a list of validation issues.
func errorMessage(res *http.Response, content []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(content, &body); err == nil && len(body.Detail) > 0 {
		var detail string
		if err = json.Unmarshal(body.Detail, &detail); err == nil {
			return detail
		}

		var issues []struct {
			Msg string `json:"msg"`
		}
		if err = json.Unmarshal(body.Detail, &issues); err == nil && len(issues) > 0 {
			msgs := make([]string, 0, len(issues))
			for _, i := range issues {
				msgs = append(msgs, i.Msg)
			}
			return strings.Join(msgs, "; ")
		}
	}

	if text := http.StatusText(res.StatusCode); text != "" {
		return text
	}
	return res.Status
}
