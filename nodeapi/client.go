// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nodeapi implements the HTTP transport to a single node's core REST
// API. Objects can be requested as JSON or in their binary serialized form.
package nodeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/blinklabs-io/gostardust/ledger/common"
	"github.com/blinklabs-io/gostardust/ledger/milestone"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// MaxResponseSize is the largest response body that will be accepted
	MaxResponseSize = 32 << 20

	retryWaitMin = 100 * time.Millisecond
	retryWaitMax = 2 * time.Second
)

// Auth holds the credentials for a node. A JWT takes precedence over basic auth
type Auth struct {
	Jwt      string `json:"jwt,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (a *Auth) apply(req *http.Request) {
	if a == nil {
		return
	}
	if a.Jwt != "" {
		req.Header.Set("Authorization", "Bearer "+a.Jwt)
		return
	}
	if a.Username != "" {
		req.SetBasicAuth(a.Username, a.Password)
	}
}

// Config is the configuration for a Client
type Config struct {
	URL  string
	Auth *Auth
	// Timeout bounds a whole request, including retries. Zero means no timeout
	Timeout time.Duration
	// MaxRetries is the number of times a failed request is retried
	MaxRetries int
	Logger     *slog.Logger
	// HTTPClient is used for requests when set
	HTTPClient *http.Client
}

// Client talks to a single node
type Client struct {
	baseUrl *url.URL
	auth    *Auth
	timeout time.Duration
	client  *retryablehttp.Client
	logger  *slog.Logger
}

// NewClient returns a Client for the node at the configured URL
func NewClient(cfg Config) (*Client, error) {
	baseUrl, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid max retries: %d", cfg.MaxRetries)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("node", baseUrl.Redacted())
	client := retryablehttp.NewClient()
	if cfg.HTTPClient != nil {
		client.HTTPClient = cfg.HTTPClient
	}
	client.Logger = logger
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	// Hand the last response back instead of a generic error, so that the
	// status can be reported to the caller
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c := &Client{
		baseUrl: baseUrl,
		auth:    cfg.Auth,
		timeout: cfg.Timeout,
		client:  client,
		logger:  logger,
	}
	return c, nil
}

// ParseURL parses and checks a node URL. Only absolute http and https URLs
// are accepted
func ParseURL(rawUrl string) (*url.URL, error) {
	if rawUrl == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	ret, err := url.Parse(rawUrl)
	if err != nil {
		// The parse error quotes the raw URL, which may carry credentials
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if ret.Scheme != "http" && ret.Scheme != "https" {
		return nil, fmt.Errorf(
			"%w: unsupported scheme %q in %s",
			ErrInvalidURL,
			ret.Scheme,
			ret.Redacted(),
		)
	}
	if ret.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %s", ErrInvalidURL, ret.Redacted())
	}
	return ret, nil
}

// URL returns the base URL of the node with any password redacted
func (c *Client) URL() string {
	return c.baseUrl.Redacted()
}

// routeURL returns the URL of a route for use in errors and logs
func (c *Client) routeURL(route string) string {
	return c.baseUrl.JoinPath(route).Redacted()
}

// Close releases idle connections held by the client
func (c *Client) Close() {
	c.client.HTTPClient.CloseIdleConnections()
}

func (c *Client) get(
	ctx context.Context,
	route string,
	accept string,
	handler func(*http.Response, string) error,
) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	reqUrl := c.routeURL(route)
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseUrl.JoinPath(route).String(),
		nil,
	)
	if err != nil {
		return &RequestError{URL: reqUrl, Err: err}
	}
	req.Header.Set("Accept", accept)
	c.auth.apply(req.Request)
	resp, err := c.client.Do(req)
	if err != nil {
		return &RequestError{URL: reqUrl, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp, reqUrl)
	}
	return handler(resp, reqUrl)
}

// GetJSON requests the route as JSON and decodes the response into dest
func (c *Client) GetJSON(ctx context.Context, route string, dest any) error {
	return c.get(
		ctx,
		route,
		MediaTypeJSON,
		func(resp *http.Response, reqUrl string) error {
			dec := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize))
			if err := dec.Decode(dest); err != nil {
				return &DecodeError{URL: reqUrl, Err: err}
			}
			return nil
		},
	)
}

// GetBytes requests the route in its binary serialized form and returns the
// response body unmodified
func (c *Client) GetBytes(ctx context.Context, route string) ([]byte, error) {
	var ret []byte
	err := c.get(
		ctx,
		route,
		MediaTypeSerializer,
		func(resp *http.Response, reqUrl string) error {
			data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
			if err != nil {
				return &RequestError{URL: reqUrl, Err: err}
			}
			if len(data) > MaxResponseSize {
				return &DecodeError{
					URL: reqUrl,
					Err: fmt.Errorf("response exceeds %d bytes", MaxResponseSize),
				}
			}
			if len(data) == 0 {
				return &DecodeError{URL: reqUrl, Err: errors.New("empty response")}
			}
			ret = data
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// GetHealth reports whether the node considers itself healthy
func (c *Client) GetHealth(ctx context.Context) (bool, error) {
	err := c.get(
		ctx,
		RouteHealth,
		MediaTypeJSON,
		func(*http.Response, string) error { return nil },
	)
	if err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) &&
			respErr.Code == http.StatusServiceUnavailable {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) GetInfo(ctx context.Context) (*InfoResponse, error) {
	var ret InfoResponse
	if err := c.GetJSON(ctx, RouteInfo, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// GetMilestoneByIndex returns the confirmed milestone with the given index.
// A response for any other milestone is reported as a DecodeError
func (c *Client) GetMilestoneByIndex(
	ctx context.Context,
	index uint32,
) (*milestone.MilestonePayload, error) {
	route := RouteMilestoneByIndex(index)
	ret, err := c.getMilestone(ctx, route)
	if err != nil {
		return nil, err
	}
	if err := c.checkIndex(route, ret, index); err != nil {
		return nil, err
	}
	return ret, nil
}

// GetMilestoneByIndexRaw returns the serialized milestone with the given
// index. The body must decode to that milestone, otherwise a DecodeError is
// returned
func (c *Client) GetMilestoneByIndexRaw(
	ctx context.Context,
	index uint32,
) ([]byte, error) {
	route := RouteMilestoneByIndex(index)
	ret, decoded, err := c.getMilestoneRaw(ctx, route)
	if err != nil {
		return nil, err
	}
	if err := c.checkIndex(route, decoded, index); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) GetMilestoneById(
	ctx context.Context,
	id common.MilestoneId,
) (*milestone.MilestonePayload, error) {
	route := RouteMilestoneById(id)
	ret, err := c.getMilestone(ctx, route)
	if err != nil {
		return nil, err
	}
	if err := c.checkId(route, ret, id); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) GetMilestoneByIdRaw(
	ctx context.Context,
	id common.MilestoneId,
) ([]byte, error) {
	route := RouteMilestoneById(id)
	ret, decoded, err := c.getMilestoneRaw(ctx, route)
	if err != nil {
		return nil, err
	}
	if err := c.checkId(route, decoded, id); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) GetUtxoChangesByIndex(
	ctx context.Context,
	index uint32,
) (*UtxoChangesResponse, error) {
	var ret UtxoChangesResponse
	if err := c.GetJSON(ctx, RouteUtxoChangesByIndex(index), &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) GetUtxoChangesById(
	ctx context.Context,
	id common.MilestoneId,
) (*UtxoChangesResponse, error) {
	var ret UtxoChangesResponse
	if err := c.GetJSON(ctx, RouteUtxoChangesById(id), &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) getMilestone(
	ctx context.Context,
	route string,
) (*milestone.MilestonePayload, error) {
	var ret milestone.MilestonePayload
	if err := c.GetJSON(ctx, route, &ret); err != nil {
		return nil, err
	}
	if ret.PayloadType != milestone.PayloadTypeMilestone {
		return nil, &DecodeError{
			URL: c.routeURL(route),
			Err: milestone.InvalidPayloadTypeError{Type: int(ret.PayloadType)},
		}
	}
	return &ret, nil
}

func (c *Client) getMilestoneRaw(
	ctx context.Context,
	route string,
) ([]byte, *milestone.MilestonePayload, error) {
	ret, err := c.GetBytes(ctx, route)
	if err != nil {
		return nil, nil, err
	}
	decoded, err := milestone.DecodePayload(ret)
	if err != nil {
		return nil, nil, &DecodeError{URL: c.routeURL(route), Err: err}
	}
	return ret, decoded, nil
}

func (c *Client) checkIndex(
	route string,
	m *milestone.MilestonePayload,
	index uint32,
) error {
	if m.Index != index {
		return &DecodeError{
			URL: c.routeURL(route),
			Err: fmt.Errorf(
				"node returned milestone %d for requested index %d",
				m.Index,
				index,
			),
		}
	}
	return nil
}

func (c *Client) checkId(
	route string,
	m *milestone.MilestonePayload,
	id common.MilestoneId,
) error {
	msId, err := m.Id()
	if err != nil {
		return &DecodeError{URL: c.routeURL(route), Err: err}
	}
	if msId != id {
		return &DecodeError{
			URL: c.routeURL(route),
			Err: fmt.Errorf(
				"node returned milestone %s for requested ID %s",
				msId,
				id,
			),
		}
	}
	return nil
}
