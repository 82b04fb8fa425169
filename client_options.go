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

package stardust

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// ClientOptionFunc is a type that represents functions that modify the Client config
type ClientOptionFunc func(*Client)

// WithNode adds a node by URL
func WithNode(url string) ClientOptionFunc {
	return func(c *Client) {
		c.config.Nodes = append(c.config.Nodes, NodeConfig{Url: url})
	}
}

// WithNodes adds nodes by URL. Nodes are tried in the order they are added
func WithNodes(urls ...string) ClientOptionFunc {
	return func(c *Client) {
		for _, url := range urls {
			c.config.Nodes = append(c.config.Nodes, NodeConfig{Url: url})
		}
	}
}

// WithNodeConfig adds a node with authentication or other per-node settings
func WithNodeConfig(node NodeConfig) ClientOptionFunc {
	return func(c *Client) {
		c.config.Nodes = append(c.config.Nodes, node)
	}
}

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithApiTimeout specifies the timeout for a single node request, including retries
func WithApiTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.config.ApiTimeout = Duration(timeout)
	}
}

// WithNetwork specifies the network. The network's bech32 HRP is used for
// address conversions and for checking that nodes are on the expected network
func WithNetwork(network Network) ClientOptionFunc {
	return func(c *Client) {
		c.network = network
		c.config.Network = ""
	}
}

// WithMaxParallelApiRequests limits how many requests are in flight at once for
// operations that fan out
func WithMaxParallelApiRequests(maxParallel int) ClientOptionFunc {
	return func(c *Client) {
		c.config.MaxParallelApiRequests = maxParallel
	}
}

// WithIgnoreNodeHealth specifies whether node health checks affect the order
// in which nodes are tried
func WithIgnoreNodeHealth(ignoreNodeHealth bool) ClientOptionFunc {
	return func(c *Client) {
		c.config.IgnoreNodeHealth = ignoreNodeHealth
	}
}

// WithMaxRetries specifies how many times a failed request is retried against
// the same node before moving on to the next one
func WithMaxRetries(maxRetries int) ClientOptionFunc {
	return func(c *Client) {
		c.config.MaxRetries = &maxRetries
	}
}

// WithCacheSize specifies how many confirmed milestones to keep in memory. A
// size of 0 disables the cache
func WithCacheSize(size int) ClientOptionFunc {
	return func(c *Client) {
		c.config.CacheSize = &size
	}
}

// WithRateLimit limits outgoing node requests to the given rate. This is
// disabled by default
func WithRateLimit(limit rate.Limit, burst int) ClientOptionFunc {
	return func(c *Client) {
		c.rateLimit = limit
		c.rateBurst = burst
	}
}

// WithMetricsRegisterer specifies a registerer for the client's Prometheus
// collectors. No metrics are collected if none is provided
func WithMetricsRegisterer(reg prometheus.Registerer) ClientOptionFunc {
	return func(c *Client) {
		c.metricsRegisterer = reg
	}
}

// WithHttpClient specifies the HTTP client used for node requests
func WithHttpClient(httpClient *http.Client) ClientOptionFunc {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}
