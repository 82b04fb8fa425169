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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gostardust/nodeapi"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// nodeManager sends requests to the configured nodes, falling back to the
// next node when one fails
type nodeManager struct {
	nodes        []*managedNode
	ignoreHealth bool
	maxParallel  int
	limiter      *rate.Limiter
	metrics      *clientMetrics
	logger       *slog.Logger
}

type managedNode struct {
	// url has any password redacted and is used in logs, metrics and results
	url       string
	configUrl string
	api       *nodeapi.Client
	unhealthy atomic.Bool
}

type nodeManagerConfig struct {
	Nodes        []NodeConfig
	Timeout      time.Duration
	MaxRetries   int
	MaxParallel  int
	IgnoreHealth bool
	HttpClient   *http.Client
	Limiter      *rate.Limiter
	Metrics      *clientMetrics
	Logger       *slog.Logger
}

func newNodeManager(cfg nodeManagerConfig) (*nodeManager, error) {
	m := &nodeManager{
		ignoreHealth: cfg.IgnoreHealth,
		maxParallel:  cfg.MaxParallel,
		limiter:      cfg.Limiter,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
	for _, node := range cfg.Nodes {
		if node.Disabled {
			continue
		}
		api, err := nodeapi.NewClient(
			nodeapi.Config{
				URL:        node.Url,
				Auth:       node.Auth,
				Timeout:    cfg.Timeout,
				MaxRetries: cfg.MaxRetries,
				Logger:     cfg.Logger,
				HTTPClient: cfg.HttpClient,
			},
		)
		if err != nil {
			m.close()
			return nil, err
		}
		m.nodes = append(
			m.nodes,
			&managedNode{
				url:       api.URL(),
				configUrl: node.Url,
				api:       api,
			},
		)
	}
	if len(m.nodes) == 0 {
		return nil, ErrNoNodes
	}
	return m, nil
}

// orderedNodes returns the nodes in the order they should be tried. Nodes
// that failed their last health check are moved to the end
func (m *nodeManager) orderedNodes() []*managedNode {
	if m.ignoreHealth {
		return m.nodes
	}
	ret := make([]*managedNode, 0, len(m.nodes))
	var unhealthy []*managedNode
	for _, node := range m.nodes {
		if node.unhealthy.Load() {
			unhealthy = append(unhealthy, node)
			continue
		}
		ret = append(ret, node)
	}
	return append(ret, unhealthy...)
}

func (m *nodeManager) nodeByUrl(url string) *managedNode {
	for _, node := range m.nodes {
		if node.configUrl == url || node.url == url {
			return node
		}
	}
	return nil
}

func (m *nodeManager) close() {
	for _, node := range m.nodes {
		node.api.Close()
	}
}

// shouldFallback reports whether a request that failed with err may succeed
// on another node
func shouldFallback(err error) bool {
	var respErr *nodeapi.ResponseError
	if errors.As(err, &respErr) {
		// Credentials are per node
		if respErr.Code == http.StatusUnauthorized ||
			respErr.Code == http.StatusForbidden {
			return true
		}
		return respErr.Temporary()
	}
	var reqErr *nodeapi.RequestError
	var decodeErr *nodeapi.DecodeError
	return errors.As(err, &reqErr) || errors.As(err, &decodeErr)
}

// request calls fn for each node in turn until one succeeds or returns an
// error that another node would return as well
func request[T any](
	ctx context.Context,
	m *nodeManager,
	name string,
	fn func(context.Context, *nodeapi.Client) (T, error),
) (T, error) {
	var zero T
	var errs *multierror.Error
	for _, node := range m.orderedNodes() {
		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return zero, err
			}
		}
		start := time.Now()
		ret, err := fn(ctx, node.api)
		m.metrics.observeRequest(node.url, err, time.Since(start))
		if err == nil {
			return ret, nil
		}
		if ctx.Err() != nil || !shouldFallback(err) {
			return zero, err
		}
		m.logger.Warn(
			"node request failed, trying next node",
			"request",
			name,
			"node",
			node.url,
			"error",
			err,
		)
		errs = multierror.Append(errs, err)
	}
	return zero, &NetworkError{Err: errs.ErrorOrNil()}
}

// unsyncedNodes checks every node's info in parallel and returns the URLs of
// those that are unreachable, report themselves as unhealthy, or belong to
// another network than expectedHrp when set. Health results are used to
// order nodes for later requests
func (m *nodeManager) unsyncedNodes(
	ctx context.Context,
	expectedHrp string,
) ([]string, error) {
	synced := make([]bool, len(m.nodes))
	var g errgroup.Group
	g.SetLimit(m.maxParallel)
	for idx, node := range m.nodes {
		g.Go(func() error {
			info, err := node.api.GetInfo(ctx)
			switch {
			case err != nil:
				m.logger.Debug(
					"node info request failed",
					"node",
					node.url,
					"error",
					err,
				)
			case !info.Status.IsHealthy:
				m.logger.Debug("node reports unhealthy", "node", node.url)
			case expectedHrp != "" && info.Protocol.Bech32Hrp != expectedHrp:
				m.logger.Warn(
					"node is on a different network",
					"node",
					node.url,
					"bech32_hrp",
					info.Protocol.Bech32Hrp,
					"expected_bech32_hrp",
					expectedHrp,
				)
			default:
				synced[idx] = true
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ret []string
	for idx, node := range m.nodes {
		if !m.ignoreHealth {
			node.unhealthy.Store(!synced[idx])
		}
		if !synced[idx] {
			ret = append(ret, node.url)
		}
	}
	return ret, nil
}
