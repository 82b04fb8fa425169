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

// Package stardust implements a client for the core REST API of nodes on a
// milestone-based distributed ledger.
//
// A Client is created with one or more node URLs. Requests are sent to the
// first available node and fall back to the next one when a node cannot
// answer. Milestones can be fetched either as decoded payloads or as the raw
// serialized bytes served by the node:
//
//	client, err := stardust.NewClient(
//		stardust.WithNode("http://localhost:14265"),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//	m, err := client.GetMilestoneByIndex(ctx, 1)
package stardust

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/blinklabs-io/gostardust/ledger/common"
	"github.com/blinklabs-io/gostardust/ledger/milestone"
	"github.com/blinklabs-io/gostardust/mnemonic"
	"github.com/blinklabs-io/gostardust/nodeapi"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client is a node API client. It is safe for concurrent use
type Client struct {
	config            ClientConfig
	network           Network
	logger            *slog.Logger
	httpClient        *http.Client
	rateLimit         rate.Limit
	rateBurst         int
	metricsRegisterer prometheus.Registerer
	metrics           *clientMetrics
	nodes             *nodeManager
	cache             *milestoneCache
	bech32Hrp         string
	bech32HrpMutex    sync.Mutex
	closeOnce         sync.Once
}

// NewClient returns a new Client configured with the provided options
func NewClient(opts ...ClientOptionFunc) (*Client, error) {
	return NewClientFromConfig(ClientConfig{}, opts...)
}

// NewClientFromConfig returns a new Client from the provided config. Options
// are applied on top of the config, and nodes added with options are tried
// after those in the config
func NewClientFromConfig(
	cfg ClientConfig,
	opts ...ClientOptionFunc,
) (*Client, error) {
	c := &Client{
		config: cfg.clone(),
	}
	// Apply provided options functions
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if !c.network.valid() && c.config.Network != "" {
		c.network = NetworkByName(c.config.Network)
	}
	if c.network.valid() {
		c.bech32Hrp = c.network.Bech32Hrp
	}
	var err error
	c.metrics, err = newClientMetrics(c.metricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	c.cache, err = newMilestoneCache(c.config.cacheSize())
	if err != nil {
		return nil, err
	}
	var limiter *rate.Limiter
	if c.rateLimit > 0 {
		burst := max(c.rateBurst, 1)
		limiter = rate.NewLimiter(c.rateLimit, burst)
	}
	c.nodes, err = newNodeManager(
		nodeManagerConfig{
			Nodes:        c.config.Nodes,
			Timeout:      c.config.apiTimeout(),
			MaxRetries:   c.config.maxRetries(),
			MaxParallel:  c.config.maxParallelApiRequests(),
			IgnoreHealth: c.config.IgnoreNodeHealth,
			HttpClient:   c.httpClient,
			Limiter:      limiter,
			Metrics:      c.metrics,
			Logger:       c.logger,
		},
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the resources held by the client
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.nodes.close()
		c.cache.purge()
	})
}

// Network returns the configured network, or NetworkInvalid if none was configured
func (c *Client) Network() Network {
	if !c.network.valid() {
		return NetworkInvalid
	}
	return c.network
}

// GenerateMnemonic returns a new random 24-word mnemonic. No network I/O is
// performed
func (c *Client) GenerateMnemonic() (string, error) {
	return mnemonic.Generate()
}

// MnemonicToHexSeed returns the 0x-prefixed hex encoding of the mnemonic's seed
func (c *Client) MnemonicToHexSeed(m string) (string, error) {
	return mnemonic.ToHexSeed(m)
}

// GetMilestoneByIndex returns the confirmed milestone with the given index.
// The returned payload may be shared with other callers and must not be
// modified. An error matching ErrNotFound is returned if no confirmed
// milestone with that index exists
func (c *Client) GetMilestoneByIndex(
	ctx context.Context,
	index uint32,
) (*milestone.MilestonePayload, error) {
	if ret, ok := c.cache.getPayload(index); ok {
		c.metrics.cacheHit(cacheFormatJSON)
		return ret, nil
	}
	ret, err := request(
		ctx,
		c.nodes,
		"GetMilestoneByIndex",
		func(ctx context.Context, api *nodeapi.Client) (*milestone.MilestonePayload, error) {
			return api.GetMilestoneByIndex(ctx, index)
		},
	)
	if err != nil {
		return nil, err
	}
	c.cache.addPayload(ret)
	return ret, nil
}

// GetMilestoneByIndexRaw returns the serialized bytes of the confirmed
// milestone with the given index, exactly as served by the node.
// milestone.DecodePayload turns them into the payload returned by
// GetMilestoneByIndex. A node whose bytes do not decode to the requested
// milestone is treated as failed and the next node is tried
func (c *Client) GetMilestoneByIndexRaw(
	ctx context.Context,
	index uint32,
) ([]byte, error) {
	if ret, ok := c.cache.getRaw(index); ok {
		c.metrics.cacheHit(cacheFormatRaw)
		return ret, nil
	}
	ret, err := request(
		ctx,
		c.nodes,
		"GetMilestoneByIndexRaw",
		func(ctx context.Context, api *nodeapi.Client) ([]byte, error) {
			return api.GetMilestoneByIndexRaw(ctx, index)
		},
	)
	if err != nil {
		return nil, err
	}
	c.cache.addRaw(index, ret)
	return ret, nil
}

// GetMilestonesByIndex returns the confirmed milestones with the given
// indexes, in the same order. Requests are made in parallel, bounded by the
// max parallel API requests setting
func (c *Client) GetMilestonesByIndex(
	ctx context.Context,
	indexes []uint32,
) ([]*milestone.MilestonePayload, error) {
	ret := make([]*milestone.MilestonePayload, len(indexes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.maxParallelApiRequests())
	for idx, index := range indexes {
		g.Go(func() error {
			m, err := c.GetMilestoneByIndex(ctx, index)
			if err != nil {
				return fmt.Errorf("milestone %d: %w", index, err)
			}
			ret[idx] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// GetMilestoneById returns the milestone with the given ID
func (c *Client) GetMilestoneById(
	ctx context.Context,
	id common.MilestoneId,
) (*milestone.MilestonePayload, error) {
	return request(
		ctx,
		c.nodes,
		"GetMilestoneById",
		func(ctx context.Context, api *nodeapi.Client) (*milestone.MilestonePayload, error) {
			return api.GetMilestoneById(ctx, id)
		},
	)
}

// GetMilestoneByIdRaw returns the serialized bytes of the milestone with the
// given ID
func (c *Client) GetMilestoneByIdRaw(
	ctx context.Context,
	id common.MilestoneId,
) ([]byte, error) {
	return request(
		ctx,
		c.nodes,
		"GetMilestoneByIdRaw",
		func(ctx context.Context, api *nodeapi.Client) ([]byte, error) {
			return api.GetMilestoneByIdRaw(ctx, id)
		},
	)
}

// GetUtxoChangesByIndex returns the outputs created and consumed by the
// milestone with the given index
func (c *Client) GetUtxoChangesByIndex(
	ctx context.Context,
	index uint32,
) (*nodeapi.UtxoChangesResponse, error) {
	return request(
		ctx,
		c.nodes,
		"GetUtxoChangesByIndex",
		func(ctx context.Context, api *nodeapi.Client) (*nodeapi.UtxoChangesResponse, error) {
			return api.GetUtxoChangesByIndex(ctx, index)
		},
	)
}

// GetUtxoChangesById returns the outputs created and consumed by the
// milestone with the given ID
func (c *Client) GetUtxoChangesById(
	ctx context.Context,
	id common.MilestoneId,
) (*nodeapi.UtxoChangesResponse, error) {
	return request(
		ctx,
		c.nodes,
		"GetUtxoChangesById",
		func(ctx context.Context, api *nodeapi.Client) (*nodeapi.UtxoChangesResponse, error) {
			return api.GetUtxoChangesById(ctx, id)
		},
	)
}

// GetInfo returns the node info of the first node that answers
func (c *Client) GetInfo(ctx context.Context) (*nodeapi.InfoResponse, error) {
	return request(
		ctx,
		c.nodes,
		"GetInfo",
		func(ctx context.Context, api *nodeapi.Client) (*nodeapi.InfoResponse, error) {
			return api.GetInfo(ctx)
		},
	)
}

// GetHealth reports whether the node at url considers itself healthy. The
// node does not need to be one of the configured nodes
func (c *Client) GetHealth(ctx context.Context, url string) (bool, error) {
	if node := c.nodes.nodeByUrl(url); node != nil {
		return node.api.GetHealth(ctx)
	}
	api, err := nodeapi.NewClient(
		nodeapi.Config{
			URL:        url,
			Timeout:    c.config.apiTimeout(),
			MaxRetries: c.config.maxRetries(),
			Logger:     c.logger,
			HTTPClient: c.httpClient,
		},
	)
	if err != nil {
		return false, err
	}
	defer api.Close()
	return api.GetHealth(ctx)
}

// UnsyncedNodes returns the URLs of the nodes that are unreachable, report
// themselves as unhealthy, or are on a different network than the configured
// one. Unless node health is ignored, the nodes returned are tried last by
// later requests until the next check
func (c *Client) UnsyncedNodes(ctx context.Context) ([]string, error) {
	var expectedHrp string
	if c.network.valid() {
		expectedHrp = c.network.Bech32Hrp
	}
	return c.nodes.unsyncedNodes(ctx, expectedHrp)
}

// Bech32Hrp returns the bech32 human-readable part of the network. It comes
// from the configured network if any, and is otherwise requested from the
// nodes once
func (c *Client) Bech32Hrp(ctx context.Context) (string, error) {
	c.bech32HrpMutex.Lock()
	defer c.bech32HrpMutex.Unlock()
	if c.bech32Hrp != "" {
		return c.bech32Hrp, nil
	}
	info, err := c.GetInfo(ctx)
	if err != nil {
		return "", err
	}
	if info.Protocol.Bech32Hrp == "" {
		return "", errors.New("node did not report a bech32 HRP")
	}
	c.bech32Hrp = info.Protocol.Bech32Hrp
	return c.bech32Hrp, nil
}

// Bech32ToHex returns the 0x-prefixed hex form of a bech32 address
func (c *Client) Bech32ToHex(addr string) (string, error) {
	return common.Bech32ToHex(addr)
}

// HexToBech32 returns the bech32 form of a hex address. The network's HRP is
// used when hrp is empty
func (c *Client) HexToBech32(
	ctx context.Context,
	hexAddr string,
	hrp string,
) (string, error) {
	if hrp == "" {
		var err error
		hrp, err = c.Bech32Hrp(ctx)
		if err != nil {
			return "", err
		}
	}
	return common.HexToBech32(hexAddr, hrp)
}

// HexPublicKeyToBech32Address returns the bech32 Ed25519 address for a hex
// public key. The network's HRP is used when hrp is empty
func (c *Client) HexPublicKeyToBech32Address(
	ctx context.Context,
	hexPubKey string,
	hrp string,
) (string, error) {
	if hrp == "" {
		var err error
		hrp, err = c.Bech32Hrp(ctx)
		if err != nil {
			return "", err
		}
	}
	return common.HexPublicKeyToBech32Address(hexPubKey, hrp)
}

// IsAddressValid reports whether addr is a valid bech32 address
func (c *Client) IsAddressValid(addr string) bool {
	return common.IsAddressValid(addr)
}
