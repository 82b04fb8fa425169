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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/blinklabs-io/gostardust/nodeapi"
)

const (
	DefaultApiTimeout             = 15 * time.Second
	DefaultMaxParallelApiRequests = 100
	DefaultMaxRetries             = 2
	DefaultCacheSize              = 1000
)

// ClientConfig represents the JSON client config
type ClientConfig struct {
	Nodes                  []NodeConfig `json:"nodes"`
	ApiTimeout             Duration     `json:"apiTimeout,omitempty"`
	Network                string       `json:"network,omitempty"`
	MaxParallelApiRequests int          `json:"maxParallelApiRequests,omitempty"`
	IgnoreNodeHealth       bool         `json:"ignoreNodeHealth,omitempty"`
	// A nil value selects the default, while zero disables retries
	MaxRetries *int `json:"maxRetries,omitempty"`
	// A nil value selects the default, while zero disables caching
	CacheSize *int `json:"cacheSize,omitempty"`
}

type NodeConfig struct {
	Url      string        `json:"url"`
	Auth     *nodeapi.Auth `json:"auth,omitempty"`
	Disabled bool          `json:"disabled,omitempty"`
}

func NewClientConfigFromFile(path string) (*ClientConfig, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewClientConfigFromReader(dataFile)
}

func NewClientConfigFromReader(r io.Reader) (*ClientConfig, error) {
	c := &ClientConfig{}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the config for errors
func (c *ClientConfig) Validate() error {
	var enabled int
	for idx, node := range c.Nodes {
		if _, err := nodeapi.ParseURL(node.Url); err != nil {
			return fmt.Errorf("%w: node %d: %w", ErrInvalidConfig, idx, err)
		}
		if !node.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		return ErrNoNodes
	}
	if c.ApiTimeout < 0 {
		return fmt.Errorf("%w: negative API timeout", ErrInvalidConfig)
	}
	if c.MaxParallelApiRequests < 0 {
		return fmt.Errorf(
			"%w: invalid max parallel API requests: %d",
			ErrInvalidConfig,
			c.MaxParallelApiRequests,
		)
	}
	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		return fmt.Errorf("%w: invalid max retries: %d", ErrInvalidConfig, *c.MaxRetries)
	}
	if c.CacheSize != nil && *c.CacheSize < 0 {
		return fmt.Errorf("%w: invalid cache size: %d", ErrInvalidConfig, *c.CacheSize)
	}
	if c.Network != "" && !NetworkByName(c.Network).valid() {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, c.Network)
	}
	return nil
}

func (c ClientConfig) clone() ClientConfig {
	ret := c
	ret.Nodes = make([]NodeConfig, len(c.Nodes))
	for idx, node := range c.Nodes {
		if node.Auth != nil {
			tmpAuth := *node.Auth
			node.Auth = &tmpAuth
		}
		ret.Nodes[idx] = node
	}
	if c.MaxRetries != nil {
		tmp := *c.MaxRetries
		ret.MaxRetries = &tmp
	}
	if c.CacheSize != nil {
		tmp := *c.CacheSize
		ret.CacheSize = &tmp
	}
	return ret
}

func (c *ClientConfig) apiTimeout() time.Duration {
	if c.ApiTimeout == 0 {
		return DefaultApiTimeout
	}
	return time.Duration(c.ApiTimeout)
}

func (c *ClientConfig) maxParallelApiRequests() int {
	if c.MaxParallelApiRequests == 0 {
		return DefaultMaxParallelApiRequests
	}
	return c.MaxParallelApiRequests
}

func (c *ClientConfig) maxRetries() int {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

func (c *ClientConfig) cacheSize() int {
	if c.CacheSize == nil {
		return DefaultCacheSize
	}
	return *c.CacheSize
}

// Duration is a time.Duration that can be read from JSON either as a
// duration string ("20s") or as an object of whole seconds and nanoseconds
// ({"secs": 20, "nanos": 0})
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var tmpString string
	if err := json.Unmarshal(data, &tmpString); err == nil {
		tmpDuration, err := time.ParseDuration(tmpString)
		if err != nil {
			return err
		}
		*d = Duration(tmpDuration)
		return nil
	}
	var tmpObj struct {
		Secs  *int64 `json:"secs"`
		Nanos int64  `json:"nanos"`
	}
	if err := json.Unmarshal(data, &tmpObj); err != nil {
		return fmt.Errorf("invalid duration: %s", data)
	}
	if tmpObj.Secs == nil {
		return errors.New("invalid duration: missing secs")
	}
	if tmpObj.Nanos < 0 || tmpObj.Nanos >= int64(time.Second) {
		return fmt.Errorf("invalid duration: nanos out of range: %d", tmpObj.Nanos)
	}
	*d = Duration(time.Duration(*tmpObj.Secs)*time.Second + time.Duration(tmpObj.Nanos))
	return nil
}
