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
	"bytes"

	"github.com/blinklabs-io/gostardust/ledger/milestone"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	cacheFormatJSON = "json"
	cacheFormatRaw  = "raw"
)

// milestoneCache keeps recently fetched confirmed milestones by index. A
// confirmed milestone never changes, so entries are never invalidated. A nil
// *milestoneCache caches nothing
type milestoneCache struct {
	payloads *lru.Cache[uint32, *milestone.MilestonePayload]
	raw      *lru.Cache[uint32, []byte]
}

func newMilestoneCache(size int) (*milestoneCache, error) {
	if size == 0 {
		return nil, nil
	}
	payloads, err := lru.New[uint32, *milestone.MilestonePayload](size)
	if err != nil {
		return nil, err
	}
	raw, err := lru.New[uint32, []byte](size)
	if err != nil {
		return nil, err
	}
	c := &milestoneCache{
		payloads: payloads,
		raw:      raw,
	}
	return c, nil
}

func (c *milestoneCache) getPayload(index uint32) (*milestone.MilestonePayload, bool) {
	if c == nil {
		return nil, false
	}
	return c.payloads.Get(index)
}

func (c *milestoneCache) addPayload(p *milestone.MilestonePayload) {
	if c == nil {
		return
	}
	c.payloads.Add(p.Index, p)
}

func (c *milestoneCache) getRaw(index uint32) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, ok := c.raw.Get(index)
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

func (c *milestoneCache) addRaw(index uint32, data []byte) {
	if c == nil {
		return
	}
	c.raw.Add(index, bytes.Clone(data))
}

func (c *milestoneCache) purge() {
	if c == nil {
		return
	}
	c.payloads.Purge()
	c.raw.Purge()
}
