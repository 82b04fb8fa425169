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

// Package testdata provides deterministic milestone data for tests.
package testdata

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/blinklabs-io/gostardust/ledger/common"
	"github.com/blinklabs-io/gostardust/ledger/milestone"
)

const (
	// Timestamp of the first generated milestone
	GenesisTimestamp uint32 = 1_665_000_000
	// Seconds between generated milestones
	MilestoneInterval uint32 = 5
	ProtocolVersion   uint8  = 2
	// Number of coordinator keys that sign each milestone
	CoordinatorKeyCount = 3
)

// CoordinatorKeys returns the deterministic coordinator signing keys
func CoordinatorKeys() []ed25519.PrivateKey {
	ret := make([]ed25519.PrivateKey, 0, CoordinatorKeyCount)
	for i := range CoordinatorKeyCount {
		seed := bytes.Repeat([]byte{byte(i + 1)}, ed25519.SeedSize)
		ret = append(ret, ed25519.NewKeyFromSeed(seed))
	}
	return ret
}

// CoordinatorPublicKeys returns the public keys for CoordinatorKeys
func CoordinatorPublicKeys() []ed25519.PublicKey {
	keys := CoordinatorKeys()
	ret := make([]ed25519.PublicKey, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, key.Public().(ed25519.PublicKey))
	}
	return ret
}

// MilestoneChain returns count signed milestones with indexes starting at 1.
// Each milestone references the ID of the one before it
func MilestoneChain(count int) []*milestone.MilestonePayload {
	ret := make([]*milestone.MilestonePayload, 0, count)
	var prevId common.MilestoneId
	for i := range count {
		index := uint32(i + 1)
		p := NewMilestone(index, prevId)
		id, err := p.Id()
		if err != nil {
			panic(fmt.Sprintf("unexpected error computing milestone ID: %s", err))
		}
		prevId = id
		ret = append(ret, p)
	}
	return ret
}

// NewMilestone builds a signed milestone for the given index
func NewMilestone(index uint32, prevId common.MilestoneId) *milestone.MilestonePayload {
	p := &milestone.MilestonePayload{
		PayloadType:         milestone.PayloadTypeMilestone,
		Index:               index,
		Timestamp:           GenesisTimestamp + (index-1)*MilestoneInterval,
		ProtocolVersion:     ProtocolVersion,
		PreviousMilestoneId: prevId,
		Parents:             parentsForIndex(index),
		InclusionMerkleRoot: common.Blake2b256Hash(indexBytes("inclusion", index)),
		AppliedMerkleRoot:   common.Blake2b256Hash(indexBytes("applied", index)),
		Metadata:            common.HexBytes(fmt.Sprintf("milestone %d", index)),
		Options:             milestone.MilestoneOptions{},
	}
	// Every tenth milestone announces a protocol parameter change
	if index%10 == 0 {
		p.Options = append(
			p.Options,
			&milestone.ProtocolParamsMilestoneOption{
				OptionType:           milestone.OptionTypeProtocolParams,
				TargetMilestoneIndex: index + 100,
				ProtocolVersion:      ProtocolVersion + 1,
				Params:               common.HexBytes{0x01, 0x02, 0x03},
			},
		)
	}
	for _, key := range CoordinatorKeys() {
		if err := p.Sign(key); err != nil {
			panic(fmt.Sprintf("unexpected error signing milestone: %s", err))
		}
	}
	return p
}

func parentsForIndex(index uint32) []common.BlockId {
	parentCount := int(index%common.MilestoneParentsMax) + 1
	ret := make([]common.BlockId, 0, parentCount)
	for i := range parentCount {
		ret = append(
			ret,
			common.Blake2b256Hash(indexBytes(fmt.Sprintf("parent-%d", i), index)),
		)
	}
	slices.SortFunc(ret, func(a, b common.BlockId) int {
		return bytes.Compare(a[:], b[:])
	})
	return ret
}

func indexBytes(prefix string, index uint32) []byte {
	return binary.BigEndian.AppendUint32([]byte(prefix), index)
}

// OutputIdsForIndex returns deterministic created and consumed output IDs for
// a milestone index
func OutputIdsForIndex(index uint32) ([]common.OutputId, []common.OutputId) {
	txId := common.Blake2b256Hash(indexBytes("tx", index))
	created := []common.OutputId{
		common.NewOutputId(txId, 0),
		common.NewOutputId(txId, 1),
	}
	var consumed []common.OutputId
	if index > 1 {
		prevTxId := common.Blake2b256Hash(indexBytes("tx", index-1))
		consumed = append(consumed, common.NewOutputId(prevTxId, 1))
	}
	return created, consumed
}
