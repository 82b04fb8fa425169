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

package common

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

const (
	OutputIdSize        = Blake2b256Size + 2
	OutputIndexMax      = 127
	MilestoneParentsMin = 1
	MilestoneParentsMax = 8
)

// MilestoneId identifies a milestone by the Blake2b-256 hash of its essence
type MilestoneId = Blake2b256

// BlockId identifies a block by the Blake2b-256 hash of its encoding
type BlockId = Blake2b256

// TransactionId identifies a transaction by the Blake2b-256 hash of its encoding
type TransactionId = Blake2b256

// OutputId is a transaction ID followed by the little-endian output index
type OutputId [OutputIdSize]byte

func NewOutputId(txId TransactionId, index uint16) OutputId {
	var ret OutputId
	copy(ret[:], txId[:])
	binary.LittleEndian.PutUint16(ret[Blake2b256Size:], index)
	return ret
}

func NewOutputIdFromHex(hexStr string) (OutputId, error) {
	data, err := DecodeHex(hexStr)
	if err != nil {
		return OutputId{}, err
	}
	if len(data) != OutputIdSize {
		return OutputId{}, InvalidLengthError{
			Type:     "OutputId",
			Expected: OutputIdSize,
			Actual:   len(data),
		}
	}
	var ret OutputId
	copy(ret[:], data)
	if ret.Index() > OutputIndexMax {
		return OutputId{}, fmt.Errorf(
			"output index %d exceeds maximum of %d",
			ret.Index(),
			OutputIndexMax,
		)
	}
	return ret, nil
}

func (o OutputId) TransactionId() TransactionId {
	return NewBlake2b256(o[:Blake2b256Size])
}

func (o OutputId) Index() uint16 {
	return binary.LittleEndian.Uint16(o[Blake2b256Size:])
}

func (o OutputId) String() string {
	return EncodeHex(o[:])
}

func (o OutputId) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *OutputId) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	ret, err := NewOutputIdFromHex(tmp)
	if err != nil {
		return err
	}
	*o = ret
	return nil
}
