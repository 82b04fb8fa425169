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
	"encoding/hex"
	"encoding/json"
	"strings"
)

const HexPrefix = "0x"

// EncodeHex returns the 0x-prefixed lowercase hex representation of data
func EncodeHex(data []byte) string {
	return HexPrefix + hex.EncodeToString(data)
}

// DecodeHex decodes a 0x-prefixed hex string. The prefix is required
func DecodeHex(hexStr string) ([]byte, error) {
	if !strings.HasPrefix(hexStr, HexPrefix) {
		return nil, ErrHexNoPrefix
	}
	ret, err := hex.DecodeString(hexStr[len(HexPrefix):])
	if err != nil {
		return nil, InvalidHexError{Value: hexStr, Err: err}
	}
	return ret, nil
}

// HexBytes is a byte slice that is represented as 0x-prefixed hex in JSON and
// as a bytestring in CBOR
type HexBytes []byte

func (h HexBytes) String() string {
	return EncodeHex(h)
}

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	ret, err := DecodeHex(tmp)
	if err != nil {
		return err
	}
	*h = ret
	return nil
}
