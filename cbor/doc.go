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

// Package cbor provides the CBOR encoding/decoding used for the binary
// ("raw") representation of node API payloads.
//
// This package wraps github.com/fxamacker/cbor/v2 with a few helpers:
//   - StructAsArray: Embed to encode struct fields as CBOR array instead of map
//   - DecodeStoreCbor: Embed to preserve the original CBOR bytes
//   - DecodeById: Decode a list into a type selected by its leading numeric ID
//
// Types embedding DecodeStoreCbor follow this pattern:
//
//	func (m *MyType) UnmarshalCBOR(data []byte) error {
//	    if err := cbor.DecodeGeneric(data, m); err != nil {
//	        return err
//	    }
//	    m.SetCbor(data)
//	    return nil
//	}
//
//	func (m *MyType) MarshalCBOR() ([]byte, error) {
//	    if len(m.Cbor()) > 0 {
//	        return m.Cbor(), nil
//	    }
//	    return cbor.EncodeGeneric(m)
//	}
//
// Returning the stored bytes keeps identifiers computed over the encoding
// stable, even if the sender used a non-canonical encoding.
package cbor
