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
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gostardust/cbor"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	AddressTypeEd25519 uint8 = 0
	AddressTypeAlias   uint8 = 8
	AddressTypeNft     uint8 = 16

	AddressIdSize = Blake2b256Size
)

// Address is an address kind followed by the 32 byte identifier for that kind
type Address struct {
	Type uint8
	Id   [AddressIdSize]byte
}

// NewEd25519Address derives the address for an Ed25519 public key
func NewEd25519Address(pubKey ed25519.PublicKey) (Address, error) {
	if len(pubKey) != ed25519.PublicKeySize {
		return Address{}, InvalidLengthError{
			Type:     "Ed25519 public key",
			Expected: ed25519.PublicKeySize,
			Actual:   len(pubKey),
		}
	}
	return Address{
		Type: AddressTypeEd25519,
		Id:   Blake2b256Hash(pubKey),
	}, nil
}

// NewAddressFromBech32 parses a bech32 address string and returns its HRP and
// decoded address
func NewAddressFromBech32(addr string) (string, Address, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return "", Address{}, InvalidAddressError{Address: addr, Err: err}
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", Address{}, InvalidAddressError{Address: addr, Err: err}
	}
	ret, err := NewAddressFromBytes(decoded)
	if err != nil {
		return "", Address{}, InvalidAddressError{Address: addr, Err: err}
	}
	return hrp, ret, nil
}

// NewAddressFromBytes decodes the serialized address kind and identifier
func NewAddressFromBytes(data []byte) (Address, error) {
	if len(data) != 1+AddressIdSize {
		return Address{}, InvalidLengthError{
			Type:     "address",
			Expected: 1 + AddressIdSize,
			Actual:   len(data),
		}
	}
	switch data[0] {
	case AddressTypeEd25519, AddressTypeAlias, AddressTypeNft:
	default:
		return Address{}, fmt.Errorf("unknown address type %d", data[0])
	}
	ret := Address{Type: data[0]}
	copy(ret.Id[:], data[1:])
	return ret, nil
}

func (a Address) Bytes() []byte {
	ret := make([]byte, 0, 1+AddressIdSize)
	ret = append(ret, a.Type)
	return append(ret, a.Id[:]...)
}

// idJsonKey returns the JSON field name the node uses for the address identifier
func idJsonKey(addrType uint8) (string, error) {
	switch addrType {
	case AddressTypeEd25519:
		return "pubKeyHash", nil
	case AddressTypeAlias:
		return "aliasId", nil
	case AddressTypeNft:
		return "nftId", nil
	default:
		return "", fmt.Errorf("unknown address type %d", addrType)
	}
}

func (a Address) MarshalJSON() ([]byte, error) {
	key, err := idJsonKey(a.Type)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"type": a.Type,
		key:    EncodeHex(a.Id[:]),
	})
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var tmp map[string]json.RawMessage
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	var addrType uint8
	if err := json.Unmarshal(tmp["type"], &addrType); err != nil {
		return fmt.Errorf("invalid address type: %w", err)
	}
	key, err := idJsonKey(addrType)
	if err != nil {
		return err
	}
	var id Blake2b256
	if err := json.Unmarshal(tmp[key], &id); err != nil {
		return fmt.Errorf("invalid address %s: %w", key, err)
	}
	a.Type = addrType
	a.Id = id
	return nil
}

type addressCbor struct {
	cbor.StructAsArray
	Type uint8
	Id   Blake2b256
}

func (a Address) MarshalCBOR() ([]byte, error) {
	if _, err := idJsonKey(a.Type); err != nil {
		return nil, err
	}
	return cbor.Encode(&addressCbor{Type: a.Type, Id: a.Id})
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	var tmp addressCbor
	if err := cbor.DecodeFull(data, &tmp); err != nil {
		return err
	}
	if _, err := idJsonKey(tmp.Type); err != nil {
		return err
	}
	a.Type = tmp.Type
	a.Id = tmp.Id
	return nil
}

// Bech32 returns the bech32 encoding of the address using the provided HRP
func (a Address) Bech32(hrp string) (string, error) {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(a.Bytes(), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, convData)
}

// Bech32ToHex returns the 0x-prefixed hex identifier of a bech32 address
func Bech32ToHex(addr string) (string, error) {
	_, ret, err := NewAddressFromBech32(addr)
	if err != nil {
		return "", err
	}
	return EncodeHex(ret.Id[:]), nil
}

// HexToBech32 encodes a 0x-prefixed hex Ed25519 address identifier as bech32
func HexToBech32(hexStr string, hrp string) (string, error) {
	if hrp == "" {
		return "", errors.New("no bech32 HRP provided")
	}
	data, err := DecodeHex(hexStr)
	if err != nil {
		return "", err
	}
	if len(data) != AddressIdSize {
		return "", InvalidLengthError{
			Type:     "address ID",
			Expected: AddressIdSize,
			Actual:   len(data),
		}
	}
	addr := Address{Type: AddressTypeEd25519}
	copy(addr.Id[:], data)
	return addr.Bech32(hrp)
}

// HexPublicKeyToBech32Address derives the bech32 Ed25519 address for a
// 0x-prefixed hex public key
func HexPublicKeyToBech32Address(hexPubKey string, hrp string) (string, error) {
	pubKey, err := DecodeHex(hexPubKey)
	if err != nil {
		return "", err
	}
	addr, err := NewEd25519Address(pubKey)
	if err != nil {
		return "", err
	}
	return addr.Bech32(hrp)
}

// IsAddressValid returns whether the string is a well-formed bech32 address
func IsAddressValid(addr string) bool {
	_, _, err := NewAddressFromBech32(addr)
	return err == nil
}
