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

package milestone

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"slices"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/gostardust/cbor"
	"github.com/blinklabs-io/gostardust/ledger/common"
)

const (
	SignatureTypeEd25519 uint8 = 0
)

// Ed25519Signature is a signature block from a milestone issuer
type Ed25519Signature struct {
	cbor.StructAsArray
	SignatureType uint8           `json:"type"`
	PublicKey     common.HexBytes `json:"publicKey"`
	Signature     common.HexBytes `json:"signature"`
}

func (s Ed25519Signature) validate() error {
	if s.SignatureType != SignatureTypeEd25519 {
		return fmt.Errorf("unsupported signature type %d", s.SignatureType)
	}
	if len(s.PublicKey) != ed25519.PublicKeySize {
		return common.InvalidLengthError{
			Type:     "Ed25519 public key",
			Expected: ed25519.PublicKeySize,
			Actual:   len(s.PublicKey),
		}
	}
	if len(s.Signature) != ed25519.SignatureSize {
		return common.InvalidLengthError{
			Type:     "Ed25519 signature",
			Expected: ed25519.SignatureSize,
			Actual:   len(s.Signature),
		}
	}
	return nil
}

// Verify checks the signature against the provided message. The public key
// must be a canonical encoding of a point on the curve
func (s Ed25519Signature) Verify(message []byte) error {
	if err := s.validate(); err != nil {
		return err
	}
	if _, err := new(edwards25519.Point).SetBytes(s.PublicKey); err != nil {
		return InvalidSignatureError{
			PublicKey: s.PublicKey,
			Err:       fmt.Errorf("public key is not a valid curve point: %w", err),
		}
	}
	if !ed25519.Verify(ed25519.PublicKey(s.PublicKey), message, s.Signature) {
		return InvalidSignatureError{
			PublicKey: s.PublicKey,
			Err:       ErrSignatureMismatch,
		}
	}
	return nil
}

// Sign adds a signature over the milestone ID using the provided key. The
// signatures are kept sorted by public key
func (p *MilestonePayload) Sign(privKey ed25519.PrivateKey) error {
	id, err := p.Id()
	if err != nil {
		return err
	}
	pubKey := privKey.Public().(ed25519.PublicKey)
	for _, sig := range p.Signatures {
		if bytes.Equal(sig.PublicKey, pubKey) {
			return fmt.Errorf("milestone already signed by key %s", common.EncodeHex(pubKey))
		}
	}
	p.Signatures = append(
		p.Signatures,
		Ed25519Signature{
			SignatureType: SignatureTypeEd25519,
			PublicKey:     common.HexBytes(pubKey),
			Signature:     ed25519.Sign(privKey, id.Bytes()),
		},
	)
	slices.SortFunc(p.Signatures, func(a, b Ed25519Signature) int {
		return bytes.Compare(a.PublicKey, b.PublicKey)
	})
	// Any stored encoding no longer matches
	p.SetCbor(nil)
	return nil
}

// VerifySignatures checks every signature over the milestone ID. Each signature
// must be valid and come from one of the provided public keys, and there must
// be at least threshold of them. A single invalid or unknown signature fails
// the whole milestone
func (p *MilestonePayload) VerifySignatures(
	publicKeys []ed25519.PublicKey,
	threshold int,
) error {
	if threshold < 1 {
		return fmt.Errorf("invalid signature threshold: %d", threshold)
	}
	id, err := p.Id()
	if err != nil {
		return err
	}
	validCount := 0
	for _, sig := range p.Signatures {
		known := slices.ContainsFunc(publicKeys, func(k ed25519.PublicKey) bool {
			return bytes.Equal(k, sig.PublicKey)
		})
		if !known {
			return InvalidSignatureError{
				PublicKey: sig.PublicKey,
				Err:       ErrUnknownPublicKey,
			}
		}
		if err := sig.Verify(id.Bytes()); err != nil {
			return err
		}
		validCount++
	}
	if validCount < threshold {
		return SignatureThresholdError{
			Threshold: threshold,
			Valid:     validCount,
		}
	}
	return nil
}
