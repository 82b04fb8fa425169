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

// Package milestone implements the milestone payload, the consensus checkpoint
// record issued by the coordinator and confirmed by the network.
//
// A payload can be obtained in two forms from a node: as JSON and as its raw
// CBOR encoding. Decoding the raw form with DecodePayload keeps the original
// bytes, so re-encoding a decoded payload always reproduces its input.
package milestone

import (
	"bytes"
	"slices"

	"github.com/blinklabs-io/gostardust/cbor"
	"github.com/blinklabs-io/gostardust/ledger/common"
)

const (
	PayloadTypeMilestone = 7

	MaxMetadataLength = 8192
	MinSignatures     = 1
	MaxSignatures     = 255
)

// MilestonePayload is a signed, indexed checkpoint produced by network consensus
type MilestonePayload struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	PayloadType         uint8              `json:"type"`
	Index               uint32             `json:"index"`
	Timestamp           uint32             `json:"timestamp"`
	ProtocolVersion     uint8              `json:"protocolVersion"`
	PreviousMilestoneId common.MilestoneId `json:"previousMilestoneId"`
	Parents             []common.BlockId   `json:"parents"`
	InclusionMerkleRoot common.Blake2b256  `json:"inclusionMerkleRoot"`
	AppliedMerkleRoot   common.Blake2b256  `json:"appliedMerkleRoot"`
	Metadata            common.HexBytes    `json:"metadata"`
	Options             MilestoneOptions   `json:"options"`
	Signatures          []Ed25519Signature `json:"signatures"`
}

// Essence is the signed part of a milestone
type Essence struct {
	cbor.StructAsArray
	Index               uint32
	Timestamp           uint32
	ProtocolVersion     uint8
	PreviousMilestoneId common.MilestoneId
	Parents             []common.BlockId
	InclusionMerkleRoot common.Blake2b256
	AppliedMerkleRoot   common.Blake2b256
	Metadata            common.HexBytes
	Options             MilestoneOptions
}

// DecodePayload decodes the raw CBOR form of a milestone payload
func DecodePayload(data []byte) (*MilestonePayload, error) {
	payloadType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return nil, err
	}
	if payloadType != PayloadTypeMilestone {
		return nil, InvalidPayloadTypeError{Type: payloadType}
	}
	ret := &MilestonePayload{}
	if err := cbor.DecodeFull(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (p *MilestonePayload) UnmarshalCBOR(data []byte) error {
	if err := cbor.DecodeGeneric(data, p); err != nil {
		return err
	}
	p.SetCbor(data)
	return nil
}

// MarshalCBOR returns the original CBOR if the payload was decoded from CBOR,
// and the canonical encoding otherwise
func (p *MilestonePayload) MarshalCBOR() ([]byte, error) {
	if len(p.Cbor()) > 0 {
		return p.Cbor(), nil
	}
	return cbor.EncodeGeneric(p)
}

// Type returns the payload type
func (p *MilestonePayload) Type() int {
	return int(p.PayloadType)
}

// Essence returns the signed part of the milestone
func (p *MilestonePayload) Essence() Essence {
	return Essence{
		Index:               p.Index,
		Timestamp:           p.Timestamp,
		ProtocolVersion:     p.ProtocolVersion,
		PreviousMilestoneId: p.PreviousMilestoneId,
		Parents:             p.Parents,
		InclusionMerkleRoot: p.InclusionMerkleRoot,
		AppliedMerkleRoot:   p.AppliedMerkleRoot,
		Metadata:            p.Metadata,
		Options:             p.Options,
	}
}

// EssenceBytes returns the CBOR encoding of the milestone essence
func (p *MilestonePayload) EssenceBytes() ([]byte, error) {
	return cbor.Encode(p.Essence())
}

// Id returns the milestone ID, the Blake2b-256 hash of the essence bytes
func (p *MilestonePayload) Id() (common.MilestoneId, error) {
	essenceBytes, err := p.EssenceBytes()
	if err != nil {
		return common.MilestoneId{}, err
	}
	return common.Blake2b256Hash(essenceBytes), nil
}

// Equal reports whether both payloads have the same encoding
func (p *MilestonePayload) Equal(other *MilestonePayload) bool {
	if p == nil || other == nil {
		return p == other
	}
	pCbor, err := p.MarshalCBOR()
	if err != nil {
		return false
	}
	otherCbor, err := other.MarshalCBOR()
	if err != nil {
		return false
	}
	return bytes.Equal(pCbor, otherCbor)
}

// Validate checks the structural rules of a milestone payload
func (p *MilestonePayload) Validate() error {
	if p.PayloadType != PayloadTypeMilestone {
		return InvalidPayloadTypeError{Type: int(p.PayloadType)}
	}
	if len(p.Parents) < common.MilestoneParentsMin ||
		len(p.Parents) > common.MilestoneParentsMax {
		return SyntacticError{
			Field:  "parents",
			Reason: "count must be between 1 and 8",
		}
	}
	for i := 1; i < len(p.Parents); i++ {
		if bytes.Compare(p.Parents[i-1][:], p.Parents[i][:]) >= 0 {
			return SyntacticError{
				Field:  "parents",
				Reason: "must be sorted and unique",
			}
		}
	}
	if len(p.Metadata) > MaxMetadataLength {
		return SyntacticError{
			Field:  "metadata",
			Reason: "exceeds maximum length",
		}
	}
	lastOptionType := -1
	for _, opt := range p.Options {
		if int(opt.Type()) <= lastOptionType {
			return SyntacticError{
				Field:  "options",
				Reason: "must be sorted by type and contain each type at most once",
			}
		}
		lastOptionType = int(opt.Type())
		switch o := opt.(type) {
		case *ReceiptMilestoneOption:
			if o.OptionType != OptionTypeReceipt {
				return SyntacticError{Field: "options", Reason: "receipt option has wrong type"}
			}
			for _, fund := range o.Funds {
				if len(fund.TailTransactionHash) != TailTransactionHashSize {
					return SyntacticError{Field: "options", Reason: "invalid tail transaction hash length"}
				}
			}
			tx := o.Transaction
			if tx.PayloadType != PayloadTypeTreasuryTransaction ||
				tx.Input.InputType != InputTypeTreasury ||
				tx.Output.OutputType != OutputTypeTreasury {
				return SyntacticError{Field: "options", Reason: "invalid receipt treasury transaction"}
			}
		case *ProtocolParamsMilestoneOption:
			if o.OptionType != OptionTypeProtocolParams {
				return SyntacticError{Field: "options", Reason: "protocol params option has wrong type"}
			}
			if o.TargetMilestoneIndex <= p.Index {
				return SyntacticError{Field: "options", Reason: "protocol params target index must be in the future"}
			}
		}
	}
	if len(p.Signatures) < MinSignatures || len(p.Signatures) > MaxSignatures {
		return SyntacticError{
			Field:  "signatures",
			Reason: "count must be between 1 and 255",
		}
	}
	for _, sig := range p.Signatures {
		if err := sig.validate(); err != nil {
			return err
		}
	}
	sorted := slices.IsSortedFunc(p.Signatures, func(a, b Ed25519Signature) int {
		return bytes.Compare(a.PublicKey, b.PublicKey)
	})
	if !sorted {
		return SyntacticError{
			Field:  "signatures",
			Reason: "must be sorted by public key",
		}
	}
	for i := 1; i < len(p.Signatures); i++ {
		if bytes.Equal(p.Signatures[i-1].PublicKey, p.Signatures[i].PublicKey) {
			return SyntacticError{
				Field:  "signatures",
				Reason: "contains duplicate public key",
			}
		}
	}
	return nil
}
