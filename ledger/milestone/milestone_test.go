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

package milestone_test

import (
	"crypto/ed25519"
	"encoding/json"
	"strings"
	"testing"

	"github.com/blinklabs-io/gostardust/cbor"
	"github.com/blinklabs-io/gostardust/internal/testdata"
	"github.com/blinklabs-io/gostardust/ledger/common"
	"github.com/blinklabs-io/gostardust/ledger/milestone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestoneCborRoundTrip(t *testing.T) {
	for _, p := range testdata.MilestoneChain(12) {
		raw, err := cbor.Encode(p)
		require.NoError(t, err)
		decoded, err := milestone.DecodePayload(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, decoded.Cbor())
		reencoded, err := decoded.MarshalCBOR()
		require.NoError(t, err)
		assert.Equal(t, raw, reencoded)
		assert.True(t, p.Equal(decoded))
		assert.Equal(t, p.Index, decoded.Index)
		assert.Equal(t, p.Parents, decoded.Parents)
		assert.Equal(t, len(p.Options), len(decoded.Options))
		require.NoError(t, decoded.Validate())
	}
}

func TestMilestoneJsonMatchesCbor(t *testing.T) {
	for _, p := range testdata.MilestoneChain(12) {
		jsonData, err := json.Marshal(p)
		require.NoError(t, err)
		var fromJson milestone.MilestonePayload
		require.NoError(t, json.Unmarshal(jsonData, &fromJson))
		raw, err := cbor.Encode(p)
		require.NoError(t, err)
		fromRaw, err := milestone.DecodePayload(raw)
		require.NoError(t, err)
		// The structured form re-encodes to the exact raw bytes
		jsonCbor, err := fromJson.MarshalCBOR()
		require.NoError(t, err)
		assert.Equal(t, raw, jsonCbor)
		assert.True(t, fromJson.Equal(fromRaw))
		jsonId, err := fromJson.Id()
		require.NoError(t, err)
		rawId, err := fromRaw.Id()
		require.NoError(t, err)
		assert.Equal(t, jsonId, rawId)
	}
}

func TestMilestoneJsonFields(t *testing.T) {
	p := testdata.MilestoneChain(10)[9]
	jsonData, err := json.Marshal(p)
	require.NoError(t, err)
	var tmp map[string]any
	require.NoError(t, json.Unmarshal(jsonData, &tmp))
	assert.EqualValues(t, milestone.PayloadTypeMilestone, tmp["type"])
	assert.EqualValues(t, 10, tmp["index"])
	assert.Contains(t, tmp, "previousMilestoneId")
	assert.Contains(t, tmp, "inclusionMerkleRoot")
	options, ok := tmp["options"].([]any)
	require.True(t, ok)
	require.Len(t, options, 1)
	opt := options[0].(map[string]any)
	assert.EqualValues(t, milestone.OptionTypeProtocolParams, opt["type"])
	assert.EqualValues(t, 110, opt["targetMilestoneIndex"])
}

func TestMilestoneIdChain(t *testing.T) {
	chain := testdata.MilestoneChain(5)
	assert.True(t, chain[0].PreviousMilestoneId.IsZero())
	for i := 1; i < len(chain); i++ {
		prevId, err := chain[i-1].Id()
		require.NoError(t, err)
		assert.Equal(t, prevId, chain[i].PreviousMilestoneId)
	}
}

func TestMilestoneIdExcludesSignatures(t *testing.T) {
	p := testdata.NewMilestone(3, common.MilestoneId{})
	id, err := p.Id()
	require.NoError(t, err)
	p.Signatures = p.Signatures[:1]
	idAfter, err := p.Id()
	require.NoError(t, err)
	assert.Equal(t, id, idAfter)
}

func TestDecodePayloadWrongType(t *testing.T) {
	raw, err := cbor.Encode([]any{6, 1, 2})
	require.NoError(t, err)
	_, err = milestone.DecodePayload(raw)
	var typeErr milestone.InvalidPayloadTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 6, typeErr.Type)
}

func TestDecodePayloadMalformed(t *testing.T) {
	testDefs := [][]byte{
		nil,
		{0x87},
		{0x82, 0x07, 0x01},
		{0xa1, 0x01, 0x02},
	}
	for _, testDef := range testDefs {
		_, err := milestone.DecodePayload(testDef)
		assert.Error(t, err, "input: %x", testDef)
	}
}

func TestDecodePayloadTrailingData(t *testing.T) {
	p := testdata.NewMilestone(1, common.MilestoneId{})
	raw, err := cbor.Encode(p)
	require.NoError(t, err)
	_, err = milestone.DecodePayload(append(raw, 0x00))
	assert.Error(t, err)
}

func TestMilestoneValidate(t *testing.T) {
	testDefs := []struct {
		name   string
		modify func(*milestone.MilestonePayload)
	}{
		{
			name: "NoParents",
			modify: func(p *milestone.MilestonePayload) {
				p.Parents = nil
			},
		},
		{
			name: "UnsortedParents",
			modify: func(p *milestone.MilestonePayload) {
				p.Parents = []common.BlockId{
					common.NewBlake2b256([]byte{0x02}),
					common.NewBlake2b256([]byte{0x01}),
				}
			},
		},
		{
			name: "DuplicateParents",
			modify: func(p *milestone.MilestonePayload) {
				p.Parents = []common.BlockId{
					common.NewBlake2b256([]byte{0x01}),
					common.NewBlake2b256([]byte{0x01}),
				}
			},
		},
		{
			name: "NoSignatures",
			modify: func(p *milestone.MilestonePayload) {
				p.Signatures = nil
			},
		},
		{
			name: "UnsortedSignatures",
			modify: func(p *milestone.MilestonePayload) {
				p.Signatures[0], p.Signatures[1] = p.Signatures[1], p.Signatures[0]
			},
		},
		{
			name: "ShortPublicKey",
			modify: func(p *milestone.MilestonePayload) {
				p.Signatures[0].PublicKey = p.Signatures[0].PublicKey[:10]
			},
		},
		{
			name: "WrongPayloadType",
			modify: func(p *milestone.MilestonePayload) {
				p.PayloadType = 5
			},
		},
		{
			name: "MetadataTooLong",
			modify: func(p *milestone.MilestonePayload) {
				p.Metadata = make(common.HexBytes, milestone.MaxMetadataLength+1)
			},
		},
		{
			name: "PastProtocolParamsTarget",
			modify: func(p *milestone.MilestonePayload) {
				p.Options = milestone.MilestoneOptions{
					&milestone.ProtocolParamsMilestoneOption{
						OptionType:           milestone.OptionTypeProtocolParams,
						TargetMilestoneIndex: p.Index,
					},
				}
			},
		},
		{
			name: "DuplicateOptions",
			modify: func(p *milestone.MilestonePayload) {
				opt := &milestone.ReceiptMilestoneOption{OptionType: milestone.OptionTypeReceipt}
				p.Options = milestone.MilestoneOptions{opt, opt}
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			p := testdata.NewMilestone(4, common.MilestoneId{})
			require.NoError(t, p.Validate())
			testDef.modify(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestMilestoneVerifySignatures(t *testing.T) {
	p := testdata.NewMilestone(7, common.MilestoneId{})
	keys := testdata.CoordinatorPublicKeys()
	require.NoError(t, p.VerifySignatures(keys, testdata.CoordinatorKeyCount))
	// Threshold above the number of signatures
	err := p.VerifySignatures(keys, testdata.CoordinatorKeyCount+1)
	var thresholdErr milestone.SignatureThresholdError
	require.ErrorAs(t, err, &thresholdErr)
	assert.Equal(t, testdata.CoordinatorKeyCount, thresholdErr.Valid)
	// Unknown signer
	err = p.VerifySignatures(keys[:1], 1)
	assert.ErrorIs(t, err, milestone.ErrUnknownPublicKey)
	// Tampered essence
	p.Timestamp++
	err = p.VerifySignatures(keys, 1)
	assert.ErrorIs(t, err, milestone.ErrSignatureMismatch)
	// Invalid threshold
	assert.Error(t, p.VerifySignatures(keys, 0))
}

func TestMilestoneSignTwice(t *testing.T) {
	p := testdata.NewMilestone(2, common.MilestoneId{})
	err := p.Sign(testdata.CoordinatorKeys()[0])
	assert.Error(t, err)
}

func TestMilestoneSignClearsStoredCbor(t *testing.T) {
	p := testdata.NewMilestone(2, common.MilestoneId{})
	p.Signatures = nil
	raw, err := cbor.Encode(p)
	require.NoError(t, err)
	decoded, err := milestone.DecodePayload(raw)
	require.NoError(t, err)
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	require.NoError(t, decoded.Sign(priv))
	assert.Nil(t, decoded.Cbor())
	reencoded, err := decoded.MarshalCBOR()
	require.NoError(t, err)
	assert.NotEqual(t, raw, reencoded)
}

func newReceiptOption() *milestone.ReceiptMilestoneOption {
	return &milestone.ReceiptMilestoneOption{
		OptionType: milestone.OptionTypeReceipt,
		MigratedAt: 4,
		Final:      true,
		Funds: []milestone.MigratedFundsEntry{
			{
				TailTransactionHash: make(common.HexBytes, milestone.TailTransactionHashSize),
				Address: common.Address{
					Type: common.AddressTypeEd25519,
					Id:   common.Blake2b256Hash([]byte("addr")),
				},
				Deposit: 1_000_000,
			},
		},
		Transaction: milestone.TreasuryTransaction{
			PayloadType: milestone.PayloadTypeTreasuryTransaction,
			Input: milestone.TreasuryInput{
				InputType:   milestone.InputTypeTreasury,
				MilestoneId: common.Blake2b256Hash([]byte("treasury")),
			},
			Output: milestone.TreasuryOutput{
				OutputType: milestone.OutputTypeTreasury,
				Amount:     2_779_530_283_277_761,
			},
		},
	}
}

func TestReceiptOptionRoundTrip(t *testing.T) {
	p := testdata.NewMilestone(5, common.MilestoneId{})
	p.Options = milestone.MilestoneOptions{newReceiptOption()}
	p.Signatures = nil
	for _, key := range testdata.CoordinatorKeys() {
		require.NoError(t, p.Sign(key))
	}
	require.NoError(t, p.Validate())
	raw, err := cbor.Encode(p)
	require.NoError(t, err)
	decoded, err := milestone.DecodePayload(raw)
	require.NoError(t, err)
	receipt := decoded.Options.Receipt()
	require.NotNil(t, receipt)
	assert.True(t, receipt.Final)
	assert.Equal(t, uint64(1_000_000), receipt.Funds[0].Deposit)
	assert.Equal(t, common.AddressTypeEd25519, receipt.Funds[0].Address.Type)
	assert.Equal(t, uint64(2_779_530_283_277_761), receipt.Transaction.Output.Amount)
	assert.Nil(t, decoded.Options.ProtocolParams())
	jsonData, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"deposit":"1000000"`)
	assert.Contains(t, string(jsonData), `"pubKeyHash":"0x`)
	var fromJson milestone.MilestonePayload
	require.NoError(t, json.Unmarshal(jsonData, &fromJson))
	assert.True(t, fromJson.Equal(decoded))
}

func TestReceiptOptionNodeJSON(t *testing.T) {
	hash49 := "0x" + strings.Repeat("99", milestone.TailTransactionHashSize)
	jsonData := `[{
		"type": 0,
		"migratedAt": 3,
		"final": false,
		"funds": [{
			"tailTransactionHash": "` + hash49 + `",
			"address": {"type": 0, "pubKeyHash": "0x` + strings.Repeat("ab", 32) + `"},
			"deposit": "1000000"
		}],
		"transaction": {
			"type": 17,
			"input": {"type": 1, "milestoneId": "0x` + strings.Repeat("cd", 32) + `"},
			"output": {"type": 2, "amount": "42"}
		}
	}]`
	var opts milestone.MilestoneOptions
	require.NoError(t, json.Unmarshal([]byte(jsonData), &opts))
	receipt := opts.Receipt()
	require.NotNil(t, receipt)
	assert.Equal(t, uint32(3), receipt.MigratedAt)
	require.Len(t, receipt.Funds, 1)
	assert.Equal(t, byte(0xab), receipt.Funds[0].Address.Id[0])
	assert.Equal(t, byte(0xcd), receipt.Transaction.Input.MilestoneId[0])
	assert.Equal(t, uint64(42), receipt.Transaction.Output.Amount)
	// The binary form carries the same receipt
	raw, err := cbor.Encode(opts)
	require.NoError(t, err)
	var decoded milestone.MilestoneOptions
	require.NoError(t, cbor.DecodeFull(raw, &decoded))
	assert.Equal(t, receipt, decoded.Receipt())
}

func TestReceiptOptionMissingTransaction(t *testing.T) {
	p := testdata.NewMilestone(5, common.MilestoneId{})
	receipt := newReceiptOption()
	receipt.Transaction = milestone.TreasuryTransaction{}
	p.Options = milestone.MilestoneOptions{receipt}
	var synErr milestone.SyntacticError
	assert.ErrorAs(t, p.Validate(), &synErr)
}

func TestUnknownOptionType(t *testing.T) {
	var opts milestone.MilestoneOptions
	err := json.Unmarshal([]byte(`[{"type":9}]`), &opts)
	assert.ErrorIs(t, err, milestone.ErrUnknownOptionType)
	raw, err := cbor.Encode([]any{[]any{9, 1}})
	require.NoError(t, err)
	err = cbor.DecodeFull(raw, &opts)
	assert.ErrorIs(t, err, milestone.ErrUnknownOptionType)
}
