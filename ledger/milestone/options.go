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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gostardust/cbor"
	"github.com/blinklabs-io/gostardust/ledger/common"
)

const (
	OptionTypeReceipt        uint8 = 0
	OptionTypeProtocolParams uint8 = 1

	PayloadTypeTreasuryTransaction uint8 = 17
	InputTypeTreasury              uint8 = 1
	OutputTypeTreasury             uint8 = 2

	// Sizes of legacy migration fields
	TailTransactionHashSize = 49
)

// MilestoneOption is an optional component of a milestone essence
type MilestoneOption interface {
	Type() uint8
}

// MigratedFundsEntry describes funds migrated from the legacy network
type MigratedFundsEntry struct {
	cbor.StructAsArray
	TailTransactionHash common.HexBytes `json:"tailTransactionHash"`
	Address             common.Address  `json:"address"`
	Deposit             uint64          `json:"deposit,string"`
}

// TreasuryInput references the milestone that created the treasury output
// being spent
type TreasuryInput struct {
	cbor.StructAsArray
	InputType   uint8              `json:"type"`
	MilestoneId common.MilestoneId `json:"milestoneId"`
}

// TreasuryOutput holds the tokens remaining in the treasury
type TreasuryOutput struct {
	cbor.StructAsArray
	OutputType uint8  `json:"type"`
	Amount     uint64 `json:"amount,string"`
}

// TreasuryTransaction moves the migrated funds out of the treasury
type TreasuryTransaction struct {
	cbor.StructAsArray
	PayloadType uint8          `json:"type"`
	Input       TreasuryInput  `json:"input"`
	Output      TreasuryOutput `json:"output"`
}

// ReceiptMilestoneOption lists the funds migrated by a milestone
type ReceiptMilestoneOption struct {
	cbor.StructAsArray
	OptionType  uint8                `json:"type"`
	MigratedAt  uint32               `json:"migratedAt"`
	Final       bool                 `json:"final"`
	Funds       []MigratedFundsEntry `json:"funds"`
	Transaction TreasuryTransaction  `json:"transaction"`
}

func (o *ReceiptMilestoneOption) Type() uint8 {
	return OptionTypeReceipt
}

// ProtocolParamsMilestoneOption signals an upcoming protocol parameter change
type ProtocolParamsMilestoneOption struct {
	cbor.StructAsArray
	OptionType           uint8           `json:"type"`
	TargetMilestoneIndex uint32          `json:"targetMilestoneIndex"`
	ProtocolVersion      uint8           `json:"protocolVersion"`
	Params               common.HexBytes `json:"params"`
}

func (o *ProtocolParamsMilestoneOption) Type() uint8 {
	return OptionTypeProtocolParams
}

// MilestoneOptions is the list of options on a milestone. Each option is
// encoded as a list with its option type as the first item
type MilestoneOptions []MilestoneOption

// optionTypeMap returns fresh option objects keyed by option type
func optionTypeMap() map[int]any {
	return map[int]any{
		int(OptionTypeReceipt):        &ReceiptMilestoneOption{},
		int(OptionTypeProtocolParams): &ProtocolParamsMilestoneOption{},
	}
}

func (m *MilestoneOptions) UnmarshalCBOR(data []byte) error {
	var tmpItems []cbor.RawMessage
	if _, err := cbor.Decode(data, &tmpItems); err != nil {
		return err
	}
	ret := make(MilestoneOptions, 0, len(tmpItems))
	for _, item := range tmpItems {
		tmpOpt, err := cbor.DecodeById(item, optionTypeMap())
		if err != nil {
			if errors.Is(err, cbor.ErrUnknownId) {
				return fmt.Errorf("%w: %w", ErrUnknownOptionType, err)
			}
			return err
		}
		// Every entry in the option type map is a MilestoneOption
		ret = append(ret, tmpOpt.(MilestoneOption))
	}
	*m = ret
	return nil
}

func (m MilestoneOptions) MarshalCBOR() ([]byte, error) {
	tmpItems := make([]any, 0, len(m))
	for _, opt := range m {
		tmpItems = append(tmpItems, opt)
	}
	return cbor.Encode(tmpItems)
}

func (m *MilestoneOptions) UnmarshalJSON(data []byte) error {
	var tmpItems []json.RawMessage
	if err := json.Unmarshal(data, &tmpItems); err != nil {
		return err
	}
	ret := make(MilestoneOptions, 0, len(tmpItems))
	for _, item := range tmpItems {
		var tmpType struct {
			Type *uint8 `json:"type"`
		}
		if err := json.Unmarshal(item, &tmpType); err != nil {
			return err
		}
		if tmpType.Type == nil {
			return fmt.Errorf("milestone option is missing type: %s", item)
		}
		tmpOpt, ok := optionTypeMap()[int(*tmpType.Type)]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownOptionType, *tmpType.Type)
		}
		if err := json.Unmarshal(item, tmpOpt); err != nil {
			return err
		}
		ret = append(ret, tmpOpt.(MilestoneOption))
	}
	*m = ret
	return nil
}

func (m MilestoneOptions) MarshalJSON() ([]byte, error) {
	tmpItems := make([]MilestoneOption, 0, len(m))
	tmpItems = append(tmpItems, m...)
	return json.Marshal(tmpItems)
}

// Receipt returns the receipt option, if present
func (m MilestoneOptions) Receipt() *ReceiptMilestoneOption {
	for _, opt := range m {
		if ret, ok := opt.(*ReceiptMilestoneOption); ok {
			return ret
		}
	}
	return nil
}

// ProtocolParams returns the protocol parameters option, if present
func (m MilestoneOptions) ProtocolParams() *ProtocolParamsMilestoneOption {
	for _, opt := range m {
		if ret, ok := opt.(*ProtocolParamsMilestoneOption); ok {
			return ret
		}
	}
	return nil
}
