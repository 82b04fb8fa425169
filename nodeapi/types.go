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

package nodeapi

import (
	"github.com/blinklabs-io/gostardust/ledger/common"
)

// InfoResponse is returned by the node info route
type InfoResponse struct {
	Name     string       `json:"name"`
	Version  string       `json:"version"`
	Status   InfoStatus   `json:"status"`
	Protocol InfoProtocol `json:"protocol"`
	Features []string     `json:"features,omitempty"`
}

type InfoStatus struct {
	IsHealthy          bool          `json:"isHealthy"`
	LatestMilestone    MilestoneInfo `json:"latestMilestone"`
	ConfirmedMilestone MilestoneInfo `json:"confirmedMilestone"`
	PruningIndex       uint32        `json:"pruningIndex"`
}

// MilestoneInfo references a milestone in the node status. The timestamp and
// id are omitted by nodes that have not seen any milestone yet
type MilestoneInfo struct {
	Index       uint32              `json:"index"`
	Timestamp   uint32              `json:"timestamp,omitempty"`
	MilestoneId *common.MilestoneId `json:"milestoneId,omitempty"`
}

type InfoProtocol struct {
	Version       uint8  `json:"version"`
	NetworkName   string `json:"networkName"`
	Bech32Hrp     string `json:"bech32Hrp"`
	MinPowScore   uint32 `json:"minPowScore"`
	BelowMaxDepth uint8  `json:"belowMaxDepth"`
	TokenSupply   string `json:"tokenSupply"`
}

// UtxoChangesResponse lists the outputs created and consumed by a milestone
type UtxoChangesResponse struct {
	Index           uint32            `json:"index"`
	CreatedOutputs  []common.OutputId `json:"createdOutputs"`
	ConsumedOutputs []common.OutputId `json:"consumedOutputs"`
}
