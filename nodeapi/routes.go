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
	"fmt"
	"net/url"
	"strconv"

	"github.com/blinklabs-io/gostardust/ledger/common"
)

const (
	MediaTypeJSON = "application/json"

	// MediaTypeSerializer requests the binary (CBOR) form of an object
	MediaTypeSerializer = "application/vnd.iota.serializer-v1"
)

const (
	RouteHealth       = "/health"
	RouteInfo         = "/api/core/v2/info"
	routeMilestones   = "/api/core/v2/milestones"
	routeByIndex      = routeMilestones + "/by-index"
	routeUtxoChanges  = "/utxo-changes"
	routeIndexPattern = "/{index:[0-9]+}"
	routeIdPattern    = "/{milestoneId:0x[0-9a-fA-F]{64}}"
)

// Route patterns in gorilla/mux syntax, for servers implementing the API
const (
	RoutePatternMilestoneByIndex   = routeByIndex + routeIndexPattern
	RoutePatternMilestoneById      = routeMilestones + routeIdPattern
	RoutePatternUtxoChangesByIndex = RoutePatternMilestoneByIndex + routeUtxoChanges
	RoutePatternUtxoChangesById    = RoutePatternMilestoneById + routeUtxoChanges

	RouteVarIndex       = "index"
	RouteVarMilestoneId = "milestoneId"
)

func RouteMilestoneByIndex(index uint32) string {
	return routeByIndex + "/" + strconv.FormatUint(uint64(index), 10)
}

func RouteMilestoneById(id common.MilestoneId) string {
	return routeMilestones + "/" + url.PathEscape(id.String())
}

func RouteUtxoChangesByIndex(index uint32) string {
	return RouteMilestoneByIndex(index) + routeUtxoChanges
}

func RouteUtxoChangesById(id common.MilestoneId) string {
	return RouteMilestoneById(id) + routeUtxoChanges
}

// ParseIndex parses a milestone index path parameter
func ParseIndex(value string) (uint32, error) {
	index, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid milestone index %q: %w", value, err)
	}
	return uint32(index), nil
}
