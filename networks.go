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

package stardust

// Network definitions
var (
	NetworkIotaMainnet = Network{
		Name:      "iota-mainnet",
		Bech32Hrp: "iota",
	}
	NetworkIotaTestnet = Network{
		Name:      "iota-testnet",
		Bech32Hrp: "atoi",
	}
	NetworkShimmer = Network{
		Name:      "shimmer",
		Bech32Hrp: "smr",
	}
	NetworkShimmerTestnet = Network{
		Name:      "testnet",
		Bech32Hrp: "rms",
	}

	NetworkInvalid = Network{
		Name: "invalid",
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkIotaMainnet,
	NetworkIotaTestnet,
	NetworkShimmer,
	NetworkShimmerTestnet,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// NetworkByBech32Hrp returns a predefined network by its bech32 human-readable part
func NetworkByBech32Hrp(hrp string) Network {
	for _, network := range networks {
		if network.Bech32Hrp == hrp {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents a ledger network, identified by name and address prefix
type Network struct {
	Name      string
	Bech32Hrp string // human-readable part used for bech32 addresses
}

func (n Network) valid() bool {
	return n.Name != "" && n != NetworkInvalid
}

func (n Network) String() string {
	return n.Name
}
