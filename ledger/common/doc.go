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

// Package common provides the identifier, hash and address types shared by
// the ledger payload packages.
//
// Identifiers are Blake2b-256 digests and are rendered as 0x-prefixed hex in
// JSON, matching the node REST API. Addresses use bech32 with a network
// specific human readable part.
package common
