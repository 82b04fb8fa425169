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
	"errors"
	"fmt"
)

var ErrHexNoPrefix = errors.New("hex string is missing 0x prefix")

// InvalidHexError indicates a value that could not be decoded as hex
type InvalidHexError struct {
	Value string
	Err   error
}

func (e InvalidHexError) Error() string {
	return fmt.Sprintf("invalid hex string %q: %v", e.Value, e.Err)
}

func (e InvalidHexError) Unwrap() error { return e.Err }

// InvalidLengthError indicates a fixed-size value decoded with the wrong length
type InvalidLengthError struct {
	Type     string
	Expected int
	Actual   int
}

func (e InvalidLengthError) Error() string {
	return fmt.Sprintf(
		"invalid %s length: expected %d bytes, got %d",
		e.Type,
		e.Expected,
		e.Actual,
	)
}

// InvalidAddressError indicates a bech32 address that failed to parse
type InvalidAddressError struct {
	Address string
	Err     error
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %v", e.Address, e.Err)
}

func (e InvalidAddressError) Unwrap() error { return e.Err }
