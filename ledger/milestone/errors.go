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
	"errors"
	"fmt"

	"github.com/blinklabs-io/gostardust/ledger/common"
)

var (
	ErrUnknownOptionType = errors.New("unknown milestone option type")
	ErrSignatureMismatch = errors.New("signature does not match")
	ErrUnknownPublicKey  = errors.New("public key is not an applicable milestone key")
)

// InvalidPayloadTypeError indicates a payload that is not a milestone
type InvalidPayloadTypeError struct {
	Type int
}

func (e InvalidPayloadTypeError) Error() string {
	return fmt.Sprintf(
		"invalid payload type %d, expected milestone payload type %d",
		e.Type,
		PayloadTypeMilestone,
	)
}

// SyntacticError indicates a milestone that breaks one of the structural rules
type SyntacticError struct {
	Field  string
	Reason string
}

func (e SyntacticError) Error() string {
	return fmt.Sprintf("invalid milestone %s: %s", e.Field, e.Reason)
}

// InvalidSignatureError indicates a signature block that failed verification
type InvalidSignatureError struct {
	PublicKey []byte
	Err       error
}

func (e InvalidSignatureError) Error() string {
	return fmt.Sprintf(
		"invalid signature from public key %s: %v",
		common.EncodeHex(e.PublicKey),
		e.Err,
	)
}

func (e InvalidSignatureError) Unwrap() error { return e.Err }

// SignatureThresholdError indicates too few valid signatures
type SignatureThresholdError struct {
	Threshold int
	Valid     int
}

func (e SignatureThresholdError) Error() string {
	return fmt.Sprintf(
		"milestone has %d valid signatures, %d required",
		e.Valid,
		e.Threshold,
	)
}
