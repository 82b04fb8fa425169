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

import (
	"errors"

	"github.com/blinklabs-io/gostardust/nodeapi"
)

var (
	// ErrNotFound is matched by errors for milestones that do not exist or
	// are not yet confirmed
	ErrNotFound = nodeapi.ErrNotFound

	ErrNoNodes        = errors.New("no enabled nodes configured")
	ErrInvalidConfig  = errors.New("invalid client config")
	ErrUnknownNetwork = errors.New("unknown network")
)

// NetworkError is returned when a request failed on every node. It wraps the
// error from each node that was tried
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return "request failed on all nodes"
	}
	return "request failed on all nodes: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
