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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

var (
	// ErrNotFound is matched by errors for objects the node does not know
	// about, such as a milestone index that is not yet confirmed
	ErrNotFound = errors.New("not found")

	ErrInvalidURL = errors.New("invalid node URL")
)

// maxErrorBodySize limits how much of an error response is kept
const maxErrorBodySize = 4096

// ResponseError is returned when a node responds with a non-2xx status
type ResponseError struct {
	Code int
	Text string
	URL  string
}

func (e *ResponseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf(
			"node responded with status %d (%s) for %s",
			e.Code,
			http.StatusText(e.Code),
			e.URL,
		)
	}
	return fmt.Sprintf(
		"node responded with status %d for %s: %s",
		e.Code,
		e.URL,
		e.Text,
	)
}

func (e *ResponseError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Temporary reports whether another node may be able to answer the same request
func (e *ResponseError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// RequestError is returned when a request could not be completed at the
// transport level
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a response body cannot be decoded
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %s", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// handleErrorResponse builds a ResponseError from a non-2xx response. Nodes
// report errors as {"error":{"code":"...","message":"..."}}, but anything
// else is passed through as text
func handleErrorResponse(resp *http.Response, reqUrl string) error {
	ret := &ResponseError{
		Code: resp.StatusCode,
		URL:  reqUrl,
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil || len(body) == 0 {
		return ret
	}
	ret.Text = string(body)
	ctHeader := resp.Header.Get("Content-Type")
	if ctHeader == "" {
		return ret
	}
	contentType, _, err := mime.ParseMediaType(ctHeader)
	if err != nil || contentType != MediaTypeJSON {
		return ret
	}
	var errBody struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil &&
		errBody.Error.Message != "" {
		ret.Text = errBody.Error.Message
	}
	return ret
}
