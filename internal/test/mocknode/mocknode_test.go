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

package mocknode

import (
	"io"
	"net/http"
	"testing"

	"github.com/blinklabs-io/gostardust/internal/testdata"
	"github.com/blinklabs-io/gostardust/nodeapi"
)

// Basic test of mock node functionality
func TestBasic(t *testing.T) {
	chain := testdata.MilestoneChain(2)
	n := New(WithMilestones(chain...))
	defer n.Close()
	testDefs := []struct {
		path   string
		status int
	}{
		{path: nodeapi.RouteHealth, status: http.StatusOK},
		{path: nodeapi.RouteInfo, status: http.StatusOK},
		{path: nodeapi.RouteMilestoneByIndex(1), status: http.StatusOK},
		{path: nodeapi.RouteMilestoneByIndex(2), status: http.StatusOK},
		{path: nodeapi.RouteMilestoneByIndex(3), status: http.StatusNotFound},
		{path: nodeapi.RouteUtxoChangesByIndex(2), status: http.StatusOK},
		{path: "/api/core/v2/milestones/by-index/abc", status: http.StatusNotFound},
		{path: "/does/not/exist", status: http.StatusNotFound},
	}
	for _, testDef := range testDefs {
		resp, err := http.Get(n.URL() + testDef.path)
		if err != nil {
			t.Fatalf("unexpected error requesting %s: %s", testDef.path, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != testDef.status {
			t.Fatalf(
				"did not get expected status for %s: got %d, expected %d",
				testDef.path,
				resp.StatusCode,
				testDef.status,
			)
		}
	}
	if n.RequestCount() != len(testDefs) {
		t.Fatalf(
			"did not get expected request count: got %d, expected %d",
			n.RequestCount(),
			len(testDefs),
		)
	}
}

func TestFailNext(t *testing.T) {
	n := New()
	defer n.Close()
	n.FailNext(http.StatusServiceUnavailable, 1)
	for _, expected := range []int{http.StatusServiceUnavailable, http.StatusOK} {
		resp, err := http.Get(n.URL() + nodeapi.RouteInfo)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		resp.Body.Close()
		if resp.StatusCode != expected {
			t.Fatalf(
				"did not get expected status: got %d, expected %d",
				resp.StatusCode,
				expected,
			)
		}
	}
}
