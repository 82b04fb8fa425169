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

// Package mocknode provides an in-process fake node serving the core REST API
// for use in tests.
package mocknode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/gostardust/internal/testdata"
	"github.com/blinklabs-io/gostardust/ledger/common"
	"github.com/blinklabs-io/gostardust/ledger/milestone"
	"github.com/blinklabs-io/gostardust/nodeapi"
	"github.com/gorilla/mux"
)

const (
	MockNodeName    = "mocknode"
	MockNodeVersion = "2.0.0"
	MockNetworkName = "testnet"
	MockBech32Hrp   = "rms"
)

// Node is a fake node backed by an httptest server
type Node struct {
	server       *httptest.Server
	router       *mux.Router
	mutex        sync.Mutex
	milestones   map[uint32]*milestone.MilestonePayload
	milestoneIds map[common.MilestoneId]uint32
	healthy      bool
	networkName  string
	bech32Hrp    string
	jwt          string
	delay        time.Duration
	overrides    []response
	requests     []string
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// OptionFunc modifies a Node before it starts serving
type OptionFunc func(*Node)

// WithMilestones adds milestones to be served
func WithMilestones(milestones ...*milestone.MilestonePayload) OptionFunc {
	return func(n *Node) {
		n.addMilestones(milestones...)
	}
}

// WithJwt requires requests to carry the given bearer token
func WithJwt(token string) OptionFunc {
	return func(n *Node) {
		n.jwt = token
	}
}

// WithNetwork sets the network name and bech32 HRP reported by the node
func WithNetwork(name string, bech32Hrp string) OptionFunc {
	return func(n *Node) {
		n.networkName = name
		n.bech32Hrp = bech32Hrp
	}
}

// WithHealthy sets whether the node reports itself as healthy
func WithHealthy(healthy bool) OptionFunc {
	return func(n *Node) {
		n.healthy = healthy
	}
}

// New starts a Node. Close must be called when it's no longer needed
func New(opts ...OptionFunc) *Node {
	n := &Node{
		milestones:   make(map[uint32]*milestone.MilestonePayload),
		milestoneIds: make(map[common.MilestoneId]uint32),
		healthy:      true,
		networkName:  MockNetworkName,
		bech32Hrp:    MockBech32Hrp,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.router = mux.NewRouter()
	n.router.Use(n.recordMiddleware, n.authMiddleware, n.overrideMiddleware)
	n.router.HandleFunc(nodeapi.RouteHealth, n.handleHealth).
		Methods(http.MethodGet)
	n.router.HandleFunc(nodeapi.RouteInfo, n.handleInfo).
		Methods(http.MethodGet)
	n.router.HandleFunc(nodeapi.RoutePatternUtxoChangesByIndex, n.handleUtxoChangesByIndex).
		Methods(http.MethodGet)
	n.router.HandleFunc(nodeapi.RoutePatternUtxoChangesById, n.handleUtxoChangesById).
		Methods(http.MethodGet)
	n.router.HandleFunc(nodeapi.RoutePatternMilestoneByIndex, n.handleMilestoneByIndex).
		Methods(http.MethodGet)
	n.router.HandleFunc(nodeapi.RoutePatternMilestoneById, n.handleMilestoneById).
		Methods(http.MethodGet)
	n.router.NotFoundHandler = http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			n.record(r)
			writeError(w, http.StatusNotFound, "route not found")
		},
	)
	n.server = httptest.NewServer(n.router)
	return n
}

// URL returns the base URL of the node
func (n *Node) URL() string {
	return n.server.URL
}

// Close shuts down the server
func (n *Node) Close() {
	n.server.Close()
}

// AddMilestones adds milestones to be served
func (n *Node) AddMilestones(milestones ...*milestone.MilestonePayload) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.addMilestones(milestones...)
}

func (n *Node) addMilestones(milestones ...*milestone.MilestonePayload) {
	for _, m := range milestones {
		id, err := m.Id()
		if err != nil {
			panic(fmt.Sprintf("unexpected error computing milestone ID: %s", err))
		}
		n.milestones[m.Index] = m
		n.milestoneIds[id] = m.Index
	}
}

// SetHealthy sets whether the node reports itself as healthy
func (n *Node) SetHealthy(healthy bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.healthy = healthy
}

// SetDelay delays every response by the given duration, or until the
// request is cancelled
func (n *Node) SetDelay(delay time.Duration) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.delay = delay
}

// FailNext makes the next count requests fail with the given status
func (n *Node) FailNext(status int, count int) {
	n.RespondNext(
		status,
		nodeapi.MediaTypeJSON,
		errorBody(status, "injected failure"),
		count,
	)
}

// RespondNext makes the next count requests return the given response
// instead of being handled normally
func (n *Node) RespondNext(
	status int,
	contentType string,
	body []byte,
	count int,
) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for range count {
		n.overrides = append(
			n.overrides,
			response{
				status:      status,
				contentType: contentType,
				body:        body,
			},
		)
	}
}

// Requests returns the paths of all requests received so far
func (n *Node) Requests() []string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	ret := make([]string, len(n.requests))
	copy(ret, n.requests)
	return ret
}

// RequestCount returns the number of requests received so far
func (n *Node) RequestCount() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return len(n.requests)
}

func (n *Node) record(r *http.Request) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.requests = append(n.requests, r.URL.Path)
}

func (n *Node) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.record(r)
		n.mutex.Lock()
		delay := n.delay
		n.mutex.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (n *Node) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n.jwt != "" && r.Header.Get("Authorization") != "Bearer "+n.jwt {
			writeError(w, http.StatusUnauthorized, "invalid or missing JWT")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (n *Node) overrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.mutex.Lock()
		var override *response
		if len(n.overrides) > 0 {
			override = &n.overrides[0]
			n.overrides = n.overrides[1:]
		}
		n.mutex.Unlock()
		if override != nil {
			if override.contentType != "" {
				w.Header().Set("Content-Type", override.contentType)
			}
			w.WriteHeader(override.status)
			_, _ = w.Write(override.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (n *Node) handleHealth(w http.ResponseWriter, r *http.Request) {
	n.mutex.Lock()
	healthy := n.healthy
	n.mutex.Unlock()
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (n *Node) handleInfo(w http.ResponseWriter, r *http.Request) {
	n.mutex.Lock()
	info := nodeapi.InfoResponse{
		Name:    MockNodeName,
		Version: MockNodeVersion,
		Status: nodeapi.InfoStatus{
			IsHealthy: n.healthy,
		},
		Protocol: nodeapi.InfoProtocol{
			Version:     testdata.ProtocolVersion,
			NetworkName: n.networkName,
			Bech32Hrp:   n.bech32Hrp,
			TokenSupply: "1813620509061365",
		},
	}
	var latest *milestone.MilestonePayload
	for _, m := range n.milestones {
		if latest == nil || m.Index > latest.Index {
			latest = m
		}
	}
	n.mutex.Unlock()
	if latest != nil {
		id, _ := latest.Id()
		info.Status.LatestMilestone = nodeapi.MilestoneInfo{
			Index:       latest.Index,
			Timestamp:   latest.Timestamp,
			MilestoneId: &id,
		}
		info.Status.ConfirmedMilestone = info.Status.LatestMilestone
	}
	writeJSON(w, http.StatusOK, info)
}

func (n *Node) handleMilestoneByIndex(w http.ResponseWriter, r *http.Request) {
	m, ok := n.milestoneByIndexVar(w, r)
	if !ok {
		return
	}
	writeMilestone(w, r, m)
}

func (n *Node) handleMilestoneById(w http.ResponseWriter, r *http.Request) {
	m, ok := n.milestoneByIdVar(w, r)
	if !ok {
		return
	}
	writeMilestone(w, r, m)
}

func (n *Node) handleUtxoChangesByIndex(w http.ResponseWriter, r *http.Request) {
	m, ok := n.milestoneByIndexVar(w, r)
	if !ok {
		return
	}
	writeUtxoChanges(w, m.Index)
}

func (n *Node) handleUtxoChangesById(w http.ResponseWriter, r *http.Request) {
	m, ok := n.milestoneByIdVar(w, r)
	if !ok {
		return
	}
	writeUtxoChanges(w, m.Index)
}

func (n *Node) milestoneByIndexVar(
	w http.ResponseWriter,
	r *http.Request,
) (*milestone.MilestonePayload, bool) {
	index, err := nodeapi.ParseIndex(mux.Vars(r)[nodeapi.RouteVarIndex])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	n.mutex.Lock()
	m, ok := n.milestones[index]
	n.mutex.Unlock()
	if !ok {
		writeError(
			w,
			http.StatusNotFound,
			fmt.Sprintf("milestone not found: %d", index),
		)
		return nil, false
	}
	return m, true
}

func (n *Node) milestoneByIdVar(
	w http.ResponseWriter,
	r *http.Request,
) (*milestone.MilestonePayload, bool) {
	idStr := mux.Vars(r)[nodeapi.RouteVarMilestoneId]
	id, err := common.NewBlake2b256FromHex(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	n.mutex.Lock()
	var m *milestone.MilestonePayload
	index, ok := n.milestoneIds[id]
	if ok {
		m = n.milestones[index]
	}
	n.mutex.Unlock()
	if m == nil {
		writeError(
			w,
			http.StatusNotFound,
			"milestone not found: "+idStr,
		)
		return nil, false
	}
	return m, true
}

func writeMilestone(
	w http.ResponseWriter,
	r *http.Request,
	m *milestone.MilestonePayload,
) {
	if strings.Contains(r.Header.Get("Accept"), nodeapi.MediaTypeSerializer) {
		data, err := m.MarshalCBOR()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", nodeapi.MediaTypeSerializer)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func writeUtxoChanges(w http.ResponseWriter, index uint32) {
	created, consumed := testdata.OutputIdsForIndex(index)
	writeJSON(
		w,
		http.StatusOK,
		nodeapi.UtxoChangesResponse{
			Index:           index,
			CreatedOutputs:  created,
			ConsumedOutputs: consumed,
		},
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", nodeapi.MediaTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", nodeapi.MediaTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(errorBody(status, msg))
}

func errorBody(status int, msg string) []byte {
	data, _ := json.Marshal(
		map[string]any{
			"error": map[string]string{
				"code":    fmt.Sprintf("%d", status),
				"message": msg,
			},
		},
	)
	return data
}
