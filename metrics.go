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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "stardust"
	metricsSubsystem = "client"

	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// clientMetrics holds the collectors for a client. A nil *clientMetrics
// records nothing
type clientMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	if reg == nil {
		return nil, nil
	}
	requests, err := registerCollector(
		reg,
		prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "requests_total",
				Help:      "Number of node API requests by node and outcome",
			},
			[]string{"node", "outcome"},
		),
	)
	if err != nil {
		return nil, err
	}
	requestDuration, err := registerCollector(
		reg,
		prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Node API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"node"},
		),
	)
	if err != nil {
		return nil, err
	}
	cacheHits, err := registerCollector(
		reg,
		prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "milestone_cache_hits_total",
				Help:      "Number of milestone requests served from the cache",
			},
			[]string{"format"},
		),
	)
	if err != nil {
		return nil, err
	}
	m := &clientMetrics{
		requests:        requests,
		requestDuration: requestDuration,
		cacheHits:       cacheHits,
	}
	return m, nil
}

// registerCollector registers c, or returns the matching collector if one is
// already registered, so that multiple clients can share a registry
func registerCollector[T prometheus.Collector](
	reg prometheus.Registerer,
	c T,
) (T, error) {
	if err := reg.Register(c); err != nil {
		var alreadyErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyErr) {
			if existing, ok := alreadyErr.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *clientMetrics) observeRequest(
	node string,
	err error,
	duration time.Duration,
) {
	if m == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
		if errors.Is(err, ErrNotFound) {
			outcome = outcomeNotFound
		}
	}
	m.requests.WithLabelValues(node, outcome).Inc()
	m.requestDuration.WithLabelValues(node).Observe(duration.Seconds())
}

func (m *clientMetrics) cacheHit(format string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(format).Inc()
}
