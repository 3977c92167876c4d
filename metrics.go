// Copyright 2025 The Rivaas Authors
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

package plumber

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsScratchKey = "_plumber_metrics_start"

// MetricsFilter is a built-in, Prometheus-backed instrument pair
// (a Filter and a PostrouteHook) that records request counts and
// latency. Wire Filter() earliest in the chain and PostrouteHook() on
// the same router via RegisterHook so the two halves see the same
// request.
type MetricsFilter struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetricsFilter constructs a MetricsFilter and registers its
// collectors with reg. Passing prometheus.DefaultRegisterer is typical.
func NewMetricsFilter(reg prometheus.Registerer) *MetricsFilter {
	m := &MetricsFilter{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plumber_requests_total",
			Help: "Total requests observed by the metrics filter, labeled by verb and route.",
		}, []string{"verb", "route"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plumber_request_duration_seconds",
			Help:    "Time spent between the metrics filter running and postroute.",
			Buckets: prometheus.DefBuckets,
		}, []string{"verb", "route"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

// Filter returns the pipeline Filter that stamps the request's start
// time into its scratch map. Named "metrics".
func (m *MetricsFilter) Filter() *Filter {
	return NewFilter("metrics", func(args *Args) FilterResult {
		args.Req.Scratch[metricsScratchKey] = time.Now()
		return Forward()
	})
}

// PostrouteHook returns the postroute callback that reads the stamped
// start time back out and records the observation. Register it with
// Router.RegisterHook(HookPostroute, ...) alongside Filter().
func (m *MetricsFilter) PostrouteHook() PostrouteHook {
	return func(scratch map[string]any, req *Request, res *Response, value any) (any, error) {
		start, ok := scratch[metricsScratchKey].(time.Time)
		if !ok {
			return value, nil
		}
		route := req.Path()
		verb := req.Verb()
		m.requests.WithLabelValues(verb, route).Inc()
		m.latency.WithLabelValues(verb, route).Observe(time.Since(start).Seconds())
		return value, nil
	}
}
