/*
 * Copyright 2025 Transmission Dynamics Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package transfer

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports transfer counters to prometheus. The runtime creates one
// when Config.Registerer is set.
type Metrics struct {
	transfers *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	bytes     *prometheus.CounterVec
	inFlight  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "i2c",
			Name:      "transfers_total",
			Help:      "Completed transfer calls by bus and outcome.",
		}, []string{"bus", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "i2c",
			Name:      "transfer_duration_seconds",
			Help:      "Time from submission to completion of a transfer call.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"bus"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "i2c",
			Name:      "transfer_bytes_total",
			Help:      "Payload bytes of successful transfers by direction.",
		}, []string{"bus", "direction"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "i2c",
			Name:      "transfers_in_flight",
			Help:      "Transfers submitted and not yet completed.",
		}),
	}
	collectors := []prometheus.Collector{m.transfers, m.duration, m.bytes, m.inFlight}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, fmt.Errorf("register transfer metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) submitted() {
	m.inFlight.Inc()
}

// abandoned undoes submitted for a call the scheduler refused.
func (m *Metrics) abandoned() {
	m.inFlight.Dec()
}

// ObserveTransfer implements Observer.
func (m *Metrics) ObserveTransfer(r Report) {
	m.inFlight.Dec()
	m.transfers.WithLabelValues(r.Bus, outcomeLabel(r.Err)).Inc()
	m.duration.WithLabelValues(r.Bus).Observe(r.Duration.Seconds())
	if r.Err == nil {
		m.bytes.WithLabelValues(r.Bus, "write").Add(float64(r.WriteLength))
		m.bytes.WithLabelValues(r.Bus, "read").Add(float64(r.ReadLength))
	}
}

func outcomeLabel(err error) string {
	switch KindOf(err) {
	case 0:
		if err != nil {
			return "error"
		}
		return "success"
	case KindDeviceOpen:
		return "open_failure"
	case KindAllocation:
		return "allocation_failure"
	case KindTransfer:
		return "transfer_failure"
	default:
		return "error"
	}
}
