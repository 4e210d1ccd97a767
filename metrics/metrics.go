// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes process meters. The default implementation is a
// no-op; InitializePrometheusMetrics switches to prometheus-backed meters.
package metrics

import "net/http"

const namespace = "vesta_metrics"

var metrics Metrics = &noopMetrics{}

// Metrics defines the minimal meter factory.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHTTPHandler() http.Handler
}

// CountMeter is a monotonic counter.
type CountMeter interface {
	Add(delta int64)
}

// CountVecMeter is a monotonic counter with labels.
type CountVecMeter interface {
	AddWithLabel(delta int64, labels map[string]string)
}

// GaugeMeter is a settable value.
type GaugeMeter interface {
	Set(value int64)
	Add(delta int64)
}

// Counter returns a counter meter by name.
func Counter(name string) CountMeter {
	return metrics.GetOrCreateCountMeter(name)
}

// CounterVec returns a labeled counter meter by name.
func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

// Gauge returns a gauge meter by name.
func Gauge(name string) GaugeMeter {
	return metrics.GetOrCreateGaugeMeter(name)
}

// HTTPHandler returns the meter exposition handler.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHTTPHandler()
}

type noopMetrics struct{}

type noopMeter struct{}

func (noopMeter) Add(int64)                             {}
func (noopMeter) Set(int64)                             {}
func (noopMeter) AddWithLabel(int64, map[string]string) {}

func (*noopMetrics) GetOrCreateCountMeter(string) CountMeter { return noopMeter{} }
func (*noopMetrics) GetOrCreateCountVecMeter(string, []string) CountVecMeter {
	return noopMeter{}
}
func (*noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter { return noopMeter{} }
func (*noopMetrics) GetOrCreateHTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})
}
