/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package pool

import (
	"github.com/prometheus/client_golang/prometheus"

	"github/sabouaram/mongocluster/uri"
)

// metrics holds the per-Pool prometheus collectors. Each Pool registers its
// own instance against prometheus.DefaultRegisterer, labeled by server
// address so a client talking to several servers gets one series per server.
type metrics struct {
	checkedOut prometheus.Counter
	connOpened prometheus.Counter
	connClosed prometheus.Counter
	waiters    prometheus.Gauge
}

func newMetrics(addr uri.ServerAddress) *metrics {
	labels := prometheus.Labels{"server": addr.String()}

	m := &metrics{
		checkedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mongocluster",
			Subsystem:   "pool",
			Name:        "checkouts_total",
			Help:        "Total connections handed out by Checkout.",
			ConstLabels: labels,
		}),
		connOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mongocluster",
			Subsystem:   "pool",
			Name:        "connections_opened_total",
			Help:        "Total connections dialed by this pool.",
			ConstLabels: labels,
		}),
		connClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mongocluster",
			Subsystem:   "pool",
			Name:        "connections_closed_total",
			Help:        "Total connections closed by this pool (expired, poisoned, or on Close).",
			ConstLabels: labels,
		}),
		waiters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "mongocluster",
			Subsystem:   "pool",
			Name:        "wait_queue_length",
			Help:        "Current number of Checkout calls parked on the wait queue.",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{m.checkedOut, m.connOpened, m.connClosed, m.waiters} {
		_ = prometheus.Register(c)
	}

	return m
}
