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
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github/sabouaram/mongocluster/connection"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/logger"
	"github/sabouaram/mongocluster/uri"
)

var log = logger.New("pool")

// Dialer is the subset of connection.Dial the Pool needs, broken out so
// tests can substitute a fake without opening real sockets.
type Dialer func(addr uri.ServerAddress, opts connection.Options) (*connection.Conn, errors.Error)

// Settings configures one Pool's bounds and timing, sourced from the
// matching fields of uri.ClientSettings.
type Settings struct {
	MaxPoolSize           int
	MinPoolSize           int
	MaxWaitQueueSize      int
	MaxWaitTime           time.Duration
	MaxConnectionIdleTime time.Duration
	MaxConnectionLifeTime time.Duration
	MaintenanceInterval   time.Duration
}

// Pool is a bounded, LIFO free list of connection.Conn for one server
// address. Checkout follows a five-step algorithm; checkin closes
// poisoned or expired connections and otherwise returns the connection
// to the front of the free list, waking one waiter.
type Pool struct {
	addr   uri.ServerAddress
	opts   connection.Options
	dial   Dialer
	sett   Settings
	metric *metrics

	mu        sync.Mutex
	cond      *sync.Cond
	closed    bool
	total     int
	available []*connection.Conn
	waiters   int32
	sem       *semaphore.Weighted

	stopMaintenance chan struct{}
	maintenanceOnce sync.Once
}

// New constructs a Pool for addr. The pool starts empty; the first
// checkout (or the first maintenance tick) opens the initial connections.
func New(addr uri.ServerAddress, opts connection.Options, sett Settings, dial Dialer) *Pool {
	if sett.MaintenanceInterval <= 0 {
		sett.MaintenanceInterval = 60 * time.Second
	}
	if dial == nil {
		dial = connection.Dial
	}

	p := &Pool{
		addr:            addr,
		opts:            opts,
		dial:            dial,
		sett:            sett,
		metric:          newMetrics(addr),
		sem:             semaphore.NewWeighted(int64(sett.MaxWaitQueueSize)),
		stopMaintenance: make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	go p.maintain()

	return p
}

// Checkout implements the checkout algorithm: serve an available
// connection when one survives its idle/life-time bounds, dial a fresh one
// when the pool has room to grow, otherwise park on the wait queue until a
// connection frees up or ctx/MaxWaitTime expires.
func (p *Pool) Checkout(ctx context.Context) (*connection.Conn, errors.Error) {
	deadline := time.Now().Add(p.sett.MaxWaitTime)

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrorPoolClosed.Error(nil)
		}

		for len(p.available) > 0 {
			c := p.available[len(p.available)-1]
			p.available = p.available[:len(p.available)-1]

			if p.expired(c) {
				p.total--
				p.mu.Unlock()
				_ = c.Close()
				p.metric.connClosed.Inc()
				p.mu.Lock()
				continue
			}

			p.mu.Unlock()
			p.metric.checkedOut.Inc()
			return c, nil
		}

		if p.total < p.sett.MaxPoolSize {
			p.total++
			p.mu.Unlock()

			c, err := p.dial(p.addr, p.opts)
			if err != nil {
				p.mu.Lock()
				p.total--
				p.mu.Unlock()
				return nil, ErrorCheckoutDial.Error(err)
			}

			p.metric.connOpened.Inc()
			p.metric.checkedOut.Inc()
			return c, nil
		}

		p.mu.Unlock()

		// p.sem bounds how many goroutines may occupy the wait queue at
		// once, per maxWaitQueueSize; TryAcquire fails immediately rather
		// than piling up unbounded waiters.
		if !p.sem.TryAcquire(1) {
			return nil, ErrorWaitQueueFull.Error(nil)
		}

		atomic.AddInt32(&p.waiters, 1)
		p.metric.waiters.Set(float64(atomic.LoadInt32(&p.waiters)))

		p.mu.Lock()
		waitErr := p.parkUntil(deadline)
		p.mu.Unlock()

		atomic.AddInt32(&p.waiters, -1)
		p.metric.waiters.Set(float64(atomic.LoadInt32(&p.waiters)))
		p.sem.Release(1)

		if waitErr != nil {
			return nil, waitErr
		}
		// woken: loop back and retry the available list.
	}
}

// parkUntil blocks on p.cond until signalled or deadline passes. Caller
// must hold p.mu.
func (p *Pool) parkUntil(deadline time.Time) errors.Error {
	timer := time.AfterFunc(time.Until(deadline), func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer timer.Stop()

	p.cond.Wait()

	if time.Now().After(deadline) && len(p.available) == 0 && p.total >= p.sett.MaxPoolSize {
		return ErrorWaitQueueTimeout.Error(nil)
	}
	return nil
}

// Checkin returns c to the pool. A poisoned or expired connection is
// closed and the pool shrinks by one; otherwise c goes back to the front
// of the free list and one waiter (if any) is woken.
func (p *Pool) Checkin(c *connection.Conn) {
	p.mu.Lock()

	if p.closed || c.IsPoisoned() || p.expired(c) {
		p.total--
		p.mu.Unlock()
		_ = c.Close()
		p.metric.connClosed.Inc()
		p.cond.Signal()
		return
	}

	p.available = append(p.available, c)
	p.mu.Unlock()
	p.cond.Signal()
}

// expired reports whether c has exceeded its configured idle or life-time
// bound. Caller must hold p.mu.
func (p *Pool) expired(c *connection.Conn) bool {
	if p.sett.MaxConnectionLifeTime > 0 && c.Age() >= p.sett.MaxConnectionLifeTime {
		return true
	}
	if p.sett.MaxConnectionIdleTime > 0 && c.IdleDuration() >= p.sett.MaxConnectionIdleTime {
		return true
	}
	return false
}

// Invalidate closes every idle connection. Connections checked out at the
// time are not marked: on Checkin they go back to the free list as usual
// unless poisoned or expired. Called by the monitor when a heartbeat probe
// fails.
func (p *Pool) Invalidate() {
	p.mu.Lock()
	idle := p.available
	p.available = nil
	p.total -= len(idle)
	p.mu.Unlock()

	for _, c := range idle {
		_ = c.Close()
		p.metric.connClosed.Inc()
	}
	p.cond.Broadcast()
}

// Stats reports the Pool's current size and wait-queue occupancy.
type Stats struct {
	Total     int
	Available int
	Waiters   int
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Total: p.total, Available: len(p.available), Waiters: int(atomic.LoadInt32(&p.waiters))}
}

// Close stops maintenance and closes every available connection;
// connections still checked out are closed when they are checked in.
func (p *Pool) Close() error {
	p.maintenanceOnce.Do(func() { close(p.stopMaintenance) })

	p.mu.Lock()
	p.closed = true
	idle := p.available
	p.available = nil
	p.mu.Unlock()

	p.cond.Broadcast()

	for _, c := range idle {
		_ = c.Close()
		p.metric.connClosed.Inc()
	}

	log.Debugf("pool for %s closed", p.addr.String())
	return nil
}
