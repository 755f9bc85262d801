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

package monitor

import (
	"sync"
	"time"

	"github/sabouaram/mongocluster/connection"
	"github/sabouaram/mongocluster/logger"
	"github/sabouaram/mongocluster/uri"
)

var log = logger.New("monitor")

// Dialer opens the dedicated connection a Monitor uses for its own
// heartbeat probes, kept separate from the Pool's connections.
type Dialer func(addr uri.ServerAddress, opts connection.Options) (*connection.Conn, error)

// Settings configures one Monitor's timing, sourced from the matching
// heartbeat* fields of uri.ClientSettings.
type Settings struct {
	HeartbeatFrequency             time.Duration
	HeartbeatConnectRetryFrequency time.Duration
	HeartbeatConnectTimeout        time.Duration
	HeartbeatSocketTimeout         time.Duration

	// SingleHostConfigured controls parseIsMaster's Standalone/
	// ReplicaSetOther tie-break.
	SingleHostConfigured bool
}

// Invalidator is notified when a heartbeat probe fails, so the matching
// pool can discard its idle connections on failure.
type Invalidator interface {
	Invalidate()
}

// Monitor runs one server's isMaster heartbeat loop forever, publishing a
// fresh ServerDescription to Subscribe-ers on every probe, successful or
// not.
type Monitor struct {
	addr uri.ServerAddress
	opts connection.Options
	sett Settings
	dial Dialer
	pool Invalidator

	mu        sync.RWMutex
	last      ServerDescription
	listeners []chan ServerDescription

	conn *connection.Conn

	stop chan struct{}
	done chan struct{}
}

// New constructs a Monitor for addr. Call Start to begin probing.
func New(addr uri.ServerAddress, opts connection.Options, sett Settings, pool Invalidator, dial Dialer) *Monitor {
	if dial == nil {
		dial = func(a uri.ServerAddress, o connection.Options) (*connection.Conn, error) {
			c, err := connection.Dial(a, o)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}

	return &Monitor{
		addr: addr,
		opts: opts,
		sett: sett,
		dial: dial,
		pool: pool,
		last: UnknownDescription(addr, nil),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the heartbeat goroutine. It publishes Unknown first,
// then probes forever.
func (m *Monitor) Start() {
	m.publish(UnknownDescription(m.addr, nil))
	go m.loop()
}

// Stop ends the heartbeat loop and waits for it to exit.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done

	m.mu.Lock()
	c := m.conn
	m.conn = nil
	m.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
}

// Current returns the most recently published ServerDescription.
func (m *Monitor) Current() ServerDescription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Subscribe returns a channel that receives future published
// ServerDescriptions. The channel holds one value; a publish that finds it
// unread replaces that value, so a slow reader sees only the latest. The
// channel is never closed by Monitor; callers stop reading it once they no
// longer care.
func (m *Monitor) Subscribe() <-chan ServerDescription {
	ch := make(chan ServerDescription, 1)
	m.mu.Lock()
	m.listeners = append(m.listeners, ch)
	m.mu.Unlock()
	return ch
}

func (m *Monitor) publish(desc ServerDescription) {
	m.mu.Lock()
	m.last = desc
	listeners := append([]chan ServerDescription(nil), m.listeners...)
	m.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- desc:
		default:
			// slow subscriber misses an intermediate publish; Current()
			// always has the latest value regardless.
			select {
			case <-ch:
			default:
			}
			ch <- desc
		}
	}
}

func (m *Monitor) loop() {
	defer close(m.done)

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		desc, err := m.probe()
		m.publish(desc)

		wait := m.sett.HeartbeatFrequency
		if err != nil {
			log.Warnf("heartbeat probe to %s failed: %v", m.addr.String(), err)
			wait = m.sett.HeartbeatConnectRetryFrequency
			if m.pool != nil {
				m.pool.Invalidate()
			}
		}

		select {
		case <-m.stop:
			return
		case <-time.After(wait):
		}
	}
}

func (m *Monitor) probe() (ServerDescription, error) {
	m.mu.Lock()
	c := m.conn
	m.mu.Unlock()

	if c == nil {
		dialOpts := m.opts
		dialOpts.ConnectTimeout = m.sett.HeartbeatConnectTimeout
		dialOpts.SocketTimeout = m.sett.HeartbeatSocketTimeout
		dialOpts.Credentials = nil // the heartbeat connection never authenticates

		dialed, err := m.dial(m.addr, dialOpts)
		if err != nil {
			return UnknownDescription(m.addr, err), err
		}
		c = dialed
		m.mu.Lock()
		m.conn = c
		m.mu.Unlock()
	}

	start := time.Now()
	reply, err := c.RunCommand("admin", IsMasterCommand)
	rtt := time.Since(start)
	if err != nil {
		m.mu.Lock()
		if m.conn == c {
			_ = c.Close()
			m.conn = nil
		}
		m.mu.Unlock()
		return UnknownDescription(m.addr, err), err
	}

	return parseIsMaster(m.addr, reply, rtt, m.sett.SingleHostConfigured), nil
}
