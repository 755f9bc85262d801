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
	"time"

	"github/sabouaram/mongocluster/connection"
)

// maintain runs until Close, evicting connections that have outlived
// MaxConnectionIdleTime/MaxConnectionLifeTime and opening replacements one
// at a time until the pool holds at least MinPoolSize connections.
func (p *Pool) maintain() {
	ticker := time.NewTicker(p.sett.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopMaintenance:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Pool) sweep() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	kept := p.available[:0]
	var stale []*connection.Conn
	for _, c := range p.available {
		if p.expired(c) {
			stale = append(stale, c)
			p.total--
		} else {
			kept = append(kept, c)
		}
	}
	p.available = kept
	needed := p.sett.MinPoolSize - p.total
	p.mu.Unlock()

	for _, c := range stale {
		_ = c.Close()
		p.metric.connClosed.Inc()
	}

	for i := 0; i < needed; i++ {
		p.mu.Lock()
		if p.closed || p.total >= p.sett.MinPoolSize {
			p.mu.Unlock()
			break
		}
		p.total++
		p.mu.Unlock()

		c, err := p.dial(p.addr, p.opts)
		if err != nil {
			log.Warnf("maintenance dial to %s failed: %v", p.addr.String(), err)
			p.mu.Lock()
			p.total--
			p.mu.Unlock()
			break
		}

		p.metric.connOpened.Inc()
		p.Checkin(c)
	}
}
