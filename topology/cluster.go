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

package topology

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github/sabouaram/mongocluster/connection"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/logger"
	"github/sabouaram/mongocluster/monitor"
	"github/sabouaram/mongocluster/pool"
	"github/sabouaram/mongocluster/uri"
)

var log = logger.New("topology")

// LatencyWindow is the tie-breaking window: every server within this many
// milliseconds of the fastest candidate is equally eligible.
const LatencyWindow = 15 * time.Millisecond

// Cluster owns every known Server, aggregates their published
// ServerDescriptions into one ClusterDescription, and selects servers
// against read/write selectors.
type Cluster struct {
	settings uri.ClientSettings
	opts     connection.Options

	mu        sync.Mutex
	cond      *sync.Cond
	closed    bool
	servers   map[uri.ServerAddress]*Server
	desc      ClusterDescription
	elections map[string]string // setName -> last-known electionId
	done      chan struct{}
}

// New constructs a Cluster seeded with settings.Hosts and starts a Server
// (pool + monitor) for each.
func New(settings uri.ClientSettings, opts connection.Options) *Cluster {
	c := &Cluster{
		settings:  settings,
		opts:      opts,
		servers:   make(map[uri.ServerAddress]*Server),
		elections: make(map[string]string),
		desc:      ClusterDescription{Mode: settings.Mode, SetName: settings.RequiredSetName},
		done:      make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)

	poolSett := pool.Settings{
		MaxPoolSize:           settings.MaxPoolSize,
		MinPoolSize:           settings.MinPoolSize,
		MaxWaitQueueSize:      settings.MaxWaitQueueSize,
		MaxWaitTime:           settings.MaxWaitTime,
		MaxConnectionIdleTime: settings.MaxConnectionIdleTime,
		MaxConnectionLifeTime: settings.MaxConnectionLifeTime,
	}
	monSett := monitor.Settings{
		HeartbeatFrequency:             settings.HeartbeatFrequency,
		HeartbeatConnectRetryFrequency: settings.HeartbeatConnectRetryFrequency,
		HeartbeatConnectTimeout:        settings.HeartbeatConnectTimeout,
		HeartbeatSocketTimeout:         settings.HeartbeatSocketTimeout,
		SingleHostConfigured:           len(settings.Hosts) == 1,
	}

	for _, addr := range settings.Hosts {
		c.addServer(addr, poolSett, monSett)
	}

	for _, srv := range c.servers {
		go c.watch(srv)
	}

	return c
}

func (c *Cluster) addServer(addr uri.ServerAddress, poolSett pool.Settings, monSett monitor.Settings) *Server {
	srv := newServer(addr, c.opts, poolSett, monSett)
	c.servers[addr] = srv
	return srv
}

// watch relays one Server's monitor publications into the Cluster's
// aggregate description for as long as the Cluster stays open.
func (c *Cluster) watch(srv *Server) {
	sub := srv.monitor.Subscribe()
	for {
		select {
		case <-c.done:
			return
		case desc := <-sub:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			c.apply(srv.addr, desc)
			c.mu.Unlock()
		}
	}
}

// apply folds one fresh ServerDescription into the aggregate snapshot.
// Caller must hold c.mu.
func (c *Cluster) apply(addr uri.ServerAddress, desc monitor.ServerDescription) {
	if desc.Type == monitor.ReplicaSetPrimary && desc.SetName != "" {
		if last, ok := c.elections[desc.SetName]; ok && desc.ElectionID != "" && desc.ElectionID < last {
			// stale primary: an older electionId is ignored entirely.
			c.cond.Broadcast()
			return
		}
		if desc.ElectionID != "" {
			c.elections[desc.SetName] = desc.ElectionID
		}
	}

	if c.settings.RequiredSetName != "" && desc.SetName != "" && desc.SetName != c.settings.RequiredSetName {
		c.removeServerLocked(addr)
		c.rebuildLocked()
		c.cond.Broadcast()
		return
	}

	mode := classifyMode(c.desc)
	if mode == uri.ModeReplicaSet && desc.Type == monitor.ReplicaSetPrimary {
		c.pruneToPrimaryMembersLocked(desc)
	}
	if mode == uri.ModeReplicaSet {
		c.discoverMembersLocked(desc)
	}

	c.rebuildLocked()
	c.cond.Broadcast()
}

// discoverMembersLocked adds any address named in hosts/passives/arbiters
// that the Cluster does not already track. Caller must hold c.mu.
func (c *Cluster) discoverMembersLocked(desc monitor.ServerDescription) {
	poolSett := pool.Settings{
		MaxPoolSize:           c.settings.MaxPoolSize,
		MinPoolSize:           c.settings.MinPoolSize,
		MaxWaitQueueSize:      c.settings.MaxWaitQueueSize,
		MaxWaitTime:           c.settings.MaxWaitTime,
		MaxConnectionIdleTime: c.settings.MaxConnectionIdleTime,
		MaxConnectionLifeTime: c.settings.MaxConnectionLifeTime,
	}
	monSett := monitor.Settings{
		HeartbeatFrequency:             c.settings.HeartbeatFrequency,
		HeartbeatConnectRetryFrequency: c.settings.HeartbeatConnectRetryFrequency,
		HeartbeatConnectTimeout:        c.settings.HeartbeatConnectTimeout,
		HeartbeatSocketTimeout:         c.settings.HeartbeatSocketTimeout,
	}

	for _, list := range [][]uri.ServerAddress{desc.Hosts, desc.Passives, desc.Arbiters} {
		for _, addr := range list {
			if _, ok := c.servers[addr]; !ok {
				srv := c.addServer(addr, poolSett, monSett)
				go c.watch(srv)
			}
		}
	}
}

// pruneToPrimaryMembersLocked removes any tracked server not named in the
// primary's own member list. Caller must hold c.mu.
func (c *Cluster) pruneToPrimaryMembersLocked(primary monitor.ServerDescription) {
	members := make(map[uri.ServerAddress]bool, len(primary.Hosts)+len(primary.Passives)+len(primary.Arbiters))
	for _, list := range [][]uri.ServerAddress{primary.Hosts, primary.Passives, primary.Arbiters} {
		for _, a := range list {
			members[a] = true
		}
	}
	members[primary.Address] = true

	for addr := range c.servers {
		if !members[addr] {
			c.removeServerLocked(addr)
		}
	}
}

func (c *Cluster) removeServerLocked(addr uri.ServerAddress) {
	srv, ok := c.servers[addr]
	if !ok {
		return
	}
	delete(c.servers, addr)
	go func() { _ = srv.close() }()
}

// rebuildLocked recomputes c.desc from the current per-server snapshots.
// Caller must hold c.mu.
func (c *Cluster) rebuildLocked() {
	servers := make([]monitor.ServerDescription, 0, len(c.servers))
	for _, srv := range c.servers {
		servers = append(servers, srv.Description())
	}

	cd := ClusterDescription{Mode: c.desc.Mode, SetName: c.settings.RequiredSetName, Servers: servers}
	cd.Mode = classifyMode(cd)

	if cd.Mode == uri.ModeSharded {
		kept := servers[:0]
		for _, s := range servers {
			if s.Type == monitor.ShardRouter || s.Type == monitor.Unknown {
				kept = append(kept, s)
			}
		}
		cd.Servers = kept
	}

	c.desc = cd
}

// Description returns the current ClusterDescription snapshot.
func (c *Cluster) Description() ClusterDescription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc
}

// SelectServer blocks up to settings.MaxWaitTime (or ctx's deadline, if
// sooner) until a server satisfying sel is available, running the
// four-step selection algorithm each time the cluster description changes.
func (c *Cluster) SelectServer(ctx context.Context, sel Selector) (*Server, errors.Error) {
	deadline := time.Now().Add(c.settings.MaxWaitTime)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	timer := time.AfterFunc(time.Until(deadline), func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer timer.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if c.closed {
			return nil, ErrorClusterClosed.Error(nil)
		}

		if addr, ok := sel.Select(c.desc); ok {
			if srv, ok := c.servers[addr]; ok {
				return srv, nil
			}
		}

		if time.Now().After(deadline) {
			return nil, ErrorNoServerAvailable.Error(nil)
		}

		c.cond.Wait()
	}
}

// Close stops every Server (monitor + pool), joining their background
// work, and aggregates any shutdown errors.
func (c *Cluster) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	servers := make([]*Server, 0, len(c.servers))
	for _, srv := range c.servers {
		servers = append(servers, srv)
	}
	c.servers = map[uri.ServerAddress]*Server{}
	c.mu.Unlock()

	close(c.done)
	c.cond.Broadcast()

	var result *multierror.Error
	for _, srv := range servers {
		if err := srv.close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	log.Debugf("cluster closed, %d servers torn down", len(servers))
	return result.ErrorOrNil()
}
