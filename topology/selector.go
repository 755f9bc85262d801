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
	"math/rand"

	"github/sabouaram/mongocluster/monitor"
	"github/sabouaram/mongocluster/uri"
)

// Selector narrows a ClusterDescription snapshot down to one eligible
// server address.
type Selector interface {
	Select(ClusterDescription) (uri.ServerAddress, bool)
}

// WriteSelector implements the write rule: Standalone, ReplicaSetPrimary,
// or ShardRouter.
type WriteSelector struct{}

func (WriteSelector) Select(cd ClusterDescription) (uri.ServerAddress, bool) {
	return pickLatencyWindow(filter(cd.Servers, func(s monitor.ServerDescription) bool {
		return s.OK && isWritable(s.Type)
	}))
}

func isWritable(t monitor.ServerType) bool {
	switch t {
	case monitor.Standalone, monitor.ReplicaSetPrimary, monitor.ShardRouter:
		return true
	default:
		return false
	}
}

// ReadSelector implements the five read-preference modes.
type ReadSelector struct {
	Preference uri.ReadPreference
}

func (rs ReadSelector) Select(cd ClusterDescription) (uri.ServerAddress, bool) {
	if cd.Mode == uri.ModeSharded {
		return pickLatencyWindow(filter(cd.Servers, func(s monitor.ServerDescription) bool {
			return s.OK && s.Type == monitor.ShardRouter
		}))
	}

	switch rs.Preference.Mode {
	case uri.ReadPrimary:
		return rs.primary(cd)
	case uri.ReadPrimaryPreferred:
		if addr, ok := rs.primary(cd); ok {
			return addr, true
		}
		return rs.secondary(cd)
	case uri.ReadSecondary:
		return rs.secondary(cd)
	case uri.ReadSecondaryPreferred:
		if addr, ok := rs.secondary(cd); ok {
			return addr, true
		}
		return rs.primary(cd)
	case uri.ReadNearest:
		return pickLatencyWindow(filter(cd.Servers, func(s monitor.ServerDescription) bool {
			if !s.OK {
				return false
			}
			switch s.Type {
			case monitor.ReplicaSetPrimary, monitor.ReplicaSetSecondary, monitor.Standalone, monitor.ShardRouter:
				return rs.matchesTags(s)
			default:
				return false
			}
		}))
	default:
		return rs.primary(cd)
	}
}

func (rs ReadSelector) primary(cd ClusterDescription) (uri.ServerAddress, bool) {
	return pickLatencyWindow(filter(cd.Servers, func(s monitor.ServerDescription) bool {
		if !s.OK {
			return false
		}
		switch s.Type {
		case monitor.ReplicaSetPrimary, monitor.Standalone, monitor.ShardRouter:
			return true
		default:
			return false
		}
	}))
}

func (rs ReadSelector) secondary(cd ClusterDescription) (uri.ServerAddress, bool) {
	return pickLatencyWindow(filter(cd.Servers, func(s monitor.ServerDescription) bool {
		return s.OK && s.Type == monitor.ReplicaSetSecondary && rs.matchesTags(s)
	}))
}

// matchesTags reports whether s satisfies any tag set in the preference's
// tag-set list. An empty list always matches. List order is not used: a
// server matching a later set is eligible even when other servers match
// an earlier one.
func (rs ReadSelector) matchesTags(s monitor.ServerDescription) bool {
	if len(rs.Preference.TagSets) == 0 {
		return true
	}
	for _, ts := range rs.Preference.TagSets {
		if ts.Matches(s.Tags) {
			return true
		}
	}
	return false
}

func filter(servers []monitor.ServerDescription, pred func(monitor.ServerDescription) bool) []monitor.ServerDescription {
	out := make([]monitor.ServerDescription, 0, len(servers))
	for _, s := range servers {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// pickLatencyWindow implements the tie-break: among the candidates, find
// the fastest roundTripTimeMillis, keep everyone within LatencyWindow of
// it, then choose uniformly at random.
func pickLatencyWindow(candidates []monitor.ServerDescription) (uri.ServerAddress, bool) {
	if len(candidates) == 0 {
		return uri.ServerAddress{}, false
	}

	fastest := candidates[0].RoundTripTime
	for _, c := range candidates[1:] {
		if c.RoundTripTime < fastest {
			fastest = c.RoundTripTime
		}
	}

	within := make([]monitor.ServerDescription, 0, len(candidates))
	for _, c := range candidates {
		if c.RoundTripTime-fastest <= LatencyWindow {
			within = append(within, c)
		}
	}

	return within[rand.Intn(len(within))].Address, true
}
