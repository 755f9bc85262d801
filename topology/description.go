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
	"github/sabouaram/mongocluster/monitor"
	"github/sabouaram/mongocluster/uri"
)

// ClusterDescription is the immutable snapshot Cluster atomically swaps in
// on every ServerDescription update.
type ClusterDescription struct {
	Mode    uri.ClusterMode
	SetName string
	Servers []monitor.ServerDescription
}

// HasPrimary reports whether the snapshot includes a ReplicaSetPrimary.
func (cd ClusterDescription) HasPrimary() bool {
	for _, s := range cd.Servers {
		if s.Type == monitor.ReplicaSetPrimary {
			return true
		}
	}
	return false
}

func classifyMode(cd ClusterDescription) uri.ClusterMode {
	if cd.Mode == uri.ModeSingle {
		return uri.ModeSingle
	}
	for _, s := range cd.Servers {
		if s.Type == monitor.ShardRouter {
			return uri.ModeSharded
		}
	}
	for _, s := range cd.Servers {
		switch s.Type {
		case monitor.ReplicaSetPrimary, monitor.ReplicaSetSecondary, monitor.ReplicaSetArbiter, monitor.ReplicaSetOther, monitor.ReplicaSetGhost:
			return uri.ModeReplicaSet
		}
	}
	return cd.Mode
}
