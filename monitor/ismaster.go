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
	"time"

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/uri"
)

// IsMasterCommand is the legacy health/identity probe sent every
// heartbeat. `1` rather than `true` matches the wire format every real
// driver and server uses for this command.
var IsMasterCommand = bson.D{{Key: "ismaster", Value: 1}}

// parseIsMaster classifies and copies an isMaster response into a
// ServerDescription, following a fixed classification order: setName+
// ismaster -> Primary; secondary -> Secondary; arbiterOnly -> Arbiter;
// isreplicaset+no setName -> Ghost; msg=="isdbgrid" -> ShardRouter;
// otherwise Standalone (single configured host) or ReplicaSetOther.
func parseIsMaster(addr uri.ServerAddress, doc bson.D, rtt time.Duration, singleHostConfigured bool) ServerDescription {
	m := doc.Map()

	desc := ServerDescription{
		Address:       addr,
		OK:            true,
		RoundTripTime: rtt,
		Tags:          map[string]string{},
	}

	setName, hasSetName := m["setName"].(string)
	isMaster, _ := m["ismaster"].(bool)
	secondary, _ := m["secondary"].(bool)
	arbiterOnly, _ := m["arbiterOnly"].(bool)
	isReplicaSet, _ := m["isreplicaset"].(bool)
	msg, _ := m["msg"].(string)

	switch {
	case hasSetName && isMaster:
		desc.Type = ReplicaSetPrimary
	case secondary:
		desc.Type = ReplicaSetSecondary
	case arbiterOnly:
		desc.Type = ReplicaSetArbiter
	case isReplicaSet && !hasSetName:
		desc.Type = ReplicaSetGhost
	case msg == "isdbgrid":
		desc.Type = ShardRouter
	case singleHostConfigured:
		desc.Type = Standalone
	default:
		desc.Type = ReplicaSetOther
	}

	desc.SetName = setName
	desc.Hosts = addressList(m["hosts"])
	desc.Passives = addressList(m["passives"])
	desc.Arbiters = addressList(m["arbiters"])

	if tags, ok := m["tags"].(bson.D); ok {
		for _, e := range tags {
			if s, ok := e.Value.(string); ok {
				desc.Tags[e.Key] = s
			}
		}
	}

	if primaryStr, ok := m["primary"].(string); ok && primaryStr != "" {
		desc.Primary = uri.ParseServerAddress(primaryStr)
		desc.HasPrimary = true
	}

	desc.SetVersion = asInt64(m["setVersion"])
	desc.ElectionID = asString(m["electionId"])
	desc.MinWireVersion = int32(asInt64(m["minWireVersion"]))
	desc.MaxWireVersion = int32(asInt64(m["maxWireVersion"]))
	desc.MaxDocumentSize = int32(asInt64(m["maxBsonObjectSize"]))
	desc.MaxMessageSize = int32(asInt64(m["maxMessageSizeBytes"]))
	desc.MaxWriteBatchSize = int32(asInt64(m["maxWriteBatchSize"]))

	return desc
}

func addressList(v interface{}) []uri.ServerAddress {
	arr, ok := v.(bson.A)
	if !ok {
		return nil
	}
	out := make([]uri.ServerAddress, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, uri.ParseServerAddress(s))
		}
	}
	return out
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case bson.ObjectID:
		return s.String()
	default:
		return ""
	}
}
