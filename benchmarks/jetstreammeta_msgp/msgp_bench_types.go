// Package jetstreammeta_msgp converts jetstreammeta.MetaSnapshot into a
// plain interface{} tree so the standalone benchmark command can drive
// tinylib/msgp's generic AppendIntf/ReadIntfBytes path against the same
// fixture the CBOR and JSON codecs use, without hand-authoring
// msgp-generated Marshal/Unmarshal methods for the nested types.
package jetstreammeta_msgp

import (
	"strconv"

	js "github.com/wireproto/cbor-go/tests/jetstreammeta"
)

// ToMsgpInterface flattens a MetaSnapshot into nested maps and slices
// built from msgp's supported scalar kinds, mirroring the shape
// BenchmarkMsgp_Struct_Encode uses for the simpler Person fixture.
func ToMsgpInterface(snap js.MetaSnapshot) map[string]any {
	streams := make([]any, 0, len(snap.Streams))
	for i := range snap.Streams {
		streams = append(streams, streamToIntf(&snap.Streams[i]))
	}
	return map[string]any{"streams": streams}
}

func streamToIntf(s *js.WriteableStreamAssignment) map[string]any {
	m := map[string]any{
		"created": s.Created.UnixNano(),
		"stream":  []byte(s.ConfigJSON),
		"group":   groupToIntf(s.Group),
		"sync":    s.Sync,
	}
	if s.Client != nil {
		m["client"] = clientToIntf(s.Client)
	}
	if len(s.Consumers) > 0 {
		consumers := make([]any, 0, len(s.Consumers))
		for _, ca := range s.Consumers {
			consumers = append(consumers, consumerToIntf(ca))
		}
		m["consumers"] = consumers
	}
	return m
}

func consumerToIntf(ca *js.WriteableConsumerAssignment) map[string]any {
	m := map[string]any{
		"created":  ca.Created.UnixNano(),
		"name":     ca.Name,
		"stream":   ca.Stream,
		"consumer": []byte(ca.ConfigJSON),
		"group":    groupToIntf(ca.Group),
	}
	if ca.Client != nil {
		m["client"] = clientToIntf(ca.Client)
	}
	if ca.State != nil {
		m["state"] = stateToIntf(ca.State)
	}
	return m
}

func clientToIntf(ci *js.ClientInfo) map[string]any {
	return map[string]any{
		"acc":     ci.Account,
		"svc":     ci.Service,
		"cluster": ci.Cluster,
		"rtt":     int64(ci.RTT),
	}
}

func groupToIntf(rg *js.RaftGroup) map[string]any {
	if rg == nil {
		return nil
	}
	return map[string]any{
		"name":      rg.Name,
		"peers":     stringsToIntf(rg.Peers),
		"store":     int(rg.Storage),
		"cluster":   rg.Cluster,
		"preferred": rg.Preferred,
		"scale_up":  rg.ScaleUp,
	}
}

func stateToIntf(cs *js.ConsumerState) map[string]any {
	m := map[string]any{
		"delivered": map[string]any{"consumer_seq": cs.Delivered.Consumer, "stream_seq": cs.Delivered.Stream},
		"ack_floor": map[string]any{"consumer_seq": cs.AckFloor.Consumer, "stream_seq": cs.AckFloor.Stream},
	}
	if len(cs.Pending) > 0 {
		pending := make(map[string]any, len(cs.Pending))
		for k, v := range cs.Pending {
			pending[uintKey(k)] = map[string]any{"sequence": v.Sequence, "ts": v.Timestamp}
		}
		m["pending"] = pending
	}
	if len(cs.Redelivered) > 0 {
		redelivered := make(map[string]any, len(cs.Redelivered))
		for k, v := range cs.Redelivered {
			redelivered[uintKey(k)] = v
		}
		m["redelivered"] = redelivered
	}
	return m
}

func stringsToIntf(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func uintKey(u uint64) string {
	return strconv.FormatUint(u, 10)
}
