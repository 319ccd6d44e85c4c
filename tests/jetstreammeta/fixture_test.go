package jetstreammeta

import (
	"encoding/json"
	"testing"
	"time"

	cbor "github.com/wireproto/cbor-go/runtime"
)

func TestClientInfo_Encode(t *testing.T) {
	ci := &ClientInfo{Account: "G", Service: "JS", Cluster: "R3S"}
	if _, err := cbor.Marshal(ci); err != nil {
		t.Fatalf("Marshal(ClientInfo) failed: %v", err)
	}
}

func TestRaftGroup_Encode(t *testing.T) {
	rg := &RaftGroup{Name: "rg", Peers: []string{"n1", "n2"}, Storage: MemoryStorage}
	b, err := cbor.Marshal(rg)
	if err != nil {
		t.Fatalf("Marshal(RaftGroup) failed: %v", err)
	}
	var out RaftGroup
	if err := cbor.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal(RaftGroup) failed: %v", err)
	}
	if out.Name != rg.Name || out.Storage != rg.Storage || len(out.Peers) != len(rg.Peers) {
		t.Fatalf("RaftGroup roundtrip mismatch: got %+v want %+v", out, *rg)
	}
}

func TestWriteableConsumerAssignment_Encode(t *testing.T) {
	cfgJSON, _ := json.Marshal(ConsumerConfigSnapshot{Durable: "C", MemoryStorage: true})
	ca := &WriteableConsumerAssignment{
		Created:    testTime(),
		Name:       "C",
		Stream:     "S",
		ConfigJSON: json.RawMessage(cfgJSON),
	}
	b, err := cbor.Marshal(ca)
	if err != nil {
		t.Fatalf("Marshal(WriteableConsumerAssignment) failed: %v", err)
	}
	var out WriteableConsumerAssignment
	if err := cbor.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal(WriteableConsumerAssignment) failed: %v", err)
	}
	if out.Name != ca.Name || out.Stream != ca.Stream || string(out.ConfigJSON) != string(ca.ConfigJSON) {
		t.Fatalf("WriteableConsumerAssignment roundtrip mismatch: got %+v", out)
	}
}

func TestWriteableStreamAssignment_Encode(t *testing.T) {
	ci := &ClientInfo{Account: "G", Service: "JS", Cluster: "R3S"}
	rg := &RaftGroup{Name: "rg", Peers: []string{"n1", "n2"}, Storage: MemoryStorage}
	cfgJSON, _ := json.Marshal(StreamConfigSnapshot{Name: "S", Subjects: []string{"SUB"}, Storage: MemoryStorage})
	wa := &WriteableStreamAssignment{
		Client:     ci,
		Created:    testTime(),
		ConfigJSON: json.RawMessage(cfgJSON),
		Group:      rg,
		Sync:       "_INBOX.sync",
	}
	if _, err := cbor.Marshal(wa); err != nil {
		t.Fatalf("Marshal(WriteableStreamAssignment) failed: %v", err)
	}
}

func TestMetaSnapshot_Encode_Roundtrip(t *testing.T) {
	ci := &ClientInfo{Account: "G", Service: "JS", Cluster: "R3S"}
	rg := &RaftGroup{Name: "rg", Peers: []string{"n1", "n2"}, Storage: MemoryStorage}
	cfgJSON, _ := json.Marshal(StreamConfigSnapshot{Name: "S", Subjects: []string{"SUB"}, Storage: MemoryStorage})
	ccfgJSON, _ := json.Marshal(ConsumerConfigSnapshot{Durable: "C", MemoryStorage: true})
	ca := &WriteableConsumerAssignment{
		Client:     ci,
		Created:    testTime(),
		Name:       "C",
		Stream:     "S",
		ConfigJSON: json.RawMessage(ccfgJSON),
		Group:      rg,
		State: &ConsumerState{
			Delivered: SequencePair{Consumer: 1, Stream: 1},
			AckFloor:  SequencePair{Consumer: 0, Stream: 0},
			Pending: map[uint64]*Pending{
				1: {Sequence: 1, Timestamp: testTime().UnixNano()},
			},
			Redelivered: map[uint64]uint64{1: 2},
		},
	}
	ws := WriteableStreamAssignment{
		Client:     ci,
		Created:    testTime(),
		ConfigJSON: json.RawMessage(cfgJSON),
		Group:      rg,
		Sync:       "_INBOX.sync",
		Consumers:  []*WriteableConsumerAssignment{ca},
	}
	snap := MetaSnapshot{Streams: []WriteableStreamAssignment{ws}}

	b, err := cbor.Marshal(&snap)
	if err != nil {
		t.Fatalf("Marshal(MetaSnapshot) failed: %v", err)
	}

	var out MetaSnapshot
	if err := cbor.UnmarshalMut(b, &out); err != nil {
		t.Fatalf("UnmarshalMut(MetaSnapshot) failed: %v", err)
	}
	if len(out.Streams) != 1 || len(out.Streams[0].Consumers) != 1 {
		t.Fatalf("MetaSnapshot roundtrip shape mismatch: %+v", out)
	}
	gotState := out.Streams[0].Consumers[0].State
	if gotState == nil || gotState.Delivered != ca.State.Delivered {
		t.Fatalf("ConsumerState roundtrip mismatch: got %+v", gotState)
	}
}

func TestBuildMetaSnapshotFixture_Encode(t *testing.T) {
	snap := BuildMetaSnapshotFixture(2, 2)
	b, err := cbor.Marshal(&snap)
	if err != nil {
		t.Fatalf("Marshal(fixture) failed: %v", err)
	}
	var out MetaSnapshot
	if err := cbor.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal(fixture) failed: %v", err)
	}
	if len(out.Streams) != len(snap.Streams) {
		t.Fatalf("stream count mismatch: got %d want %d", len(out.Streams), len(snap.Streams))
	}
}

func testTime() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
