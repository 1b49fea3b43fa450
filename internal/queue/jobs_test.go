package queue

import (
	"encoding/json"
	"testing"

	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/match"
)

// The queue payloads are a wire contract between server and worker
// deployments that may not upgrade in lockstep; the key names must stay
// stable.
func TestJobMessageWireFormat(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(DedupeJobMsg{
		JobID: "job-1",
		Records: []match.Record{
			{ID: "r1", EntityType: common.EntityPerson, Fields: map[string]string{"name": "John Smith"}},
		},
		Options: match.BatchOptions{MatchFields: []string{"name"}, Threshold: 0.8},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"job_id", "records", "options"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("dedupe payload missing key %q: %s", key, payload)
		}
	}

	var decoded DedupeJobMsg
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.JobID != "job-1" || len(decoded.Records) != 1 || decoded.Records[0].Fields["name"] != "John Smith" {
		t.Fatalf("round trip lost data: %+v", decoded)
	}
}

func TestJobResultOmitsUnusedSections(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(JobResultMsg{JobID: "job-1", Kind: "screen"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["dedupe"]; ok {
		t.Fatal("empty dedupe section not omitted")
	}
	if _, ok := raw["screening"]; ok {
		t.Fatal("empty screening section not omitted")
	}
	if _, ok := raw["error"]; ok {
		t.Fatal("empty error not omitted")
	}
}
