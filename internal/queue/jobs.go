package queue

import (
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/match"
)

// DedupeJobMsg asks the worker to run a batch deduplication pass over an
// already-fetched record set.
type DedupeJobMsg struct {
	JobID   string             `json:"job_id"`
	Records []match.Record     `json:"records"`
	Options match.BatchOptions `json:"options"`
}

// ScreenJobMsg asks the worker to screen a set of names against the
// reference list.
type ScreenJobMsg struct {
	JobID string   `json:"job_id"`
	Names []string `json:"names"`
	TopN  int      `json:"top_n"`
}

// JobResultMsg is published to the results queue when a job finishes.
// Kind is "dedupe" or "screen"; Error is set when the job failed.
type JobResultMsg struct {
	JobID     string                           `json:"job_id"`
	Kind      string                           `json:"kind"`
	Dedupe    *common.BatchMatchResult         `json:"dedupe,omitempty"`
	Screening map[string][]common.ScreeningHit `json:"screening,omitempty"`
	Error     string                           `json:"error,omitempty"`
}
