// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package acp

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jllopis/argonaut/pkg/errors"
)

// RunRecord is the persisted form of a run: its descriptor plus the terminal
// output once available.
type RunRecord struct {
	Run    RunStateless
	Output *RunOutput
}

// RunFilter limits run queries.
type RunFilter struct {
	AgentID string
	Status  RunStatus
	Limit   int
}

// RunStore persists stateless runs.
type RunStore interface {
	Create(ctx context.Context, run RunStateless) error
	Get(ctx context.Context, runID string) (RunRecord, error)
	Complete(ctx context.Context, runID string, status RunStatus, output RunOutput) error
	List(ctx context.Context, filter RunFilter) ([]RunRecord, error)
}

// MemoryRunStore keeps runs in memory.
type MemoryRunStore struct {
	mu   sync.Mutex
	runs map[string]RunRecord
}

// NewMemoryRunStore returns an in-memory run store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]RunRecord)}
}

// Create registers a new run.
func (s *MemoryRunStore) Create(_ context.Context, run RunStateless) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.RunID]; exists {
		return errors.New(errors.CodeInvalidInput, "run already exists", nil).
			WithContext("run_id", run.RunID)
	}
	s.runs[run.RunID] = RunRecord{Run: run}
	return nil
}

// Get returns the run record by id.
func (s *MemoryRunStore) Get(_ context.Context, runID string) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, errors.New(errors.CodeNotFound, "run not found", nil).
			WithContext("run_id", runID)
	}
	return rec, nil
}

// Complete stores the terminal status and output of a run.
func (s *MemoryRunStore) Complete(_ context.Context, runID string, status RunStatus, output RunOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[runID]
	if !ok {
		return errors.New(errors.CodeNotFound, "run not found", nil).
			WithContext("run_id", runID)
	}
	rec.Run.Status = status
	rec.Run.UpdatedAt = time.Now().UTC()
	rec.Output = &output
	s.runs[runID] = rec
	return nil
}

// List returns filtered runs ordered by creation time.
func (s *MemoryRunStore) List(_ context.Context, filter RunFilter) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if filter.AgentID != "" && rec.Run.AgentID != filter.AgentID {
			continue
		}
		if filter.Status != "" && rec.Run.Status != filter.Status {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Run.CreatedAt.Before(out[j].Run.CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// encodeRunOutput marshals a run output payload into JSON.
func encodeRunOutput(output *RunOutput) ([]byte, error) {
	if output == nil {
		return []byte("null"), nil
	}
	return json.Marshal(output)
}

// decodeRunOutput parses a JSON run output payload.
func decodeRunOutput(raw []byte) (*RunOutput, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	out := &RunOutput{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
