package models

import (
	"encoding/json"
	"sort"
	"time"

	"StockPulse/pkg/document"
)

// OutcomeStatus tags an Outcome.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Outcome is the settled result of one analyzer invocation: a payload on success,
// a message on failure.
type Outcome struct {
	Status   OutcomeStatus  `json:"status"`
	Payload  document.Value `json:"payload,omitempty"`
	Message  string         `json:"error,omitempty"`
	Duration time.Duration  `json:"-"`
}

func Success(payload document.Value) Outcome {
	return Outcome{Status: OutcomeSuccess, Payload: payload}
}

func Failure(message string) Outcome {
	return Outcome{Status: OutcomeFailure, Message: message}
}

func (o Outcome) IsSuccess() bool { return o.Status == OutcomeSuccess }

// WithDuration returns a copy stamped with the task latency.
func (o Outcome) WithDuration(d time.Duration) Outcome {
	o.Duration = d
	return o
}

// ResultStore is the per-run snapshot of analyzer outcomes. It is built once by the
// executor and is read-only afterwards.
type ResultStore struct {
	entries map[AnalyzerID]Outcome
}

// NewResultStore copies entries into a new snapshot.
func NewResultStore(entries map[AnalyzerID]Outcome) *ResultStore {
	cp := make(map[AnalyzerID]Outcome, len(entries))
	for id, o := range entries {
		cp[id] = o
	}
	return &ResultStore{entries: cp}
}

// Get returns the outcome for id. A nil store has no entries.
func (s *ResultStore) Get(id AnalyzerID) (Outcome, bool) {
	if s == nil {
		return Outcome{}, false
	}
	o, ok := s.entries[id]
	return o, ok
}

// Payload returns the success payload for id, or Null for failures and unknown ids.
func (s *ResultStore) Payload(id AnalyzerID) document.Value {
	o, ok := s.Get(id)
	if !ok || !o.IsSuccess() {
		return document.Null()
	}
	return o.Payload
}

func (s *ResultStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Identities returns every analyzer id in sorted order.
func (s *ResultStore) Identities() []AnalyzerID {
	if s == nil {
		return nil
	}
	ids := make([]AnalyzerID, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Failures counts Failure entries.
func (s *ResultStore) Failures() int {
	n := 0
	for _, id := range s.Identities() {
		if !s.entries[id].IsSuccess() {
			n++
		}
	}
	return n
}

func (s *ResultStore) Successes() int { return s.Len() - s.Failures() }

// Each visits entries in sorted id order.
func (s *ResultStore) Each(fn func(id AnalyzerID, o Outcome)) {
	for _, id := range s.Identities() {
		fn(id, s.entries[id])
	}
}

func (s *ResultStore) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.entries)
}

func (s *ResultStore) UnmarshalJSON(b []byte) error {
	var entries map[AnalyzerID]Outcome
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	s.entries = entries
	return nil
}
