package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/pkg/document"
)

type taskRecord struct {
	analyzer string
	success  bool
}

type fakeMetrics struct {
	mu     sync.Mutex
	tasks  []taskRecord
	runs   []string
	errors []string
}

func (m *fakeMetrics) RecordTask(analyzer string, success bool, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, taskRecord{analyzer: analyzer, success: success})
}

func (m *fakeMetrics) RecordRun(signal string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, signal)
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

type fakePublisher struct {
	mu      sync.Mutex
	reports []*models.Report
	err     error
}

func (p *fakePublisher) PublishReport(_ context.Context, r *models.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type staticSource []domsvc.Invocation

func (s staticSource) Invocations() []domsvc.Invocation { return s }

func returns(payload document.Value) domsvc.Analyzer {
	return domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
		return payload, nil
	})
}

func rejects(msg string) domsvc.Analyzer {
	return domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
		return document.Null(), errors.New(msg)
	})
}

func invocation(id string, a domsvc.Analyzer) domsvc.Invocation {
	return domsvc.Invocation{ID: models.AnalyzerID(id), Analyzer: a}
}

// recommendation builds a payload with text at the given path.
func recommendation(text string, path ...string) document.Value {
	v := document.String(text)
	for i := len(path) - 1; i >= 0; i-- {
		v = document.Map(document.Fields{path[i]: v})
	}
	return v
}

func allRejecting(n int) []domsvc.Invocation {
	out := make([]domsvc.Invocation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, invocation(fmt.Sprintf("analyzer%02d", i), rejects(fmt.Sprintf("upstream %d down", i))))
	}
	return out
}

func mustSubject(symbol, company string) models.Subject {
	s, err := models.NewSubject(symbol, company)
	if err != nil {
		panic(err)
	}
	return s
}
