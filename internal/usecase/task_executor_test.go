package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/pkg/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorRecordsOneOutcomePerAnalyzer(t *testing.T) {
	ex := NewTaskExecutor(nil)
	invs := []domsvc.Invocation{
		invocation("quote", returns(document.Map(document.Fields{"price": document.Number(10)}))),
		invocation("news", rejects("timeout")),
		invocation("broken", domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
			panic("nil map")
		})),
		{ID: "missing"},
	}

	store, err := ex.Run(context.Background(), mustSubject("aapl", "Apple"), invs)
	require.NoError(t, err)
	require.Equal(t, 4, store.Len())
	assert.Equal(t, []models.AnalyzerID{"broken", "missing", "news", "quote"}, store.Identities())

	q, ok := store.Get("quote")
	require.True(t, ok)
	assert.True(t, q.IsSuccess())

	news, _ := store.Get("news")
	assert.Equal(t, models.OutcomeFailure, news.Status)
	assert.Equal(t, "timeout", news.Message)

	broken, _ := store.Get("broken")
	assert.Equal(t, "panic: nil map", broken.Message)

	missing, _ := store.Get("missing")
	assert.Equal(t, "analyzer not implemented", missing.Message)

	assert.Equal(t, 3, store.Failures())
	assert.Equal(t, 1, store.Successes())
}

func TestExecutorStartsAllTasksBeforeAnyCompletes(t *testing.T) {
	const n = 8
	var started sync.WaitGroup
	started.Add(n)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	invs := make([]domsvc.Invocation, 0, n)
	for i := 0; i < n; i++ {
		invs = append(invs, invocation(fmt.Sprintf("a%d", i), domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
			started.Done()
			select {
			case <-allStarted:
				return document.Bool(true), nil
			case <-time.After(2 * time.Second):
				return document.Null(), errors.New("siblings never started")
			}
		})))
	}

	store, err := NewTaskExecutor(nil).Run(context.Background(), mustSubject("MSFT", ""), invs)
	require.NoError(t, err)
	assert.Equal(t, n, store.Successes())
}

func TestExecutorFailureDoesNotCancelSiblings(t *testing.T) {
	slow := domsvc.AnalyzerFunc(func(ctx context.Context, _ models.Subject) (document.Value, error) {
		select {
		case <-time.After(30 * time.Millisecond):
			return document.String("done"), nil
		case <-ctx.Done():
			return document.Null(), ctx.Err()
		}
	})
	invs := []domsvc.Invocation{
		invocation("fast-fail", rejects("boom")),
		invocation("slow", slow),
	}

	store, err := NewTaskExecutor(nil).Run(context.Background(), mustSubject("TSLA", ""), invs)
	require.NoError(t, err)
	o, _ := store.Get("slow")
	assert.True(t, o.IsSuccess())
	assert.Equal(t, document.String("done"), o.Payload)
}

func TestExecutorTaskTimeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	hung := domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
		<-block
		return document.Null(), nil
	})
	ex := NewTaskExecutor(nil, WithTaskTimeout(20*time.Millisecond))

	store, err := ex.Run(context.Background(), mustSubject("IBM", ""), []domsvc.Invocation{
		invocation("hung", hung),
		invocation("ok", returns(document.Int(1))),
	})
	require.NoError(t, err)

	o, _ := store.Get("hung")
	assert.Equal(t, models.OutcomeFailure, o.Status)
	assert.Equal(t, "timed out after 20ms", o.Message)
	ok, _ := store.Get("ok")
	assert.True(t, ok.IsSuccess())
}

func TestExecutorDuplicateIDLastRegistrationWins(t *testing.T) {
	var first, second atomic.Int32
	invs := []domsvc.Invocation{
		invocation("dup", domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
			first.Add(1)
			return document.String("first"), nil
		})),
		invocation("other", returns(document.Null())),
		invocation("dup", domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
			second.Add(1)
			return document.String("second"), nil
		})),
	}

	store, err := NewTaskExecutor(nil).Run(context.Background(), mustSubject("GE", ""), invs)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
	assert.Equal(t, document.String("second"), store.Payload("dup"))
}

func TestExecutorObserverAndMetrics(t *testing.T) {
	m := &fakeMetrics{}
	ex := NewTaskExecutor(nil, WithExecutorMetrics(m))

	var seen []models.AnalyzerID
	store, err := ex.RunObserved(context.Background(), mustSubject("NVDA", ""), []domsvc.Invocation{
		invocation("a", returns(document.Int(1))),
		invocation("b", rejects("nope")),
		invocation("c", returns(document.Int(3))),
	}, func(id models.AnalyzerID, _ models.Outcome) {
		// called from the fan-in loop only, so no locking
		seen = append(seen, id)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.AnalyzerID{"a", "b", "c"}, seen)
	assert.Equal(t, 3, store.Len())

	require.Len(t, m.tasks, 3)
	assert.Contains(t, m.tasks, taskRecord{analyzer: "b", success: false})
}

func TestExecutorRejectsInvalidSubject(t *testing.T) {
	var called atomic.Bool
	_, err := NewTaskExecutor(nil).Run(context.Background(), models.Subject{Symbol: "  "}, []domsvc.Invocation{
		invocation("a", domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
			called.Store(true)
			return document.Null(), nil
		})),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidSubject)
	assert.False(t, called.Load())
}

func TestExecutorEmptyInvocationList(t *testing.T) {
	store, err := NewTaskExecutor(nil).Run(context.Background(), mustSubject("AMD", ""), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestExecutorAllRejecting(t *testing.T) {
	store, err := NewTaskExecutor(nil).Run(context.Background(), mustSubject("AAPL", ""), allRejecting(50))
	require.NoError(t, err)
	assert.Equal(t, 50, store.Len())
	assert.Equal(t, 50, store.Failures())
}

func TestExecutorPassesNormalizedSubject(t *testing.T) {
	var seen models.Subject
	invs := []domsvc.Invocation{
		invocation("quote", domsvc.AnalyzerFunc(func(_ context.Context, s models.Subject) (document.Value, error) {
			seen = s
			return document.Null(), nil
		})),
	}

	_, err := NewTaskExecutor(nil).Run(context.Background(), models.Subject{Symbol: " aapl ", CompanyName: " Apple "}, invs)
	require.NoError(t, err)
	assert.Equal(t, models.Subject{Symbol: "AAPL", CompanyName: "Apple"}, seen)
}
