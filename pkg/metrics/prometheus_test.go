package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := NewWithRegisterer(prometheus.NewRegistry())

	r.RecordTask("quote", true, 0.2)
	r.RecordTask("quote", false, 1.5)
	r.RecordTask("news", false, 0.1)
	r.RecordRun("HOLD", 2)
	r.RecordError("publish")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomesTotal.WithLabelValues("quote", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomesTotal.WithLabelValues("quote", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("HOLD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("publish")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.taskSeconds))
}
