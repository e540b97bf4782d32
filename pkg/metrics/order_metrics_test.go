package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)
	isClient := func(err error) bool { return err.Error() == "bad" }

	m.Observe("create", time.Now(), nil, isClient)
	m.Observe("create", time.Now(), errors.New("bad"), isClient)
	m.Observe("create", time.Now(), errors.New("db down"), isClient)
	m.Observe("create", time.Now(), errors.New("db down"), isClient)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create", OutcomeClientError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("create", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNewOrderMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewOrderMetrics(reg)
	second := NewOrderMetrics(reg)

	first.Observe("delete", time.Now(), nil, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.operations.WithLabelValues("delete", OutcomeOK)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *OrderMetrics
	assert.NotPanics(t, func() { m.Observe("get", time.Now(), nil, nil) })
}
