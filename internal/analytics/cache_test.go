package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/shoppulse/internal/money"
	"github.com/MikeMC777/shoppulse/internal/order"
)

type fakeCache struct {
	rep    *Report
	getErr error
	setErr error
	delErr error
	sets   int
}

func (f *fakeCache) Get(context.Context) (*Report, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.rep, nil
}

func (f *fakeCache) Set(_ context.Context, rep *Report) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.rep = rep
	return nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.rep = nil
	return nil
}

type countingReporter struct {
	calls int
	err   error
}

func (c *countingReporter) ComputeReport(_ context.Context, now time.Time) (*Report, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &Report{GeneratedAt: now}, nil
}

func TestCachedReporter_MissThenHit(t *testing.T) {
	next := &countingReporter{}
	cache := &fakeCache{}
	r := NewCachedReporter(next, cache)

	first, err := r.ComputeReport(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := r.ComputeReport(context.Background(), testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, next.calls)
}

func TestCachedReporter_CacheErrorsAreBypassed(t *testing.T) {
	next := &countingReporter{}
	cache := &fakeCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	r := NewCachedReporter(next, cache)

	rep, err := r.ComputeReport(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, rep.GeneratedAt)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestCachedReporter_FailureIsNotCached(t *testing.T) {
	next := &countingReporter{err: ErrReportUnavailable}
	cache := &fakeCache{}
	r := NewCachedReporter(next, cache)

	rep, err := r.ComputeReport(context.Background(), testNow)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, ErrReportUnavailable)
	assert.Zero(t, cache.sets)
}

func TestCachedReporter_InvalidateForcesRecompute(t *testing.T) {
	next := &countingReporter{}
	cache := &fakeCache{}
	r := NewCachedReporter(next, cache)

	_, err := r.ComputeReport(context.Background(), testNow)
	require.NoError(t, err)

	r.Invalidate(context.Background())
	rep, err := r.ComputeReport(context.Background(), testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, testNow.Add(time.Minute), rep.GeneratedAt)
}

func TestCachedReporter_InvalidateErrorIsLogged(t *testing.T) {
	next := &countingReporter{}
	cache := &fakeCache{delErr: errors.New("redis down")}
	r := NewCachedReporter(next, cache)

	_, err := r.ComputeReport(context.Background(), testNow)
	require.NoError(t, err)

	assert.NotPanics(t, func() { r.Invalidate(context.Background()) })
	_, err = r.ComputeReport(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestCachedReporter_CancelledOrderLeavesReportAfterInvalidate(t *testing.T) {
	s := newMemStore()
	s.addTotal("u1", order.StatusProcessing, testNow.Add(-time.Hour), 600)
	r := NewCachedReporter(newTestAggregator(s), &fakeCache{})

	before, err := r.ComputeReport(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(600), before.Sales.RevenueToday)

	s.orders[0].Status = order.StatusCancelled
	r.Invalidate(context.Background())

	after, err := r.ComputeReport(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, after.Sales.RevenueToday)
	assert.Zero(t, after.Sales.OrdersLast30Days)
}
