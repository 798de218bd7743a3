package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/pkg/config"
	"stockwatch/pkg/logger"
)

type fakeSource struct {
	bars     []Bar
	err      error
	failures int // fail the first N calls
	calls    int
}

func (f *fakeSource) History(ctx context.Context, symbol string, bars int) ([]Bar, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient upstream error")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		RequestsPerSecond: 1000,
		MaxRetries:        2,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
	}
}

func TestFetcherBuildsSeries(t *testing.T) {
	src := &fakeSource{bars: []Bar{
		{Timestamp: day(1), Close: 101},
		{Timestamp: day(0), Close: 100},
	}}
	f := NewFetcher(src, testFetchConfig(), logger.Nop())

	s, err := f.Fetch(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 101}, s.Closes())
	assert.Equal(t, 1, src.calls)
}

func TestFetcherRetriesTransientErrors(t *testing.T) {
	src := &fakeSource{
		failures: 2,
		bars:     []Bar{{Timestamp: day(0), Close: 100}},
	}
	f := NewFetcher(src, testFetchConfig(), logger.Nop())

	s, err := f.Fetch(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 3, src.calls)
}

func TestFetcherExhaustsRetries(t *testing.T) {
	src := &fakeSource{failures: 10}
	f := NewFetcher(src, testFetchConfig(), logger.Nop())

	_, err := f.Fetch(context.Background(), "AAPL", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoData))
	// Initial attempt plus MaxRetries.
	assert.Equal(t, 3, src.calls)
}

func TestFetcherEmptyHistory(t *testing.T) {
	src := &fakeSource{}
	f := NewFetcher(src, testFetchConfig(), logger.Nop())

	_, err := f.Fetch(context.Background(), "DELISTED", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoData))
	// Business-level absence is not retried.
	assert.Equal(t, 1, src.calls)
}

func TestFetcherContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{bars: []Bar{{Timestamp: day(0), Close: 100}}}
	f := NewFetcher(src, testFetchConfig(), logger.Nop())

	_, err := f.Fetch(ctx, "AAPL", 10)
	assert.Error(t, err)
}
