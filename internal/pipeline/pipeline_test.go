package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/observability"
	"github.com/couchcryptid/quake-report/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

// mockExtractor returns one scripted result per call, then blocks until the
// context is cancelled to simulate an idle topic.
type mockExtractor struct {
	batches [][]domain.RawEvent
	errs    []error
	calls   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.calls.Add(1) - 1)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.batches) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err      error
	failKeys map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	if m.failKeys[string(raw.Key)] {
		return domain.OutputEvent{}, errors.New("bad data")
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value, Headers: map[string]string{"magnitude_category": "5"}}, nil
}

// mockLoader fails its first failures calls, then always fails with err if
// set, otherwise records the events.
type mockLoader struct {
	mu       sync.Mutex
	err      error
	failures int
	calls    int
	loaded   []domain.OutputEvent
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawEvent(t, "evt-1", 5.2)

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, raw.Value, ldr.loaded[0].Value)
	assert.True(t, p.Ready())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var commits atomic.Int64
	raw := makeRawEvent(t, "evt-2", 3.1)
	raw.Commit = func(_ context.Context) error {
		commits.Add(1)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad data")}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.False(t, p.Ready())
	assert.Equal(t, int64(1), commits.Load(), "poison message should be committed")
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := false

	raw := makeRawEvent(t, "evt-5", 6.0)
	raw.Topic = "raw-earthquake-features"
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.True(t, commitCalled)
}

func TestPipeline_Run_LoadErrorSkipsCommit(t *testing.T) {
	commitCalled := false

	raw := makeRawEvent(t, "evt-6", 6.0)
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{err: errors.New("broker down")}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.False(t, commitCalled, "offsets must not be committed when load fails")
	assert.False(t, p.Ready())
}

// commitRecorder hands out Commit callbacks that record offsets in call order.
type commitRecorder struct {
	mu      sync.Mutex
	offsets []int64
}

func (c *commitRecorder) attach(raw domain.RawEvent, offset int64) domain.RawEvent {
	raw.Offset = offset
	raw.Commit = func(_ context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.offsets = append(c.offsets, offset)
		return nil
	}
	return raw
}

func (c *commitRecorder) committed() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.offsets...)
}

func TestPipeline_Run_LoadFailureHoldsPoisonCommit(t *testing.T) {
	var rec commitRecorder
	good := rec.attach(makeRawEvent(t, "good", 4.5), 0)
	poison := rec.attach(makeRawEvent(t, "poison", 4.5), 1)

	ext := &mockExtractor{batches: [][]domain.RawEvent{{good, poison}}}
	ldr := &mockLoader{err: errors.New("broker down")}
	tfm := &mockTransformer{failKeys: map[string]bool{"poison": true}}

	p := pipeline.New(ext, tfm, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, rec.committed(), "no offset may be committed before the batch loads")
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, int64(1), ext.calls.Load(), "a failed load is retried, not re-extracted")
	assert.GreaterOrEqual(t, ldr.calls, 2)
	assert.False(t, p.Ready())
}

func TestPipeline_Run_RetriesLoadThenCommitsInOrder(t *testing.T) {
	var rec commitRecorder
	good := rec.attach(makeRawEvent(t, "good", 4.5), 0)
	poison := rec.attach(makeRawEvent(t, "poison", 4.5), 1)
	later := rec.attach(makeRawEvent(t, "later", 6.2), 2)

	ext := &mockExtractor{batches: [][]domain.RawEvent{{good, poison, later}}}
	ldr := &mockLoader{failures: 2}
	tfm := &mockTransformer{failKeys: map[string]bool{"poison": true}}

	p := pipeline.New(ext, tfm, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 3, ldr.calls)
	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, []byte("good"), ldr.loaded[0].Key)
	assert.Equal(t, []byte("later"), ldr.loaded[1].Key)
	assert.Equal(t, []int64{0, 1, 2}, rec.committed())
	assert.Equal(t, int64(2), ext.calls.Load(), "one extract for the batch, then idle")
	assert.True(t, p.Ready())
}

// cancellingLoader cancels the run context while a load is in flight and
// still reports success, as a broker ack racing a shutdown signal would.
type cancellingLoader struct {
	cancel context.CancelFunc
	loaded int
}

func (c *cancellingLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	c.cancel()
	c.loaded += len(events)
	return nil
}

func TestPipeline_Run_CommitsLoadedBatchDuringShutdown(t *testing.T) {
	var rec commitRecorder
	raw := makeRawEvent(t, "evt-8", 5.5)
	raw.Offset = 7
	raw.Commit = func(ctx context.Context) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.offsets = append(rec.offsets, 7)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &cancellingLoader{cancel: cancel}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 1, ldr.loaded)
	assert.Equal(t, []int64{7}, rec.committed(), "commit must finish before Run returns")
}

func TestPipeline_Run_RecoversAfterExtractError(t *testing.T) {
	raw := makeRawEvent(t, "evt-7", 2.4)

	ext := &mockExtractor{
		errs:    []error{errors.New("rebalance in progress")},
		batches: [][]domain.RawEvent{nil, {raw}},
	}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, []byte("evt-7"), ldr.loaded[0].Key)
}

func TestRowTransformer_Transform(t *testing.T) {
	fixed := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	raw := makeRawEvent(t, "us7000abcd", 10.4)

	tfm := pipeline.NewTransformer(domain.NewFormatter(domain.English, time.UTC), nil, discardLogger())
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, []byte("us7000abcd"), out.Key)
	assert.Equal(t, "10+", out.Headers["magnitude_category"])
	assert.Equal(t, "2024-04-26T15:10:00Z", out.Headers["rendered_at"])

	var row domain.RenderedRow
	require.NoError(t, json.Unmarshal(out.Value, &row))
	assert.Equal(t, "10.4", row.MagnitudeText)
	assert.Equal(t, "#C03823", row.MagnitudeColor)
	assert.Equal(t, "5km N of", row.OffsetLocation)
	assert.Equal(t, " Cairo, Egypt", row.PrimaryLocation)
}

func TestRowTransformer_InvalidPayload(t *testing.T) {
	tfm := pipeline.NewTransformer(domain.NewFormatter(domain.English, time.UTC), nil, discardLogger())
	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse feature")
}

// --- helpers ---

func makeRawEvent(t *testing.T, id string, magnitude float64) domain.RawEvent {
	t.Helper()
	feature := map[string]any{
		"type": "Feature",
		"id":   id,
		"properties": map[string]any{
			"mag":   magnitude,
			"place": "5km N of Cairo, Egypt",
			"time":  time.Date(2016, time.February, 2, 16, 30, 0, 0, time.UTC).UnixMilli(),
		},
	}
	data, err := json.Marshal(feature)
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(id),
		Value: data,
	}
}
