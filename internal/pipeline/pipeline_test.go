package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/job"
	"github.com/okarpov/jobradar/internal/source"
	"github.com/okarpov/jobradar/internal/store"
)

type stubSource struct {
	name     string
	postings []job.Posting
	calls    int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ source.Query) []job.Posting {
	s.calls++
	return s.postings
}

type stubScorer struct {
	analyses map[string]*job.Analysis
	err      error
	failAt   int
	calls    int
}

func (s *stubScorer) Score(_ context.Context, _ *job.Profile, p *job.Posting) (*job.Analysis, error) {
	s.calls++
	if s.err != nil && (s.failAt == 0 || s.calls >= s.failAt) {
		return nil, s.err
	}
	if a, ok := s.analyses[p.Title]; ok {
		return a, nil
	}
	return &job.Analysis{Score: 75, Recommended: true, AnalyzedAt: time.Now().UTC()}, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func relevantPosting(title, company string) job.Posting {
	return job.Posting{
		Title:        title,
		Company:      company,
		Location:     "Remote",
		Description:  "Design data pipelines at scale.",
		Requirements: "7+ years of experience with distributed systems.",
		Source:       "Indeed",
		ScrapedAt:    time.Now().UTC(),
	}
}

func TestDedupeKeepsFirstSeen(t *testing.T) {
	t.Parallel()

	first := relevantPosting("Senior Data Engineer", "Globex")
	first.Source = "Indeed"
	dup := relevantPosting("SENIOR DATA ENGINEER", "globex")
	dup.Source = "LinkedIn"
	other := relevantPosting("Staff Data Scientist", "Hooli")

	unique := Dedupe([]job.Posting{first, dup, other})
	require.Len(t, unique, 2)
	assert.Equal(t, "Indeed", unique[0].Source)
	assert.Equal(t, "Hooli", unique[1].Company)
}

func TestRunPersistsAndScores(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	src := &stubSource{name: "stub", postings: []job.Posting{
		relevantPosting("Senior Data Engineer", "Globex"),
		relevantPosting("senior data engineer", "Globex"), // duplicate
		relevantPosting("Staff Data Scientist", "Hooli"),
		{Title: "Junior Web Developer", Company: "Initech", Description: "entry level"},
	}}

	scorer := &stubScorer{analyses: map[string]*job.Analysis{
		"Senior Data Engineer": {Score: 90, Recommended: true},
		"Staff Data Scientist": {Score: 40},
	}}

	p := &Pipeline{
		Sources:    []source.Source{src},
		Store:      st,
		Scorer:     scorer,
		Profile:    &job.Profile{Skills: []string{"python"}},
		Logger:     zap.NewNop(),
		Query:      source.Query{Keywords: []string{"data engineer"}, Locations: []string{"Remote"}},
		BatchSize:  10,
		BatchDelay: time.Millisecond,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Found)
	assert.Equal(t, 3, result.Unique)
	assert.Equal(t, 1, result.Skipped) // junior role filtered out
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 2, result.Analyzed)
	assert.Empty(t, result.Warning)

	ctx := context.Background()

	count, err := st.CountJobs(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	matched, err := st.MatchedJobs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, 90, matched[0].Analysis.Score)
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	src := &stubSource{name: "stub", postings: []job.Posting{
		relevantPosting("Senior Data Engineer", "Globex"),
	}}

	p := &Pipeline{
		Sources: []source.Source{src},
		Store:   st,
		Logger:  zap.NewNop(),
	}

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Saved)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Saved)

	count, err := st.CountJobs(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunStopsScoringOnQuotaError(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	src := &stubSource{name: "stub", postings: []job.Posting{
		relevantPosting("Senior Data Engineer", "Globex"),
		relevantPosting("Staff Data Scientist", "Hooli"),
		relevantPosting("Principal Data Architect", "Initech"),
	}}

	scorer := &stubScorer{
		err:    errors.New("429: quota exceeded"),
		failAt: 2, // first posting scores fine, second hits the quota
	}

	p := &Pipeline{
		Sources:    []source.Source{src},
		Store:      st,
		Scorer:     scorer,
		Profile:    &job.Profile{},
		Logger:     zap.NewNop(),
		BatchSize:  10,
		BatchDelay: time.Millisecond,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Saved)
	assert.Equal(t, 1, result.Analyzed)
	assert.NotEmpty(t, result.Warning)
	// No further attempts after the quota error.
	assert.Equal(t, 2, scorer.calls)
}

func TestRunRespectsQuota(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	first := &stubSource{name: "first", postings: []job.Posting{
		relevantPosting("Senior Data Engineer", "Globex"),
		relevantPosting("Staff Data Scientist", "Hooli"),
	}}
	second := &stubSource{name: "second", postings: []job.Posting{
		relevantPosting("Principal Data Architect", "Initech"),
	}}

	p := &Pipeline{
		Sources: []source.Source{first, second},
		Store:   st,
		Logger:  zap.NewNop(),
		Query:   source.Query{Quota: 2},
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 1, first.calls)
	// Quota filled by the first source; the second was never asked.
	assert.Equal(t, 0, second.calls)
}

func TestRunFallsBackWhenEverySourceIsEmpty(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	dead := &stubSource{name: "Indeed"}
	alsoDead := &stubSource{name: "LinkedIn"}
	fallback := &stubSource{name: "Sample", postings: []job.Posting{
		relevantPosting("Senior Data Engineer", "Globex"),
		relevantPosting("Staff Data Scientist", "Hooli"),
	}}

	p := &Pipeline{
		Sources:  []source.Source{dead, alsoDead},
		Fallback: fallback,
		Store:    st,
		Logger:   zap.NewNop(),
		Query:    source.Query{Keywords: []string{"data engineer"}, Quota: 10},
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 2, result.Saved)
}

func TestRunSkipsFallbackWhenSourcesDeliver(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	live := &stubSource{name: "Indeed", postings: []job.Posting{
		relevantPosting("Senior Data Engineer", "Globex"),
	}}
	fallback := &stubSource{name: "Sample", postings: []job.Posting{
		relevantPosting("Staff Data Scientist", "Hooli"),
	}}

	p := &Pipeline{
		Sources:  []source.Source{live},
		Fallback: fallback,
		Store:    st,
		Logger:   zap.NewNop(),
		Query:    source.Query{Quota: 10},
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, fallback.calls)
	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 1, result.Saved)
}

type countingSource struct {
	calls atomic.Int32
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Fetch(context.Context, source.Query) []job.Posting {
	c.calls.Add(1)
	return nil
}

func TestRunnerStops(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	src := &countingSource{}
	p := &Pipeline{
		Sources: []source.Source{src},
		Store:   st,
		Logger:  zap.NewNop(),
	}

	runner := NewRunner(p, time.Minute, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- runner.Run(context.Background()) }()

	// Let the first run complete, then stop.
	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	runner.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestRunnerHonorsContextCancel(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	p := &Pipeline{
		Sources: []source.Source{&stubSource{name: "stub"}},
		Store:   st,
		Logger:  zap.NewNop(),
	}

	runner := NewRunner(p, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not observe cancellation")
	}
}
