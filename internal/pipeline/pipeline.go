// Package pipeline runs one full discovery pass: fetch from sources, dedupe,
// classify, persist, and score.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/ai"
	"github.com/okarpov/jobradar/internal/classify"
	"github.com/okarpov/jobradar/internal/job"
	"github.com/okarpov/jobradar/internal/pacing"
	"github.com/okarpov/jobradar/internal/source"
	"github.com/okarpov/jobradar/internal/store"
)

const (
	defaultBatchSize  = 5
	defaultBatchDelay = 10 * time.Second
)

// Pipeline wires the sources, the store, and the scorer into a single run.
// Scorer and Profile may be nil; scoring is skipped then.
type Pipeline struct {
	Sources []source.Source

	// Fallback is consulted only when every configured source came back
	// empty, so a run never ends with zero postings.
	Fallback source.Source
	Store    *store.Store
	Scorer   ai.Scorer
	Profile  *job.Profile
	Logger   *zap.Logger

	Query source.Query

	// BatchSize and BatchDelay pace AI scoring so a long run does not trip
	// rate limits immediately.
	BatchSize  int
	BatchDelay time.Duration
}

// Result summarizes what a run did.
type Result struct {
	Found    int
	Unique   int
	Saved    int
	Skipped  int
	Analyzed int
	// Warning carries a non-fatal condition, such as the AI quota running
	// out mid-run.
	Warning string
}

// Run executes one discovery pass. Source failures and individual scoring
// failures do not abort the run; an exhausted AI quota stops further scoring
// but keeps already persisted postings.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	sessionID, err := p.Store.StartSession(ctx,
		fmt.Sprintf("run %s", time.Now().UTC().Format("2006-01-02 15:04")),
		p.Query.Keywords, p.Query.Locations,
	)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	var postings []job.Posting
	for _, src := range p.Sources {
		if p.Query.Quota > 0 && len(postings) >= p.Query.Quota {
			break
		}

		q := p.Query
		if q.Quota > 0 {
			q.Quota = p.Query.Quota - len(postings)
		}

		fetched := src.Fetch(ctx, q)
		p.Logger.Info("source fetch complete",
			zap.String("source", src.Name()),
			zap.Int("count", len(fetched)),
		)
		postings = append(postings, fetched...)
	}

	if len(postings) == 0 && p.Fallback != nil {
		p.Logger.Warn("every source came back empty, using the fallback source",
			zap.String("source", p.Fallback.Name()),
		)
		postings = p.Fallback.Fetch(ctx, p.Query)
	}
	result.Found = len(postings)

	unique := Dedupe(postings)
	result.Unique = len(unique)

	var saved []job.Posting
	for _, posting := range unique {
		if !classify.IsRelevant(posting) {
			result.Skipped++
			p.Logger.Debug("posting filtered out",
				zap.String("title", posting.Title),
				zap.String("company", posting.Company),
			)
			continue
		}

		id, created, err := p.Store.SaveJob(ctx, &posting)
		if err != nil {
			p.Logger.Warn("saving posting failed",
				zap.String("title", posting.Title),
				zap.Error(err),
			)
			continue
		}
		if !created {
			p.Logger.Debug("posting already known",
				zap.Int64("job_id", id),
				zap.String("title", posting.Title),
			)
			continue
		}

		result.Saved++
		saved = append(saved, posting)
	}

	if p.Scorer != nil && p.Profile != nil {
		if err := p.score(ctx, saved, result); err != nil {
			return nil, err
		}
	}

	if err := p.Store.FinishSession(ctx, sessionID, result.Found, result.Analyzed); err != nil {
		p.Logger.Warn("finishing search session failed", zap.Error(err))
	}

	p.Logger.Info("run complete",
		zap.Int("found", result.Found),
		zap.Int("unique", result.Unique),
		zap.Int("saved", result.Saved),
		zap.Int("skipped", result.Skipped),
		zap.Int("analyzed", result.Analyzed),
	)

	return result, nil
}

// score analyzes the freshly saved postings in paced batches. On a quota
// error it stops for the rest of the run and records a warning instead of
// failing.
func (p *Pipeline) score(ctx context.Context, postings []job.Posting, result *Result) error {
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	batchDelay := p.BatchDelay
	if batchDelay <= 0 {
		batchDelay = defaultBatchDelay
	}

	quotaExhausted := false

	for i, posting := range postings {
		if quotaExhausted {
			break
		}

		if i > 0 && i%batchSize == 0 {
			p.Logger.Debug("pausing between analysis batches",
				zap.Duration("delay", batchDelay),
			)
			if err := pacing.Wait(ctx, batchDelay); err != nil {
				return err
			}
		}

		analysis, err := p.Scorer.Score(ctx, p.Profile, &posting)
		if err != nil {
			if errors.Is(err, ai.ErrQuotaExceeded) || ai.IsQuotaError(err) {
				quotaExhausted = true
				result.Warning = "ai quota exceeded, scoring stopped for this run"
				p.Logger.Warn("ai quota exceeded, stopping analysis",
					zap.Int64("job_id", posting.ID),
					zap.Error(err),
				)
				break
			}
			p.Logger.Warn("scoring posting failed",
				zap.Int64("job_id", posting.ID),
				zap.String("title", posting.Title),
				zap.Error(err),
			)
			continue
		}

		if err := p.Store.SaveAnalysis(ctx, posting.ID, analysis); err != nil {
			p.Logger.Warn("saving analysis failed",
				zap.Int64("job_id", posting.ID),
				zap.Error(err),
			)
			continue
		}

		result.Analyzed++
		p.Logger.Info("posting analyzed",
			zap.Int64("job_id", posting.ID),
			zap.String("title", posting.Title),
			zap.Int("score", analysis.Score),
			zap.Bool("recommended", analysis.Recommended),
			zap.Bool("fallback", analysis.Fallback),
		)
	}

	return nil
}
