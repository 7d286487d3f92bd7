package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/ai"
	"github.com/okarpov/jobradar/internal/job"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testProfile() *job.Profile {
	return &job.Profile{
		Skills: []string{"Python", "SQL", "Spark"},
		Experience: []job.Experience{
			{Title: "Senior Data Engineer"},
			{Title: "Data Analyst"},
		},
		PersonalInfo: job.PersonalInfo{Name: "Alex Doe"},
	}
}

func testPosting() *job.Posting {
	return &job.Posting{
		Title:        "Senior Data Scientist",
		Company:      "Globex",
		Location:     "Remote",
		Description:  "Build ML pipelines.",
		Requirements: "5+ years of experience.",
	}
}

func TestScoreParsesJSONResponse(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: `{
		"compatibility_score": 85,
		"match_reasons": ["strong python background"],
		"skill_gaps": ["kubernetes"],
		"recommended_application": true,
		"cover_letter_suggestions": ["mention spark experience"],
		"interview_preparation": ["system design"],
		"overall_assessment": "Good match overall."
	}`}

	scorer := NewScorer(gen, zap.NewNop(), 0)

	analysis, err := scorer.Score(context.Background(), testProfile(), testPosting())
	require.NoError(t, err)

	assert.Equal(t, 85, analysis.Score)
	assert.True(t, analysis.Recommended)
	assert.False(t, analysis.Fallback)
	assert.Equal(t, []string{"strong python background"}, analysis.MatchReasons)
	assert.Equal(t, "Good match overall.", analysis.OverallAssessment)
	assert.False(t, analysis.AnalyzedAt.IsZero())
}

func TestScoreStripsCodeFences(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: "```json\n{\"compatibility_score\": 42, \"overall_assessment\": \"meh\"}\n```"}
	scorer := NewScorer(gen, zap.NewNop(), 0)

	analysis, err := scorer.Score(context.Background(), testProfile(), testPosting())
	require.NoError(t, err)

	assert.Equal(t, 42, analysis.Score)
	assert.False(t, analysis.Recommended)
}

func TestScoreClampsOutOfRangeScore(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: `{"compatibility_score": 150}`}
	scorer := NewScorer(gen, zap.NewNop(), 0)

	analysis, err := scorer.Score(context.Background(), testProfile(), testPosting())
	require.NoError(t, err)
	assert.Equal(t, 100, analysis.Score)
}

func TestScoreFallsBackOnProseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		score    int
	}{
		{
			name:     "two positive phrases",
			response: "This candidate is an excellent fit and clearly qualified for the role.",
			score:    80,
		},
		{
			name:     "positive and negative",
			response: "A suitable candidate, but lacks cloud experience.",
			score:    55,
		},
		{
			name:     "neutral prose",
			response: "The posting describes a data engineering role.",
			score:    60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &stubGenerator{response: tt.response}
			scorer := NewScorer(gen, zap.NewNop(), 0)

			analysis, err := scorer.Score(context.Background(), testProfile(), testPosting())
			require.NoError(t, err)

			assert.Equal(t, tt.score, analysis.Score)
			assert.True(t, analysis.Fallback)
			assert.Equal(t, tt.score >= 50, analysis.Recommended)
		})
	}
}

func TestScorePropagatesQuotaError(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{err: errors.New("429 RESOURCE_EXHAUSTED: quota exceeded")}
	scorer := NewScorer(gen, zap.NewNop(), 0)

	_, err := scorer.Score(context.Background(), testProfile(), testPosting())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestScorePromptContainsProfileAndPosting(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: `{"compatibility_score": 50}`}
	scorer := NewScorer(gen, zap.NewNop(), 0)

	_, err := scorer.Score(context.Background(), testProfile(), testPosting())
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Alex Doe")
	assert.Contains(t, prompt, "Python, SQL, Spark")
	assert.Contains(t, prompt, "Senior Data Engineer; Data Analyst")
	assert.Contains(t, prompt, "Senior Data Scientist")
	assert.Contains(t, prompt, "Globex")
	assert.NotContains(t, prompt, "{{")
}

func TestGenerateCoverLetter(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: "Dear Hiring Manager,\n\nI am excited to apply.\n\nSincerely,\nAlex"}
	scorer := NewScorer(gen, zap.NewNop(), 0)

	analysis := &job.Analysis{CoverLetterSuggestions: []string{"mention spark", "lead with ML"}}

	letter, err := scorer.GenerateCoverLetter(context.Background(), testProfile(), testPosting(), analysis)
	require.NoError(t, err)
	assert.Contains(t, letter, "Dear Hiring Manager")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Key points to highlight: mention spark; lead with ML")
}

func TestIsQuotaErrorPhrases(t *testing.T) {
	t.Parallel()

	assert.True(t, ai.IsQuotaError(errors.New("rate limit hit")))
	assert.True(t, ai.IsQuotaError(errors.New("Too Many Requests")))
	assert.False(t, ai.IsQuotaError(errors.New("connection refused")))
	assert.False(t, ai.IsQuotaError(nil))
}
