package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/ai"
	"github.com/okarpov/jobradar/internal/job"
	"github.com/okarpov/jobradar/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Scorer turns a profile/posting pair into a structured compatibility
// analysis via a text generation backend.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

//go:embed cover_letter.md
var coverLetterTemplate string

const (
	defaultMaxLogLength = 200
	recommendThreshold  = 50
	fallbackBaseScore   = 60
	descriptionPreview  = 500
)

var (
	positivePhrases = []string{"good match", "excellent", "qualified", "suitable", "recommend"}
	negativePhrases = []string{"poor match", "not suitable", "lacks", "missing", "not qualified"}
)

func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score asks the model to assess the posting against the profile. A response
// that cannot be parsed as JSON degrades to a keyword-based fallback analysis
// rather than an error; quota failures surface as ai.ErrQuotaExceeded.
func (s *Scorer) Score(ctx context.Context, profile *job.Profile, posting *job.Posting) (*job.Analysis, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if posting == nil {
		return nil, fmt.Errorf("posting is required")
	}

	prompt := buildAnalysisPrompt(profile, posting)

	s.logger.Debug("gemini analysis request",
		zap.String("job_title", posting.Title),
		zap.String("company", posting.Company),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if ai.IsQuotaError(err) {
			return nil, fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return nil, err
	}

	s.logger.Debug("gemini analysis response",
		zap.String("job_title", posting.Title),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	analysis, err := parseAnalysis(raw)
	if err != nil {
		s.logger.Info("building fallback analysis from text response",
			zap.String("job_title", posting.Title),
			zap.Error(err),
		)
		return fallbackAnalysis(raw), nil
	}

	analysis.Score = clampScore(analysis.Score)
	analysis.Recommended = analysis.Score >= recommendThreshold
	analysis.AnalyzedAt = time.Now().UTC()

	return analysis, nil
}

// GenerateCoverLetter produces a tailored cover letter. The analysis is
// optional; its suggestions are folded into the prompt when present.
func (s *Scorer) GenerateCoverLetter(ctx context.Context, profile *job.Profile, posting *job.Posting, analysis *job.Analysis) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("profile is required")
	}
	if posting == nil {
		return "", fmt.Errorf("posting is required")
	}

	prompt := buildCoverLetterPrompt(profile, posting, analysis)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if ai.IsQuotaError(err) {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

func buildAnalysisPrompt(profile *job.Profile, posting *job.Posting) string {
	replacer := strings.NewReplacer(
		"{{CANDIDATE_NAME}}", profile.Name(),
		"{{SKILLS}}", profile.SkillList(),
		"{{EXPERIENCE}}", profile.ExperienceSummary(),
		"{{JOB_TITLE}}", posting.Title,
		"{{COMPANY}}", posting.Company,
		"{{LOCATION}}", posting.Location,
		"{{DESCRIPTION}}", posting.Description,
		"{{REQUIREMENTS}}", posting.Requirements,
	)
	return strings.TrimSpace(replacer.Replace(promptTemplate))
}

func buildCoverLetterPrompt(profile *job.Profile, posting *job.Posting, analysis *job.Analysis) string {
	suggestions := ""
	if analysis != nil && len(analysis.CoverLetterSuggestions) > 0 {
		suggestions = "Key points to highlight: " + strings.Join(analysis.CoverLetterSuggestions, "; ")
	}

	description := posting.Description
	if utf8.RuneCountInString(description) > descriptionPreview {
		description = string([]rune(description)[:descriptionPreview]) + "..."
	}

	replacer := strings.NewReplacer(
		"{{CANDIDATE_NAME}}", profile.Name(),
		"{{JOB_TITLE}}", posting.Title,
		"{{COMPANY}}", posting.Company,
		"{{SKILLS}}", profile.SkillList(),
		"{{EXPERIENCE}}", profile.ExperienceSummary(),
		"{{DESCRIPTION}}", description,
		"{{SUGGESTIONS}}", suggestions,
	)
	return strings.TrimSpace(replacer.Replace(coverLetterTemplate))
}

// rawAnalysis mirrors the JSON shape the prompt requests from the model.
type rawAnalysis struct {
	CompatibilityScore     int      `mapstructure:"compatibility_score"`
	MatchReasons           []string `mapstructure:"match_reasons"`
	SkillGaps              []string `mapstructure:"skill_gaps"`
	RecommendedApplication bool     `mapstructure:"recommended_application"`
	CoverLetterSuggestions []string `mapstructure:"cover_letter_suggestions"`
	InterviewPreparation   []string `mapstructure:"interview_preparation"`
	OverallAssessment      string   `mapstructure:"overall_assessment"`
}

func parseAnalysis(raw string) (*job.Analysis, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var parsed rawAnalysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &parsed,
	})
	if err != nil {
		return nil, fmt.Errorf("build response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	return &job.Analysis{
		Score:                  parsed.CompatibilityScore,
		MatchReasons:           parsed.MatchReasons,
		SkillGaps:              parsed.SkillGaps,
		CoverLetterSuggestions: parsed.CoverLetterSuggestions,
		InterviewPreparation:   parsed.InterviewPreparation,
		OverallAssessment:      parsed.OverallAssessment,
	}, nil
}

// fallbackAnalysis derives a coarse score from sentiment phrases when the
// model answered in prose instead of JSON.
func fallbackAnalysis(raw string) *job.Analysis {
	lower := strings.ToLower(raw)

	positives := 0
	for _, phrase := range positivePhrases {
		if strings.Contains(lower, phrase) {
			positives++
		}
	}
	negatives := 0
	for _, phrase := range negativePhrases {
		if strings.Contains(lower, phrase) {
			negatives++
		}
	}

	score := clampScore(fallbackBaseScore + positives*10 - negatives*15)

	return &job.Analysis{
		Score:                  score,
		MatchReasons:           []string{"Analysis based on text response (JSON parsing failed)"},
		SkillGaps:              []string{"Full analysis unavailable due to parsing error"},
		Recommended:            score >= recommendThreshold,
		CoverLetterSuggestions: []string{"Highlight relevant experience and skills"},
		InterviewPreparation:   []string{"Prepare to discuss your background"},
		OverallAssessment:      fmt.Sprintf("Fallback analysis suggests a %d/100 compatibility score. Full analysis unavailable due to parsing error.", score),
		Fallback:               true,
		AnalyzedAt:             time.Now().UTC(),
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
