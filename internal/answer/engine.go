package answer

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"

	"go-easyapply-automation/internal/ai"
	"go-easyapply-automation/internal/models"

	"go.uber.org/zap"
)

const (
	resumeExcerptRunes = 1500
	maxAnswerWords     = 5
)

// Generator is the provider chain as seen by the engine.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, string, error)
}

// Cache stores provider answers keyed by profile fingerprint and normalized question.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, answer string)
}

// Engine maps a form question to an answer string. An empty answer means
// "leave the field unmodified", never an error.
type Engine struct {
	gen    Generator
	cache  Cache
	logger *zap.Logger
}

func NewEngine(gen Generator, cache Cache, logger *zap.Logger) *Engine {
	return &Engine{
		gen:    gen,
		cache:  cache,
		logger: logger.Named("answer"),
	}
}

func (e *Engine) Answer(ctx context.Context, field models.FormField, profile models.ApplicantProfile) string {
	if field.Label == "" || field.Kind == models.FieldFileUpload {
		return ""
	}

	kind := classify(field.Label)
	if direct := fromProfile(kind, profile); direct != "" && field.Kind != models.FieldSingleChoice {
		return direct
	}

	raw := e.ask(ctx, field, profile)
	if raw == "" {
		return ""
	}
	return normalize(kind, field, raw)
}

// fromProfile resolves questions whose answer is a fixed profile fact.
func fromProfile(kind questionKind, p models.ApplicantProfile) string {
	switch kind {
	case kindSalary:
		return bareNumber(p.SalaryExpectation)
	case kindNoticePeriod:
		if p.NoticePeriodDays > 0 {
			return fmt.Sprintf("%d Days", p.NoticePeriodDays)
		}
	case kindLocation:
		return p.Location
	case kindRelocation:
		return capWords(p.Relocation, maxAnswerWords)
	}
	return ""
}

func normalize(kind questionKind, field models.FormField, raw string) string {
	switch {
	case field.Kind == models.FieldSingleChoice:
		return matchOption(capWords(raw, maxAnswerWords), field.Options)
	case field.Kind == models.FieldNumber, kind == kindSalary, kind == kindExperience:
		return bareNumber(raw)
	default:
		return capWords(raw, maxAnswerWords)
	}
}

func (e *Engine) ask(ctx context.Context, field models.FormField, profile models.ApplicantProfile) string {
	question := field.Label
	if len(field.Options) > 0 {
		question = fmt.Sprintf("%s (choose one of: %v)", field.Label, field.Options)
	}
	key := profileFingerprint(profile) + ":" + normalizeText(question)

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, key); ok {
			e.logger.Debug("answer cache hit", zap.String("question", field.Label))
			return cached
		}
	}
	if e.gen == nil {
		return ""
	}

	prompt := ai.BuildAnswerPrompt(question, factsOf(profile), excerpt(profile.ResumeText, resumeExcerptRunes))
	text, provider, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("no answer from ai providers, leaving field", zap.String("question", field.Label), zap.Error(err))
		return ""
	}
	e.logger.Debug("answered question",
		zap.String("question", field.Label),
		zap.String("provider", provider))

	if e.cache != nil {
		e.cache.Set(ctx, key, text)
	}
	return text
}

func factsOf(p models.ApplicantProfile) ai.AnswerFacts {
	facts := ai.AnswerFacts{
		Salary:            p.SalaryExpectation,
		Location:          p.Location,
		Relocation:        p.Relocation,
		WorkAuthorization: p.WorkAuthorization,
		Education:         p.EducationSummary,
	}
	if p.NoticePeriodDays > 0 {
		facts.NoticePeriod = fmt.Sprintf("%d Days", p.NoticePeriodDays)
	}
	return facts
}

// profileFingerprint changes whenever anything the prompt carries about the
// applicant changes, so cached answers never outlive a profile edit.
func profileFingerprint(p models.ApplicantProfile) string {
	h := sha1.New()
	io.WriteString(h, factsOf(p).String())
	io.WriteString(h, excerpt(p.ResumeText, resumeExcerptRunes))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
