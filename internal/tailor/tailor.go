package tailor

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go-easyapply-automation/internal/ai"
	"go-easyapply-automation/internal/models"

	"go.uber.org/zap"
)

// Generator is the provider chain as seen by the tailoring service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, string, error)
}

// Renderer turns plain resume text into a stored document and returns its path.
type Renderer interface {
	Render(ctx context.Context, name, text string) (string, error)
}

// Service produces one application document per posting. It never fails:
// any provider or render problem falls back to the untailored resume.
type Service struct {
	gen      Generator
	renderer Renderer
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(gen Generator, renderer Renderer, logger *zap.Logger) *Service {
	return &Service{
		gen:      gen,
		renderer: renderer,
		logger:   logger.Named("tailor"),
		now:      time.Now,
	}
}

func (s *Service) Tailor(ctx context.Context, posting models.JobPosting, profile models.ApplicantProfile) models.TailoredDocument {
	doc := models.TailoredDocument{
		JobID:       posting.ID,
		StoragePath: profile.ResumePath,
		CreatedAt:   s.now(),
	}
	log := s.logger.With(zap.String("job_id", posting.ID), zap.String("company", posting.Company))

	if s.gen == nil || s.renderer == nil || strings.TrimSpace(profile.ResumeText) == "" {
		log.Info("tailoring unavailable, using original resume")
		return doc
	}

	prompt := ai.BuildTailorPrompt(posting.Company, posting.Title, posting.Description, profile.ResumeText)
	text, provider, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn("resume tailoring failed, using original resume", zap.Error(err))
		return doc
	}
	body := ai.CleanMarkdown(text)
	if body == "" {
		log.Warn("provider returned an empty resume, using original resume", zap.String("provider", provider))
		return doc
	}

	path, err := s.renderer.Render(ctx, DocumentName(posting.Company, posting.ID), body)
	if err != nil {
		log.Warn("resume render failed, using original resume", zap.Error(err))
		return doc
	}

	doc.StoragePath = path
	doc.Provider = provider
	doc.Tailored = true
	log.Info("tailored resume ready", zap.String("provider", provider), zap.String("path", path))
	return doc
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SafeName reduces a company name to something usable as a folder or file name.
func SafeName(s string) string {
	s = unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// DocumentName is the renderer-relative name of a posting's document:
// <company>/resume_<company>_<job id>.
func DocumentName(company, jobID string) string {
	c := SafeName(company)
	return filepath.Join(c, fmt.Sprintf("resume_%s_%s", c, SafeName(jobID)))
}
