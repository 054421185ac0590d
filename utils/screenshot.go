package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ScreenShotDebugger saves full-page screenshots when a wizard is abandoned.
type ScreenShotDebugger struct {
	outputDir string
	logger    *zap.Logger
	now       func() time.Time
}

func NewScreenShotDebugger(outputDir string, logger *zap.Logger) *ScreenShotDebugger {
	if outputDir == "" {
		outputDir = filepath.Join(".", "logs", "screenshots")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		logger.Warn("could not create screenshot dir", zap.String("dir", outputDir), zap.Error(err))
	}
	return &ScreenShotDebugger{
		outputDir: outputDir,
		logger:    logger.Named("screenshot"),
		now:       time.Now,
	}
}

// FileName builds <name>_<timestamp>.png with name reduced to safe characters.
func (s *ScreenShotDebugger) FileName(name string) string {
	clean := unsafeName.ReplaceAllString(name, "_")
	if clean == "" {
		clean = "page"
	}
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", clean, s.now().Format("2006-01-02_15-04-05")))
}

func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) (string, error) {
	path := s.FileName(name)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.logger.Warn("failed to capture screenshot", zap.String("reason", message), zap.Error(err))
		return "", err
	}

	s.logger.Info("screenshot saved", zap.String("reason", message), zap.String("path", path))
	return path, nil
}
