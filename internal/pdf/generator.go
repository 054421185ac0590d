package pdf

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

//go:embed resume.html
var resumeTemplate string

var tmpl = template.Must(template.New("resume").Parse(resumeTemplate))

// Generator renders plain-text resumes to PDF files under outputDir using an
// already launched playwright browser.
type Generator struct {
	browser   playwright.Browser
	outputDir string
	logger    *zap.Logger
}

func NewGenerator(browser playwright.Browser, outputDir string, logger *zap.Logger) *Generator {
	return &Generator{
		browser:   browser,
		outputDir: outputDir,
		logger:    logger.Named("pdf"),
	}
}

// Render writes <outputDir>/<name>.pdf and returns its path.
func (g *Generator) Render(ctx context.Context, name, text string) (string, error) {
	outputPath, err := g.pathFor(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	htmlContent, err := RenderHTML(name, text)
	if err != nil {
		return "", err
	}

	pdfBytes, err := g.print(htmlContent)
	if err != nil {
		return "", err
	}

	if err := SaveToFile(pdfBytes, outputPath); err != nil {
		return "", fmt.Errorf("could not save pdf: %w", err)
	}
	g.logger.Debug("pdf written", zap.String("path", outputPath), zap.Int("bytes", len(pdfBytes)))
	return outputPath, nil
}

func (g *Generator) print(htmlContent string) ([]byte, error) {
	if g.browser == nil {
		return nil, fmt.Errorf("no browser available for pdf rendering")
	}

	page, err := g.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(htmlContent, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("0"),
			Bottom: playwright.String("0"),
			Left:   playwright.String("0"),
			Right:  playwright.String("0"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}
	return pdfBytes, nil
}

// pathFor keeps every document inside outputDir.
func (g *Generator) pathFor(name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(g.outputDir, clean+".pdf"), nil
}

type block struct {
	Kind  string
	Text  string
	Items []string
}

type document struct {
	Title  string
	Blocks []block
}

// RenderHTML lays plain resume text out as HTML. The first line becomes the
// title, short upper-case lines become section headings and runs of lines
// starting with "-", "*" or "•" become bullet lists.
func RenderHTML(name, text string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, document{Title: filepath.Base(name), Blocks: parseBlocks(text)}); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func parseBlocks(text string) []block {
	var blocks []block
	var bullets []string
	flush := func() {
		if len(bullets) > 0 {
			blocks = append(blocks, block{Kind: "bullets", Items: bullets})
			bullets = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		if item, ok := bulletItem(line); ok {
			bullets = append(bullets, item)
			continue
		}
		flush()
		switch {
		case len(blocks) == 0:
			blocks = append(blocks, block{Kind: "title", Text: line})
		case isHeading(line):
			blocks = append(blocks, block{Kind: "heading", Text: strings.TrimSuffix(line, ":")})
		default:
			blocks = append(blocks, block{Kind: "para", Text: line})
		}
	}
	flush()
	return blocks
}

func bulletItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}

func isHeading(line string) bool {
	if len(line) > 40 {
		return false
	}
	return strings.ToUpper(line) == line && strings.ToLower(line) != line
}

// SaveToFile is a helper function to directly save generated PDF to disk
func SaveToFile(pdfBytes []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}

	return os.WriteFile(outputPath, pdfBytes, 0644)
}
