package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseBlocks(t *testing.T) {
	text := `Jane Doe
SUMMARY
Backend engineer focused on Go.

EXPERIENCE:
- Built payment APIs
- Ran Postgres in production
Acme Corp, 2021-2024`

	want := []block{
		{Kind: "title", Text: "Jane Doe"},
		{Kind: "heading", Text: "SUMMARY"},
		{Kind: "para", Text: "Backend engineer focused on Go."},
		{Kind: "heading", Text: "EXPERIENCE"},
		{Kind: "bullets", Items: []string{"Built payment APIs", "Ran Postgres in production"}},
		{Kind: "para", Text: "Acme Corp, 2021-2024"},
	}

	if diff := cmp.Diff(want, parseBlocks(text)); diff != "" {
		t.Errorf("parseBlocks() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderHTML_Escapes(t *testing.T) {
	html, err := RenderHTML("Acme/resume_Acme_1", "Jane <script>alert(1)</script>\n- C++ & Go")
	require.NoError(t, err)

	assert.Contains(t, html, "<title>resume_Acme_1</title>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "<li>C&#43;&#43; &amp; Go</li>")
}

func TestGenerator_PathFor(t *testing.T) {
	g := NewGenerator(nil, "Applications", zap.NewNop())

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "Acme/resume_Acme_42", want: filepath.Join("Applications", "Acme", "resume_Acme_42.pdf")},
		{name: "../escape", wantErr: true},
		{name: "/etc/passwd", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.pathFor(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerator_Render_WithoutBrowser(t *testing.T) {
	g := NewGenerator(nil, t.TempDir(), zap.NewNop())
	_, err := g.Render(context.Background(), "Acme/resume_Acme_42", "Jane Doe")
	assert.Error(t, err)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Acme", "resume.pdf")
	require.NoError(t, SaveToFile([]byte("%PDF-1.4"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}
