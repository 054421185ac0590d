package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScreenShotDebugger_FileName(t *testing.T) {
	dir := t.TempDir()
	s := NewScreenShotDebugger(filepath.Join(dir, "shots"), zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 10, 19, 9, 5, 7, 0, time.UTC) }

	require.DirExists(t, filepath.Join(dir, "shots"))
	assert.Equal(t, filepath.Join(dir, "shots", "wizard_stuck_4012_2026-10-19_09-05-07.png"), s.FileName("wizard stuck/4012"))
	assert.Equal(t, filepath.Join(dir, "shots", "page_2026-10-19_09-05-07.png"), s.FileName(""))
}
