package session

import (
	"context"
	"errors"
	"testing"

	"go-easyapply-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func collect(t *testing.T, it *Iterator, ctx context.Context, keyword string) ([]string, []error) {
	t.Helper()
	var ids []string
	var errs []error
	for p, err := range it.Postings(ctx, keyword) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids, errs
}

func TestIterator_CapsAndKeepsOrder(t *testing.T) {
	search := &fakeSearch{results: map[string][]models.JobPosting{
		"golang": {posting("A"), posting("B"), posting("C"), posting("D"), posting("E")},
	}}
	it := NewIterator(search, 0, 3, zap.NewNop())

	ids, errs := collect(t, it, context.Background(), "golang")

	assert.Empty(t, errs)
	assert.Equal(t, []string{"A", "B", "C"}, ids)
	assert.Equal(t, []string{"A", "B", "C"}, search.opened)
}

func TestIterator_DefaultLimit(t *testing.T) {
	search := &fakeSearch{results: map[string][]models.JobPosting{
		"golang": {posting("A"), posting("B"), posting("C"), posting("D")},
	}}
	ids, _ := collect(t, NewIterator(search, 0, 0, zap.NewNop()), context.Background(), "golang")
	assert.Len(t, ids, DefaultPerKeywordLimit)
}

func TestIterator_IsLazy(t *testing.T) {
	search := &fakeSearch{results: map[string][]models.JobPosting{
		"golang": {posting("A"), posting("B"), posting("C")},
	}}
	it := NewIterator(search, 0, 3, zap.NewNop())

	for p, err := range it.Postings(context.Background(), "golang") {
		require.NoError(t, err)
		assert.Equal(t, "A", p.ID)
		break
	}
	assert.Equal(t, []string{"A"}, search.opened)
}

func TestIterator_Failures(t *testing.T) {
	t.Run("Search failure ends the keyword", func(t *testing.T) {
		search := &fakeSearch{searchErr: map[string]error{"golang": errors.New("blocked")}}
		ids, errs := collect(t, NewIterator(search, 0, 3, zap.NewNop()), context.Background(), "golang")

		assert.Empty(t, ids)
		require.Len(t, errs, 1)
		assert.ErrorContains(t, errs[0], "blocked")
	})

	t.Run("Open failure skips one card", func(t *testing.T) {
		search := &fakeSearch{
			results: map[string][]models.JobPosting{"golang": {posting("A"), posting("B")}},
			openErr: map[string]error{"A": errors.New("timeout")},
		}
		ids, errs := collect(t, NewIterator(search, 0, 3, zap.NewNop()), context.Background(), "golang")

		assert.Equal(t, []string{"B"}, ids)
		require.Len(t, errs, 1)
		assert.ErrorContains(t, errs[0], "open posting A")
	})
}

func TestIterator_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	search := &fakeSearch{
		results: map[string][]models.JobPosting{"golang": {posting("A"), posting("B")}},
		onOpen:  func(string) { cancel() },
	}

	ids, _ := collect(t, NewIterator(search, 0, 3, zap.NewNop()), ctx, "golang")

	assert.Equal(t, []string{"A"}, ids)
	assert.Equal(t, []string{"A"}, search.opened)
}
