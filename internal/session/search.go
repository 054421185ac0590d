package session

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go-easyapply-automation/internal/models"

	"go.uber.org/zap"
)

// DefaultPerKeywordLimit is how many result cards are opened per keyword.
const DefaultPerKeywordLimit = 3

// SearchProvider lists postings for a keyword and opens individual cards.
type SearchProvider interface {
	Search(ctx context.Context, keyword string, freshness time.Duration) ([]models.PostingRef, error)
	Open(ctx context.Context, ref models.PostingRef) (models.JobPosting, error)
}

// Iterator lazily turns a keyword into opened postings.
type Iterator struct {
	provider  SearchProvider
	freshness time.Duration
	limit     int
	logger    *zap.Logger
}

func NewIterator(provider SearchProvider, freshness time.Duration, limit int, logger *zap.Logger) *Iterator {
	if limit <= 0 {
		limit = DefaultPerKeywordLimit
	}
	return &Iterator{
		provider:  provider,
		freshness: freshness,
		limit:     limit,
		logger:    logger.Named("search"),
	}
}

// Postings yields at most limit postings for keyword in provider order.
// A failed search yields a single error and ends the sequence; a card that
// fails to open yields an error for that card and iteration continues.
// Nothing is opened until the consumer asks for it.
func (it *Iterator) Postings(ctx context.Context, keyword string) iter.Seq2[models.JobPosting, error] {
	return func(yield func(models.JobPosting, error) bool) {
		refs, err := it.provider.Search(ctx, keyword, it.freshness)
		if err != nil {
			yield(models.JobPosting{}, fmt.Errorf("search %q: %w", keyword, err))
			return
		}
		if len(refs) > it.limit {
			refs = refs[:it.limit]
		}
		it.logger.Info("search results", zap.String("keyword", keyword), zap.Int("cards", len(refs)))

		for _, ref := range refs {
			if ctx.Err() != nil {
				return
			}
			posting, err := it.provider.Open(ctx, ref)
			if err != nil {
				err = fmt.Errorf("open posting %s: %w", ref.ID, err)
			}
			if !yield(posting, err) {
				return
			}
		}
	}
}
