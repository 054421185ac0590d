package database

import (
	"context"
	"os"
	"testing"
	"time"

	"go-easyapply-automation/internal/ledger"
	"go-easyapply-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ledger.Sink = (*Repository)(nil)

// TestRepository_RoundTrip needs a disposable database in TEST_DATABASE_URL.
func TestRepository_RoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	repo, err := ConnectDB(ctx, dsn)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.EnsureSchema(ctx))

	jobID := "test-" + time.Now().Format("150405.000000")
	rec := models.ApplicationRecord{JobID: jobID, Company: "Acme", Outcome: models.OutcomeApplied, Timestamp: time.Now().UTC()}
	require.NoError(t, repo.Publish(ctx, rec))

	dup := rec
	dup.Outcome = models.OutcomeFailed
	require.NoError(t, repo.SaveApplicationRecord(ctx, dup))

	records, err := repo.ListApplications(ctx, 50)
	require.NoError(t, err)
	var found *models.ApplicationRecord
	for i := range records {
		if records[i].JobID == jobID {
			found = &records[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, models.OutcomeApplied, found.Outcome)

	counts, err := repo.CountByOutcome(ctx, rec.Timestamp.Add(-time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts[models.OutcomeApplied], 1)

	_, err = repo.db.Exec(ctx, "DELETE FROM application_records WHERE job_id = $1", jobID)
	require.NoError(t, err)
}
