package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/autodev/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func seedRun(t *testing.T, s *SQLiteStore, kind models.RunKind, outcome models.RunOutcome, started time.Time) *models.PipelineRun {
	t.Helper()
	run := &models.PipelineRun{
		Kind:       kind,
		Repo:       "acme/widgets",
		PRNumber:   101,
		Branch:     "feature/backend/42-x",
		Outcome:    outcome,
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
	}
	require.NoError(t, s.CreateRun(context.Background(), run))
	return run
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestCreateRun_AssignsULID(t *testing.T) {
	s := newTestStore(t)
	run := seedRun(t, s, models.RunKindGenerate, models.RunOutcomeSuccess, time.Now().UTC())
	assert.Len(t, run.ID, 26)
}

func TestGetRun_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	created := &models.PipelineRun{
		Kind:       models.RunKindReview,
		Repo:       "acme/widgets",
		PRNumber:   101,
		Branch:     "feature/backend/42-x",
		Outcome:    models.RunOutcomeBlocked,
		Detail:     "REQUEST_CHANGES",
		StartedAt:  now,
		FinishedAt: now.Add(15 * time.Second),
	}
	require.NoError(t, s.CreateRun(ctx, created))

	got, err := s.GetRun(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunKindReview, got.Kind)
	assert.Equal(t, models.RunOutcomeBlocked, got.Outcome)
	assert.Equal(t, "acme/widgets", got.Repo)
	assert.Equal(t, 101, got.PRNumber)
	assert.Equal(t, "REQUEST_CHANGES", got.Detail)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.ErrorContains(t, err, "not found")
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC().Add(-time.Hour)

	old := seedRun(t, s, models.RunKindGenerate, models.RunOutcomeSuccess, base)
	newer := seedRun(t, s, models.RunKindReview, models.RunOutcomeSuccess, base.Add(10*time.Minute))

	runs, err := s.ListRuns(context.Background(), RunListFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, old.ID, runs[1].ID)
}

func TestListRuns_FilterByKindAndOutcome(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	seedRun(t, s, models.RunKindGenerate, models.RunOutcomeSuccess, now)
	seedRun(t, s, models.RunKindFix, models.RunOutcomeCapped, now.Add(time.Minute))
	seedRun(t, s, models.RunKindFix, models.RunOutcomeSuccess, now.Add(2*time.Minute))

	runs, err := s.ListRuns(context.Background(), RunListFilter{Kind: models.RunKindFix})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = s.ListRuns(context.Background(), RunListFilter{
		Kind:    models.RunKindFix,
		Outcome: models.RunOutcomeCapped,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunOutcomeCapped, runs[0].Outcome)
}

func TestListRuns_Limit(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		seedRun(t, s, models.RunKindGenerate, models.RunOutcomeSuccess, now.Add(time.Duration(i)*time.Minute))
	}

	runs, err := s.ListRuns(context.Background(), RunListFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestCountFixRuns(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	seedRun(t, s, models.RunKindFix, models.RunOutcomeSuccess, now)
	seedRun(t, s, models.RunKindFix, models.RunOutcomeSuccess, now.Add(time.Minute))
	seedRun(t, s, models.RunKindReview, models.RunOutcomeSuccess, now.Add(2*time.Minute))

	count, err := s.CountFixRuns(context.Background(), "acme/widgets", 101)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.CountFixRuns(context.Background(), "acme/widgets", 999)
	require.NoError(t, err)
	assert.Zero(t, count)
}
