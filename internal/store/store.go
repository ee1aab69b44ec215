package store

import (
	"context"

	"github.com/joescharf/autodev/internal/models"
)

// RunListFilter specifies filters for listing pipeline runs.
type RunListFilter struct {
	Kind    models.RunKind
	Outcome models.RunOutcome
	Limit   int
}

// Store defines the persistence interface for the run ledger.
type Store interface {
	CreateRun(ctx context.Context, run *models.PipelineRun) error
	GetRun(ctx context.Context, id string) (*models.PipelineRun, error)
	ListRuns(ctx context.Context, filter RunListFilter) ([]*models.PipelineRun, error)
	CountFixRuns(ctx context.Context, repo string, prNumber int) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
