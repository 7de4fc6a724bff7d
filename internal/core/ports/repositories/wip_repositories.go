package repositories

import (
	"context"
	"time"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// WIPReader defines read operations for WIP report snapshots.
type WIPReader interface {
	// FindLatestReportByProject retrieves the most recent snapshot for a
	// project, nil when none exists.
	FindLatestReportByProject(ctx context.Context, projectID string) (*domain.WIPReport, error)

	// ListReportsByProject retrieves all snapshots for a project, newest first.
	ListReportsByProject(ctx context.Context, projectID string) ([]domain.WIPReport, error)

	// ListReportsByDate retrieves the snapshots of all projects taken on the
	// given report date.
	ListReportsByDate(ctx context.Context, reportDate time.Time) ([]domain.WIPReport, error)
}

// WIPWriter defines write operations for WIP report snapshots.
type WIPWriter interface {
	// SaveReport inserts a computed snapshot.
	SaveReport(ctx context.Context, report *domain.WIPReport) error
}

// WIPRepositoryFacade combines all WIP repository interfaces.
type WIPRepositoryFacade interface {
	WIPReader
	WIPWriter
}
