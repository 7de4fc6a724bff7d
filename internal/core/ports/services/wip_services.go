package services

import (
	"context"
	"time"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// WIPReaderSvc defines read operations for work-in-progress reports
type WIPReaderSvc interface {
	// GetLatestReport retrieves the most recent WIP report for a project.
	GetLatestReport(ctx context.Context, projectID string) (*domain.WIPReport, error)

	// ListReportsByProject retrieves the WIP report history for a project.
	ListReportsByProject(ctx context.Context, projectID string) ([]domain.WIPReport, error)
}

// WIPWriterSvc defines computation and persistence of WIP reports
type WIPWriterSvc interface {
	// ComputeReport derives a WIP snapshot for a project from its baseline
	// budget, job cost records and billings, and persists it.
	ComputeReport(ctx context.Context, projectID string, reportDate time.Time, userID string) (*domain.WIPReport, error)

	// ComputeSummary rolls up the latest reports of the given projects.
	ComputeSummary(ctx context.Context, req dto.ComputeWIPSummaryRequest, reportDate time.Time) (*domain.WIPSummary, error)
}

// WIPSvcFacade combines all WIP-related service interfaces
type WIPSvcFacade interface {
	WIPReaderSvc
	WIPWriterSvc
}
