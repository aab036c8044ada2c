package usecase

import (
	"context"

	"github.com/google/uuid"
)

// ImportPreview reports what an import run would do without writing. It
// does not take the run lock.
func (s *SpondSyncService) ImportPreview(ctx context.Context, window *SyncWindow) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondSyncService.ImportPreview")
	defer span.End()

	report, client, err := s.startPreview(ctx, SyncDirectionImport, window)
	if err != nil {
		return SyncReport{}, err
	}

	plan := s.pipelines.planImport(ctx, client, report.Window)
	plan.mergeInto(report)
	for _, item := range plan.items {
		report.addItem(item.outcome)
	}

	report.finish(s.pipelines.clock.Now().UTC())
	return *report, nil
}

// ExportPreview reports what an export run would do, including diagnostics,
// without creating anything in Spond.
func (s *SpondSyncService) ExportPreview(ctx context.Context, window *SyncWindow) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondSyncService.ExportPreview")
	defer span.End()

	report, client, err := s.startPreview(ctx, SyncDirectionExport, window)
	if err != nil {
		return SyncReport{}, err
	}

	plan := s.pipelines.planExport(ctx, client, report.Window)
	diagnostics := plan.diagnostics
	report.ExportDiagnostics = &diagnostics
	plan.mergeInto(report)
	for _, item := range plan.items {
		report.addItem(item.outcome)
	}

	report.finish(s.pipelines.clock.Now().UTC())
	return *report, nil
}

func (s *SpondSyncService) startPreview(ctx context.Context, direction SyncDirection, override *SyncWindow) (*SyncReport, RemoteClient, error) {
	window, err := s.resolveWindow(override)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.pipelines.remote.Client(ctx)
	if err != nil {
		return nil, nil, err
	}

	report := newSyncReport(uuid.NewString(), direction, window, s.pipelines.clock.Now().UTC())
	report.DryRun = true
	return report, client, nil
}
