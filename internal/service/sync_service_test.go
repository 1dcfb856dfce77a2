package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
)

type stubLiveImporter struct {
	requests []dto.ImportRequest
	err      error
}

func (s *stubLiveImporter) ImportLive(_ context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &models.ImportSummary{Inserted: 2}, nil
}

type stubShareCleaner struct {
	calls int
}

func (s *stubShareCleaner) CleanupShares(context.Context) (int, error) {
	s.calls++
	return 3, nil
}

func TestSyncRunCommitsLiveImport(t *testing.T) {
	importer := &stubLiveImporter{}
	svc := NewSyncService(importer, nil, SyncConfig{Campus: "V", Subject: "CPSC"})

	require.NoError(t, svc.Run(context.Background()))
	require.Len(t, importer.requests, 1)
	assert.False(t, importer.requests[0].DryRun)
	assert.Equal(t, "CPSC", importer.requests[0].Subject)

	task := svc.Task()
	assert.Equal(t, SyncTaskName, task.Name)
	assert.Equal(t, 6*time.Hour, task.Interval)
	assert.True(t, task.RunOnStart)
}

func TestSyncRunPropagatesFailure(t *testing.T) {
	importer := &stubLiveImporter{err: errors.New("fetch failed")}
	svc := NewSyncService(importer, nil, SyncConfig{Interval: time.Minute})

	assert.EqualError(t, svc.Run(context.Background()), "fetch failed")
	assert.Len(t, importer.requests, 1)
}

func TestCleanupTask(t *testing.T) {
	cleaner := &stubShareCleaner{}
	task := CleanupTask(cleaner, 0)

	assert.Equal(t, CleanupTaskName, task.Name)
	assert.Equal(t, time.Hour, task.Interval)
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, 1, cleaner.calls)
}
