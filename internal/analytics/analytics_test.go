// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package analytics_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/analytics"
	"github.com/mindvault/mindvault/internal/vault/file"
)

type fakeMemorySource struct{ counts map[string]int64 }

func (s fakeMemorySource) TypeBreakdown(context.Context, string) (map[string]int64, error) {
	return s.counts, nil
}

type fakeTaskSource struct{ counts map[string]int64 }

func (s fakeTaskSource) StatusBreakdown(context.Context, string) (map[string]int64, error) {
	return s.counts, nil
}

type fakeChatSource struct{ count int64 }

func (s fakeChatSource) Count(context.Context, string) (int64, error) {
	return s.count, nil
}

type fakeFileSource struct{ usage *file.Usage }

func (s fakeFileSource) StorageUsage(context.Context, string) (*file.Usage, error) {
	return s.usage, nil
}

type failingChatSource struct{}

func (failingChatSource) Count(context.Context, string) (int64, error) {
	return 0, assert.AnError
}

func TestAnalyticsService_Stats(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := analytics.NewService(
		fakeMemorySource{counts: map[string]int64{"note": 3, "bookmark": 1}},
		fakeTaskSource{counts: map[string]int64{"pending": 2, "completed": 5}},
		fakeChatSource{count: 4},
		fakeFileSource{usage: &file.Usage{TotalBytes: 2048, TotalFiles: 2, LimitBytes: 1 << 30}},
		logger,
	)

	stats, err := service.Stats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.TotalMemories)
	assert.EqualValues(t, 7, stats.TotalTasks)
	assert.EqualValues(t, 4, stats.TotalChats)
	assert.EqualValues(t, 2, stats.TotalFiles)
	assert.EqualValues(t, 2048, stats.StorageUsed)
	assert.EqualValues(t, 1<<30, stats.StorageLimit)
	assert.EqualValues(t, 3, stats.MemoryByType["note"])
	assert.EqualValues(t, 2, stats.TaskByStatus["pending"])
}

func TestAnalyticsService_Stats_SourceFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := analytics.NewService(
		fakeMemorySource{counts: map[string]int64{}},
		fakeTaskSource{counts: map[string]int64{}},
		failingChatSource{},
		fakeFileSource{usage: &file.Usage{}},
		logger,
	)

	_, err := service.Stats(context.Background(), "user-1")
	assert.Error(t, err)
}
