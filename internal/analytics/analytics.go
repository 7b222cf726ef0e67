// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package analytics aggregates per-user usage counters from the other domains
into a single dashboard payload.
*/
package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mindvault/mindvault/internal/vault/file"
)

// Stats is the dashboard aggregation for one user.
type Stats struct {
	TotalMemories int64            `json:"totalMemories"`
	TotalTasks    int64            `json:"totalTasks"`
	TotalChats    int64            `json:"totalChats"`
	TotalFiles    int64            `json:"totalFiles"`
	StorageUsed   int64            `json:"storageUsed"`
	StorageLimit  int64            `json:"storageLimit"`
	MemoryByType  map[string]int64 `json:"memoryByType"`
	TaskByStatus  map[string]int64 `json:"taskByStatus"`
}

// # Source Interfaces

// MemorySource supplies memory counters. Implemented by the memory service.
type MemorySource interface {
	TypeBreakdown(context context.Context, userID string) (map[string]int64, error)
}

// TaskSource supplies task counters. Implemented by the task service.
type TaskSource interface {
	StatusBreakdown(context context.Context, userID string) (map[string]int64, error)
}

// ChatSource supplies chat counters. Implemented by the chat service.
type ChatSource interface {
	Count(context context.Context, userID string) (int64, error)
}

// FileSource supplies storage counters. Implemented by the file service.
type FileSource interface {
	StorageUsage(context context.Context, userID string) (*file.Usage, error)
}

// Service aggregates counters from the domain services.
type Service struct {
	memories MemorySource
	tasks    TaskSource
	chats    ChatSource
	files    FileSource
	logger   *slog.Logger
}

// NewService constructs an analytics [Service].
func NewService(memories MemorySource, tasks TaskSource, chats ChatSource, files FileSource, logger *slog.Logger) *Service {
	return &Service{
		memories: memories,
		tasks:    tasks,
		chats:    chats,
		files:    files,
		logger:   logger,
	}
}

/*
Stats aggregates the user's usage counters.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Stats: Dashboard aggregation
  - error: Any source failure
*/
func (service *Service) Stats(context context.Context, userID string) (*Stats, error) {
	memoryByType, err := service.memories.TypeBreakdown(context, userID)
	if err != nil {
		return nil, fmt.Errorf("analytics_memories_failed: %w", err)
	}

	taskByStatus, err := service.tasks.StatusBreakdown(context, userID)
	if err != nil {
		return nil, fmt.Errorf("analytics_tasks_failed: %w", err)
	}

	totalChats, err := service.chats.Count(context, userID)
	if err != nil {
		return nil, fmt.Errorf("analytics_chats_failed: %w", err)
	}

	usage, err := service.files.StorageUsage(context, userID)
	if err != nil {
		return nil, fmt.Errorf("analytics_files_failed: %w", err)
	}

	var totalMemories, totalTasks int64
	for _, count := range memoryByType {
		totalMemories += count
	}
	for _, count := range taskByStatus {
		totalTasks += count
	}

	return &Stats{
		TotalMemories: totalMemories,
		TotalTasks:    totalTasks,
		TotalChats:    totalChats,
		TotalFiles:    usage.TotalFiles,
		StorageUsed:   usage.TotalBytes,
		StorageLimit:  usage.LimitBytes,
		MemoryByType:  memoryByType,
		TaskByStatus:  taskByStatus,
	}, nil
}
