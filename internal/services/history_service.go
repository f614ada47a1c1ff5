package services

import (
	"fmt"

	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/repository"
)

// HistoryService exposes the append-only task history.
type HistoryService struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(historyRepo repository.HistoryRepository) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// ListByTask returns a task's history records, oldest first
func (s *HistoryService) ListByTask(taskID uint64) ([]models.TaskHistory, error) {
	records, err := s.historyRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task history: %w", err)
	}
	return records, nil
}

// ListByUser returns a user's history records, oldest first
func (s *HistoryService) ListByUser(userID uint64) ([]models.TaskHistory, error) {
	records, err := s.historyRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user history: %w", err)
	}
	return records, nil
}
