package store

import (
	"context"
	"errors"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/tasks"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTask inserts a validated task for userID.
func (s *GormStore) CreateTask(ctx context.Context, userID uint64, in tasks.Input) (*models.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := s.clock()
	task := models.Task{
		UserID:           userID,
		Title:            in.Title,
		Description:      in.Description,
		ComplexityLevel:  in.ComplexityLevel,
		EstimatedMinutes: in.EstimatedMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, wrapTaskErr("create", 0, err)
	}
	return &task, nil
}

// GetTask loads one task. Tasks owned by someone else are reported as ErrNotFound.
func (s *GormStore) GetTask(ctx context.Context, userID, taskID uint64) (*models.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	task, err := findTask(ctx, s.db, userID, taskID)
	if err != nil {
		return nil, wrapTaskErr("get", taskID, err)
	}
	return task, nil
}

// ListTasks returns all of the user's tasks, oldest first.
func (s *GormStore) ListTasks(ctx context.Context, userID uint64) ([]models.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var rows []models.Task
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, wrapTaskErr("list", 0, err)
	}
	return rows, nil
}

// UpdateTask applies a validated patch.
func (s *GormStore) UpdateTask(ctx context.Context, userID, taskID uint64, patch tasks.Patch) (*models.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	updates := map[string]any{"updated_at": s.clock()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ComplexityLevel != nil {
		updates["complexity_level"] = *patch.ComplexityLevel
	}
	switch {
	case patch.EstimatedMinutes != nil:
		updates["estimated_minutes"] = *patch.EstimatedMinutes
	case patch.ClearEstimate:
		updates["estimated_minutes"] = nil
	}
	task, err := s.updateTask(ctx, userID, taskID, updates)
	if err != nil {
		return nil, wrapTaskErr("update", taskID, err)
	}
	return task, nil
}

// CompleteTask marks the task done. Completing a finished task keeps its original timestamp.
func (s *GormStore) CompleteTask(ctx context.Context, userID, taskID uint64) (*models.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var task *models.Task
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, errFind := findTaskForUpdate(ctx, tx, userID, taskID)
		if errFind != nil {
			return errFind
		}
		if current.IsCompleted {
			task = current
			return nil
		}
		now := s.clock()
		if errUpdate := tx.Model(&models.Task{}).
			Where("id = ? AND user_id = ?", taskID, userID).
			Updates(map[string]any{"is_completed": true, "completed_at": now, "updated_at": now}).Error; errUpdate != nil {
			return errUpdate
		}
		current.IsCompleted = true
		current.CompletedAt = &now
		current.UpdatedAt = now
		task = current
		return nil
	})
	if errTx != nil {
		return nil, wrapTaskErr("complete", taskID, errTx)
	}
	return task, nil
}

// SetTaskBreakdown replaces the AI-suggested steps of a task.
func (s *GormStore) SetTaskBreakdown(ctx context.Context, userID, taskID uint64, steps []models.BreakdownStep) (*models.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	task := models.Task{AIBreakdown: steps}
	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(map[string]any{"ai_breakdown": task.AIBreakdown, "updated_at": s.clock()})
	if res.Error != nil {
		return nil, wrapTaskErr("breakdown", taskID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, wrapTaskErr("breakdown", taskID, ErrNotFound)
	}
	return s.GetTask(ctx, userID, taskID)
}

// DeleteTask removes a task.
func (s *GormStore) DeleteTask(ctx context.Context, userID, taskID uint64) error {
	if err := s.ready(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).Delete(&models.Task{})
	if res.Error != nil {
		return wrapTaskErr("delete", taskID, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapTaskErr("delete", taskID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) updateTask(ctx context.Context, userID, taskID uint64, updates map[string]any) (*models.Task, error) {
	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return findTask(ctx, s.db, userID, taskID)
}

func findTask(ctx context.Context, tx *gorm.DB, userID, taskID uint64) (*models.Task, error) {
	var task models.Task
	err := tx.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func findTaskForUpdate(ctx context.Context, tx *gorm.DB, userID, taskID uint64) (*models.Task, error) {
	return findTask(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID, taskID)
}
