package store

import (
	"context"
	"errors"
	"time"

	"github.com/brainpace/brainpace/internal/db"
	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/tasks"
	"gorm.io/gorm"
)

// Brain state history bounds.
const (
	DefaultBrainStateHistory = 30
	MaxBrainStateHistory     = 365
)

// CreateBrainState records today's check-in. A second check-in on the same
// UTC day returns ErrAlreadyExists.
func (s *GormStore) CreateBrainState(ctx context.Context, userID uint64, in tasks.BrainStateInput, now time.Time) (*models.BrainState, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now = now.UTC()
	state := models.BrainState{
		UserID:    userID,
		Day:       now.Format(models.DayLayout),
		Energy:    in.Energy,
		Focus:     in.Focus,
		Mood:      in.Mood,
		Notes:     in.Notes,
		CreatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&state).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, wrapBrainStateErr("create", 0, ErrAlreadyExists)
		}
		return nil, wrapBrainStateErr("create", 0, err)
	}
	return &state, nil
}

// TodayBrainState returns the check-in for now's UTC day, or nil when there is none.
func (s *GormStore) TodayBrainState(ctx context.Context, userID uint64, now time.Time) (*models.BrainState, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var state models.BrainState
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, now.UTC().Format(models.DayLayout)).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapBrainStateErr("today", 0, err)
	}
	return &state, nil
}

// ListBrainStates returns the most recent check-ins, newest first.
func (s *GormStore) ListBrainStates(ctx context.Context, userID uint64, limit int) ([]models.BrainState, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultBrainStateHistory
	}
	if limit > MaxBrainStateHistory {
		limit = MaxBrainStateHistory
	}
	var states []models.BrainState
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day DESC, id DESC").
		Limit(limit).
		Find(&states).Error; err != nil {
		return nil, wrapBrainStateErr("list", 0, err)
	}
	return states, nil
}
