package store

import (
	"context"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/tasks"
)

// UserStore defines user account operations.
type UserStore interface {
	EnsureUser(ctx context.Context, externalID, email string) (*models.User, error)
	GetUser(ctx context.Context, userID uint64) (*models.User, error)
	DeleteUser(ctx context.Context, userID uint64) error
}

// BrainStateStore defines daily check-in operations. All calls are scoped to userID.
type BrainStateStore interface {
	CreateBrainState(ctx context.Context, userID uint64, in tasks.BrainStateInput, now time.Time) (*models.BrainState, error)
	TodayBrainState(ctx context.Context, userID uint64, now time.Time) (*models.BrainState, error)
	ListBrainStates(ctx context.Context, userID uint64, limit int) ([]models.BrainState, error)
}

// TaskStore defines task operations. All calls are scoped to userID.
type TaskStore interface {
	CreateTask(ctx context.Context, userID uint64, in tasks.Input) (*models.Task, error)
	GetTask(ctx context.Context, userID, taskID uint64) (*models.Task, error)
	ListTasks(ctx context.Context, userID uint64) ([]models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID uint64, patch tasks.Patch) (*models.Task, error)
	CompleteTask(ctx context.Context, userID, taskID uint64) (*models.Task, error)
	SetTaskBreakdown(ctx context.Context, userID, taskID uint64, steps []models.BreakdownStep) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uint64) error
}

// Repository combines all repository interfaces.
type Repository interface {
	UserStore
	BrainStateStore
	TaskStore
}

var _ Repository = (*GormStore)(nil)
