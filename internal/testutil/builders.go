// Package testutil provides fixture builders shared by package tests.
package testutil

import (
	"time"

	"github.com/brainpace/brainpace/internal/models"
)

// TaskBuilder provides fluent API for creating test tasks.
type TaskBuilder struct {
	task models.Task
}

func NewTask() *TaskBuilder {
	return &TaskBuilder{
		task: models.Task{
			Title:           "Test Task",
			ComplexityLevel: 2,
			CreatedAt:       time.Now().UTC(),
		},
	}
}

func (b *TaskBuilder) WithID(id uint64) *TaskBuilder {
	b.task.ID = id
	return b
}

func (b *TaskBuilder) WithUser(userID uint64) *TaskBuilder {
	b.task.UserID = userID
	return b
}

func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.task.Title = title
	return b
}

func (b *TaskBuilder) WithComplexity(level int) *TaskBuilder {
	b.task.ComplexityLevel = level
	return b
}

func (b *TaskBuilder) WithEstimate(minutes int) *TaskBuilder {
	b.task.EstimatedMinutes = &minutes
	return b
}

func (b *TaskBuilder) Completed() *TaskBuilder {
	now := time.Now().UTC()
	b.task.IsCompleted = true
	b.task.CompletedAt = &now
	return b
}

func (b *TaskBuilder) Build() models.Task {
	return b.task
}

// BrainStateBuilder provides fluent API for creating test check-ins.
type BrainStateBuilder struct {
	state models.BrainState
}

func NewBrainState() *BrainStateBuilder {
	now := time.Now().UTC()
	return &BrainStateBuilder{
		state: models.BrainState{
			Day:       now.Format(models.DayLayout),
			Energy:    5,
			Focus:     5,
			Mood:      5,
			CreatedAt: now,
		},
	}
}

func (b *BrainStateBuilder) WithUser(userID uint64) *BrainStateBuilder {
	b.state.UserID = userID
	return b
}

func (b *BrainStateBuilder) WithLevels(energy, focus, mood int) *BrainStateBuilder {
	b.state.Energy = energy
	b.state.Focus = focus
	b.state.Mood = mood
	return b
}

func (b *BrainStateBuilder) OnDay(day time.Time) *BrainStateBuilder {
	b.state.Day = day.UTC().Format(models.DayLayout)
	return b
}

func (b *BrainStateBuilder) Build() models.BrainState {
	return b.state
}
