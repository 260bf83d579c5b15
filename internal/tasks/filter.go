// Package tasks holds task validation and the complexity filter.
package tasks

import "github.com/brainpace/brainpace/internal/models"

// Filter returns the open tasks whose complexity is at most maxComplexity,
// in their original order. The input slice is not modified.
func Filter(tasks []models.Task, maxComplexity int) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.IsCompleted || task.ComplexityLevel > maxComplexity {
			continue
		}
		out = append(out, task)
	}
	return out
}
