package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brainpace/brainpace/internal/adaptation"
	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/tasks"
	"github.com/brainpace/brainpace/internal/usererr"
	"github.com/gin-gonic/gin"
)

// TaskStore is the storage the task handler needs.
type TaskStore interface {
	store.TaskStore
	store.BrainStateStore
}

// TaskHandler serves task CRUD and filtered lists.
type TaskHandler struct {
	store TaskStore
	now   func() time.Time
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(st TaskStore) *TaskHandler {
	return &TaskHandler{store: st, now: time.Now}
}

// createTaskRequest defines the request body for creating tasks.
type createTaskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	ComplexityLevel  *int   `json:"complexity_level"`
	EstimatedMinutes *int   `json:"estimated_minutes"`
}

// updateTaskRequest defines the request body for partial updates.
type updateTaskRequest struct {
	Title                 *string `json:"title"`
	Description           *string `json:"description"`
	ComplexityLevel       *int    `json:"complexity_level"`
	EstimatedMinutes      *int    `json:"estimated_minutes"`
	ClearEstimatedMinutes bool    `json:"clear_estimated_minutes"`
}

// Create validates and stores a new task.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body createTaskRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, invalidBody(errBind))
		return
	}
	in := tasks.Input{
		Title:            body.Title,
		Description:      body.Description,
		EstimatedMinutes: body.EstimatedMinutes,
	}.Normalize()
	if body.ComplexityLevel != nil {
		in.ComplexityLevel = *body.ComplexityLevel
	}
	if errValidate := tasks.ValidateTask(in); errValidate != nil {
		respondError(c, errValidate)
		return
	}

	task, err := h.store.CreateTask(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": taskJSON(task)})
}

// List returns the user's tasks, optionally filtered by complexity.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	adapted := strings.EqualFold(strings.TrimSpace(c.Query("adapted")), "true")
	maxRaw := strings.TrimSpace(c.Query("max_complexity"))
	maxComplexity := 0
	if maxRaw != "" {
		parsed, errParse := strconv.Atoi(maxRaw)
		if errParse != nil || parsed < models.MinComplexity || parsed > models.MaxComplexity {
			respondError(c, usererr.Validation("max_complexity", "Pick a complexity between 1 and 5."))
			return
		}
		maxComplexity = parsed
	}

	rows, err := h.store.ListTasks(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{}
	switch {
	case maxComplexity > 0:
		rows = tasks.Filter(rows, maxComplexity)
	case adapted:
		state, errState := h.store.TodayBrainState(ctx, userID, h.now())
		if errState != nil {
			respondError(c, errState)
			return
		}
		result := adaptation.FromState(state)
		rows = tasks.Filter(rows, result.MaxTaskComplexity)
		resp["adaptation"] = result
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, taskJSON(&rows[i]))
	}
	resp["tasks"] = out
	c.JSON(http.StatusOK, resp)
}

// Get returns one task.
func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.store.GetTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskJSON(task)})
}

// Update applies a validated partial update.
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body updateTaskRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, invalidBody(errBind))
		return
	}
	patch, errValidate := tasks.ValidatePatch(tasks.Patch{
		Title:            body.Title,
		Description:      body.Description,
		ComplexityLevel:  body.ComplexityLevel,
		EstimatedMinutes: body.EstimatedMinutes,
		ClearEstimate:    body.ClearEstimatedMinutes,
	})
	if errValidate != nil {
		respondError(c, errValidate)
		return
	}
	if patch.Empty() {
		respondError(c, usererr.Validation("body", "Nothing to change yet. Edit a field and save again."))
		return
	}

	task, err := h.store.UpdateTask(c.Request.Context(), userID, taskID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskJSON(task)})
}

// Complete marks a task done.
func (h *TaskHandler) Complete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.store.CompleteTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskJSON(task)})
}

// Delete removes a task.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func taskJSON(task *models.Task) gin.H {
	steps := make([]models.BreakdownStep, 0, len(task.AIBreakdown))
	steps = append(steps, task.AIBreakdown...)
	return gin.H{
		"id":                task.ID,
		"title":             task.Title,
		"description":       task.Description,
		"complexity_level":  task.ComplexityLevel,
		"estimated_minutes": task.EstimatedMinutes,
		"is_completed":      task.IsCompleted,
		"completed_at":      task.CompletedAt,
		"ai_breakdown":      steps,
		"created_at":        task.CreatedAt,
		"updated_at":        task.UpdatedAt,
	}
}
