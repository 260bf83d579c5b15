package breakdown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainpace/brainpace/internal/adaptation"
	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/quota"
	"github.com/brainpace/brainpace/internal/ratelimit"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usage"
	"github.com/brainpace/brainpace/internal/usererr"
	log "github.com/sirupsen/logrus"
)

// Generator produces steps for a task.
type Generator interface {
	Breakdown(ctx context.Context, req Request) Result
}

// Store is the storage the service needs.
type Store interface {
	store.TaskStore
	store.BrainStateStore
}

// UsageRecorder persists one record per model call.
type UsageRecorder interface {
	Record(ctx context.Context, entry usage.Entry)
}

// Outcome is the result of a successful breakdown request.
type Outcome struct {
	Task     *models.Task
	Quota    quota.Decision
	Replayed bool
}

// Service runs the breakdown flow: ownership, quota, rate limit, model call,
// then persisting steps and consuming one request.
type Service struct {
	store     Store
	gate      *quota.Gate
	limiter   *ratelimit.Manager
	generator Generator
	usage     UsageRecorder
	now       func() time.Time
}

// NewService constructs a breakdown service.
func NewService(st Store, gate *quota.Gate, limiter *ratelimit.Manager, generator Generator) *Service {
	return &Service{store: st, gate: gate, limiter: limiter, generator: generator, now: time.Now}
}

// WithUsage makes the service record every model call through r.
func (s *Service) WithUsage(r UsageRecorder) *Service {
	if s != nil {
		s.usage = r
	}
	return s
}

// Breakdown splits the task into steps for userID. A retried idempotencyKey
// whose request already succeeded for the same task returns the stored steps
// without calling the model or consuming quota again. A key already used for
// a different task is rejected before any quota check or model call.
func (s *Service) Breakdown(ctx context.Context, userID, taskID uint64, idempotencyKey string) (*Outcome, error) {
	if s == nil || s.store == nil || s.gate == nil || s.generator == nil {
		return nil, errors.New("breakdown: service not initialized")
	}
	if len(idempotencyKey) > quota.MaxIdempotencyKeyLength {
		return nil, usererr.Validation("idempotency_key", "That request id is too long. Please retry without it.")
	}

	task, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, usererr.New(usererr.KindNotFound, err)
		}
		return nil, fmt.Errorf("breakdown: load task: %w", err)
	}

	entry, err := s.gate.LookupKey(ctx, userID, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		if entry.TaskID == nil || *entry.TaskID != taskID {
			return nil, usererr.Validation("idempotency_key", "That request id was already used for another task. Please retry with a new one.")
		}
		if len(task.AIBreakdown) > 0 {
			decision, _, errCheck := s.gate.Check(ctx, userID)
			if errCheck != nil {
				return nil, errCheck
			}
			return &Outcome{Task: task, Quota: decision, Replayed: true}, nil
		}
		// The stored steps are gone, so this call is charged as a new request.
		idempotencyKey = ""
	}

	decision, row, err := s.gate.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, usererr.New(usererr.KindQuotaExceeded, fmt.Errorf("user %d used %d of %d", userID, row.RequestsUsed, row.RequestsLimit))
	}

	limited, err := s.limiter.AllowUser(ctx, userID, row.Tier, ratelimit.ActionBreakdown)
	if err != nil {
		return nil, fmt.Errorf("breakdown: rate limit: %w", err)
	}
	if !limited.Allowed {
		return nil, usererr.New(usererr.KindRateLimited, fmt.Errorf("user %d rate limited until %s", userID, limited.Reset.Format(time.RFC3339)))
	}

	now := s.clock()
	state, err := s.store.TodayBrainState(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("breakdown: load brain state: %w", err)
	}

	result := s.generator.Breakdown(ctx, Request{
		Title:            task.Title,
		Description:      task.Description,
		ComplexityLevel:  task.ComplexityLevel,
		EstimatedMinutes: task.EstimatedMinutes,
		State:            state,
		Adaptation:       adaptation.FromState(state),
	})
	s.recordUsage(ctx, userID, taskID, result)
	if !result.OK() {
		kind := result.Err
		if kind == "" {
			kind = KindMalformed
		}
		return nil, usererr.New(usererr.KindNetwork, fmt.Errorf("breakdown: %s", kind))
	}

	steps := make([]models.BreakdownStep, 0, len(result.Steps))
	for _, text := range result.Steps {
		steps = append(steps, models.BreakdownStep{Text: text})
	}
	updated, err := s.store.SetTaskBreakdown(ctx, userID, taskID, steps)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, usererr.New(usererr.KindNotFound, err)
		}
		return nil, fmt.Errorf("breakdown: store steps: %w", err)
	}

	consumed, err := s.gate.Consume(ctx, userID, idempotencyKey, &taskID)
	if err != nil {
		// Steps are already saved, so the request still succeeds.
		log.WithError(err).WithField("user_id", userID).Warn("breakdown: consume quota failed")
		return &Outcome{Task: updated, Quota: decision}, nil
	}
	return &Outcome{
		Task:     updated,
		Quota:    quota.Check(quota.Usage{Used: consumed.Quota.RequestsUsed, Limit: consumed.Quota.RequestsLimit}),
		Replayed: consumed.Duplicate,
	}, nil
}

func (s *Service) recordUsage(ctx context.Context, userID, taskID uint64, result Result) {
	if s.usage == nil {
		return
	}
	outcome := usage.OutcomeOK
	if !result.OK() {
		outcome = string(result.Err)
		if outcome == "" {
			outcome = string(KindMalformed)
		}
	}
	s.usage.Record(ctx, usage.Entry{
		UserID:           userID,
		TaskID:           &taskID,
		Model:            result.Usage.Model,
		Outcome:          outcome,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		Latency:          result.Usage.Latency,
	})
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}
