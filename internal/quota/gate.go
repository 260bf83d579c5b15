package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainpace/brainpace/internal/config"
	"github.com/brainpace/brainpace/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxIdempotencyKeyLength bounds caller-supplied idempotency keys.
const MaxIdempotencyKeyLength = 128

var (
	errNilGate            = errors.New("quota: nil gate")
	errInvalidTier        = errors.New("quota: invalid tier")
	ErrIdempotencyKeySize = errors.New("quota: idempotency key too long")
)

// Gate loads, checks and consumes per-user quota rows.
type Gate struct {
	db     *gorm.DB
	limits map[models.Tier]int
	now    func() time.Time
}

// ConsumeResult reports the outcome of Consume.
type ConsumeResult struct {
	Duplicate bool
	Quota     models.SubscriptionQuota
}

// NewGate constructs a gate using the tier limits from cfg.
func NewGate(db *gorm.DB, cfg config.QuotaConfig) *Gate {
	if db == nil {
		return nil
	}
	free := cfg.FreeLimit
	if free <= 0 {
		free = config.DefaultFreeLimit
	}
	premium := cfg.PremiumLimit
	if premium <= 0 {
		premium = config.DefaultPremiumLimit
	}
	return &Gate{
		db:     db,
		limits: map[models.Tier]int{models.TierFree: free, models.TierPremium: premium},
		now:    time.Now,
	}
}

// NextReset returns the first instant of the month after t, in UTC.
func NextReset(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func (g *Gate) clock() time.Time {
	if g.now == nil {
		return time.Now().UTC()
	}
	return g.now().UTC()
}

// Load returns the user's quota row, creating it with free-tier defaults on
// first access and resetting it when the period has rolled over.
func (g *Gate) Load(ctx context.Context, userID uint64) (*models.SubscriptionQuota, error) {
	if g == nil || g.db == nil {
		return nil, errNilGate
	}
	now := g.clock()
	row, err := g.loadOrCreate(ctx, g.db, userID, now)
	if err != nil {
		return nil, err
	}
	if row.ResetDate.After(now) {
		return row, nil
	}
	next := NextReset(now)
	res := g.db.WithContext(ctx).
		Model(&models.SubscriptionQuota{}).
		Where("id = ? AND reset_date <= ?", row.ID, now).
		Updates(map[string]any{"requests_used": 0, "reset_date": next, "updated_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("quota: reset user %d: %w", userID, res.Error)
	}
	row.RequestsUsed = 0
	row.ResetDate = next
	return row, nil
}

func (g *Gate) loadOrCreate(ctx context.Context, db *gorm.DB, userID uint64, now time.Time) (*models.SubscriptionQuota, error) {
	var row models.SubscriptionQuota
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("quota: load user %d: %w", userID, err)
	}

	row = models.SubscriptionQuota{
		UserID:        userID,
		Tier:          models.TierFree,
		RequestsUsed:  0,
		RequestsLimit: g.limits[models.TierFree],
		ResetDate:     NextReset(now),
	}
	if errCreate := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row).Error; errCreate != nil {
		return nil, fmt.Errorf("quota: create user %d: %w", userID, errCreate)
	}
	// A concurrent first access may have won the insert.
	var stored models.SubscriptionQuota
	if errReload := db.WithContext(ctx).Where("user_id = ?", userID).First(&stored).Error; errReload != nil {
		return nil, fmt.Errorf("quota: reload user %d: %w", userID, errReload)
	}
	return &stored, nil
}

// Check decides against the user's current period without writing. A user
// with no row gets free-tier defaults and a row past its reset date is
// reported as already rolled over. Neither is persisted until Load runs.
func (g *Gate) Check(ctx context.Context, userID uint64) (Decision, *models.SubscriptionQuota, error) {
	if g == nil || g.db == nil {
		return Decision{}, nil, errNilGate
	}
	now := g.clock()
	var row models.SubscriptionQuota
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.SubscriptionQuota{
			UserID:        userID,
			Tier:          models.TierFree,
			RequestsLimit: g.limits[models.TierFree],
			ResetDate:     NextReset(now),
		}
	case err != nil:
		return Decision{}, nil, fmt.Errorf("quota: load user %d: %w", userID, err)
	case !row.ResetDate.After(now):
		row.RequestsUsed = 0
		row.ResetDate = NextReset(now)
	}
	return Check(Usage{Used: row.RequestsUsed, Limit: row.RequestsLimit}), &row, nil
}

// Consume records one successful AI request. A non-empty key already
// consumed for the same user and task leaves the counter untouched and
// reports Duplicate. A key recorded against another task, or an empty key,
// always increments.
func (g *Gate) Consume(ctx context.Context, userID uint64, key string, taskID *uint64) (ConsumeResult, error) {
	if g == nil || g.db == nil {
		return ConsumeResult{}, errNilGate
	}
	if len(key) > MaxIdempotencyKeyLength {
		return ConsumeResult{}, ErrIdempotencyKeySize
	}
	if _, err := g.Load(ctx, userID); err != nil {
		return ConsumeResult{}, err
	}

	var result ConsumeResult
	now := g.clock()
	errTx := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.SubscriptionQuota
		if errLock := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&row).Error; errLock != nil {
			return errLock
		}

		if key != "" {
			entry := models.QuotaConsumption{UserID: userID, IdempotencyKey: key, TaskID: taskID}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "idempotency_key"}},
				DoNothing: true,
			}).Create(&entry)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var existing models.QuotaConsumption
				if errLoad := tx.Where("user_id = ? AND idempotency_key = ?", userID, key).
					First(&existing).Error; errLoad != nil {
					return errLoad
				}
				if sameTask(existing.TaskID, taskID) {
					result.Duplicate = true
					result.Quota = row
					return nil
				}
			}
		}

		if errUpdate := tx.Model(&models.SubscriptionQuota{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"requests_used": gorm.Expr("requests_used + ?", 1),
				"updated_at":    now,
			}).Error; errUpdate != nil {
			return errUpdate
		}
		row.RequestsUsed++
		row.UpdatedAt = now
		result.Quota = row
		return nil
	})
	if errTx != nil {
		return ConsumeResult{}, fmt.Errorf("quota: consume user %d: %w", userID, errTx)
	}
	return result, nil
}

// LookupKey returns the ledger entry recorded for key, or nil when the key
// was never consumed for the user.
func (g *Gate) LookupKey(ctx context.Context, userID uint64, key string) (*models.QuotaConsumption, error) {
	if g == nil || g.db == nil {
		return nil, errNilGate
	}
	if key == "" {
		return nil, nil
	}
	var entry models.QuotaConsumption
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("quota: lookup key for user %d: %w", userID, err)
	}
	return &entry, nil
}

// HasConsumed reports whether key was already consumed for the user and task.
func (g *Gate) HasConsumed(ctx context.Context, userID uint64, key string, taskID *uint64) (bool, error) {
	entry, err := g.LookupKey(ctx, userID, key)
	if err != nil || entry == nil {
		return false, err
	}
	return sameTask(entry.TaskID, taskID), nil
}

func sameTask(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SetTier switches the user's tier and applies its limit.
func (g *Gate) SetTier(ctx context.Context, userID uint64, tier models.Tier) (*models.SubscriptionQuota, error) {
	if g == nil || g.db == nil {
		return nil, errNilGate
	}
	if !tier.Valid() {
		return nil, errInvalidTier
	}
	row, err := g.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := g.clock()
	limit := g.limits[tier]
	if errUpdate := g.db.WithContext(ctx).
		Model(&models.SubscriptionQuota{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{"tier": tier, "requests_limit": limit, "updated_at": now}).Error; errUpdate != nil {
		return nil, fmt.Errorf("quota: set tier user %d: %w", userID, errUpdate)
	}
	row.Tier = tier
	row.RequestsLimit = limit
	row.UpdatedAt = now
	return row, nil
}

// ResetDue zeroes every counter whose reset date has passed and moves it to
// the first day of the next month. It returns the number of rows reset.
func (g *Gate) ResetDue(ctx context.Context, now time.Time) (int64, error) {
	if g == nil || g.db == nil {
		return 0, errNilGate
	}
	now = now.UTC()
	res := g.db.WithContext(ctx).
		Model(&models.SubscriptionQuota{}).
		Where("reset_date <= ?", now).
		Updates(map[string]any{
			"requests_used": 0,
			"reset_date":    NextReset(now),
			"updated_at":    now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("quota: reset due: %w", res.Error)
	}
	return res.RowsAffected, nil
}
