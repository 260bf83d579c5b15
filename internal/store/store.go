// Package store persists users, check-ins and tasks via GORM.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Repository on PostgreSQL or SQLite.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

func (s *GormStore) ready() error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	return nil
}

// EnsureUser returns the local user for an identity provider subject,
// creating it on first sign-in.
func (s *GormStore) EnsureUser(ctx context.Context, externalID, email string) (*models.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	externalID = strings.TrimSpace(externalID)
	email = strings.TrimSpace(email)
	if externalID == "" {
		return nil, wrapUserErr("ensure", 0, errors.New("empty external id"))
	}

	var user models.User
	errFind := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error
	if errFind == nil {
		if email != "" && email != user.Email {
			if errUpdate := s.db.WithContext(ctx).Model(&user).
				Updates(map[string]any{"email": email, "updated_at": s.clock()}).Error; errUpdate != nil {
				return nil, wrapUserErr("update", user.ID, errUpdate)
			}
			user.Email = email
		}
		return &user, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, wrapUserErr("find", 0, errFind)
	}

	user = models.User{ExternalID: externalID, Email: email}
	if errCreate := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(&user).Error; errCreate != nil {
		return nil, wrapUserErr("create", 0, errCreate)
	}
	var stored models.User
	if errReload := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&stored).Error; errReload != nil {
		return nil, wrapUserErr("reload", 0, errReload)
	}
	return &stored, nil
}

// GetUser loads a user by local id.
func (s *GormStore) GetUser(ctx context.Context, userID uint64) (*models.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, wrapUserErr("get", userID, translate(err))
	}
	return &user, nil
}

// DeleteUser removes the user and everything they own in one transaction.
func (s *GormStore) DeleteUser(ctx context.Context, userID uint64) error {
	if err := s.ready(); err != nil {
		return err
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []any{
			&models.AIUsage{},
			&models.QuotaConsumption{},
			&models.SubscriptionQuota{},
			&models.Task{},
			&models.BrainState{},
		} {
			if errDelete := tx.Where("user_id = ?", userID).Delete(owned).Error; errDelete != nil {
				return errDelete
			}
		}
		res := tx.Where("id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return wrapUserErr("delete", userID, errTx)
}

// translate maps gorm sentinels onto store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return err
	}
}
