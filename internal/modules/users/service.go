package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/shared/dberr"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type SyncInput struct {
	ExternalID string
	Email      string
	Name       string
}

// Sync upserts the local row for an identity-provider subject. Repeated
// calls with the same external id return the existing row.
func (s *Service) Sync(ctx context.Context, in SyncInput) (User, error) {
	var existing User
	err := s.db.WithContext(ctx).First(&existing, "external_id = ?", in.ExternalID).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, apperr.PersistenceErr(err)
	}

	now := time.Now()
	u := User{
		ID:         uuid.NewString(),
		ExternalID: in.ExternalID,
		Email:      in.Email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Name != "" {
		n := in.Name
		u.Name = &n
	}

	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if dberr.IsDup(err) {
			// Concurrent sync won the insert; read it back.
			if e := s.db.WithContext(ctx).First(&existing, "external_id = ?", in.ExternalID).Error; e == nil {
				return existing, nil
			}
		}
		return User{}, apperr.PersistenceErr(err)
	}
	return u, nil
}

// ByExternalID resolves the local user for a verified subject. A valid
// identity with no local row yet is a NotFound, which read paths treat
// as an empty result rather than a failure.
func (s *Service) ByExternalID(ctx context.Context, externalID string) (User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, apperr.NotFoundErr("User not found.")
		}
		return User{}, apperr.PersistenceErr(err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, apperr.PersistenceErr(err)
	}
	return out, nil
}
