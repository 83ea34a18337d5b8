package stores

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/shared/dberr"
	"github.com/nyozov/services/internal/shared/slug"
)

type Service struct {
	db    *gorm.DB
	users *users.Service
}

func NewService(db *gorm.DB, us *users.Service) *Service {
	return &Service{db: db, users: us}
}

type CreateInput struct {
	Name        string
	Description string
}

func (s *Service) Create(ctx context.Context, externalUserID string, in CreateInput) (Store, error) {
	owner, err := s.users.ByExternalID(ctx, externalUserID)
	if err != nil {
		return Store{}, err
	}

	base := slug.FromName(in.Name)
	finalSlug := base

	var existing Store
	err = s.db.WithContext(ctx).First(&existing, "slug = ?", base).Error
	switch {
	case err == nil:
		finalSlug = slug.Disambiguate(base)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Store{}, apperr.PersistenceErr(err)
	}

	now := time.Now()
	st := Store{
		ID:        uuid.NewString(),
		UserID:    owner.ID,
		Name:      in.Name,
		Slug:      finalSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != "" {
		d := in.Description
		st.Description = &d
	}

	if err := s.db.WithContext(ctx).Create(&st).Error; err != nil {
		if dberr.IsDup(err) {
			return Store{}, apperr.ConflictErr("A store with this name already exists.")
		}
		return Store{}, apperr.PersistenceErr(err)
	}
	return st, nil
}

func (s *Service) ListByOwner(ctx context.Context, externalUserID string) ([]Store, error) {
	owner, err := s.users.ByExternalID(ctx, externalUserID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return []Store{}, nil
		}
		return nil, err
	}

	var out []Store
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&out, "user_id = ?", owner.ID).Error; err != nil {
		return nil, apperr.PersistenceErr(err)
	}
	return out, nil
}

func (s *Service) BySlug(ctx context.Context, storeSlug string) (Store, error) {
	var st Store
	if err := s.db.WithContext(ctx).
		Preload("User").
		First(&st, "slug = ?", storeSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Store{}, apperr.NotFoundErr("Store not found.")
		}
		return Store{}, apperr.PersistenceErr(err)
	}
	return st, nil
}

// VerifyAccess reports whether the authenticated subject owns the store.
func (s *Service) VerifyAccess(ctx context.Context, externalUserID, storeID string) (bool, error) {
	owner, err := s.users.ByExternalID(ctx, externalUserID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return false, nil
		}
		return false, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Store{}).
		Where("id = ? AND user_id = ?", storeID, owner.ID).
		Count(&count).Error; err != nil {
		return false, apperr.PersistenceErr(err)
	}
	return count > 0, nil
}
