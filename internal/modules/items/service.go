package items

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/shared/apperr"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ImageInput struct {
	URL      string
	PublicID string
	Position *int
}

type CreateInput struct {
	StoreID     string
	Name        string
	Description string
	Price       decimal.Decimal
	Images      []ImageInput
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Item, error) {
	if in.Price.LessThanOrEqual(decimal.Zero) {
		return Item{}, apperr.InvalidErr("Price must be positive.", map[string]string{"price": "must be positive"})
	}

	now := time.Now()
	item := Item{
		ID:        uuid.NewString(),
		StoreID:   in.StoreID,
		Name:      in.Name,
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != "" {
		d := in.Description
		item.Description = &d
	}
	for i, img := range in.Images {
		pos := i
		if img.Position != nil {
			pos = *img.Position
		}
		item.Images = append(item.Images, ItemImage{
			ID:        uuid.NewString(),
			ItemID:    item.ID,
			URL:       img.URL,
			PublicID:  img.PublicID,
			Position:  pos,
			CreatedAt: now,
		})
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return Item{}, apperr.PersistenceErr(err)
	}
	return item, nil
}

// Get loads an item with its store, the store owner, and ordered images.
// The payment core depends on the owner preload for payability checks.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	var item Item
	err := s.db.WithContext(ctx).
		Preload("Store.User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Item{}, apperr.NotFoundErr("Item not found.")
		}
		return Item{}, apperr.PersistenceErr(err)
	}
	return item, nil
}

func (s *Service) ListByStore(ctx context.Context, storeID string) ([]Item, error) {
	var out []Item
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Find(&out, "store_id = ?", storeID).Error
	if err != nil {
		return nil, apperr.PersistenceErr(err)
	}
	return out, nil
}
