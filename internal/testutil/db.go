package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nyozov/services/internal/modules/conversations"
	"github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/notifications"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/modules/users"
)

// OpenDB returns a fresh in-memory database migrated with every model.
// One connection only: with more, each would see its own empty memory db.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&users.User{},
		&stores.Store{},
		&items.Item{},
		&items.ItemImage{},
		&orders.Order{},
		&notifications.Notification{},
		&conversations.Conversation{},
		&conversations.Participant{},
		&conversations.Message{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
