package main

import (
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS users (
	  id CHAR(36) NOT NULL,
	  external_id VARCHAR(64) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  name VARCHAR(255) NULL,
	  stripe_account_id VARCHAR(64) NULL,
	  stripe_onboarding_complete TINYINT(1) NOT NULL DEFAULT 0,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_users_external_id (external_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS stores (
	  id CHAR(36) NOT NULL,
	  user_id CHAR(36) NOT NULL,
	  name VARCHAR(255) NOT NULL,
	  slug VARCHAR(255) NOT NULL,
	  description TEXT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_stores_slug (slug),
	  KEY ix_stores_user_id (user_id),
	  CONSTRAINT fk_stores_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS items (
	  id CHAR(36) NOT NULL,
	  store_id CHAR(36) NOT NULL,
	  name VARCHAR(255) NOT NULL,
	  description TEXT NULL,
	  price DECIMAL(10,2) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_items_store_id (store_id),
	  CONSTRAINT fk_items_store FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS item_images (
	  id CHAR(36) NOT NULL,
	  item_id CHAR(36) NOT NULL,
	  url VARCHAR(512) NOT NULL,
	  public_id VARCHAR(255) NOT NULL,
	  position INT NOT NULL DEFAULT 0,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_item_images_item_id (item_id),
	  CONSTRAINT fk_item_images_item FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS orders (
	  id CHAR(36) NOT NULL,
	  item_id CHAR(36) NOT NULL,
	  buyer_email VARCHAR(255) NOT NULL,
	  amount DECIMAL(10,2) NOT NULL,
	  platform_fee DECIMAL(10,2) NOT NULL,
	  session_id VARCHAR(255) NULL,
	  payment_id VARCHAR(255) NULL,
	  status VARCHAR(32) NOT NULL,
	  refund_id VARCHAR(255) NULL,
	  refund_amount DECIMAL(10,2) NULL,
	  refunded_at DATETIME(3) NULL,
	  shipping_address JSON NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_orders_session_id (session_id),
	  UNIQUE KEY ux_orders_payment_id (payment_id),
	  KEY ix_orders_item_id (item_id),
	  CONSTRAINT fk_orders_item FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS notifications (
	  id CHAR(36) NOT NULL,
	  user_id CHAR(36) NOT NULL,
	  type VARCHAR(32) NOT NULL,
	  title VARCHAR(255) NOT NULL,
	  message TEXT NOT NULL,
	  order_id CHAR(36) NULL,
	  ` + "`read`" + ` TINYINT(1) NOT NULL DEFAULT 0,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_notifications_user_id (user_id),
	  CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS conversations (
	  id CHAR(36) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS conversation_participants (
	  id CHAR(36) NOT NULL,
	  conversation_id CHAR(36) NOT NULL,
	  user_id CHAR(36) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_participants_conv_user (conversation_id, user_id),
	  CONSTRAINT fk_participants_conv FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
	  CONSTRAINT fk_participants_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS conversation_messages (
	  id CHAR(36) NOT NULL,
	  conversation_id CHAR(36) NOT NULL,
	  sender_user_id CHAR(36) NOT NULL,
	  content TEXT NOT NULL,
	  read_at DATETIME(3) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_messages_conversation_id (conversation_id),
	  CONSTRAINT fk_messages_conv FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
	  CONSTRAINT fk_messages_sender FOREIGN KEY (sender_user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("Tables created successfully")
}
