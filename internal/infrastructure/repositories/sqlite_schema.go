package repositories

import (
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the PostgreSQL schema produced by cmd/migrate,
// including the foreign key actions. Foreign keys must be enabled on the
// connection (_foreign_keys=1).
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		bio TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		picture TEXT,
		is_seller BOOLEAN NOT NULL DEFAULT 0,
		verification_status TEXT NOT NULL DEFAULT 'unverified',
		total_sales INTEGER NOT NULL DEFAULT 0 CHECK (total_sales >= 0),
		average_rating REAL NOT NULL DEFAULT 0 CHECK (average_rating >= 0 AND average_rating <= 5),
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		price REAL NOT NULL CHECK (price >= 0),
		condition TEXT NOT NULL,
		brand TEXT NOT NULL DEFAULT '',
		material TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_seller_created ON items(seller_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_items_category_active ON items(category_id, is_active)`,
	`CREATE TABLE IF NOT EXISTS item_images (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		image TEXT NOT NULL,
		is_primary BOOLEAN NOT NULL DEFAULT 0,
		uploaded_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_item_images_item_primary ON item_images(item_id, is_primary)`,
}

// ApplySQLiteSchema creates the schema on a SQLite database. Used for local
// development (DB_DRIVER=sqlite) and tests.
func ApplySQLiteSchema(db *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
