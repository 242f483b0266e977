package database

import (
	"context"
	"database/sql"
	"fmt"
)

// mysqlSchema and sqliteSchema describe the same tables.  Timestamps are
// written by the application (UTC) so no DEFAULT CURRENT_TIMESTAMP is needed.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'USER',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS ads (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		author_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		price INT NOT NULL,
		introduction TEXT NOT NULL,
		rooms INT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT fk_ads_author FOREIGN KEY (author_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS ad_images (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		ad_id BIGINT UNSIGNED NOT NULL,
		url VARCHAR(1024) NOT NULL,
		caption VARCHAR(255) NOT NULL,
		CONSTRAINT fk_images_ad FOREIGN KEY (ad_id) REFERENCES ads(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		ad_id BIGINT UNSIGNED NOT NULL,
		author_id BIGINT UNSIGNED NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		amount INT NOT NULL,
		comment TEXT NULL,
		INDEX idx_bookings_ad (ad_id),
		CONSTRAINT fk_bookings_ad FOREIGN KEY (ad_id) REFERENCES ads(id),
		CONSTRAINT fk_bookings_author FOREIGN KEY (author_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		ad_id BIGINT UNSIGNED NOT NULL,
		author_id BIGINT UNSIGNED NOT NULL,
		content TEXT NOT NULL,
		rating TINYINT NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_comments_ad (ad_id),
		CONSTRAINT fk_comments_ad FOREIGN KEY (ad_id) REFERENCES ads(id) ON DELETE CASCADE,
		CONSTRAINT fk_comments_author FOREIGN KEY (author_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id INTEGER NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		price INTEGER NOT NULL,
		introduction TEXT NOT NULL,
		rooms INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ad_images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ad_id INTEGER NOT NULL REFERENCES ads(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		caption TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ad_id INTEGER NOT NULL REFERENCES ads(id),
		author_id INTEGER NOT NULL REFERENCES users(id),
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		amount INTEGER NOT NULL,
		comment TEXT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_ad ON bookings(ad_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ad_id INTEGER NOT NULL REFERENCES ads(id) ON DELETE CASCADE,
		author_id INTEGER NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		rating INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_ad ON comments(ad_id)`,
}

// Migrate creates every table that does not exist yet.  It is safe to run
// on each startup.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	stmts := mysqlSchema
	if d == SQLite {
		stmts = sqliteSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
