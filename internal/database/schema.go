package database

import (
	"context"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(100) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		role ENUM('admin','customer') NOT NULL DEFAULT 'customer',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		slug VARCHAR(180) NOT NULL UNIQUE,
		description TEXT NULL,
		price DECIMAL(10,2) NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		category VARCHAR(100) NULL,
		color VARCHAR(50) NULL,
		image VARCHAR(255) NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT chk_products_price CHECK (price >= 0),
		CONSTRAINT chk_products_stock CHECK (stock >= 0),
		INDEX idx_products_category (category)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS carts (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT fk_carts_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS cart_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		cart_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_cart_items_cart_product (cart_id, product_id),
		CONSTRAINT chk_cart_items_quantity CHECK (quantity > 0 AND quantity <= 999),
		CONSTRAINT fk_cart_items_cart FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE,
		CONSTRAINT fk_cart_items_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NULL,
		total DECIMAL(10,2) NOT NULL,
		payment_method ENUM('cash','card','transfer','wallet') NOT NULL,
		status ENUM('completed','cancelled','pending') NOT NULL DEFAULT 'completed',
		created_at DATETIME NOT NULL,
		INDEX idx_orders_user_created (user_id, created_at),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS order_lines (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		subtotal DECIMAL(12,2) NOT NULL,
		CONSTRAINT chk_order_lines_quantity CHECK (quantity > 0),
		CONSTRAINT chk_order_lines_price CHECK (unit_price >= 0 AND subtotal >= 0),
		CONSTRAINT fk_order_lines_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		CONSTRAINT fk_order_lines_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL
	) ENGINE=InnoDB`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('admin','customer')),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NULL,
		price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category TEXT NULL,
		color TEXT NULL,
		image TEXT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,

	`CREATE TABLE IF NOT EXISTS carts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS cart_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cart_id INTEGER NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity > 0 AND quantity <= 999),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (cart_id, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
		total DECIMAL(10,2) NOT NULL,
		payment_method TEXT NOT NULL CHECK (payment_method IN ('cash','card','transfer','wallet')),
		status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('completed','cancelled','pending')),
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS order_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INTEGER NULL REFERENCES products(id) ON DELETE SET NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price DECIMAL(10,2) NOT NULL CHECK (unit_price >= 0),
		subtotal DECIMAL(12,2) NOT NULL CHECK (subtotal >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id)`,
}

// Migrate creates any missing tables for the active dialect.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range db.Dialect.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s statement %d: %w", db.Dialect.Name, i+1, err)
		}
	}
	return nil
}
