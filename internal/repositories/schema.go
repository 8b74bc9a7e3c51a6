package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations create the ledger schema. Every statement is idempotent.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS wallets (
		wallet_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		balance NUMERIC(20,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS wallets_user_id_idx ON wallets (user_id);`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS transactions (
		transaction_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		category_id UUID NOT NULL REFERENCES categories(category_id) ON DELETE RESTRICT,
		wallet_id UUID NOT NULL REFERENCES wallets(wallet_id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		date TIMESTAMP NOT NULL,
		description TEXT NOT NULL,
		extra_info TEXT,
		value NUMERIC(20,2) NOT NULL,
		credit_value NUMERIC(20,2) NOT NULL CHECK (credit_value >= 0),
		debit_value NUMERIC(20,2) NOT NULL CHECK (debit_value >= 0),
		csv_import_id UUID,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		CHECK (credit_value - debit_value = value),
		CHECK (credit_value = 0 OR debit_value = 0)
	);`,
	`CREATE INDEX IF NOT EXISTS transactions_wallet_id_idx ON transactions (wallet_id);`,
	`CREATE INDEX IF NOT EXISTS transactions_category_id_idx ON transactions (category_id);`,
	`CREATE INDEX IF NOT EXISTS transactions_csv_import_id_idx ON transactions (csv_import_id) WHERE csv_import_id IS NOT NULL;`,
}

// Migrate applies the ledger schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
