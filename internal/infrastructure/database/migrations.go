package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id      UUID PRIMARY KEY,
		first_name   TEXT,
		last_name    TEXT,
		company_name TEXT,
		role         TEXT NOT NULL DEFAULT 'client'
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id            UUID PRIMARY KEY,
		participant_a UUID NOT NULL,
		participant_b UUID NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
		CONSTRAINT conversations_pair_ordered CHECK (participant_a < participant_b),
		CONSTRAINT conversations_pair_unique UNIQUE (participant_a, participant_b)
	)`,
	`CREATE INDEX IF NOT EXISTS conversations_participant_b_idx ON conversations (participant_b)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id              UUID PRIMARY KEY,
		seq             BIGSERIAL NOT NULL UNIQUE,
		conversation_id UUID NOT NULL REFERENCES conversations (id) ON DELETE CASCADE,
		sender_id       UUID NOT NULL,
		body            TEXT NOT NULL CHECK (btrim(body) <> ''),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
		read            BOOLEAN NOT NULL DEFAULT FALSE,
		read_at         TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_order_idx ON messages (conversation_id, created_at, seq)`,
	`CREATE INDEX IF NOT EXISTS messages_unread_idx ON messages (conversation_id, sender_id) WHERE NOT read`,
}

// Migrate creates the messaging tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("migrate: nil pool")
	}
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i+1, err)
		}
	}
	return nil
}
