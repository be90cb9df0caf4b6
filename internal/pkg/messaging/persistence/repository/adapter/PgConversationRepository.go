package adapter

import (
	"context"
	"errors"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

// GetOrCreateConversation relies on the unique (participant_a, participant_b)
// constraint so concurrent callers converge on one row. The no-op DO UPDATE
// makes RETURNING yield the existing row on conflict; xmax = 0 only for a
// freshly inserted tuple.
func (r *PgConversationRepository) GetOrCreateConversation(ctx context.Context, id, participantA, participantB string) (messaging.Conversation, bool, error) {
	if r == nil || r.pool == nil {
		return messaging.Conversation{}, false, errors.New("PgConversationRepository: nil pool")
	}
	var (
		c       messaging.Conversation
		created bool
	)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b)
		VALUES ($1::uuid, $2::uuid, $3::uuid)
		ON CONFLICT (participant_a, participant_b)
		DO UPDATE SET participant_a = EXCLUDED.participant_a
		RETURNING id::text, participant_a::text, participant_b::text, created_at, (xmax = 0)
	`, id, participantA, participantB).Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt, &created)
	if err != nil {
		return messaging.Conversation{}, false, err
	}
	return c, created, nil
}

func (r *PgConversationRepository) GetConversation(ctx context.Context, id string) (messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return messaging.Conversation{}, errors.New("PgConversationRepository: nil pool")
	}
	var c messaging.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, participant_a::text, participant_b::text, created_at
		FROM conversations
		WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return messaging.Conversation{}, messaging.ErrConversationNotFound
	}
	if err != nil {
		return messaging.Conversation{}, err
	}
	return c, nil
}

func (r *PgConversationRepository) ListConversationsByParticipant(ctx context.Context, userID string) ([]messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, participant_a::text, participant_b::text, created_at
		FROM conversations
		WHERE participant_a = $1::uuid OR participant_b = $1::uuid
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []messaging.Conversation
	for rows.Next() {
		var c messaging.Conversation
		if err := rows.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return convs, nil
}
