package adapter

import (
	"context"
	"errors"
	"time"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// foreignKeyViolation is the SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) AppendMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	if r == nil || r.pool == nil {
		return messaging.Message{}, errors.New("PgMessageRepository: nil pool")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4)
		RETURNING seq, created_at, read, read_at
	`, m.ID, m.ConversationID, m.SenderID, m.Body).Scan(&m.Seq, &m.CreatedAt, &m.Read, &m.ReadAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		// conversation deleted between lookup and insert
		return messaging.Message{}, messaging.ErrConversationNotFound
	}
	if err != nil {
		return messaging.Message{}, err
	}
	return m, nil
}

func (r *PgMessageRepository) ListMessages(ctx context.Context, conversationID string) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, seq, conversation_id::text, sender_id::text, body, created_at, read, read_at
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, seq ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]messaging.Message, 0)
	for rows.Next() {
		var msg messaging.Message
		if err := rows.Scan(&msg.ID, &msg.Seq, &msg.ConversationID, &msg.SenderID, &msg.Body, &msg.CreatedAt, &msg.Read, &msg.ReadAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

// MarkConversationRead evaluates the unread predicate inside the UPDATE so a
// message appended concurrently is either seen unread by this statement or
// left untouched.
func (r *PgMessageRepository) MarkConversationRead(ctx context.Context, conversationID string, viewerID string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET read = true, read_at = clock_timestamp()
		WHERE conversation_id = $1::uuid AND sender_id <> $2::uuid AND NOT read
	`, conversationID, viewerID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *PgMessageRepository) ConversationStats(ctx context.Context, viewerID string, conversationIDs []string) (map[string]messaging.ConversationStats, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	out := make(map[string]messaging.ConversationStats, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, lm.body, lm.created_at, COALESCE(lm.seq, 0),
		       (SELECT count(*) FROM messages u
		        WHERE u.conversation_id = c.id AND u.sender_id <> $1::uuid AND NOT u.read)
		FROM unnest($2::uuid[]) AS c(id)
		LEFT JOIN LATERAL (
			SELECT m.body, m.created_at, m.seq
			FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC, m.seq DESC
			LIMIT 1
		) lm ON true
	`, viewerID, conversationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     string
			body   *string
			lastAt *time.Time
			st     messaging.ConversationStats
		)
		if err := rows.Scan(&id, &body, &lastAt, &st.LastMessageSeq, &st.UnreadCount); err != nil {
			return nil, err
		}
		st.LastMessageText = body
		st.LastMessageAt = lastAt
		out[id] = st
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
