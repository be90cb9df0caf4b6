package adapter

import (
	"context"
	"errors"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgProfileRepository reads the profiles table maintained by the profile
// service. It never writes.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) FindProfiles(ctx context.Context, userIDs []string) (map[string]messaging.Profile, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgProfileRepository: nil pool")
	}
	out := make(map[string]messaging.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id::text, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(company_name, ''), COALESCE(role, 'client')
		FROM profiles
		WHERE user_id = ANY($1::uuid[])
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p    messaging.Profile
			role string
		)
		if err := rows.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.CompanyName, &role); err != nil {
			return nil, err
		}
		p.Role = messaging.Role(role)
		out[p.UserID] = p
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
