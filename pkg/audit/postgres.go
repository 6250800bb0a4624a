package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage persists events to the audit_logs table. Rows are only
// ever inserted; there is no update or delete path.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	if pool == nil {
		panic("audit: pool cannot be nil")
	}
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) Store(ctx context.Context, event Event) error {
	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return errors.Join(ErrInvalidEvent, err)
		}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, actor_id, event_kind, metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.ActorID, event.Kind, metadata, nullable(event.IP), nullable(event.UserAgent), event.CreatedAt,
	)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
