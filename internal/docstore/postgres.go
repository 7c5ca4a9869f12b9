package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

// Postgres keeps each organization document in a single JSONB row and uses
// LISTEN/NOTIFY for the snapshot feed. Like the other backends it offers no
// CAS: ReplaceCollection is read-modify-write on the whole document.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS org_documents (
    org_id UUID PRIMARY KEY,
    doc    JSONB NOT NULL
);`

func NewPostgres(ctx context.Context, url string, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{pool: pool, log: log}, nil
}

func pgChannel(orgID domain.OrgID) string {
	// NOTIFY channel names cannot contain dashes.
	return "fundledger_org_" + nonDashed(orgID.String())
}

func nonDashed(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func (s *Postgres) Get(ctx context.Context, orgID domain.OrgID) (*models.OrgDocument, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM org_documents WHERE org_id = $1`, orgID.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get org document: %w", err)
	}
	var doc models.OrgDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode org document: %w", err)
	}
	return &doc, nil
}

func (s *Postgres) Create(ctx context.Context, orgID domain.OrgID, doc *models.OrgDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode org document: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO org_documents (org_id, doc) VALUES ($1, $2) ON CONFLICT (org_id) DO NOTHING`,
		orgID.String(), raw)
	if err != nil {
		return fmt.Errorf("create org document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) ReplaceCollection(ctx context.Context, orgID domain.OrgID, col Collection, value any) error {
	doc, err := s.Get(ctx, orgID)
	if err != nil {
		return err
	}
	if err := SetCollection(doc, col, value); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode org document: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE org_documents SET doc = $2 WHERE org_id = $1`, orgID.String(), raw); err != nil {
		return fmt.Errorf("replace %s: %w", col, err)
	}
	// Payload limits on NOTIFY rule out shipping the document inline;
	// subscribers re-read on wakeup instead.
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, pgChannel(orgID), orgID.String()); err != nil {
		s.log.Warn("snapshot notify failed", "org", orgID.String(), "error", err)
	}
	return nil
}

func (s *Postgres) Subscribe(ctx context.Context, orgID domain.OrgID) (<-chan *models.OrgDocument, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgChannel(orgID)); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen: %w", err)
	}

	out := make(chan *models.OrgDocument, 16)
	go func() {
		defer close(out)
		defer conn.Release()
		for {
			if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Warn("notification wait failed", "org", orgID.String(), "error", err)
				return
			}
			doc, err := s.Get(ctx, orgID)
			if err != nil {
				s.log.Warn("snapshot refetch failed", "org", orgID.String(), "error", err)
				continue
			}
			select {
			case out <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
