package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

// Redis stores each organization document as one JSON value and fans
// snapshots out over pub/sub, which gives every connected client the
// push-based subscription feed.
//
// ReplaceCollection is read-modify-write with no CAS, matching the store
// contract: the last full-array write wins.
type Redis struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedis(url string, log *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Redis{client: client, log: log}, nil
}

// NewRedisFromClient wraps an existing client, mainly for tests.
func NewRedisFromClient(client *redis.Client, log *slog.Logger) *Redis {
	return &Redis{client: client, log: log}
}

func docKey(orgID domain.OrgID) string     { return "fundledger:org:" + orgID.String() }
func docChannel(orgID domain.OrgID) string { return "fundledger:org:" + orgID.String() + ":snapshots" }

func (s *Redis) Get(ctx context.Context, orgID domain.OrgID) (*models.OrgDocument, error) {
	raw, err := s.client.Get(ctx, docKey(orgID)).Bytes()
	if errors.Is(err, redis.Nil) {
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

func (s *Redis) Create(ctx context.Context, orgID domain.OrgID, doc *models.OrgDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode org document: %w", err)
	}
	ok, err := s.client.SetNX(ctx, docKey(orgID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("create org document: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Redis) ReplaceCollection(ctx context.Context, orgID domain.OrgID, col Collection, value any) error {
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
	if err := s.client.Set(ctx, docKey(orgID), raw, 0).Err(); err != nil {
		return fmt.Errorf("replace %s: %w", col, err)
	}
	if err := s.client.Publish(ctx, docChannel(orgID), raw).Err(); err != nil {
		// Subscribers converge on the next successful publish.
		s.log.Warn("snapshot publish failed", "org", orgID.String(), "error", err)
	}
	return nil
}

func (s *Redis) Subscribe(ctx context.Context, orgID domain.OrgID) (<-chan *models.OrgDocument, error) {
	sub := s.client.Subscribe(ctx, docChannel(orgID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan *models.OrgDocument, 16)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var doc models.OrgDocument
				if err := json.Unmarshal([]byte(msg.Payload), &doc); err != nil {
					s.log.Warn("dropping malformed snapshot", "org", orgID.String(), "error", err)
					continue
				}
				select {
				case out <- &doc:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *Redis) Close() error { return s.client.Close() }

// Health checks the backing connection, used by the readiness endpoint.
func (s *Redis) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
