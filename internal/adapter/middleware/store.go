package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// outcome is the redis record for one request id. A pending outcome marks a
// request still being served; a finished one carries the response to replay.
type outcome struct {
	Pending   bool      `json:"pending"`
	Status    int       `json:"status,omitempty"`
	Body      []byte    `json:"body,omitempty"`
	Digest    string    `json:"digest"`
	RequestID string    `json:"request_id"`
	RequestAt int64     `json:"request_at_ms"`
	StoredAt  time.Time `json:"stored_at"`
}

type replayStore struct {
	rdb        *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

func replayKey(accountNumber, method, route, requestID string) string {
	return "atm:replay:" + accountNumber + ":" + strings.ToLower(method) + ":" + route + ":" + requestID
}

func digest(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// reserve claims key for a new request. It reports false when the key is taken.
func (s *replayStore) reserve(ctx context.Context, key string, o outcome) (bool, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.pendingTTL).Result()
}

func (s *replayStore) lookup(ctx context.Context, key string) (outcome, error) {
	var o outcome
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(raw, &o); err != nil {
		return o, fmt.Errorf("decode replay record %s: %w", key, err)
	}
	return o, nil
}

func (s *replayStore) complete(ctx context.Context, key string, o outcome) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
