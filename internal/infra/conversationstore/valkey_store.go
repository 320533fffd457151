package conversationstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/lumee/internal/domain/conversation"
)

// ValkeyStore keeps one list per session so several app instances share
// conversations. Keys expire after the configured idle TTL.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "lumee:conversation"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *ValkeyStore) Append(ctx context.Context, sessionID string, turns ...conversation.Turn) error {
	if sessionID == "" || len(turns) == 0 {
		return nil
	}
	payloads := make([]string, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode turn: %w", err)
		}
		payloads = append(payloads, string(data))
	}
	key := s.key(sessionID)
	cmds := valkey.Commands{s.client.B().Rpush().Key(key).Element(payloads...).Build()}
	if s.ttl > 0 {
		cmds = append(cmds, s.client.B().Expire().Key(key).Seconds(ttlSeconds(s.ttl)).Build())
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) History(ctx context.Context, sessionID string) ([]conversation.Turn, error) {
	values, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.key(sessionID)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	turns := make([]conversation.Turn, 0, len(values))
	for _, v := range values {
		var t conversation.Turn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *ValkeyStore) TrimToLast(ctx context.Context, sessionID string, n int) error {
	if n <= 0 {
		return s.Reset(ctx, sessionID)
	}
	return s.client.Do(ctx, s.client.B().Ltrim().Key(s.key(sessionID)).Start(int64(-n)).Stop(-1).Build()).Error()
}

func (s *ValkeyStore) Reset(ctx context.Context, sessionID string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.key(sessionID)).Build()).Error()
}

func (s *ValkeyStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, sessionID)
}

func ttlSeconds(ttl time.Duration) int64 {
	if ttl < time.Second {
		return 1
	}
	return int64(ttl / time.Second)
}

var _ conversation.Store = (*ValkeyStore)(nil)
