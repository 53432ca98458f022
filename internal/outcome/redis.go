package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Terminal outcomes are write-once via SETNX: the first terminal writer
	// wins, which implements the merge rule without a transaction.
	finalExpiry = 24 * time.Hour
	// Provisional (PENDING) outcomes only need to outlive a polling cycle.
	pendingExpiry = time.Hour
)

// RedisStore shares the merged view across replicas. Not a ledger: entries
// expire and the gateway stays the source of truth.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb}
}

func finalKey(id string) string   { return "txn:" + id + ":final" }
func pendingKey(id string) string { return "txn:" + id + ":last" }

func (s *RedisStore) Apply(ctx context.Context, obs Outcome) (Outcome, error) {
	raw, err := json.Marshal(obs)
	if err != nil {
		return Outcome{}, fmt.Errorf("encode outcome: %w", err)
	}

	if obs.Status.Terminal() {
		set, err := s.client.SetNX(ctx, finalKey(obs.TransactionID), raw, finalExpiry).Result()
		if err != nil {
			return Outcome{}, fmt.Errorf("redis SETNX: %w", err)
		}
		if set {
			return obs, nil
		}
		// another writer reached terminal first; its value is authoritative
		return s.readFinal(ctx, obs.TransactionID)
	}

	// PENDING never overrides an existing terminal value
	if final, ok, err := s.getKey(ctx, finalKey(obs.TransactionID)); err != nil {
		return Outcome{}, err
	} else if ok {
		return final, nil
	}
	if err := s.client.Set(ctx, pendingKey(obs.TransactionID), raw, pendingExpiry).Err(); err != nil {
		return Outcome{}, fmt.Errorf("redis SET: %w", err)
	}
	return obs, nil
}

func (s *RedisStore) Get(ctx context.Context, transactionID string) (Outcome, bool, error) {
	if o, ok, err := s.getKey(ctx, finalKey(transactionID)); err != nil || ok {
		return o, ok, err
	}
	return s.getKey(ctx, pendingKey(transactionID))
}

func (s *RedisStore) readFinal(ctx context.Context, transactionID string) (Outcome, error) {
	o, ok, err := s.getKey(ctx, finalKey(transactionID))
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		// key expired between the SETNX and this read
		return Outcome{}, fmt.Errorf("terminal outcome for %s vanished", transactionID)
	}
	return o, nil
}

func (s *RedisStore) getKey(ctx context.Context, key string) (Outcome, bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, fmt.Errorf("redis GET: %w", err)
	}
	var o Outcome
	if err := json.Unmarshal(raw, &o); err != nil {
		return Outcome{}, false, fmt.Errorf("decode outcome: %w", err)
	}
	return o, true, nil
}
