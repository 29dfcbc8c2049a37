// Package redis provides Redis-based adapters for the gatehouse engine.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ticketlab/gatehouse/internal/ports"
)

const defaultPrefix = "gatehouse:slot:"

// SlotStore keeps one persisted session slot per principal kind. Each
// slot is two keys, <prefix><kind>:token and <prefix><kind>:profile,
// written in a single pipeline and removed in a single DEL so a slot is
// never half-cleared. Last write wins; no cross-process coordination.
type SlotStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSlotStore creates a slot store with the default key prefix and no
// expiry.
func NewSlotStore(client redis.UniversalClient) *SlotStore {
	return &SlotStore{client: client, prefix: defaultPrefix}
}

// SlotStoreOptions configures a slot store.
type SlotStoreOptions struct {
	// Prefix overrides the default key prefix.
	Prefix string
	// TTL, when positive, expires slots that have not been rewritten.
	TTL time.Duration
}

// NewSlotStoreWithOptions creates a slot store with a custom prefix
// and/or TTL.
func NewSlotStoreWithOptions(client redis.UniversalClient, opts SlotStoreOptions) *SlotStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SlotStore{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *SlotStore) tokenKey(kind ports.SlotKind) string {
	return s.prefix + string(kind) + ":token"
}

func (s *SlotStore) profileKey(kind ports.SlotKind) string {
	return s.prefix + string(kind) + ":profile"
}

func (s *SlotStore) Read(ctx context.Context, kind ports.SlotKind) (ports.Slot, error) {
	vals, err := s.client.MGet(ctx, s.tokenKey(kind), s.profileKey(kind)).Result()
	if err != nil {
		return ports.Slot{}, fmt.Errorf("redis mget: %w", err)
	}

	token, tokenOK := vals[0].(string)
	profile, profileOK := vals[1].(string)
	if !tokenOK || !profileOK || token == "" {
		return ports.Slot{}, ports.ErrSlotNotFound
	}

	return ports.Slot{Token: token, Profile: []byte(profile)}, nil
}

func (s *SlotStore) Write(ctx context.Context, kind ports.SlotKind, slot ports.Slot) error {
	if slot.Token == "" {
		return errors.New("slot token cannot be empty")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.tokenKey(kind), slot.Token, s.ttl)
	pipe.Set(ctx, s.profileKey(kind), slot.Profile, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write slot: %w", err)
	}
	return nil
}

func (s *SlotStore) Clear(ctx context.Context, kind ports.SlotKind) error {
	if err := s.client.Del(ctx, s.tokenKey(kind), s.profileKey(kind)).Err(); err != nil {
		return fmt.Errorf("redis clear slot: %w", err)
	}
	return nil
}
