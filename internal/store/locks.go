package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// LockStore records which identities have already published a donation.
// Locks are never cleared.
type LockStore interface {
	HasDonated(ctx context.Context, identity string) (bool, error)
	MarkDonated(ctx context.Context, identity string) error
}

// KVLockStore keeps the identity -> bool map as JSON under DonationLockKey.
// An undecodable map is an error for both reads and writes.
type KVLockStore struct {
	kv KV
}

func NewKVLockStore(kv KV) *KVLockStore { return &KVLockStore{kv: kv} }

func (l *KVLockStore) HasDonated(ctx context.Context, identity string) (bool, error) {
	locks, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	return locks[identity], nil
}

func (l *KVLockStore) MarkDonated(ctx context.Context, identity string) error {
	locks, err := l.load(ctx)
	if err != nil {
		return err
	}
	locks[identity] = true
	raw, err := json.Marshal(locks)
	if err != nil {
		return err
	}
	if err := l.kv.Set(ctx, DonationLockKey, string(raw), 0); err != nil {
		return fmt.Errorf("set donation lock: %w", err)
	}
	return nil
}

func (l *KVLockStore) load(ctx context.Context) (map[string]bool, error) {
	raw, err := l.kv.Get(ctx, DonationLockKey)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("get donation lock: %w", err)
	}
	locks := map[string]bool{}
	if err := json.Unmarshal([]byte(raw), &locks); err != nil {
		// 锁表损坏时不能当作空表，否则会覆盖掉其他身份的锁
		return nil, fmt.Errorf("decode donation lock: %w", err)
	}
	return locks, nil
}
