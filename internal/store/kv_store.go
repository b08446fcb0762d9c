package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// Keys used in a KV. They match the browser client's localStorage keys.
const (
	DocumentKey     = "lifeline-blood-center"
	SessionKey      = DocumentKey + "-session"
	DonationLockKey = DocumentKey + "-donated"
)

// KVStore mirrors the document under a single key.
type KVStore struct {
	kv  KV
	key string
}

func NewKVStore(kv KV) *KVStore {
	return &KVStore{kv: kv, key: DocumentKey}
}

func (s *KVStore) Read(ctx context.Context) (domain.Document, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return domain.NewDocument(), nil
		}
		return domain.Document{}, fmt.Errorf("get %s: %w", s.key, err)
	}
	return decodeDocument([]byte(raw))
}

func (s *KVStore) Write(ctx context.Context, doc domain.Document) (domain.Document, error) {
	doc.Normalize()
	raw, err := json.Marshal(doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode store: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(raw), 0); err != nil {
		return domain.Document{}, fmt.Errorf("set %s: %w", s.key, err)
	}
	return doc, nil
}

// SessionCache 客户端当前登录会话
type SessionCache struct {
	kv     KV
	logger *zap.Logger
}

func NewSessionCache(kv KV, logger *zap.Logger) *SessionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionCache{kv: kv, logger: logger}
}

// Current returns nil when nobody is signed in. An undecodable cache entry is
// logged and treated as signed out; the next login overwrites it.
func (c *SessionCache) Current(ctx context.Context) (*domain.SessionRecord, error) {
	raw, err := c.kv.Get(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	var s domain.SessionRecord
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		c.logger.Warn("session cache unreadable, treating as signed out", zap.Error(err))
		return nil, nil
	}
	return &s, nil
}

func (c *SessionCache) Save(ctx context.Context, s domain.SessionRecord) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, SessionKey, string(raw), 0)
}

func (c *SessionCache) Clear(ctx context.Context) error {
	return c.kv.Delete(ctx, SessionKey)
}
