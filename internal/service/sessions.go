package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/syncbridge"
)

// SessionPayload 登录表单（不校验凭证）
type SessionPayload struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role"`
	Organization   string `json:"organization,omitempty"`
	Contact        string `json:"contact,omitempty"`
	HospitalAccess *bool  `json:"hospitalAccess,omitempty"`
}

// Sessions registers self-declared sessions.
type Sessions struct {
	store   store.Mutator
	bridge  syncbridge.Bridge
	limit   int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewSessions(s store.Mutator, bridge syncbridge.Bridge, limit int, m *metrics.Metrics, logger *zap.Logger) *Sessions {
	if bridge == nil {
		bridge = syncbridge.NopBridge{}
	}
	return &Sessions{store: s, bridge: bridge, limit: limit, metrics: m, logger: logger}
}

// SaveSession 创建会话：医院默认有 hospitalAccess，其他角色按传入值
func (s *Sessions) SaveSession(ctx context.Context, p SessionPayload) (domain.SessionRecord, error) {
	rec := domain.SessionRecord{
		ID:           newID(PrefixSession),
		Name:         p.Name,
		Email:        p.Email,
		Role:         p.Role,
		Organization: p.Organization,
		Contact:      p.Contact,
	}
	rec.HospitalAccess = hospitalAccess(rec, p.HospitalAccess)
	_, err := s.store.Update(ctx, func(doc *domain.Document) error {
		doc.Sessions = domain.Prepend(doc.Sessions, rec, s.limit)
		return nil
	})
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("persist session: %w", err)
	}
	s.bridge.PushSession(rec)
	s.metrics.IncSession()
	s.logger.Info("session registered", zap.String("id", rec.ID), zap.String("role", rec.Role))
	return rec, nil
}

func hospitalAccess(rec domain.SessionRecord, given *bool) bool {
	if given == nil {
		return rec.IsHospital()
	}
	return *given
}
