package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// Record id prefixes.
const (
	PrefixDonation = "don-"
	PrefixRequest  = "req-"
	PrefixSession  = "user-"
)

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

// clock is swapped in tests.
type clock func() time.Time

func (c clock) stamp() string {
	if c == nil {
		return domain.Timestamp(time.Now())
	}
	return domain.Timestamp(c())
}

// normalizeType canonicalises known types and keeps unknown input as given.
func normalizeType(t domain.BloodType) domain.BloodType {
	if parsed, ok := domain.ParseBloodType(string(t)); ok {
		return parsed
	}
	return t
}
