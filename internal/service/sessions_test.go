package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

func TestSaveSession_HospitalAccess(t *testing.T) {
	f := newFixture(t, domain.DefaultRetention())
	ctx := context.Background()
	yes, no := true, false

	cases := []struct {
		role  string
		given *bool
		want  bool
	}{
		{domain.RoleHospital, nil, true},
		{domain.RoleHospital, &no, false},
		{domain.RoleIndividualDonor, nil, false},
		{domain.RoleIndividualDonor, &yes, true},
	}
	for _, tc := range cases {
		rec, err := f.sessions.SaveSession(ctx, SessionPayload{Name: "n", Role: tc.role, HospitalAccess: tc.given})
		require.NoError(t, err)
		assert.Equal(t, tc.want, rec.HospitalAccess, "role=%s", tc.role)
		assert.True(t, strings.HasPrefix(rec.ID, PrefixSession))
	}
	assert.Len(t, f.bridge.sessions, 4)
}

func TestSaveSession_Capped(t *testing.T) {
	f := newFixture(t, domain.Retention{Sessions: 2})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.sessions.SaveSession(ctx, SessionPayload{Name: "n", Role: domain.RoleIndividualDonor})
		require.NoError(t, err)
	}
	doc, err := f.store.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Sessions, 2)
}
