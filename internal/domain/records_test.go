package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount_LenientDecoding(t *testing.T) {
	cases := map[string]Count{
		`{"units":3}`:      3,
		`{"units":"2"}`:    2,
		`{"units":" 4 "}`:  4,
		`{"units":2.9}`:    2,
		`{"units":"abc"}`:  0,
		`{"units":null}`:   0,
		`{"units":[1]}`:    0,
		`{"units":true}`:   1,
		`{}`:               0,
	}
	for raw, want := range cases {
		var rec RequestRecord
		require.NoError(t, json.Unmarshal([]byte(raw), &rec), raw)
		assert.Equal(t, want, rec.Units, raw)
	}
}

func TestCount_OrDefault(t *testing.T) {
	assert.Equal(t, Count(1), Count(0).OrDefault(1))
	assert.Equal(t, Count(1), Count(-3).OrDefault(1))
	assert.Equal(t, Count(5), Count(5).OrDefault(1))
}

func TestPrepend_TruncatesOldest(t *testing.T) {
	var list []int
	for i := 1; i <= 4; i++ {
		list = Prepend(list, i, 3)
	}
	assert.Equal(t, []int{4, 3, 2}, list)
	assert.Equal(t, []int{9, 4, 3, 2}, Prepend(list, 9, 0))
}

func TestDocument_NormalizeEncodesEmptyArrays(t *testing.T) {
	var doc Document
	doc.Normalize()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"inventory":[],"requests":[],"hospitals":[],"sessions":[]}`, string(raw))
	assert.Equal(t, NewDocument(), doc)
}

func TestTimestamp_Format(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 30, 0, 123456789, time.FixedZone("IST", 19800))
	assert.Equal(t, "2024-03-01T03:00:00.123Z", Timestamp(ts))
}

func TestActor_IdentityAndAttribution(t *testing.T) {
	assert.Equal(t, GuestIdentity, IdentityOf(nil))
	assert.Equal(t, GuestIdentity, IdentityOf(&Actor{}))
	a := &Actor{ID: "user-1", Name: "Asha", Role: RoleIndividualDonor}
	assert.Equal(t, "user-1", IdentityOf(a))
	assert.Equal(t, "Asha (Individual donor)", a.Attribution())

	var none *Actor
	assert.Equal(t, "Guest", none.Attribution())
	assert.Equal(t, "", none.DisplayOrg())
	assert.Equal(t, "", none.EmailOrEmpty())
	assert.Equal(t, "Asha", a.DisplayOrg())
}

func TestSessionRecord_Actor(t *testing.T) {
	s := SessionRecord{ID: "user-9", Name: "City Hospital", Role: RoleHospital, Organization: "City", Email: "ops@city.org"}
	assert.True(t, s.IsHospital())
	a := s.Actor()
	assert.Equal(t, "user-9", a.ID)
	assert.Equal(t, "City", a.DisplayOrg())
	assert.Equal(t, "ops@city.org", a.EmailOrEmpty())
}
