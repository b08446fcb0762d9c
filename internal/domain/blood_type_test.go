package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCompatible_FullTable(t *testing.T) {
	want := map[BloodType][]BloodType{
		"O-":  {"O-", "O+", "A-", "A+", "B-", "B+", "AB-", "AB+"},
		"O+":  {"O+", "A+", "B+", "AB+"},
		"A-":  {"A-", "A+", "AB-", "AB+"},
		"A+":  {"A+", "AB+"},
		"B-":  {"B-", "B+", "AB-", "AB+"},
		"B+":  {"B+", "AB+"},
		"AB-": {"AB-", "AB+"},
		"AB+": {"AB+"},
	}
	cases := 0
	for _, available := range AllBloodTypes {
		allowed := map[BloodType]bool{}
		for _, r := range want[available] {
			allowed[r] = true
		}
		for _, needed := range AllBloodTypes {
			cases++
			assert.Equal(t, allowed[needed], IsCompatible(available, needed), "%s -> %s", available, needed)
		}
	}
	assert.Equal(t, 64, cases)
}

func TestIsCompatible_SelfAndExtremes(t *testing.T) {
	for _, bt := range AllBloodTypes {
		assert.True(t, IsCompatible(bt, bt), "self %s", bt)
		assert.True(t, IsCompatible(BloodTypeONeg, bt), "O- gives to %s", bt)
		assert.True(t, IsCompatible(bt, BloodTypeABPos), "%s gives to AB+", bt)
		if bt != BloodTypeABPos {
			assert.False(t, IsCompatible(BloodTypeABPos, bt), "AB+ must not give to %s", bt)
		}
	}
}

func TestIsCompatible_UnknownTypes(t *testing.T) {
	assert.False(t, IsCompatible("", BloodTypeABPos))
	assert.False(t, IsCompatible("C+", BloodTypeABPos))
	assert.False(t, IsCompatible(BloodTypeONeg, "o-"))
}

func TestCompatibleDonors_InvertsTable(t *testing.T) {
	assert.Equal(t, AllBloodTypes, CompatibleDonors(BloodTypeABPos))
	assert.Equal(t, []BloodType{BloodTypeONeg}, CompatibleDonors(BloodTypeONeg))
	assert.Equal(t, []BloodType{BloodTypeONeg, BloodTypeANeg, BloodTypeBNeg, BloodTypeABNeg}, CompatibleDonors(BloodTypeABNeg))
	assert.Empty(t, CompatibleDonors("Z"))
}

func TestParseBloodType(t *testing.T) {
	bt, ok := ParseBloodType(" ab+ ")
	assert.True(t, ok)
	assert.Equal(t, BloodTypeABPos, bt)

	_, ok = ParseBloodType("AB")
	assert.False(t, ok)
}
