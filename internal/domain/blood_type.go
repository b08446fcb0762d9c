package domain

import "strings"

// BloodType ABO/Rh 血型
type BloodType string

const (
	BloodTypeONeg  BloodType = "O-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeAPos  BloodType = "A+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeABPos BloodType = "AB+"
)

// AllBloodTypes canonical order used by reports and listings.
var AllBloodTypes = []BloodType{
	BloodTypeONeg, BloodTypeOPos,
	BloodTypeANeg, BloodTypeAPos,
	BloodTypeBNeg, BloodTypeBPos,
	BloodTypeABNeg, BloodTypeABPos,
}

// recipients: available (donor) type -> recipient types it may be transfused into
var recipients = map[BloodType][]BloodType{
	BloodTypeONeg:  {BloodTypeONeg, BloodTypeOPos, BloodTypeANeg, BloodTypeAPos, BloodTypeBNeg, BloodTypeBPos, BloodTypeABNeg, BloodTypeABPos},
	BloodTypeOPos:  {BloodTypeOPos, BloodTypeAPos, BloodTypeBPos, BloodTypeABPos},
	BloodTypeANeg:  {BloodTypeANeg, BloodTypeAPos, BloodTypeABNeg, BloodTypeABPos},
	BloodTypeAPos:  {BloodTypeAPos, BloodTypeABPos},
	BloodTypeBNeg:  {BloodTypeBNeg, BloodTypeBPos, BloodTypeABNeg, BloodTypeABPos},
	BloodTypeBPos:  {BloodTypeBPos, BloodTypeABPos},
	BloodTypeABNeg: {BloodTypeABNeg, BloodTypeABPos},
	BloodTypeABPos: {BloodTypeABPos},
}

// IsCompatible reports whether units of the available type may be given to a
// recipient who needs the needed type. Unknown types are never compatible.
func IsCompatible(available, needed BloodType) bool {
	for _, t := range recipients[available] {
		if t == needed {
			return true
		}
	}
	return false
}

// CompatibleDonors 反查：哪些供者血型可以满足 needed（按 AllBloodTypes 顺序）
func CompatibleDonors(needed BloodType) []BloodType {
	out := make([]BloodType, 0, len(AllBloodTypes))
	for _, donor := range AllBloodTypes {
		if IsCompatible(donor, needed) {
			out = append(out, donor)
		}
	}
	return out
}

// Valid reports whether t is one of the eight enumerated types.
func (t BloodType) Valid() bool {
	_, ok := recipients[t]
	return ok
}

// ParseBloodType normalises user input such as " ab+ " to AB+.
func ParseBloodType(s string) (BloodType, bool) {
	t := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}
