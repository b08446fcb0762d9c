package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

func ids(records []domain.InventoryRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFindMatches_EveryTypeServesABPos(t *testing.T) {
	f := newFixture(t, domain.DefaultRetention())
	f.seed(t, func(doc *domain.Document) {
		doc.Inventory = inventoryOf(domain.BloodTypeONeg, domain.BloodTypeAPos, domain.BloodTypeABPos, domain.BloodTypeBPos)
	})

	got, err := f.matcher.FindMatches(context.Background(), domain.BloodTypeABPos)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(got))
}

func TestFindMatches_OnlyABNegServesABNeg(t *testing.T) {
	f := newFixture(t, domain.DefaultRetention())
	f.seed(t, func(doc *domain.Document) {
		doc.Inventory = inventoryOf(domain.BloodTypeABPos, domain.BloodTypeABNeg, domain.BloodTypeOPos)
	})

	got, err := f.matcher.FindMatches(context.Background(), domain.BloodTypeABNeg)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestFindMatches_Predicates(t *testing.T) {
	inv := []domain.InventoryRecord{
		{ID: "1", BloodType: domain.BloodTypeONeg, Units: 1, City: "Pune"},
		{ID: "2", BloodType: domain.BloodTypeONeg, Units: 4, City: " pune "},
		{ID: "3", BloodType: domain.BloodTypeONeg, Units: 5, City: "Mumbai"},
		{ID: "4", BloodType: "Z+", Units: 9, City: "Pune"},
	}

	assert.Equal(t, []string{"1", "2"}, ids(MatchInventory(inv, domain.BloodTypeAPos, InCity("PUNE"))))
	assert.Equal(t, []string{"2", "3"}, ids(MatchInventory(inv, domain.BloodTypeAPos, MinUnits(2))))
	assert.Equal(t, []string{"2"}, ids(MatchInventory(inv, domain.BloodTypeAPos, InCity("Pune"), MinUnits(2))))
	assert.Empty(t, MatchInventory(inv, "Z+"))
	assert.NotNil(t, MatchInventory(nil, domain.BloodTypeAPos))
}

func hospitalsFixture() []domain.HospitalRecord {
	return []domain.HospitalRecord{
		{ID: "h-delhi", Name: "AIIMS", City: "Delhi", BankPartner: "Rotary", ReadyTypes: []domain.BloodType{domain.BloodTypeABPos}},
		{ID: "h-pune", Name: "Ruby Hall", City: "Pune", BankPartner: "Janakalyan", ReadyTypes: []domain.BloodType{domain.BloodTypeONeg}},
		{ID: "h-mumbai", Name: "KEM", City: "Mumbai", BankPartner: "Rotary", ReadyTypes: []domain.BloodType{domain.BloodTypeAPos, domain.BloodTypeBPos}},
		{ID: "h-none", Name: "Clinic", City: "Atlantis"},
	}
}

func hospitalIDs(hs []domain.HospitalRecord) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out
}

func TestFindHospitalsByType(t *testing.T) {
	f := newFixture(t, domain.DefaultRetention())
	f.seed(t, func(doc *domain.Document) { doc.Hospitals = hospitalsFixture() })
	ctx := context.Background()

	all, err := f.matcher.FindHospitalsByType(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// O- 库存可供任何人；A+ 只供 A+/AB+
	got, err := f.matcher.FindHospitalsByType(ctx, domain.BloodTypeAPos)
	require.NoError(t, err)
	assert.Equal(t, []string{"h-pune", "h-mumbai"}, hospitalIDs(got))

	got, err = f.matcher.FindHospitalsByType(ctx, domain.BloodTypeONeg)
	require.NoError(t, err)
	assert.Equal(t, []string{"h-pune"}, hospitalIDs(got))
}

func TestSearchHospitals(t *testing.T) {
	f := newFixture(t, domain.DefaultRetention())
	f.seed(t, func(doc *domain.Document) { doc.Hospitals = hospitalsFixture() })
	ctx := context.Background()

	got, err := f.matcher.SearchHospitals(ctx, HospitalQuery{Text: "rotary"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h-delhi", "h-mumbai"}, hospitalIDs(got))

	got, err = f.matcher.SearchHospitals(ctx, HospitalQuery{City: "mumbai"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h-mumbai"}, hospitalIDs(got))

	got, err = f.matcher.SearchHospitals(ctx, HospitalQuery{Near: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h-pune", "h-mumbai", "h-delhi", "h-none"}, hospitalIDs(got))

	got, err = f.matcher.SearchHospitals(ctx, HospitalQuery{BloodType: domain.BloodTypeABPos, Near: "delhi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h-delhi", "h-mumbai", "h-pune"}, hospitalIDs(got))
}

func TestBuildShortage(t *testing.T) {
	doc := domain.NewDocument()
	doc.Inventory = []domain.InventoryRecord{
		{BloodType: domain.BloodTypeONeg, Units: 2},
		{BloodType: domain.BloodTypeAPos, Units: 1},
		{BloodType: "x", Units: 50},
	}
	doc.Requests = []domain.RequestRecord{
		{BloodType: domain.BloodTypeONeg, Units: 1},
		{BloodType: domain.BloodTypeAPos, Units: 3},
		{BloodType: domain.BloodTypeBNeg, Units: 5},
	}

	lines := BuildShortage(doc)
	require.Len(t, lines, 8)
	byType := map[domain.BloodType]ShortageLine{}
	for _, l := range lines {
		byType[l.BloodType] = l
	}
	assert.Equal(t, domain.AllBloodTypes[0], lines[0].BloodType)

	assert.Equal(t, ShortageLine{BloodType: domain.BloodTypeONeg, Available: 2, Needed: 1, Shortage: 0, Severity: SeverityOK}, byType[domain.BloodTypeONeg])
	assert.Equal(t, ShortageLine{BloodType: domain.BloodTypeAPos, Available: 1, Needed: 3, Shortage: 2, Severity: SeverityWatch}, byType[domain.BloodTypeAPos])
	assert.Equal(t, ShortageLine{BloodType: domain.BloodTypeBNeg, Available: 0, Needed: 5, Shortage: 5, Severity: SeverityCritical}, byType[domain.BloodTypeBNeg])
	assert.Equal(t, SeverityOK, byType[domain.BloodTypeABPos].Severity)
}
