package service

import (
	"context"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// Shortage severities.
const (
	SeverityOK       = "ok"
	SeverityWatch    = "watch"
	SeverityCritical = "critical"
)

// ShortageLine compares stocked and requested units for one type.
type ShortageLine struct {
	BloodType domain.BloodType `json:"bloodType"`
	Available int              `json:"available"`
	Needed    int              `json:"needed"`
	Shortage  int              `json:"shortage"`
	Severity  string           `json:"severity"`
}

// Shortage reports every blood type in canonical order.
func (m *Matcher) Shortage(ctx context.Context) ([]ShortageLine, error) {
	doc, err := m.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return BuildShortage(doc), nil
}

// BuildShortage sums units per exact type; records with unknown types are ignored.
func BuildShortage(doc domain.Document) []ShortageLine {
	available := map[domain.BloodType]int{}
	needed := map[domain.BloodType]int{}
	for _, r := range doc.Inventory {
		available[normalizeType(r.BloodType)] += int(r.Units)
	}
	for _, r := range doc.Requests {
		needed[normalizeType(r.BloodType)] += int(r.Units)
	}

	out := make([]ShortageLine, 0, len(domain.AllBloodTypes))
	for _, t := range domain.AllBloodTypes {
		line := ShortageLine{BloodType: t, Available: available[t], Needed: needed[t]}
		if gap := line.Needed - line.Available; gap > 0 {
			line.Shortage = gap
		}
		line.Severity = severity(line.Shortage)
		out = append(out, line)
	}
	return out
}

func severity(shortage int) string {
	switch {
	case shortage <= 0:
		return SeverityOK
	case shortage <= 2:
		return SeverityWatch
	default:
		return SeverityCritical
	}
}
