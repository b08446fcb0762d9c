package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// ReadHospitalsFile loads hospital reference data from .xlsx or .json. JSON
// may be a bare array or a document with a "hospitals" array.
func ReadHospitalsFile(path string) ([]domain.HospitalRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ParseHospitals(bytes.NewReader(raw))
	case ".json":
		return decodeHospitalsJSON(raw)
	default:
		return nil, fmt.Errorf("unsupported hospital file %q (want .xlsx or .json)", filepath.Base(path))
	}
}

func decodeHospitalsJSON(raw []byte) ([]domain.HospitalRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	var list []domain.HospitalRecord
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode hospitals: %w", err)
		}
	} else {
		var doc struct {
			Hospitals []domain.HospitalRecord `json:"hospitals"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode hospitals: %w", err)
		}
		list = doc.Hospitals
	}

	out := make([]domain.HospitalRecord, 0, len(list))
	for _, h := range list {
		if strings.TrimSpace(h.Name) == "" {
			continue
		}
		if h.ID == "" {
			h.ID = "hosp-" + uuid.NewString()
		}
		if h.ReadyTypes == nil {
			h.ReadyTypes = []domain.BloodType{}
		}
		out = append(out, h)
	}
	return out, nil
}
