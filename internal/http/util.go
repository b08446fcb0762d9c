package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/geo"
)

// maxBodyBytes JSON 请求体上限 1MB
const maxBodyBytes = 1 << 20

// Messages shown to users.
const (
	msgAlreadyDonated = "You have already published a donation. Contact support to update details."
	msgRetry          = "Unable to save right now. Please retry."
	msgBadJSON        = "malformed JSON body"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// readBodyJSON decodes at most maxBytes; an empty body leaves out untouched.
func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func parsePoint(lat, lng string) (*geo.Point, bool) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || la < -90 || la > 90 {
		return nil, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil || lo < -180 || lo > 180 {
		return nil, false
	}
	return &geo.Point{Lat: la, Lng: lo}, true
}
