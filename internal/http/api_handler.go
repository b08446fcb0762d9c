package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/geo"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/identity"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/notify"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/service"
)

// AlertFeed lists recently broadcast alerts (redis stream sink only).
type AlertFeed interface {
	Recent(ctx context.Context, count int64) ([]notify.Alert, error)
}

// APIDeps wires the /api/v1 handlers.
type APIDeps struct {
	Donations *service.DonationLedger
	Requests  *service.RequestLedger
	Sessions  *service.Sessions
	Matcher   *service.Matcher
	Alerts    *service.Alerts
	Mirror    *service.Mirror
	Identity  identity.Resolver
	AlertFeed AlertFeed // optional
	Logger    *zap.Logger
}

// APIHandler /api/v1 处理器，响应统一为 Result
type APIHandler struct {
	APIDeps
}

func NewAPIHandler(d APIDeps) *APIHandler {
	if d.Identity == nil {
		d.Identity = identity.Guest{}
	}
	return &APIHandler{APIDeps: d}
}

func (a *APIHandler) actor(w http.ResponseWriter, r *http.Request) (*domain.Actor, bool) {
	actor, err := a.Identity.Resolve(r)
	if err != nil {
		a.internal(w, "resolve identity", err)
		return nil, false
	}
	return actor, true
}

func (a *APIHandler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := readBodyJSON(r, maxBodyBytes, out); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(msgBadJSON))
		return false
	}
	return true
}

func (a *APIHandler) internal(w http.ResponseWriter, op string, err error) {
	a.Logger.Error("api: "+op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail(msgRetry))
}

func (a *APIHandler) AddDonation(w http.ResponseWriter, r *http.Request) {
	var p service.DonationPayload
	if !a.decode(w, r, &p) {
		return
	}
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	res, err := a.Donations.AddDonation(r.Context(), p, actor)
	if errors.Is(err, domain.ErrAlreadyDonated) {
		writeJSON(w, http.StatusConflict, FailCode(ResultAlreadyDonated, msgAlreadyDonated))
		return
	}
	if err != nil {
		a.internal(w, "add donation", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(res))
}

func (a *APIHandler) DonationStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	donated, err := a.Donations.HasDonated(r.Context(), actor)
	if err != nil {
		a.internal(w, "donation status", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"identity": domain.IdentityOf(actor),
		"donated":  donated,
	}))
}

func (a *APIHandler) AddTransfer(w http.ResponseWriter, r *http.Request) {
	var p service.DonationPayload
	if !a.decode(w, r, &p) {
		return
	}
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	res, err := a.Donations.AddTransfer(r.Context(), p, actor)
	if err != nil {
		a.internal(w, "add transfer", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(res))
}

func (a *APIHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !a.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.ID) == "" {
		writeJSON(w, http.StatusBadRequest, Fail("id is required"))
		return
	}
	inventory, err := a.Donations.ConsumeDonation(r.Context(), body.ID)
	if err != nil {
		a.internal(w, "consume", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"inventory": inventory}))
}

func (a *APIHandler) AddRequest(w http.ResponseWriter, r *http.Request) {
	var p service.RequestPayload
	if !a.decode(w, r, &p) {
		return
	}
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	res, err := a.Requests.AddRequest(r.Context(), p, actor)
	if err != nil {
		a.internal(w, "add request", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(res))
}

func (a *APIHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var p service.SessionPayload
	if !a.decode(w, r, &p) {
		return
	}
	rec, err := a.Sessions.SaveSession(r.Context(), p)
	if err != nil {
		a.internal(w, "save session", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(rec))
}

func (a *APIHandler) RaiseAlert(w http.ResponseWriter, r *http.Request) {
	var p service.AlertPayload
	if !a.decode(w, r, &p) {
		return
	}
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	res, err := a.Alerts.RaiseAlert(r.Context(), p, actor)
	if err != nil {
		a.internal(w, "raise alert", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(res))
}

func (a *APIHandler) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	if a.AlertFeed == nil {
		writeJSON(w, http.StatusOK, Ok([]notify.Alert{}))
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	alerts, err := a.AlertFeed.Recent(r.Context(), int64(limit))
	if err != nil {
		a.internal(w, "recent alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alerts))
}

func (a *APIHandler) Matches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	needed, ok := domain.ParseBloodType(q.Get("bloodType"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail("bloodType must be one of O-, O+, A-, A+, B-, B+, AB-, AB+"))
		return
	}
	var preds []service.InventoryPredicate
	if city := strings.TrimSpace(q.Get("city")); city != "" {
		preds = append(preds, service.InCity(city))
	}
	if minUnits := parseInt(q.Get("minUnits"), 0); minUnits > 0 {
		preds = append(preds, service.MinUnits(minUnits))
	}
	matches, err := a.Matcher.FindMatches(r.Context(), needed, preds...)
	if err != nil {
		a.internal(w, "find matches", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"bloodType":        needed,
		"compatibleDonors": domain.CompatibleDonors(needed),
		"matches":          matches,
	}))
}

func (a *APIHandler) Hospitals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.HospitalQuery{
		City: q.Get("city"),
		Text: q.Get("q"),
		Near: q.Get("near"),
	}
	if raw := strings.TrimSpace(q.Get("bloodType")); raw != "" {
		t, ok := domain.ParseBloodType(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, Fail("unknown bloodType"))
			return
		}
		query.BloodType = t
	}
	// 无 near 时可用 lat/lng，按最近的已知城市排序
	if query.Near == "" && (q.Get("lat") != "" || q.Get("lng") != "") {
		p, ok := parsePoint(q.Get("lat"), q.Get("lng"))
		if !ok {
			writeJSON(w, http.StatusBadRequest, Fail("lat and lng must both be numbers"))
			return
		}
		query.Near, _ = geo.NearestCity(p)
	}
	hospitals, err := a.Matcher.SearchHospitals(r.Context(), query)
	if err != nil {
		a.internal(w, "search hospitals", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(hospitals))
}

func (a *APIHandler) Shortage(w http.ResponseWriter, r *http.Request) {
	lines, err := a.Matcher.Shortage(r.Context())
	if err != nil {
		a.internal(w, "shortage", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(lines))
}

func (a *APIHandler) Distance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	km, ok := geo.CityDistanceKm(from, to)
	res := map[string]any{"from": from, "to": to, "available": ok}
	if ok {
		res["km"] = km
	}
	writeJSON(w, http.StatusOK, Ok(res))
}
