// Package client is the lifeline command-line runtime: ledgers run against a
// local key/value cache and changes are pushed to the API through the sync
// bridge.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/geo"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/notify"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/service"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/syncbridge"
)

// MsgAlreadyDonated is printed when the donation lock rejects a donation.
const MsgAlreadyDonated = "You have already published a donation. Contact support to update details."

// ErrUsage marks bad command lines; main prints usage and exits 2.
var ErrUsage = errors.New("usage")

// Options 客户端依赖
type Options struct {
	KV        store.KV
	Bridge    syncbridge.Bridge
	Notifier  notify.Notifier // nil: alerts are recorded but not broadcast
	Retention domain.Retention
	Metrics   *metrics.Metrics
	Out       io.Writer
	Logger    *zap.Logger
}

// App wires the ledgers over the local cache.
type App struct {
	docs      *store.Guarded
	session   *store.SessionCache
	donations *service.DonationLedger
	requests  *service.RequestLedger
	sessions  *service.Sessions
	matcher   *service.Matcher
	alerts    *service.Alerts
	refresher *syncbridge.Refresher
	out       io.Writer
	logger    *zap.Logger
}

type command struct {
	name    string
	summary string
	refresh bool
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"login", "register a session and make it current", false, (*App).login},
	{"logout", "forget the current session", false, (*App).logout},
	{"whoami", "show the current session", false, (*App).whoami},
	{"sync", "pull the shared state into the local cache", false, (*App).sync},
	{"state", "print the cached document", true, (*App).state},
	{"donate", "publish your donation (once per identity)", true, (*App).donate},
	{"transfer", "record a hospital transfer", true, (*App).transfer},
	{"request", "submit a blood request", true, (*App).request},
	{"alert", "raise an emergency request and broadcast it", true, (*App).alert},
	{"consume", "claim an inventory record by id", true, (*App).consume},
	{"matches", "list inventory compatible with a blood type", true, (*App).matches},
	{"hospitals", "search partner hospitals", true, (*App).hospitals},
	{"shortage", "available vs. requested units per type", true, (*App).shortage},
	{"distance", "estimated km between two known cities", false, (*App).distance},
}

func New(opts Options) *App {
	if opts.Bridge == nil {
		opts.Bridge = syncbridge.NopBridge{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	docs := store.NewGuarded(store.NewKVStore(opts.KV))
	matcher := service.NewMatcher(docs)
	requests := service.NewRequestLedger(docs, opts.Bridge, opts.Retention.Requests, opts.Metrics, opts.Logger)
	return &App{
		docs:      docs,
		session:   store.NewSessionCache(opts.KV, opts.Logger),
		donations: service.NewDonationLedger(docs, store.NewKVLockStore(opts.KV), opts.Bridge, opts.Retention.Inventory, opts.Metrics, opts.Logger),
		requests:  requests,
		sessions:  service.NewSessions(docs, opts.Bridge, opts.Retention.Sessions, opts.Metrics, opts.Logger),
		matcher:   matcher,
		alerts:    service.NewAlerts(matcher, requests, opts.Notifier, opts.Metrics, opts.Logger),
		refresher: syncbridge.NewRefresher(opts.Bridge, docs, 0, opts.Logger),
		out:       opts.Out,
		logger:    opts.Logger,
	}
}

// Usage writes the command list.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: lifeline <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}

// Run dispatches args[0]. Read/write commands first pull the shared state;
// a failed pull leaves the cache as is.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		if c.refresh {
			if _, err := a.refresher.Refresh(ctx); err != nil {
				a.logger.Warn("sync pull failed, using local cache", zap.Error(err))
			}
		}
		return c.run(a, ctx, args[1:])
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return nil
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// actor 当前会话；未登录为访客
func (a *App) actor(ctx context.Context) (*domain.Actor, error) {
	s, err := a.session.Current(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	return s.Actor(), nil
}

func bloodType(raw string, required bool) (domain.BloodType, error) {
	if strings.TrimSpace(raw) == "" && !required {
		return "", nil
	}
	t, ok := domain.ParseBloodType(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown blood type %q", ErrUsage, raw)
	}
	return t, nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	role := fs.String("role", domain.RoleIndividualDonor, `"Hospital" or "Individual donor"`)
	org := fs.String("org", "", "organization")
	contact := fs.String("contact", "", "phone")
	access := fs.Bool("hospital-access", false, "request hospital access (non-hospital roles)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: login: -name is required", ErrUsage)
	}
	p := service.SessionPayload{Name: *name, Email: *email, Role: *role, Organization: *org, Contact: *contact}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "hospital-access" {
			p.HospitalAccess = access
		}
	})
	rec, err := a.sessions.SaveSession(ctx, p)
	if err != nil {
		return err
	}
	if err := a.session.Save(ctx, rec); err != nil {
		return err
	}
	return a.print(rec)
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.session.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	s, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Fprintln(a.out, "Guest")
		return nil
	}
	return a.print(s)
}

func (a *App) sync(ctx context.Context, _ []string) error {
	applied, err := a.refresher.Refresh(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "remote unavailable, using local cache")
		a.logger.Warn("sync pull failed", zap.Error(err))
		return nil
	}
	if !applied {
		fmt.Fprintln(a.out, "no remote configured")
		return nil
	}
	doc, err := a.docs.Read(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "synced: %d inventory, %d requests, %d hospitals\n",
		len(doc.Inventory), len(doc.Requests), len(doc.Hospitals))
	return nil
}

func (a *App) state(ctx context.Context, _ []string) error {
	doc, err := a.docs.Read(ctx)
	if err != nil {
		return err
	}
	return a.print(doc)
}

func donationFlags(fs *flag.FlagSet) (typ *string, p *service.DonationPayload) {
	p = &service.DonationPayload{}
	typ = fs.String("type", "", "blood type, e.g. O-")
	fs.Var((*countFlag)(&p.Units), "units", "units (default 1)")
	fs.StringVar(&p.City, "city", "", "city")
	fs.StringVar(&p.Hospital, "hospital", "", "hospital or blood bank")
	fs.StringVar(&p.ReadyIn, "ready-in", "", "availability window")
	fs.StringVar(&p.Contact, "contact", "", "contact")
	return typ, p
}

func (a *App) donate(ctx context.Context, args []string) error {
	fs := a.flags("donate")
	typ, p := donationFlags(fs)
	if err := a.parse(fs, args); err != nil {
		return err
	}
	t, err := bloodType(*typ, true)
	if err != nil {
		return err
	}
	p.BloodType = t
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	res, err := a.donations.AddDonation(ctx, *p, actor)
	if err != nil {
		return err
	}
	return a.print(res.Record)
}

func (a *App) transfer(ctx context.Context, args []string) error {
	fs := a.flags("transfer")
	typ, p := donationFlags(fs)
	if err := a.parse(fs, args); err != nil {
		return err
	}
	t, err := bloodType(*typ, true)
	if err != nil {
		return err
	}
	p.BloodType = t
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	res, err := a.donations.AddTransfer(ctx, *p, actor)
	if err != nil {
		return err
	}
	return a.print(res.Record)
}

func (a *App) request(ctx context.Context, args []string) error {
	fs := a.flags("request")
	typ := fs.String("type", "", "blood type")
	var p service.RequestPayload
	fs.Var((*countFlag)(&p.Units), "units", "units")
	fs.StringVar(&p.City, "city", "", "city")
	fs.StringVar(&p.Urgency, "urgency", "", "urgency")
	fs.StringVar(&p.ClinicalReason, "reason", "", "clinical reason")
	fs.StringVar(&p.RequestedBy, "by", "", "requested by")
	fs.StringVar(&p.Contact, "contact", "", "contact")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	t, err := bloodType(*typ, true)
	if err != nil {
		return err
	}
	p.BloodType = t
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	res, err := a.requests.AddRequest(ctx, p, actor)
	if err != nil {
		return err
	}
	return a.print(res.Record)
}

func (a *App) alert(ctx context.Context, args []string) error {
	fs := a.flags("alert")
	typ := fs.String("type", "", "blood type")
	var p service.AlertPayload
	fs.Var((*countFlag)(&p.Units), "units", "units")
	fs.StringVar(&p.City, "city", "", "city")
	fs.StringVar(&p.ClinicalReason, "reason", "", "clinical reason")
	fs.StringVar(&p.RequestedBy, "by", "", "requested by")
	fs.StringVar(&p.Contact, "contact", "", "contact")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	t, err := bloodType(*typ, true)
	if err != nil {
		return err
	}
	p.BloodType = t
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	res, err := a.alerts.RaiseAlert(ctx, p, actor)
	if err != nil {
		return err
	}
	return a.print(res)
}

func (a *App) consume(ctx context.Context, args []string) error {
	fs := a.flags("consume")
	id := fs.String("id", "", "inventory record id")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("%w: consume: -id is required", ErrUsage)
	}
	inventory, err := a.donations.ConsumeDonation(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d records remain\n", len(inventory))
	return nil
}

func (a *App) matches(ctx context.Context, args []string) error {
	fs := a.flags("matches")
	typ := fs.String("type", "", "needed blood type")
	city := fs.String("city", "", "only this city")
	minUnits := fs.Int("min-units", 0, "only records with at least n units")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	t, err := bloodType(*typ, true)
	if err != nil {
		return err
	}
	var preds []service.InventoryPredicate
	if *city != "" {
		preds = append(preds, service.InCity(*city))
	}
	if *minUnits > 0 {
		preds = append(preds, service.MinUnits(*minUnits))
	}
	out, err := a.matcher.FindMatches(ctx, t, preds...)
	if err != nil {
		return err
	}
	return a.print(out)
}

func (a *App) hospitals(ctx context.Context, args []string) error {
	fs := a.flags("hospitals")
	typ := fs.String("type", "", "needed blood type")
	var q service.HospitalQuery
	fs.StringVar(&q.City, "city", "", "city")
	fs.StringVar(&q.Text, "q", "", "name or bank partner contains")
	fs.StringVar(&q.Near, "near", "", "sort nearest first from this city")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	t, err := bloodType(*typ, false)
	if err != nil {
		return err
	}
	q.BloodType = t
	out, err := a.matcher.SearchHospitals(ctx, q)
	if err != nil {
		return err
	}
	return a.print(out)
}

func (a *App) shortage(ctx context.Context, _ []string) error {
	lines, err := a.matcher.Shortage(ctx)
	if err != nil {
		return err
	}
	return a.print(lines)
}

func (a *App) distance(_ context.Context, args []string) error {
	fs := a.flags("distance")
	from := fs.String("from", "", "city")
	to := fs.String("to", "", "city")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	km, ok := geo.CityDistanceKm(*from, *to)
	if !ok {
		known := geo.Cities()
		sort.Strings(known)
		fmt.Fprintf(a.out, "distance unavailable (known cities: %s)\n", strings.Join(known, ", "))
		return nil
	}
	fmt.Fprintf(a.out, "%.1f km\n", km)
	return nil
}

// countFlag binds -units to a domain.Count
type countFlag domain.Count

func (c *countFlag) String() string { return fmt.Sprint(int(*c)) }

func (c *countFlag) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("units must be a whole number")
	}
	*c = countFlag(n)
	return nil
}
