package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"walkhub/internal/apperrors"
	"walkhub/internal/models"
)

// Mode selects which system of record backs a calculator.
type Mode string

const (
	ModeLocal        Mode = "local"
	ModeWalksManager Mode = "walks-manager"
)

// EventStore reads locally authored walk and social event records. All
// methods are read-only; ranges are half open over epoch millis.
type EventStore interface {
	WalksInRange(ctx context.Context, from, to int64) ([]models.Event, error)
	SocialEventsInRange(ctx context.Context, from, to int64) ([]models.Event, error)
	ConfirmedWalksBefore(ctx context.Context, cutoff int64) ([]models.Event, error)
	EarliestWalkDate(ctx context.Context) (int64, bool, error)
	EarliestSocialEventDate(ctx context.Context) (int64, bool, error)
}

// ExpenseStore reads expense claims with their items and lifecycle events.
type ExpenseStore interface {
	Claims(ctx context.Context) ([]models.ExpenseClaim, error)
	EarliestPaidExpenseDate(ctx context.Context) (int64, bool, error)
}

// MembershipStore reads membership snapshots and deletion audits.
type MembershipStore interface {
	LatestSnapshotBefore(ctx context.Context, at int64) (*models.MembershipSnapshot, error)
	DeletionCountBetween(ctx context.Context, from, to int64) (int, error)
}

// MemberLookup resolves a member id to a display name. Unknown members
// resolve to "".
type MemberLookup interface {
	DisplayName(ctx context.Context, memberID string) (string, error)
}

// RemoteEventFetcher returns walks-manager events normalized to the local
// Event shape for a date range.
type RemoteEventFetcher interface {
	FetchMappedEvents(ctx context.Context, from, to int64) ([]models.Event, error)
}

// Config fixes the report-wide choices: which source backs walks and social
// events, the wall-clock timezone for hour-of-day rules, and the clock.
type Config struct {
	WalkMode   Mode
	SocialMode Mode
	Location   *time.Location
	Now        func() time.Time
}

// Engine drives the AGM year-comparison report. It partitions the requested
// range, computes one YearComparison per period and assembles the response.
// Everything it touches is read-only.
type Engine struct {
	cfg        Config
	events     EventStore
	expenses   ExpenseStore
	walks      walkSource
	social     socialSource
	expense    expenseCalculator
	membership membershipCalculator
	log        *slog.Logger
}

// NewEngine wires the calculators once per configuration. The remote fetcher
// may be nil when both modes are local.
func NewEngine(cfg Config, events EventStore, expenses ExpenseStore, membership MembershipStore,
	members MemberLookup, remote RemoteEventFetcher, log *slog.Logger) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		cfg:        cfg,
		events:     events,
		expenses:   expenses,
		expense:    expenseCalculator{expenses: expenses, members: members},
		membership: membershipCalculator{membership: membership},
		log:        log,
	}

	if cfg.WalkMode == ModeWalksManager {
		e.walks = managerWalks{events: events, remote: remote, loc: cfg.Location}
	} else {
		e.walks = localWalks{events: events, now: cfg.Now, loc: cfg.Location}
	}
	if cfg.SocialMode == ModeWalksManager {
		e.social = managerSocial{remote: remote, loc: cfg.Location}
	} else {
		e.social = localSocial{events: events}
	}
	return e
}

// Run computes the year-comparison report for [fromMillis, toMillis).
// Periods are independent reads and run concurrently; assembly preserves
// chronological order. Any single failure aborts the whole report.
func (e *Engine) Run(ctx context.Context, fromMillis, toMillis int64) (*models.AGMStatsResponse, error) {
	if fromMillis <= 0 || toMillis <= 0 || fromMillis >= toMillis {
		return nil, fmt.Errorf("%w: date range [%d, %d)", apperrors.ErrInvalidInput, fromMillis, toMillis)
	}

	periods := Partition(fromMillis, toMillis, e.cfg.Location)
	e.log.Debug("agm report started", "from", fromMillis, "to", toMillis, "periods", len(periods))

	// Manager-sourced walks prime the mirror history once for the whole
	// report; each period then derives its cutoff set locally.
	walks := e.walks
	if mw, ok := walks.(managerWalks); ok {
		primed, err := mw.primeHistory(ctx, periods[len(periods)-1].PeriodFrom)
		if err != nil {
			return nil, err
		}
		walks = primed
	}

	yearly := make([]models.YearComparison, len(periods))
	errs := make([]error, len(periods))
	var wg sync.WaitGroup
	for i, p := range periods {
		wg.Add(1)
		go func(i int, p models.Period) {
			defer wg.Done()
			yearly[i], errs[i] = e.yearComparison(ctx, walks, p)
		}(i, p)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	earliest, err := e.EarliestDate(ctx)
	if err != nil {
		return nil, err
	}

	resp := &models.AGMStatsResponse{
		EarliestDate: earliest,
		YearlyStats:  yearly,
	}
	if n := len(yearly); n >= 1 {
		resp.CurrentYear = &yearly[n-1]
	}
	if n := len(yearly); n >= 2 {
		resp.PreviousYear = &yearly[n-2]
	}
	if n := len(yearly); n >= 3 {
		resp.TwoYearsAgo = &yearly[n-3]
	}
	return resp, nil
}

// yearComparison computes one period. The four calculators are independent
// reads; they run concurrently and the first error wins.
func (e *Engine) yearComparison(ctx context.Context, walks walkSource, p models.Period) (models.YearComparison, error) {
	out := models.YearComparison{Year: p.Year, PeriodFrom: p.PeriodFrom, PeriodTo: p.PeriodTo}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	wg.Add(4)
	go func() {
		defer wg.Done()
		out.Walks, errs[0] = walks.walkStats(ctx, p)
	}()
	go func() {
		defer wg.Done()
		out.Social, errs[1] = e.social.socialStats(ctx, p)
	}()
	go func() {
		defer wg.Done()
		out.Expenses, errs[2] = e.expense.expenseStats(ctx, p)
	}()
	go func() {
		defer wg.Done()
		out.Membership, errs[3] = e.membership.membershipStats(ctx, p)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return out, fmt.Errorf("period %d: %w", p.Year, err)
		}
	}
	return out, nil
}

// EarliestDate returns the minimum of the earliest walk, social event and
// paid-expense dates across all history, independent of any requested range.
// Zero when no data exists yet.
func (e *Engine) EarliestDate(ctx context.Context) (int64, error) {
	var earliest int64
	consider := func(v int64, ok bool) {
		if ok && (earliest == 0 || v < earliest) {
			earliest = v
		}
	}

	walk, ok, err := e.events.EarliestWalkDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("earliest walk date: %w", err)
	}
	consider(walk, ok)

	social, ok, err := e.events.EarliestSocialEventDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("earliest social event date: %w", err)
	}
	consider(social, ok)

	paid, ok, err := e.expenses.EarliestPaidExpenseDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("earliest paid expense date: %w", err)
	}
	consider(paid, ok)

	return earliest, nil
}
