package stats

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"walkhub/internal/models"
)

// walkSource is the per-report variant for walk statistics: one algorithm
// for locally authored walks, another for the walks-manager mirror. Both
// produce the same result shape.
type walkSource interface {
	walkStats(ctx context.Context, p models.Period) (models.WalkStats, error)
}

// localWalks computes walk statistics from the local event store by running
// every non-deleted walk through the classifier and bucketing the results.
// The four bucket counts sum to the non-deleted total by construction.
type localWalks struct {
	events EventStore
	now    func() time.Time
	loc    *time.Location
}

func (s localWalks) walkStats(ctx context.Context, p models.Period) (models.WalkStats, error) {
	walks, err := s.events.WalksInRange(ctx, p.PeriodFrom, p.PeriodTo)
	if err != nil {
		return models.WalkStats{}, fmt.Errorf("walks in range: %w", err)
	}

	now := s.now()
	var out models.WalkStats
	leaders := newLeaderRollup()

	for _, w := range walks {
		bucket := ClassifyLocalWalk(w, now, s.loc)
		if bucket == BucketDeleted {
			continue
		}
		out.TotalWalks++
		item := projectWalk(w, s.loc)

		switch bucket {
		case BucketCancelled:
			out.CancelledWalks++
			out.CancelledWalksList = append(out.CancelledWalksList, item)
		case BucketEvening:
			out.EveningWalks++
			out.EveningWalksList = append(out.EveningWalksList, item)
		case BucketUnfilled:
			out.UnfilledSlots++
			out.UnfilledSlotsList = append(out.UnfilledSlotsList, item)
		case BucketMorning:
			out.MorningWalks++
			out.MorningWalksList = append(out.MorningWalksList, item)
		}

		// Everything that is not cancelled counts as confirmed, and only
		// confirmed walks contribute mileage, attendance and leader credit.
		if bucket != BucketCancelled {
			out.ConfirmedWalks++
			out.TotalMiles += w.DistanceMiles
			out.TotalAttendees += w.AttendeeCount
			leaders.add(localLeaderID(w), leaderName(w), leaderEmail(w), w.DistanceMiles)
		}
	}

	out.TotalMiles = Round2(out.TotalMiles)
	out.Leaders = leaders.sorted()

	known, err := s.historicalLeaderIDs(ctx, p.PeriodFrom)
	if err != nil {
		return models.WalkStats{}, err
	}
	out.NewLeaders = newLeaders(out.Leaders, known)
	return out, nil
}

// historicalLeaderIDs resolves the distinct normalized leader identities of
// every confirmed walk strictly before the cutoff, using the same candidate
// ordering as the current period so "new leader" comparisons hold.
func (s localWalks) historicalLeaderIDs(ctx context.Context, cutoff int64) (map[string]struct{}, error) {
	walks, err := s.events.ConfirmedWalksBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("confirmed walks before %d: %w", cutoff, err)
	}
	ids := make(map[string]struct{}, len(walks))
	for _, w := range walks {
		if id := Normalize(localLeaderID(w)); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// managerWalks computes walk statistics from the walks-manager mirror. The
// mirror carries an explicit status per event, so buckets come from status
// predicates and the morning count is derived arithmetically.
type managerWalks struct {
	events EventStore
	remote RemoteEventFetcher
	loc    *time.Location

	// Mirror history primed once per report; per-period cutoff sets are
	// derived locally from it instead of refetching [0, cutoff) per period.
	history       []models.Event
	historyCutoff int64
}

// primeHistory fetches the mirror's history up to the latest cutoff any
// period of the report will ask for. Returns a report-scoped copy.
func (s managerWalks) primeHistory(ctx context.Context, cutoff int64) (managerWalks, error) {
	history, err := s.remote.FetchMappedEvents(ctx, 0, cutoff)
	if err != nil {
		return s, fmt.Errorf("fetch mapped events before %d: %w", cutoff, err)
	}
	s.history = history
	s.historyCutoff = cutoff
	return s, nil
}

func (s managerWalks) walkStats(ctx context.Context, p models.Period) (models.WalkStats, error) {
	remote, err := s.remote.FetchMappedEvents(ctx, p.PeriodFrom, p.PeriodTo)
	if err != nil {
		return models.WalkStats{}, fmt.Errorf("fetch mapped events: %w", err)
	}

	var out models.WalkStats
	leaders := newLeaderRollup()

	// Leader credit starts from locally authored confirmed walks in range,
	// then remote observations merge into the same normalized-identity map.
	local, err := s.events.WalksInRange(ctx, p.PeriodFrom, p.PeriodTo)
	if err != nil {
		return models.WalkStats{}, fmt.Errorf("walks in range: %w", err)
	}
	for _, w := range local {
		if w.Deleted() || localCancelled(w) {
			continue
		}
		leaders.add(localLeaderID(w), leaderName(w), leaderEmail(w), w.DistanceMiles)
	}

	for _, e := range remote {
		if e.ItemType != models.ItemTypeWalk {
			continue
		}
		out.TotalWalks++
		item := projectWalk(e, s.loc)

		if managerCancelled(e) {
			out.CancelledWalks++
			out.CancelledWalksList = append(out.CancelledWalksList, item)
			continue
		}
		out.ConfirmedWalks++
		out.ConfirmedWalksList = append(out.ConfirmedWalksList, item)
		out.TotalMiles += e.DistanceMiles
		out.TotalAttendees += e.AttendeeCount
		if managerAwaitingLeader(e) {
			out.AwaitingLeaderWalks++
		} else {
			leaders.add(managerLeaderID(e), leaderName(e), leaderEmail(e), e.DistanceMiles)
		}
		if eveningStart(e, s.loc) {
			out.EveningWalks++
		}
	}

	out.UnfilledSlots = out.AwaitingLeaderWalks
	out.MorningWalks = MorningWalksCount(out.TotalWalks, out.CancelledWalks, out.EveningWalks, out.UnfilledSlots)
	out.TotalMiles = Round2(out.TotalMiles)
	out.Leaders = leaders.sorted()

	known, err := s.historicalLeaderIDs(ctx, p.PeriodFrom)
	if err != nil {
		return models.WalkStats{}, err
	}
	out.NewLeaders = newLeaders(out.Leaders, known)
	return out, nil
}

func (s managerWalks) historicalLeaderIDs(ctx context.Context, cutoff int64) (map[string]struct{}, error) {
	history := s.history
	if s.historyCutoff < cutoff {
		fetched, err := s.remote.FetchMappedEvents(ctx, 0, cutoff)
		if err != nil {
			return nil, fmt.Errorf("fetch mapped events before %d: %w", cutoff, err)
		}
		history = fetched
	}

	ids := make(map[string]struct{}, len(history))
	for _, e := range history {
		if e.ItemType != models.ItemTypeWalk || !managerConfirmed(e) {
			continue
		}
		if e.StartDateTime == nil || *e.StartDateTime >= cutoff {
			continue
		}
		if id := Normalize(managerLeaderID(e)); id != "" {
			ids[id] = struct{}{}
		}
	}

	// Locally authored confirmed walks count toward history too, resolved the
	// same way their leader credit was merged in.
	local, err := s.events.ConfirmedWalksBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("confirmed walks before %d: %w", cutoff, err)
	}
	for _, w := range local {
		if id := Normalize(localLeaderID(w)); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// newLeaders filters the period's leaders down to identities with no
// confirmed-walk history before the period start.
func newLeaders(leaders []models.LeaderStat, known map[string]struct{}) []models.LeaderStat {
	var out []models.LeaderStat
	for _, l := range leaders {
		if _, ok := known[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// kebab lowercases text and collapses runs of non-alphanumerics to hyphens.
func kebab(s string) string {
	s = slugStrip.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// projectWalk builds the report list item for one walk. The URL comes from
// the stored slug when present, otherwise from a kebab-cased title plus date.
func projectWalk(e models.Event, loc *time.Location) models.WalkListItem {
	id := e.GroupEventID
	if id == "" {
		id = strconv.FormatInt(e.ID, 10)
	}

	slug := e.URLPath
	if slug == "" {
		text := e.Title
		if e.StartDateTime != nil {
			text += " " + millisToTime(*e.StartDateTime, loc).Format("2006-01-02")
		}
		slug = kebab(text)
	}

	return models.WalkListItem{
		ID:         id,
		Title:      e.Title,
		StartDate:  e.StartDateTime,
		WalkLeader: leaderName(e),
		Distance:   Round2(e.DistanceMiles),
		URL:        "/walks/" + slug,
	}
}
