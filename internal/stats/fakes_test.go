package stats

import (
	"context"
	"sync"
	"time"

	"walkhub/internal/models"
)

// fakeStore implements every engine collaborator from in-memory fixtures.
type fakeStore struct {
	walks     []models.Event
	socials   []models.Event
	claims    []models.ExpenseClaim
	snapshots []models.MembershipSnapshot
	deletions []models.DeletionAudit
	names     map[string]string
	remote    []models.Event
	remoteErr error

	earliestWalk   int64
	earliestSocial int64
	earliestPaid   int64

	mu       sync.Mutex
	fetchLog [][2]int64
}

func inRange(e models.Event, from, to int64) bool {
	if e.StartDateTime == nil {
		return true
	}
	return *e.StartDateTime >= from && *e.StartDateTime < to
}

func (f *fakeStore) WalksInRange(_ context.Context, from, to int64) ([]models.Event, error) {
	var out []models.Event
	for _, e := range f.walks {
		if inRange(e, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) SocialEventsInRange(_ context.Context, from, to int64) ([]models.Event, error) {
	var out []models.Event
	for _, e := range f.socials {
		if inRange(e, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ConfirmedWalksBefore(_ context.Context, cutoff int64) ([]models.Event, error) {
	var out []models.Event
	for _, e := range f.walks {
		if e.StartDateTime == nil || *e.StartDateTime >= cutoff {
			continue
		}
		if e.Deleted() || localCancelled(e) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) EarliestWalkDate(context.Context) (int64, bool, error) {
	return f.earliestWalk, f.earliestWalk != 0, nil
}

func (f *fakeStore) EarliestSocialEventDate(context.Context) (int64, bool, error) {
	return f.earliestSocial, f.earliestSocial != 0, nil
}

func (f *fakeStore) Claims(context.Context) ([]models.ExpenseClaim, error) {
	return f.claims, nil
}

func (f *fakeStore) EarliestPaidExpenseDate(context.Context) (int64, bool, error) {
	return f.earliestPaid, f.earliestPaid != 0, nil
}

func (f *fakeStore) LatestSnapshotBefore(_ context.Context, at int64) (*models.MembershipSnapshot, error) {
	var latest *models.MembershipSnapshot
	for i := range f.snapshots {
		s := &f.snapshots[i]
		if s.CreatedDate <= at && (latest == nil || s.CreatedDate > latest.CreatedDate) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeStore) DeletionCountBetween(_ context.Context, from, to int64) (int, error) {
	count := 0
	for _, d := range f.deletions {
		if d.DeletedAt >= from && d.DeletedAt <= to {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) DisplayName(_ context.Context, memberID string) (string, error) {
	return f.names[memberID], nil
}

func (f *fakeStore) FetchMappedEvents(_ context.Context, from, to int64) ([]models.Event, error) {
	f.mu.Lock()
	f.fetchLog = append(f.fetchLog, [2]int64{from, to})
	f.mu.Unlock()
	if f.remoteErr != nil {
		return nil, f.remoteErr
	}
	var out []models.Event
	for _, e := range f.remote {
		if e.StartDateTime != nil && (*e.StartDateTime < from || *e.StartDateTime >= to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func ms(t time.Time) int64 { return t.UnixMilli() }

func msp(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func date(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
