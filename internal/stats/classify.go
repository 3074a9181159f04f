package stats

import (
	"regexp"
	"time"

	"walkhub/internal/models"
)

// WalkBucket is the mutually exclusive classification of a locally authored
// walk.
type WalkBucket int

const (
	BucketDeleted WalkBucket = iota
	BucketCancelled
	BucketEvening
	BucketUnfilled
	BucketMorning
)

func (b WalkBucket) String() string {
	switch b {
	case BucketDeleted:
		return "deleted"
	case BucketCancelled:
		return "cancelled"
	case BucketEvening:
		return "evening"
	case BucketUnfilled:
		return "unfilled"
	case BucketMorning:
		return "morning"
	}
	return "unknown"
}

// A walk starting at or after 15:00 wall clock counts as an evening walk.
const eveningHour = 15

// cancelledTitle is a fallback heuristic only: the status field is the
// primary cancellation signal.
var cancelledTitle = regexp.MustCompile(`(?i)cancelled`)

// ClassifyLocalWalk assigns exactly one bucket to a locally authored walk.
// The rule order is load bearing: deletion beats cancellation beats unfilled
// beats time of day. now and loc are injected so the unfilled and evening
// rules are deterministic under test.
func ClassifyLocalWalk(w models.Event, now time.Time, loc *time.Location) WalkBucket {
	if w.Deleted() {
		return BucketDeleted
	}
	if w.Status == models.StatusCancelled || cancelledTitle.MatchString(w.Title) {
		return BucketCancelled
	}
	if w.StartDateTime == nil {
		return BucketUnfilled
	}
	start := millisToTime(*w.StartDateTime, loc)
	if !start.After(now) && (w.ContactMemberID == "" || w.Title == "") {
		return BucketUnfilled
	}
	if start.Hour() >= eveningHour {
		return BucketEvening
	}
	return BucketMorning
}

// Manager-mirrored records encode state in their own status field; a missing
// status means confirmed.

func managerCancelled(e models.Event) bool {
	return e.Status == models.StatusCancelled || cancelledTitle.MatchString(e.Title)
}

func managerConfirmed(e models.Event) bool {
	return !managerCancelled(e)
}

func managerAwaitingLeader(e models.Event) bool {
	return e.Status == models.StatusAwaitingLeader
}

func localCancelled(e models.Event) bool {
	return e.Status == models.StatusCancelled || cancelledTitle.MatchString(e.Title)
}

// eveningStart reports whether the event starts in the evening band. Events
// without a start time never qualify.
func eveningStart(e models.Event, loc *time.Location) bool {
	if e.StartDateTime == nil {
		return false
	}
	return millisToTime(*e.StartDateTime, loc).Hour() >= eveningHour
}

// MorningWalksCount derives the manager-mode morning count by subtraction,
// floored at zero. Unlike local mode this is not guaranteed to be an exact
// partition; the manager mirror has no reliable unfilled signal.
func MorningWalksCount(total, cancelled, evening, unfilled int) int {
	n := total - cancelled - evening - unfilled
	if n < 0 {
		return 0
	}
	return n
}
