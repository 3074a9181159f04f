package models

// Item types distinguish walks from social/group events. Input sources
// distinguish locally authored records from records mirrored out of the
// national walks manager.
const (
	ItemTypeWalk       = "walk"
	ItemTypeGroupEvent = "group-event"

	SourceLocal        = "local"
	SourceWalksManager = "walks-manager"

	StatusConfirmed      = "confirmed"
	StatusCancelled      = "cancelled"
	StatusAwaitingLeader = "awaiting_leader"
)

// Lifecycle entry types recorded against an event.
const (
	EventTypeApproved         = "approved"
	EventTypeDeleted          = "deleted"
	EventTypeAwaitingLeader   = "awaiting-leader"
	EventTypeAwaitingDetails  = "awaiting-details"
	EventTypeAwaitingApproval = "awaiting-approval"
)

// HistoryEntry is one lifecycle transition in an event's audit log.
type HistoryEntry struct {
	Type string `json:"type"`
	Date int64  `json:"date"` // epoch millis
}

// Event is a walk or social/group event record, normalized to the same shape
// whether it was authored locally or mapped from the walks-manager mirror.
type Event struct {
	ID                 int64          `json:"id"`
	GroupEventID       string         `json:"groupEventId"`
	ItemType           string         `json:"itemType"`
	GroupCode          string         `json:"groupCode"`
	GroupName          string         `json:"groupName"`
	InputSource        string         `json:"inputSource"`
	Status             string         `json:"status,omitempty"` // free text, source dependent
	StartDateTime      *int64         `json:"startDateTime,omitempty"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	DistanceMiles      float64        `json:"distanceMiles"`
	AttendeeCount      int            `json:"attendeeCount"`
	WalkLeaderName     string         `json:"walkLeaderName,omitempty"`
	ContactMemberID    string         `json:"contactMemberId,omitempty"`
	ContactEmail       string         `json:"contactEmail,omitempty"`
	ContactDisplayName string         `json:"contactDisplayName,omitempty"`
	OrganiserName      string         `json:"organiserName,omitempty"`
	URLPath            string         `json:"urlPath,omitempty"` // existing slug segment
	MigratedFromID     string         `json:"migratedFromId,omitempty"`
	History            []HistoryEntry `json:"events,omitempty"`
}

// Deleted reports whether the audit log carries a deletion entry.
func (e Event) Deleted() bool {
	for _, h := range e.History {
		if h.Type == EventTypeDeleted {
			return true
		}
	}
	return false
}

// ExpenseItem is one line on an expense claim.
type ExpenseItem struct {
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Date        int64   `json:"date"`
}

// ExpenseEvent is one lifecycle entry on a claim. A description of "Paid"
// marks the claim as settled.
type ExpenseEvent struct {
	Description string `json:"description"`
	Date        int64  `json:"date"`
}

// ExpenseEventPaid is the lifecycle description that marks a claim as paid.
const ExpenseEventPaid = "Paid"

// ExpenseClaim groups items and lifecycle events for one claimant.
type ExpenseClaim struct {
	ID            int64          `json:"id"`
	CreatedBy     string         `json:"createdBy,omitempty"` // member id of claimant
	CreatedByName string         `json:"createdByName,omitempty"`
	Items         []ExpenseItem  `json:"expenseItems"`
	Events        []ExpenseEvent `json:"expenseEvents"`
}

// MembershipSnapshot is a point-in-time bulk load of the membership list.
// Members are identified by membership number, falling back to email.
type MembershipSnapshot struct {
	ID          int64    `json:"id"`
	CreatedDate int64    `json:"createdDate"`
	MemberKeys  []string `json:"memberKeys"`
}

// DeletionAudit records when a member was removed.
type DeletionAudit struct {
	MemberKey string `json:"memberKey"`
	DeletedAt int64  `json:"deletedAt"`
}

// Period is one calendar-year-aligned slice of a comparison range.
// The interval is half open: [PeriodFrom, PeriodTo).
type Period struct {
	Year       int   `json:"year"`
	PeriodFrom int64 `json:"periodFrom"`
	PeriodTo   int64 `json:"periodTo"`
}

// LeaderStat is one leader's rollup within a period. ID is the normalized
// canonical identity; at most one entry exists per normalized id.
type LeaderStat struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	Count      int     `json:"count"`
	TotalMiles float64 `json:"totalMiles"`
}

// OrganiserStat is the social-event analogue of LeaderStat.
type OrganiserStat struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// WalkListItem is the projection of one walk for report lists.
type WalkListItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	StartDate  *int64  `json:"startDate,omitempty"`
	WalkLeader string  `json:"walkLeader"`
	Distance   float64 `json:"distance"`
	URL        string  `json:"url"`
}

// WalkStats is one period's walk statistics. In local mode the four bucket
// counts (morning, evening, cancelled, unfilled) partition the non-deleted
// walks exactly; in manager mode the morning count is derived by subtraction
// with a zero floor.
type WalkStats struct {
	TotalWalks          int            `json:"totalWalks"`
	ConfirmedWalks      int            `json:"confirmedWalks"`
	CancelledWalks      int            `json:"cancelledWalks"`
	EveningWalks        int            `json:"eveningWalks"`
	MorningWalks        int            `json:"morningWalks"`
	UnfilledSlots       int            `json:"unfilledSlots"`
	AwaitingLeaderWalks int            `json:"awaitingLeaderWalks"`
	TotalMiles          float64        `json:"totalMiles"`
	TotalAttendees      int            `json:"totalAttendees"`
	Leaders             []LeaderStat   `json:"leaders"`
	NewLeaders          []LeaderStat   `json:"newLeaders"`
	MorningWalksList    []WalkListItem `json:"morningWalksList,omitempty"`
	EveningWalksList    []WalkListItem `json:"eveningWalksList,omitempty"`
	CancelledWalksList  []WalkListItem `json:"cancelledWalksList,omitempty"`
	UnfilledSlotsList   []WalkListItem `json:"unfilledSlotsList,omitempty"`
	ConfirmedWalksList  []WalkListItem `json:"confirmedWalksList,omitempty"`
}

// SocialListItem is the projection of one social event for report lists.
type SocialListItem struct {
	ID          string `json:"id"`
	Date        *int64 `json:"date,omitempty"`
	Description string `json:"description"`
	Organiser   string `json:"organiser"`
}

// SocialStats is one period's social-event statistics.
type SocialStats struct {
	TotalEvents int              `json:"totalEvents"`
	Events      []SocialListItem `json:"events"`
	Organisers  []OrganiserStat  `json:"organisers"`
}

// ExpenseRow is one expense item flattened out of its claim.
type ExpenseRow struct {
	ClaimID     int64   `json:"claimId"`
	Payee       string  `json:"payee"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Date        int64   `json:"date"`
	PaidDate    int64   `json:"paidDate,omitempty"`
}

// PayeeSummary aggregates one claimant's paid expenses within a period.
type PayeeSummary struct {
	Name       string       `json:"name"`
	TotalCost  float64      `json:"totalCost"`
	ItemCount  int          `json:"itemCount"`
	ClaimCount int          `json:"claimCount"`
	Items      []ExpenseRow `json:"items"`
}

// ExpenseStats holds the paid and unpaid facets for one period.
type ExpenseStats struct {
	TotalPaid       float64        `json:"totalPaid"`
	PaidItemCount   int            `json:"paidItemCount"`
	PaidClaimCount  int            `json:"paidClaimCount"`
	Payees          []PayeeSummary `json:"payees"`
	UnpaidItems     []ExpenseRow   `json:"unpaidItems"`
	TotalUnpaid     float64        `json:"totalUnpaid"`
	UnpaidItemCount int            `json:"unpaidItemCount"`
}

// MembershipStats is the snapshot diff for one period.
type MembershipStats struct {
	TotalMembers int `json:"totalMembers"`
	Joiners      int `json:"joiners"`
	Leavers      int `json:"leavers"`
	Deletions    int `json:"deletions"`
}

// YearComparison aggregates one period's statistics.
type YearComparison struct {
	Year       int             `json:"year"`
	PeriodFrom int64           `json:"periodFrom"`
	PeriodTo   int64           `json:"periodTo"`
	Walks      WalkStats       `json:"walks"`
	Social     SocialStats     `json:"social"`
	Expenses   ExpenseStats    `json:"expenses"`
	Membership MembershipStats `json:"membership"`
}

// AGMStatsResponse is the year-comparison report. CurrentYear, PreviousYear
// and TwoYearsAgo are views onto the last three entries of YearlyStats,
// null when fewer periods exist.
type AGMStatsResponse struct {
	CurrentYear  *YearComparison  `json:"currentYear"`
	PreviousYear *YearComparison  `json:"previousYear"`
	TwoYearsAgo  *YearComparison  `json:"twoYearsAgo"`
	EarliestDate int64            `json:"earliestDate"`
	YearlyStats  []YearComparison `json:"yearlyStats"`
}

// EventKey is the natural identity used for duplicate detection and the
// stats-bucket grain used by the admin endpoints.
type EventKey struct {
	GroupEventID string `json:"groupEventId"`
	ItemType     string `json:"itemType"`
	GroupCode    string `json:"groupCode"`
	InputSource  string `json:"inputSource"`
}

// EventStats is one per-group-code bucket on the admin event-stats report.
type EventStats struct {
	ItemType       string `json:"itemType"`
	GroupCode      string `json:"groupCode"`
	GroupName      string `json:"groupName,omitempty"`
	InputSource    string `json:"inputSource"`
	EventCount     int    `json:"eventCount"`
	DuplicateCount int    `json:"duplicateCount"`
}
