package stats

import (
	"sort"
	"strings"

	"walkhub/internal/models"
)

// ResolveFirst returns the first candidate that is neither empty nor
// whitespace-free empty, or "" when none qualifies. Trimming is a Normalize
// concern; a candidate of "  a  " is returned as is.
func ResolveFirst(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// Normalize canonicalizes an identity: surrounding whitespace is trimmed and
// a single trailing period is stripped. Idempotent.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ".")
	return strings.TrimSpace(text)
}

// leaderRollup accumulates per-identity walk counts and mileage keyed by
// normalized id. Name and email are first-write-wins: the first non-empty
// value observed for an identity is kept.
type leaderRollup struct {
	byID  map[string]*models.LeaderStat
	order []string
}

func newLeaderRollup() *leaderRollup {
	return &leaderRollup{byID: make(map[string]*models.LeaderStat)}
}

func (r *leaderRollup) add(id, name, email string, miles float64) {
	key := Normalize(id)
	if key == "" {
		return
	}
	stat, ok := r.byID[key]
	if !ok {
		stat = &models.LeaderStat{ID: key}
		r.byID[key] = stat
		r.order = append(r.order, key)
	}
	stat.Count++
	stat.TotalMiles += miles
	if stat.Name == "" && name != "" {
		stat.Name = strings.TrimSpace(name)
	}
	if stat.Email == "" && email != "" {
		stat.Email = strings.TrimSpace(email)
	}
}

// sorted returns the rollup ordered by count descending, then total miles
// descending.
func (r *leaderRollup) sorted() []models.LeaderStat {
	out := make([]models.LeaderStat, 0, len(r.byID))
	for _, key := range r.order {
		out = append(out, *r.byID[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].TotalMiles > out[j].TotalMiles
	})
	return out
}

// organiserRollup accumulates per-identity social event counts.
type organiserRollup struct {
	byID  map[string]*models.OrganiserStat
	order []string
}

func newOrganiserRollup() *organiserRollup {
	return &organiserRollup{byID: make(map[string]*models.OrganiserStat)}
}

func (r *organiserRollup) add(id, name string) {
	key := Normalize(id)
	if key == "" {
		return
	}
	stat, ok := r.byID[key]
	if !ok {
		stat = &models.OrganiserStat{ID: key}
		r.byID[key] = stat
		r.order = append(r.order, key)
	}
	stat.Count++
	if stat.Name == "" && name != "" {
		stat.Name = strings.TrimSpace(name)
	}
}

// sorted returns the rollup ordered by count descending, then name ascending.
func (r *organiserRollup) sorted() []models.OrganiserStat {
	out := make([]models.OrganiserStat, 0, len(r.byID))
	for _, key := range r.order {
		out = append(out, *r.byID[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Candidate orderings differ by data source. The manager mirror keys leaders
// by the published leader name, while locally authored walks carry a member
// id on the contact record and that takes priority.

func managerLeaderID(e models.Event) string {
	return ResolveFirst(e.WalkLeaderName, e.ContactMemberID, e.ContactEmail, e.ContactDisplayName)
}

func localLeaderID(e models.Event) string {
	return ResolveFirst(e.ContactMemberID, e.ContactEmail, e.ContactDisplayName, e.WalkLeaderName)
}

func leaderName(e models.Event) string {
	return ResolveFirst(e.WalkLeaderName, e.ContactDisplayName)
}

func leaderEmail(e models.Event) string {
	return ResolveFirst(e.ContactEmail)
}

func localOrganiserID(e models.Event) string {
	return ResolveFirst(e.ContactMemberID, e.OrganiserName, e.ContactDisplayName)
}

// Remote social data has no separate organiser identifier, so the resolved
// name is the identity.
func managerOrganiserName(e models.Event) string {
	return ResolveFirst(e.OrganiserName, e.ContactDisplayName, e.WalkLeaderName)
}

func localOrganiserName(e models.Event) string {
	return ResolveFirst(e.OrganiserName, e.ContactDisplayName)
}
