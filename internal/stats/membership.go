package stats

import (
	"context"
	"fmt"

	"walkhub/internal/models"
)

// membershipCalculator diffs the two nearest-preceding membership snapshots
// for a period. A missing snapshot contributes an empty member set; there is
// no retry or estimation when snapshots are sparse.
type membershipCalculator struct {
	membership MembershipStore
}

func (c membershipCalculator) membershipStats(ctx context.Context, p models.Period) (models.MembershipStats, error) {
	start, err := c.membership.LatestSnapshotBefore(ctx, p.PeriodFrom)
	if err != nil {
		return models.MembershipStats{}, fmt.Errorf("start snapshot: %w", err)
	}
	end, err := c.membership.LatestSnapshotBefore(ctx, p.PeriodTo)
	if err != nil {
		return models.MembershipStats{}, fmt.Errorf("end snapshot: %w", err)
	}

	startSet := memberSet(start)
	endSet := memberSet(end)

	var out models.MembershipStats
	out.TotalMembers = len(endSet)
	for key := range endSet {
		if _, ok := startSet[key]; !ok {
			out.Joiners++
		}
	}
	for key := range startSet {
		if _, ok := endSet[key]; !ok {
			out.Leavers++
		}
	}

	deletions, err := c.membership.DeletionCountBetween(ctx, p.PeriodFrom, p.PeriodTo)
	if err != nil {
		return models.MembershipStats{}, fmt.Errorf("deletion count: %w", err)
	}
	out.Deletions = deletions
	return out, nil
}

func memberSet(s *models.MembershipSnapshot) map[string]struct{} {
	if s == nil {
		return nil
	}
	set := make(map[string]struct{}, len(s.MemberKeys))
	for _, key := range s.MemberKeys {
		if key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
