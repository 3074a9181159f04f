package stats

import "walkhub/internal/models"

// DuplicateBucket keys duplicate counts at the same grain as the admin
// event-stats report.
type DuplicateBucket struct {
	ItemType    string
	GroupCode   string
	InputSource string
}

// CountDuplicates groups events by their natural key and reports the excess
// record count per (itemType, groupCode, inputSource) bucket. Records without
// a group event id are skipped; a bucket with no duplicates is absent from
// the result. Detection only: nothing is deleted here.
func CountDuplicates(keys []models.EventKey) map[DuplicateBucket]int {
	seen := make(map[models.EventKey]int)
	for _, k := range keys {
		if k.GroupEventID == "" {
			continue
		}
		seen[k]++
	}

	out := make(map[DuplicateBucket]int)
	for k, n := range seen {
		if n > 1 {
			bucket := DuplicateBucket{ItemType: k.ItemType, GroupCode: k.GroupCode, InputSource: k.InputSource}
			out[bucket] += n - 1
		}
	}
	return out
}
