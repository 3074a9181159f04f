package stats

import (
	"math"
	"time"

	"walkhub/internal/models"
)

const millisPerYear = 365.25 * 24 * 60 * 60 * 1000

// Partition splits [fromMillis, toMillis) into calendar-year-aligned periods.
// The first period starts exactly at fromMillis and the last ends exactly at
// toMillis; interior boundaries fall on from + i years, so the periods are
// contiguous with no gaps or overlaps. A range shorter than half a year
// collapses to a single period spanning the whole request.
func Partition(fromMillis, toMillis int64, loc *time.Location) []models.Period {
	rangeInYears := float64(toMillis-fromMillis) / millisPerYear
	if rangeInYears == 0 {
		rangeInYears = 1
	}
	numPeriods := int(math.Round(rangeInYears))
	if numPeriods < 1 {
		numPeriods = 1
	}

	from := millisToTime(fromMillis, loc)
	periods := make([]models.Period, 0, numPeriods)
	for i := 0; i < numPeriods; i++ {
		periodFrom := fromMillis
		if i > 0 {
			periodFrom = timeToMillis(from.AddDate(i, 0, 0))
		}
		periodTo := toMillis
		if i < numPeriods-1 {
			periodTo = timeToMillis(from.AddDate(i+1, 0, 0))
		}
		periods = append(periods, models.Period{
			Year:       millisToTime(periodFrom, loc).Year(),
			PeriodFrom: periodFrom,
			PeriodTo:   periodTo,
		})
	}
	return periods
}

func millisToTime(ms int64, loc *time.Location) time.Time {
	return time.UnixMilli(ms).In(loc)
}

func timeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}
