package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"walkhub/internal/apperrors"
	"walkhub/internal/models"
)

func testEngine(f *fakeStore, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return date(2024, time.June, 15, 12) }
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return NewEngine(cfg, f, f, f, f, f, nil)
}

func TestEngineRunAssemblesYears(t *testing.T) {
	earliest := date(2022, time.March, 5, 10)
	f := &fakeStore{
		walks: []models.Event{
			localWalk("w-2022", earliest, "M001", "Joan Fox", 6, 9),
			localWalk("w-2023", date(2023, time.April, 1, 10), "M002", "Norman Pratt", 8, 12),
		},
		socials: []models.Event{
			socialEvent("s-2023", date(2023, time.September, 1, 19), "M001", "Joan Fox"),
		},
		earliestWalk: ms(earliest),
	}

	engine := testEngine(f, Config{})
	resp, err := engine.Run(context.Background(),
		ms(date(2022, time.January, 1, 0)), ms(date(2024, time.June, 1, 0)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(resp.YearlyStats) != 2 {
		t.Fatalf("got %d yearly entries, want 2", len(resp.YearlyStats))
	}
	if resp.YearlyStats[0].Year != 2022 || resp.YearlyStats[1].Year != 2023 {
		t.Errorf("years = %d, %d, want 2022, 2023", resp.YearlyStats[0].Year, resp.YearlyStats[1].Year)
	}
	if resp.CurrentYear == nil || resp.CurrentYear.Year != 2023 {
		t.Errorf("current year = %+v, want the last period", resp.CurrentYear)
	}
	if resp.PreviousYear == nil || resp.PreviousYear.Year != 2022 {
		t.Errorf("previous year = %+v, want the first period", resp.PreviousYear)
	}
	if resp.TwoYearsAgo != nil {
		t.Errorf("two years ago = %+v, want nil with only 2 periods", resp.TwoYearsAgo)
	}
	if resp.EarliestDate != ms(earliest) {
		t.Errorf("earliest date = %d, want %d", resp.EarliestDate, ms(earliest))
	}

	if resp.CurrentYear.Walks.TotalWalks != 1 {
		t.Errorf("2023 walks = %d, want 1", resp.CurrentYear.Walks.TotalWalks)
	}
	if resp.CurrentYear.Social.TotalEvents != 1 {
		t.Errorf("2023 socials = %d, want 1", resp.CurrentYear.Social.TotalEvents)
	}
	if resp.PreviousYear.Walks.TotalWalks != 1 {
		t.Errorf("2022 walks = %d, want 1", resp.PreviousYear.Walks.TotalWalks)
	}
}

func TestEngineRunRejectsBadRange(t *testing.T) {
	engine := testEngine(&fakeStore{}, Config{})
	from := ms(date(2023, time.January, 1, 0))

	cases := []struct {
		name     string
		from, to int64
	}{
		{"from after to", from, from - 1},
		{"from equals to", from, from},
		{"zero from", 0, from},
		{"negative to", from, -5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := engine.Run(context.Background(), c.from, c.to)
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestEngineRunPrimesMirrorHistoryOnce(t *testing.T) {
	f := &fakeStore{
		remote: []models.Event{
			managerWalk("r-2021", date(2021, time.May, 1, 10), "", "Joan Fox", 6),
			managerWalk("r-2022", date(2022, time.May, 1, 10), "", "Joan Fox", 6),
			managerWalk("r-2023", date(2023, time.May, 1, 10), "", "Norman Pratt", 8),
		},
	}
	engine := testEngine(f, Config{WalkMode: ModeWalksManager})

	_, err := engine.Run(context.Background(),
		ms(date(2021, time.January, 1, 0)), ms(date(2024, time.January, 1, 0)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// One full-history fetch for the whole report; per-period cutoff sets are
	// derived from it, so only the ranged period fetches remain.
	fullHistory := 0
	for _, call := range f.fetchLog {
		if call[0] == 0 {
			fullHistory++
		}
	}
	if fullHistory != 1 {
		t.Errorf("mirror history fetched %d times, want once per report", fullHistory)
	}
}

func TestEngineRunManagerFetchFailureAborts(t *testing.T) {
	f := &fakeStore{remoteErr: errors.New("mirror unavailable")}
	engine := testEngine(f, Config{WalkMode: ModeWalksManager, SocialMode: ModeWalksManager})

	_, err := engine.Run(context.Background(),
		ms(date(2022, time.January, 1, 0)), ms(date(2024, time.January, 1, 0)))
	if err == nil {
		t.Fatal("want error when the mirror is unavailable, got nil")
	}
}

func TestEngineEarliestDatePicksMinimum(t *testing.T) {
	f := &fakeStore{
		earliestWalk:   ms(date(2021, time.May, 1, 0)),
		earliestSocial: ms(date(2020, time.February, 1, 0)),
		earliestPaid:   ms(date(2022, time.August, 1, 0)),
	}
	engine := testEngine(f, Config{})

	got, err := engine.EarliestDate(context.Background())
	if err != nil {
		t.Fatalf("EarliestDate: %v", err)
	}
	if want := ms(date(2020, time.February, 1, 0)); got != want {
		t.Errorf("earliest = %d, want %d", got, want)
	}
}

func TestEngineEarliestDateEmpty(t *testing.T) {
	engine := testEngine(&fakeStore{}, Config{})
	got, err := engine.EarliestDate(context.Background())
	if err != nil {
		t.Fatalf("EarliestDate: %v", err)
	}
	if got != 0 {
		t.Errorf("earliest = %d, want 0 with no data", got)
	}
}
