// walkseeder populates a walkhub database with demonstration club data:
// members, several seasons of walks with lifecycle history, social events,
// expense claims and quarterly membership snapshots. It can also import a
// real membership CSV as a snapshot with -members-file.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"walkhub/internal/database"
	"walkhub/internal/importer"
	"walkhub/internal/models"
	"walkhub/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/schollz/progressbar/v3"
)

type seedConfig struct {
	DBPath         string
	MigrationsPath string
	Years          int
	WalksPerYear   int
	SocialsPerYear int
	Members        int
	MembersFile    string
	Seed           int64
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func parseFlags() *seedConfig {
	cfg := &seedConfig{}
	flag.StringVar(&cfg.DBPath, "db", "walkhub.db", "Path to SQLite database")
	flag.StringVar(&cfg.MigrationsPath, "migrations", "migrations", "Path to migrations directory")
	flag.IntVar(&cfg.Years, "years", 3, "Number of years of history to generate")
	flag.IntVar(&cfg.WalksPerYear, "walks-per-year", 60, "Walks generated per year")
	flag.IntVar(&cfg.SocialsPerYear, "socials-per-year", 12, "Social events generated per year")
	flag.IntVar(&cfg.Members, "members", 80, "Members generated")
	flag.StringVar(&cfg.MembersFile, "members-file", "", "Membership CSV to import as a snapshot (skips generated snapshots)")
	flag.Int64Var(&cfg.Seed, "seed", 1, "Random seed")
	flag.Parse()
	return cfg
}

var firstNames = []string{"Alice", "Brian", "Carol", "David", "Elaine", "Frank", "Grace", "Harold", "Irene", "James", "Kathleen", "Leonard", "Margaret", "Norman", "Olive", "Peter"}
var lastNames = []string{"Ashford", "Barnes", "Chandler", "Dunning", "Elliott", "Foster", "Goodwin", "Hartley", "Ingram", "Jarvis", "Kemp", "Lovell", "Mercer", "Naylor", "Osborne", "Pratt"}
var walkAreas = []string{"Wye Valley", "Stour Valley", "North Downs", "Crab and Winkle Way", "Saxon Shore", "Elham Valley", "Pilgrims Way", "Royal Military Canal"}

func run(cfg *seedConfig) error {
	os.Setenv("DATABASE_TYPE", "sqlite")
	os.Setenv("DATABASE_URL", cfg.DBPath)

	db, err := database.InitDB()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := database.MigrateWithPath(db, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ctx := context.Background()
	st := store.New(db)
	now := time.Now()
	start := now.AddDate(-cfg.Years, 0, 0)

	members, err := seedMembers(db, rng, cfg.Members)
	if err != nil {
		return fmt.Errorf("seed members: %w", err)
	}
	log.Printf("Seeded %d members", len(members))

	total := cfg.Years * (cfg.WalksPerYear + cfg.SocialsPerYear)
	bar := progressbar.Default(int64(total), "seeding events")
	for y := 0; y < cfg.Years; y++ {
		yearStart := start.AddDate(y, 0, 0)
		for i := 0; i < cfg.WalksPerYear; i++ {
			if err := seedWalk(db, rng, members, yearStart, now); err != nil {
				return fmt.Errorf("seed walk: %w", err)
			}
			bar.Add(1)
		}
		for i := 0; i < cfg.SocialsPerYear; i++ {
			if err := seedSocial(db, rng, members, yearStart); err != nil {
				return fmt.Errorf("seed social: %w", err)
			}
			bar.Add(1)
		}
	}

	if err := seedExpenses(db, rng, members, start, cfg.Years); err != nil {
		return fmt.Errorf("seed expenses: %w", err)
	}

	if err := seedDeletions(db, rng, members, start, cfg.Years); err != nil {
		return fmt.Errorf("seed deletions: %w", err)
	}

	if cfg.MembersFile != "" {
		id, count, err := importer.ImportMembershipSnapshot(ctx, st, cfg.MembersFile, now.UnixMilli())
		if err != nil {
			return fmt.Errorf("import members file: %w", err)
		}
		log.Printf("Imported %d members from %s as snapshot %d", count, cfg.MembersFile, id)
		return nil
	}

	if err := seedSnapshots(ctx, st, rng, members, start, cfg.Years); err != nil {
		return fmt.Errorf("seed snapshots: %w", err)
	}
	log.Printf("Done: %s", cfg.DBPath)
	return nil
}

type seedMember struct {
	id    string
	name  string
	email string
}

func seedMembers(db *sql.DB, rng *rand.Rand, count int) ([]seedMember, error) {
	members := make([]seedMember, 0, count)
	for i := 0; i < count; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		m := seedMember{
			id:    fmt.Sprintf("M%04d", i+1),
			name:  first + " " + last,
			email: fmt.Sprintf("%s.%s.%d@example.org", first, last, i+1),
		}
		_, err := db.Exec(`
			INSERT INTO members (id, membership_number, first_name, last_name, email)
			VALUES (?, ?, ?, ?, ?)`,
			m.id, fmt.Sprintf("%06d", 100000+i), first, last, m.email)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func seedWalk(db *sql.DB, rng *rand.Rand, members []seedMember, yearStart, now time.Time) error {
	leader := members[rng.Intn(len(members))]
	area := walkAreas[rng.Intn(len(walkAreas))]
	day := yearStart.AddDate(0, 0, rng.Intn(364))
	hour := 10
	if rng.Intn(5) == 0 {
		hour = 18 // evening walk
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)

	title := fmt.Sprintf("%s circular", area)
	status := models.StatusConfirmed
	if rng.Intn(20) == 0 {
		status = models.StatusCancelled
		title = "CANCELLED: " + title
	}

	res, err := db.Exec(`
		INSERT INTO events (group_event_id, item_type, group_code, group_name, input_source,
			status, start_date_time, title, distance_miles, attendee_count,
			walk_leader_name, contact_member_id, contact_email, contact_display_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fmt.Sprintf("walk-%d", rng.Int63()), models.ItemTypeWalk, "KENT01", "Kent Weald Walkers",
		models.SourceLocal, status, start.UnixMilli(), title,
		4+rng.Float64()*8, rng.Intn(18),
		leader.name, leader.id, leader.email, leader.name)
	if err != nil {
		return err
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO event_history (event_id, event_type, event_date) VALUES (?, ?, ?)`,
		eventID, models.EventTypeApproved, start.AddDate(0, 0, -14).UnixMilli())
	if err != nil {
		return err
	}
	// A few records carry a deletion entry so reports exercise that path.
	if rng.Intn(40) == 0 {
		_, err = db.Exec(`
			INSERT INTO event_history (event_id, event_type, event_date) VALUES (?, ?, ?)`,
			eventID, models.EventTypeDeleted, start.AddDate(0, 0, -7).UnixMilli())
	}
	return err
}

func seedSocial(db *sql.DB, rng *rand.Rand, members []seedMember, yearStart time.Time) error {
	organiser := members[rng.Intn(len(members))]
	day := yearStart.AddDate(0, rng.Intn(12), rng.Intn(28))
	start := time.Date(day.Year(), day.Month(), day.Day(), 19, 30, 0, 0, time.UTC)

	_, err := db.Exec(`
		INSERT INTO events (group_event_id, item_type, group_code, group_name, input_source,
			start_date_time, title, organiser_name, contact_member_id, contact_display_name, attendee_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fmt.Sprintf("social-%d", rng.Int63()), models.ItemTypeGroupEvent, "KENT01", "Kent Weald Walkers",
		models.SourceLocal, start.UnixMilli(),
		fmt.Sprintf("%s social evening", start.Month()), organiser.name, organiser.id, organiser.name, 10+rng.Intn(30))
	return err
}

func seedExpenses(db *sql.DB, rng *rand.Rand, members []seedMember, start time.Time, years int) error {
	descriptions := []string{"Minibus hire", "Hall hire", "First aid supplies", "Printing", "Refreshments"}
	for i := 0; i < years*8; i++ {
		claimant := members[rng.Intn(len(members))]
		day := start.AddDate(0, 0, rng.Intn(years*364))

		res, err := db.Exec(`
			INSERT INTO expense_claims (created_by, created_by_name, created_at) VALUES (?, ?, ?)`,
			claimant.id, claimant.name, day.UnixMilli())
		if err != nil {
			return err
		}
		claimID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		items := 1 + rng.Intn(3)
		for j := 0; j < items; j++ {
			_, err = db.Exec(`
				INSERT INTO expense_items (claim_id, description, cost, item_date) VALUES (?, ?, ?, ?)`,
				claimID, descriptions[rng.Intn(len(descriptions))],
				5+rng.Float64()*60, day.AddDate(0, 0, j).UnixMilli())
			if err != nil {
				return err
			}
		}

		_, err = db.Exec(`
			INSERT INTO expense_events (claim_id, description, event_date) VALUES (?, ?, ?)`,
			claimID, "Submitted", day.UnixMilli())
		if err != nil {
			return err
		}
		if rng.Intn(4) != 0 { // most claims get paid
			_, err = db.Exec(`
				INSERT INTO expense_events (claim_id, description, event_date) VALUES (?, ?, ?)`,
				claimID, models.ExpenseEventPaid, day.AddDate(0, 0, 21).UnixMilli())
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func seedDeletions(db *sql.DB, rng *rand.Rand, members []seedMember, start time.Time, years int) error {
	for i := 0; i < years*2; i++ {
		m := members[rng.Intn(len(members))]
		at := start.AddDate(0, 0, rng.Intn(years*364))
		if _, err := db.Exec(`
			INSERT INTO member_deletions (member_key, deleted_at) VALUES (?, ?)`,
			m.id, at.UnixMilli()); err != nil {
			return err
		}
	}
	return nil
}

func seedSnapshots(ctx context.Context, st *store.Store, rng *rand.Rand, members []seedMember, start time.Time, years int) error {
	// Quarterly snapshots with slow churn so joiner/leaver diffs are nonzero.
	active := make([]string, 0, len(members))
	for _, m := range members {
		active = append(active, m.id)
	}

	quarters := years * 4
	for q := 0; q <= quarters; q++ {
		at := start.AddDate(0, q*3, 0)
		if rng.Intn(2) == 0 && len(active) > 10 {
			active = active[1:] // a leaver
		}
		keys := append([]string(nil), active...)
		for j := 0; j < rng.Intn(3); j++ {
			keys = append(keys, fmt.Sprintf("G%04d-%d", q, j)) // joiners
		}
		if _, err := st.InsertSnapshot(ctx, at.UnixMilli(), keys); err != nil {
			return err
		}
	}
	return nil
}
