package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"walkhub/internal/models"
)

// Store wraps the read queries the statistics engine needs, plus the
// stats-bucket-grain admin mutations. The engine side is strictly read-only.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const eventColumns = `id, group_event_id, item_type, group_code, group_name, input_source,
	status, start_date_time, title, description, distance_miles, attendee_count,
	walk_leader_name, contact_member_id, contact_email, contact_display_name,
	organiser_name, url_path, migrated_from_id`

func scanEvent(rows *sql.Rows) (models.Event, error) {
	var e models.Event
	var status, description, leader, memberID, email, display, organiser, urlPath, migrated sql.NullString
	var start sql.NullInt64
	err := rows.Scan(
		&e.ID, &e.GroupEventID, &e.ItemType, &e.GroupCode, &e.GroupName, &e.InputSource,
		&status, &start, &e.Title, &description, &e.DistanceMiles, &e.AttendeeCount,
		&leader, &memberID, &email, &display, &organiser, &urlPath, &migrated,
	)
	if err != nil {
		return e, err
	}
	e.Status = status.String
	e.Description = description.String
	e.WalkLeaderName = leader.String
	e.ContactMemberID = memberID.String
	e.ContactEmail = email.String
	e.ContactDisplayName = display.String
	e.OrganiserName = organiser.String
	e.URLPath = urlPath.String
	e.MigratedFromID = migrated.String
	if start.Valid {
		v := start.Int64
		e.StartDateTime = &v
	}
	return e, nil
}

func (s *Store) eventsInRange(ctx context.Context, itemType string, from, to int64) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE item_type = ? AND start_date_time >= ? AND start_date_time < ?
		ORDER BY start_date_time
	`, itemType, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	index := make(map[int64]int)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		index[e.ID] = len(events)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	// Attach lifecycle history in one pass.
	hrows, err := s.db.QueryContext(ctx, `
		SELECT event_id, event_type, event_date
		FROM event_history
		WHERE event_id IN (
			SELECT id FROM events
			WHERE item_type = ? AND start_date_time >= ? AND start_date_time < ?
		)
		ORDER BY event_date
	`, itemType, from, to)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var eventID int64
		var entry models.HistoryEntry
		if err := hrows.Scan(&eventID, &entry.Type, &entry.Date); err != nil {
			return nil, err
		}
		if i, ok := index[eventID]; ok {
			events[i].History = append(events[i].History, entry)
		}
	}
	return events, hrows.Err()
}

// WalksInRange returns walks with a start in [from, to), lifecycle history
// attached. Deleted records are included; classification excludes them.
func (s *Store) WalksInRange(ctx context.Context, from, to int64) ([]models.Event, error) {
	return s.eventsInRange(ctx, models.ItemTypeWalk, from, to)
}

// SocialEventsInRange returns social/group events with a start in [from, to).
func (s *Store) SocialEventsInRange(ctx context.Context, from, to int64) ([]models.Event, error) {
	return s.eventsInRange(ctx, models.ItemTypeGroupEvent, from, to)
}

// ConfirmedWalksBefore returns non-deleted, non-cancelled walks starting
// strictly before the cutoff. Used for historical leader identity sets.
func (s *Store) ConfirmedWalksBefore(ctx context.Context, cutoff int64) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		WHERE e.item_type = ?
		  AND e.start_date_time < ?
		  AND (e.status IS NULL OR e.status != ?)
		  AND LOWER(e.title) NOT LIKE '%cancelled%'
		  AND NOT EXISTS (
			SELECT 1 FROM event_history h
			WHERE h.event_id = e.id AND h.event_type = ?
		  )
	`, models.ItemTypeWalk, cutoff, models.StatusCancelled, models.EventTypeDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) earliestEventDate(ctx context.Context, itemType string) (int64, bool, error) {
	var earliest sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(start_date_time) FROM events
		WHERE item_type = ? AND start_date_time IS NOT NULL
	`, itemType).Scan(&earliest)
	if err != nil {
		return 0, false, err
	}
	return earliest.Int64, earliest.Valid, nil
}

func (s *Store) EarliestWalkDate(ctx context.Context) (int64, bool, error) {
	return s.earliestEventDate(ctx, models.ItemTypeWalk)
}

func (s *Store) EarliestSocialEventDate(ctx context.Context) (int64, bool, error) {
	return s.earliestEventDate(ctx, models.ItemTypeGroupEvent)
}

// Claims loads every expense claim with its items and lifecycle events.
func (s *Store) Claims(ctx context.Context) ([]models.ExpenseClaim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_by, created_by_name FROM expense_claims ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []models.ExpenseClaim
	index := make(map[int64]int)
	for rows.Next() {
		var c models.ExpenseClaim
		var createdBy, createdByName sql.NullString
		if err := rows.Scan(&c.ID, &createdBy, &createdByName); err != nil {
			return nil, err
		}
		c.CreatedBy = createdBy.String
		c.CreatedByName = createdByName.String
		index[c.ID] = len(claims)
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	irows, err := s.db.QueryContext(ctx, `
		SELECT claim_id, description, cost, item_date FROM expense_items ORDER BY item_date
	`)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var claimID int64
		var item models.ExpenseItem
		if err := irows.Scan(&claimID, &item.Description, &item.Cost, &item.Date); err != nil {
			return nil, err
		}
		if i, ok := index[claimID]; ok {
			claims[i].Items = append(claims[i].Items, item)
		}
	}
	if err := irows.Err(); err != nil {
		return nil, err
	}

	erows, err := s.db.QueryContext(ctx, `
		SELECT claim_id, description, event_date FROM expense_events ORDER BY event_date
	`)
	if err != nil {
		return nil, err
	}
	defer erows.Close()
	for erows.Next() {
		var claimID int64
		var ev models.ExpenseEvent
		if err := erows.Scan(&claimID, &ev.Description, &ev.Date); err != nil {
			return nil, err
		}
		if i, ok := index[claimID]; ok {
			claims[i].Events = append(claims[i].Events, ev)
		}
	}
	return claims, erows.Err()
}

func (s *Store) EarliestPaidExpenseDate(ctx context.Context) (int64, bool, error) {
	var earliest sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(event_date) FROM expense_events WHERE description = ?
	`, models.ExpenseEventPaid).Scan(&earliest)
	if err != nil {
		return 0, false, err
	}
	return earliest.Int64, earliest.Valid, nil
}

// LatestSnapshotBefore returns the membership snapshot with the latest
// created date at or before the given instant, nil when none exists.
func (s *Store) LatestSnapshotBefore(ctx context.Context, at int64) (*models.MembershipSnapshot, error) {
	var snap models.MembershipSnapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_date FROM membership_snapshots
		WHERE created_date <= ?
		ORDER BY created_date DESC LIMIT 1
	`, at).Scan(&snap.ID, &snap.CreatedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT member_key FROM snapshot_members WHERE snapshot_id = ?
	`, snap.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		snap.MemberKeys = append(snap.MemberKeys, key)
	}
	return &snap, rows.Err()
}

func (s *Store) DeletionCountBetween(ctx context.Context, from, to int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM member_deletions WHERE deleted_at >= ? AND deleted_at <= ?
	`, from, to).Scan(&count)
	return count, err
}

// DisplayName resolves a member id to "First Last". Unknown ids resolve to
// an empty string, not an error.
func (s *Store) DisplayName(ctx context.Context, memberID string) (string, error) {
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT first_name, last_name FROM members WHERE id = ?
	`, memberID).Scan(&first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(first.String + " " + last.String), nil
}

// EventKeys returns every event's natural key for duplicate detection.
func (s *Store) EventKeys(ctx context.Context) ([]models.EventKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_event_id, item_type, group_code, input_source FROM events
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.EventKey
	for rows.Next() {
		var k models.EventKey
		if err := rows.Scan(&k.GroupEventID, &k.ItemType, &k.GroupCode, &k.InputSource); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// EventStatsRows returns record counts per (itemType, groupCode, inputSource)
// bucket. Duplicate annotations are layered on by the handler.
func (s *Store) EventStatsRows(ctx context.Context) ([]models.EventStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_type, group_code, MAX(group_name), input_source, COUNT(*)
		FROM events
		GROUP BY item_type, group_code, input_source
		ORDER BY group_code, item_type, input_source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EventStats
	for rows.Next() {
		var es models.EventStats
		var groupName sql.NullString
		if err := rows.Scan(&es.ItemType, &es.GroupCode, &groupName, &es.InputSource, &es.EventCount); err != nil {
			return nil, err
		}
		es.GroupName = groupName.String
		out = append(out, es)
	}
	return out, rows.Err()
}

// BulkDelete removes every event in one stats bucket, history first.
func (s *Store) BulkDelete(ctx context.Context, itemType, groupCode, inputSource string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM event_history WHERE event_id IN (
			SELECT id FROM events WHERE item_type = ? AND group_code = ? AND input_source = ?
		)
	`, itemType, groupCode, inputSource)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM events WHERE item_type = ? AND group_code = ? AND input_source = ?
	`, itemType, groupCode, inputSource)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, tx.Commit()
}

// BulkUpdateGroup reassigns every event in one stats bucket to a new group
// code and name.
func (s *Store) BulkUpdateGroup(ctx context.Context, itemType, groupCode, inputSource, newCode, newName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET group_code = ?, group_name = ?
		WHERE item_type = ? AND group_code = ? AND input_source = ?
	`, newCode, newName, itemType, groupCode, inputSource)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertSnapshot stores a new membership snapshot (bulk-load path used by
// the importer).
func (s *Store) InsertSnapshot(ctx context.Context, createdDate int64, memberKeys []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO membership_snapshots (created_date) VALUES (?)
	`, createdDate)
	if err != nil {
		return 0, err
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, key := range memberKeys {
		if key == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_members (snapshot_id, member_key) VALUES (?, ?)
		`, snapshotID, key); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return snapshotID, nil
}
