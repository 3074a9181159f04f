package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"walkhub/internal/store"
)

// Membership list CSVs come out of the national body's export. The header
// row names the columns; membership number is the identity, email the
// fallback for rows without one.

// ParseMembershipCSV reads a membership export and returns one identity key
// per member row: membership number when present, else email. Rows with
// neither are skipped.
func ParseMembershipCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	numberCol, emailCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "membership_number", "membership number":
			numberCol = i
		case "email", "email_address", "email address":
			emailCol = i
		}
	}
	if numberCol < 0 && emailCol < 0 {
		return nil, fmt.Errorf("no membership_number or email column in header %v", header)
	}

	var keys []string
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		key := ""
		if numberCol >= 0 && numberCol < len(record) {
			key = strings.TrimSpace(record[numberCol])
		}
		if key == "" && emailCol >= 0 && emailCol < len(record) {
			key = strings.ToLower(strings.TrimSpace(record[emailCol]))
		}
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

// ImportMembershipSnapshot loads a membership CSV file as a new snapshot
// dated createdDate. Returns the snapshot id and the member count.
func ImportMembershipSnapshot(ctx context.Context, st *store.Store, path string, createdDate int64) (int64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	keys, err := ParseMembershipCSV(f)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(keys) == 0 {
		return 0, 0, fmt.Errorf("no members found in %s", path)
	}

	id, err := st.InsertSnapshot(ctx, createdDate, keys)
	if err != nil {
		return 0, 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return id, len(keys), nil
}
