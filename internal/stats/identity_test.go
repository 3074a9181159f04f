package stats

import "testing"

func TestResolveFirst(t *testing.T) {
	if got := ResolveFirst("", "", "  a  "); got != "  a  " {
		t.Errorf("ResolveFirst = %q, want %q", got, "  a  ")
	}
	if got := ResolveFirst("first", "second"); got != "first" {
		t.Errorf("ResolveFirst = %q, want %q", got, "first")
	}
	if got := ResolveFirst("", ""); got != "" {
		t.Errorf("ResolveFirst = %q, want empty", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{" John Smith. ", "John Smith"},
		{"John Smith", "John Smith"},
		{"jsmith@example.org", "jsmith@example.org"},
		{"  trailing.  ", "trailing"},
		{"", ""},
		{" . ", ""},
	}
	for _, c := range cases {
		got := Normalize(c.in)
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", c.in, got, again)
		}
	}
}

func TestLeaderRollupMergesNormalizedIdentities(t *testing.T) {
	r := newLeaderRollup()
	r.add("John Smith.", "John Smith", "", 5)
	r.add(" John Smith ", "", "john@example.org", 7)
	r.add("", "ignored", "", 3)

	leaders := r.sorted()
	if len(leaders) != 1 {
		t.Fatalf("got %d leaders, want 1", len(leaders))
	}
	l := leaders[0]
	if l.ID != "John Smith" {
		t.Errorf("id = %q, want %q", l.ID, "John Smith")
	}
	if l.Count != 2 || l.TotalMiles != 12 {
		t.Errorf("count = %d, miles = %v, want 2, 12", l.Count, l.TotalMiles)
	}
	if l.Name != "John Smith" || l.Email != "john@example.org" {
		t.Errorf("name = %q, email = %q", l.Name, l.Email)
	}
}

func TestLeaderRollupFirstWriteWins(t *testing.T) {
	r := newLeaderRollup()
	r.add("M001", "Joan Fox", "joan@example.org", 4)
	r.add("M001", "J. Fox", "other@example.org", 6)

	l := r.sorted()[0]
	if l.Name != "Joan Fox" || l.Email != "joan@example.org" {
		t.Errorf("got name %q email %q, want first-observed values", l.Name, l.Email)
	}
}

func TestLeaderRollupSortOrder(t *testing.T) {
	r := newLeaderRollup()
	r.add("low", "Low", "", 3)
	r.add("high", "High", "", 2)
	r.add("high", "High", "", 2)
	r.add("far", "Far", "", 10)
	r.add("far", "Far", "", 10)

	leaders := r.sorted()
	want := []string{"far", "high", "low"}
	for i, id := range want {
		if leaders[i].ID != id {
			t.Errorf("leaders[%d].ID = %q, want %q", i, leaders[i].ID, id)
		}
	}
}

func TestOrganiserRollupSortsByCountThenName(t *testing.T) {
	r := newOrganiserRollup()
	r.add("zoe", "Zoe")
	r.add("amy", "Amy")
	r.add("amy", "Amy")
	r.add("ben", "Ben")

	organisers := r.sorted()
	want := []string{"amy", "ben", "zoe"}
	for i, id := range want {
		if organisers[i].ID != id {
			t.Errorf("organisers[%d].ID = %q, want %q", i, organisers[i].ID, id)
		}
	}
}
