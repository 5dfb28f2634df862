package export_test

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/export"
)

func sampleProfiles(n int) []database.Profile {
	profiles := make([]database.Profile, n)
	for i := range profiles {
		profiles[i] = database.Profile{
			ID:        int64(1000 + i),
			Username:  fmt.Sprintf("user%03d", i),
			FirstName: "First",
			LastName:  "Last",
		}
	}
	return profiles
}

func TestCSV(t *testing.T) {
	t.Parallel()

	profiles := []database.Profile{
		{ID: 1, Username: "alice", FirstName: "Alice", LastName: "Smith"},
		{ID: 2, FirstName: "Дмитрий", LastName: "O'Neil, Jr."},
		{ID: 3, Username: "quote", FirstName: `Say "hi"`},
	}

	data, err := export.CSV(profiles)
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	if !utf8.Valid(data) {
		t.Fatal("CSV() output is not valid UTF-8")
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated csv: %v", err)
	}

	want := [][]string{
		{"ID", "Username", "First Name", "Last Name"},
		{"1", "alice", "Alice", "Smith"},
		{"2", "", "Дмитрий", "O'Neil, Jr."},
		{"3", "quote", `Say "hi"`, ""},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("CSV() records mismatch (-want +got):\n%s", diff)
	}
}

func TestCSV_HeaderPlusOneRowPerProfile(t *testing.T) {
	t.Parallel()

	for _, k := range []int{0, 1, 25} {
		data, err := export.CSV(sampleProfiles(k))
		if err != nil {
			t.Fatalf("CSV(%d profiles) error = %v", k, err)
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != k+1 {
			t.Errorf("CSV(%d profiles) produced %d lines, want %d", k, len(lines), k+1)
		}
	}
}

func TestTables_SingleChunkKeepsOrder(t *testing.T) {
	t.Parallel()

	profiles := sampleProfiles(5)
	chunks := export.Tables(profiles, 4000)
	if len(chunks) != 1 {
		t.Fatalf("Tables() returned %d chunks, want 1", len(chunks))
	}

	text := chunks[0]
	for _, h := range export.Header {
		if !strings.Contains(text, h) {
			t.Errorf("table is missing header %q", h)
		}
	}

	last := -1
	for _, p := range profiles {
		idx := strings.Index(text, p.Username)
		if idx < 0 {
			t.Fatalf("table is missing profile %d", p.ID)
		}
		if idx < last {
			t.Errorf("profile %d is out of storage order", p.ID)
		}
		last = idx
	}
}

func TestTables_SplitsUnderLimit(t *testing.T) {
	t.Parallel()

	const limit = 600
	profiles := sampleProfiles(60)
	chunks := export.Tables(profiles, limit)
	if len(chunks) < 2 {
		t.Fatalf("Tables() returned %d chunks, want several", len(chunks))
	}

	joined := strings.Join(chunks, "\n")
	for _, c := range chunks {
		if n := utf8.RuneCountInString(c); n > limit {
			t.Errorf("chunk has %d characters, limit %d", n, limit)
		}
	}
	for _, p := range profiles {
		if got := strings.Count(joined, p.Username); got != 1 {
			t.Errorf("profile %s appears %d times, want 1", p.Username, got)
		}
	}
}

func TestTables_EmojiNamesStayUnderTelegramLimit(t *testing.T) {
	t.Parallel()

	const limit = 4000
	profiles := make([]database.Profile, 300)
	for i := range profiles {
		profiles[i] = database.Profile{
			ID:        int64(5000 + i),
			Username:  fmt.Sprintf("anna%03d", i),
			FirstName: "Anna 🌸🌸",
			LastName:  "Петрова 🌟",
		}
	}

	chunks := export.Tables(profiles, limit)
	if len(chunks) < 2 {
		t.Fatalf("Tables() returned %d chunks, want several", len(chunks))
	}

	for i, c := range chunks {
		if n := len(utf16.Encode([]rune(c))); n > limit {
			t.Errorf("chunk %d has %d UTF-16 units, limit %d", i, n, limit)
		}
	}

	joined := strings.Join(chunks, "\n")
	for _, p := range profiles {
		if got := strings.Count(joined, p.Username); got != 1 {
			t.Errorf("profile %s appears %d times, want 1", p.Username, got)
		}
	}
}

func TestTextLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "empty", in: "", want: 0},
		{name: "ascii", in: "hello", want: 5},
		{name: "cyrillic", in: "Петрова", want: 7},
		{name: "box drawing", in: "│─┼", want: 3},
		{name: "emoji", in: "🌸", want: 2},
		{name: "mixed", in: "Anna 🌸🌸", want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := export.TextLength(tt.in); got != tt.want {
				t.Errorf("TextLength(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTables_Empty(t *testing.T) {
	t.Parallel()

	if chunks := export.Tables(nil, 4000); len(chunks) != 0 {
		t.Errorf("Tables(nil) = %v, want no chunks", chunks)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)
	if got, want := export.FileName(now), "profiles-20261019-150405.csv"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}
