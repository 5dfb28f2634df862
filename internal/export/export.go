// Package export renders stored user profiles for administrators, as a CSV
// attachment and as plain text tables sized for chat messages.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/edgard/relaybot/internal/database"
)

// Header is the column header shared by the CSV file and the text tables.
var Header = []string{"ID", "Username", "First Name", "Last Name"}

// CSV renders profiles as a UTF-8 CSV document with a header row.
func CSV(profiles []database.Profile) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range profiles {
		record := []string{strconv.FormatInt(p.ID, 10), p.Username, p.FirstName, p.LastName}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row for user %d: %w", p.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName returns the attachment name for an export produced at now.
func FileName(now time.Time) string {
	return "profiles-" + now.UTC().Format("20060102-150405") + ".csv"
}

// Tables renders profiles as text tables. Rows keep their order and are split
// across as many tables as needed so that no table exceeds limit, measured
// with TextLength, unless a single row already does.
func Tables(profiles []database.Profile, limit int) []string {
	var chunks []string
	var rows [][]string

	for _, p := range profiles {
		row := textRow(p)
		if len(rows) > 0 {
			candidate := append(rows[:len(rows):len(rows)], row)
			if TextLength(render(candidate)) > limit {
				chunks = append(chunks, render(rows))
				rows = [][]string{row}
				continue
			}
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		chunks = append(chunks, render(rows))
	}
	return chunks
}

// TextLength returns the length of s in UTF-16 code units, the unit Telegram
// uses for message length limits.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

func textRow(p database.Profile) []string {
	return []string{strconv.FormatInt(p.ID, 10), orDash(p.Username), orDash(p.FirstName), orDash(p.LastName)}
}

func render(rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Header...).
		Rows(rows...).
		String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
