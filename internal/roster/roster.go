// Package roster reads and writes the lunch club's tab-delimited formats and
// turns committed rounds into pairing history.
//
// Roster files hold one member per line:
//
//	jeff.do	pem
//	max.zanko	eng
//
// Group files hold one lunch group per line, each entry either a username or
// username|department:
//
//	jeff.do|pem	max.zanko|eng	steve.carlin|eng
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mmynk/lunchclub/internal/grouping"
	"github.com/mmynk/lunchclub/internal/models"
)

// DateLayout is the formation date format used by the CLI and the API.
const DateLayout = "20060102"

var (
	// ErrMalformedLine is returned for a roster line that is not username<TAB>department.
	ErrMalformedLine = errors.New("malformed roster line")

	// ErrDuplicateMember is returned when a username appears twice in a roster.
	ErrDuplicateMember = errors.New("duplicate roster member")
)

// ReadRoster parses a roster file into a username -> department mapping.
// Usernames are sanitized; blank lines are skipped.
func ReadRoster(r io.Reader) (grouping.Roster, error) {
	members, err := ReadMembers(r)
	if err != nil {
		return nil, err
	}
	return ToRoster(members), nil
}

// ReadMembers parses a roster file, preserving line order.
func ReadMembers(r io.Reader) ([]models.Member, error) {
	var members []models.Member
	seen := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: %w: want 2 tab-separated fields, got %d", lineNo, ErrMalformedLine, len(fields))
		}
		username := SanitizeUsername(fields[0])
		department := strings.TrimSpace(fields[1])
		if username == "" || department == "" {
			return nil, fmt.Errorf("line %d: %w: empty username or department", lineNo, ErrMalformedLine)
		}
		if first, ok := seen[username]; ok {
			return nil, fmt.Errorf("line %d: %w: %s already listed on line %d", lineNo, ErrDuplicateMember, username, first)
		}
		seen[username] = lineNo

		members = append(members, models.Member{Username: username, Department: department})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	return members, nil
}

// ValidateMembers applies the ReadMembers rules to members that did not come
// from a file. Usernames are sanitized in place.
func ValidateMembers(members []models.Member) error {
	seen := make(map[string]bool, len(members))
	for i := range members {
		m := &members[i]
		m.Username = SanitizeUsername(m.Username)
		m.Department = strings.TrimSpace(m.Department)
		if m.Username == "" || m.Department == "" {
			return fmt.Errorf("member %d: %w: empty username or department", i+1, ErrMalformedLine)
		}
		if seen[m.Username] {
			return fmt.Errorf("member %d: %w: %s", i+1, ErrDuplicateMember, m.Username)
		}
		seen[m.Username] = true
	}
	return nil
}

// ToRoster converts stored members into the grouping roster.
func ToRoster(members []models.Member) grouping.Roster {
	roster := make(grouping.Roster, len(members))
	for _, m := range members {
		roster[m.Username] = m.Department
	}
	return roster
}

// SanitizeUsername strips a trailing |department tag, surrounding whitespace
// and case.
func SanitizeUsername(username string) string {
	if i := strings.IndexByte(username, '|'); i >= 0 {
		username = username[:i]
	}
	return strings.ToLower(strings.TrimSpace(username))
}

// ParseDate parses a YYYYMMDD formation date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be of format YYYYMMDD: %q", s)
	}
	return date, nil
}

// Today returns the current date truncated to UTC midnight.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
