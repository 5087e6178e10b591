package roster

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mmynk/lunchclub/internal/grouping"
	"github.com/mmynk/lunchclub/internal/models"
)

// WriteGroups renders one tab-joined line per group.
func WriteGroups(w io.Writer, groups []*grouping.Group, showDepartment bool) error {
	bw := bufio.NewWriter(w)
	for _, g := range groups {
		if _, err := fmt.Fprintln(bw, g.Line(showDepartment)); err != nil {
			return fmt.Errorf("failed to write group: %w", err)
		}
	}
	return bw.Flush()
}

// ReadGroups parses rendered group lines back into usernames.
// Department tags are dropped. A username may appear only once in the file
// and every non-blank line must name at least one.
func ReadGroups(r io.Reader) ([]models.Group, error) {
	var groups []models.Group
	seen := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		group := models.Group{Position: len(groups)}
		for _, field := range strings.Split(line, "\t") {
			username := SanitizeUsername(field)
			if username == "" {
				continue
			}
			if first, ok := seen[username]; ok {
				return nil, fmt.Errorf("line %d: %w: %s already grouped on line %d", lineNo, ErrDuplicateMember, username, first)
			}
			seen[username] = lineNo
			group.Members = append(group.Members, username)
		}
		if len(group.Members) == 0 {
			return nil, fmt.Errorf("line %d: %w: no usernames", lineNo, ErrMalformedLine)
		}
		groups = append(groups, group)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}

	return groups, nil
}

// FromGrouping converts formed groups into models ready to be committed.
func FromGrouping(groups []*grouping.Group) []models.Group {
	out := make([]models.Group, len(groups))
	for i, g := range groups {
		out[i] = models.Group{Position: i, Members: g.Usernames()}
	}
	return out
}
