package roster

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/lunchclub/internal/grouping"
	"github.com/mmynk/lunchclub/internal/models"
)

func TestReadRoster(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    grouping.Roster
		wantErr error
	}{
		{
			name:  "tab-delimited lines",
			input: "jeff.do\tpem\nmax.zanko\teng\n\nSteve.Carlin\teng\n",
			want: grouping.Roster{
				"jeff.do":      "pem",
				"max.zanko":    "eng",
				"steve.carlin": "eng",
			},
		},
		{
			name:  "trailing whitespace and CRLF",
			input: "jeff.do\tpem \r\n  max.zanko\teng\r\n",
			want:  grouping.Roster{"jeff.do": "pem", "max.zanko": "eng"},
		},
		{
			name:    "missing department",
			input:   "jeff.do\tpem\nmax.zanko\n",
			wantErr: ErrMalformedLine,
		},
		{
			name:    "too many fields",
			input:   "jeff.do\tpem\textra\n",
			wantErr: ErrMalformedLine,
		},
		{
			name:    "duplicate username",
			input:   "jeff.do\tpem\nJeff.Do\teng\n",
			wantErr: ErrDuplicateMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadRoster(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReadMembers_ReportsLineNumber(t *testing.T) {
	_, err := ReadMembers(strings.NewReader("a\tx\n\nb\n"))

	require.ErrorIs(t, err, ErrMalformedLine)
	require.Contains(t, err.Error(), "line 3")
}

func TestValidateMembers(t *testing.T) {
	members := []models.Member{
		{Username: " Alice|eng ", Department: "eng "},
		{Username: "bob", Department: "sales"},
	}
	require.NoError(t, ValidateMembers(members))
	require.Equal(t, "alice", members[0].Username)
	require.Equal(t, "eng", members[0].Department)

	err := ValidateMembers([]models.Member{{Username: "a", Department: "x"}, {Username: "A", Department: "y"}})
	require.ErrorIs(t, err, ErrDuplicateMember)

	err = ValidateMembers([]models.Member{{Username: "a"}})
	require.ErrorIs(t, err, ErrMalformedLine)
}

func TestSanitizeUsername(t *testing.T) {
	require.Equal(t, "jeff.do", SanitizeUsername("Jeff.Do|pem"))
	require.Equal(t, "max", SanitizeUsername(" MAX "))
	require.Equal(t, "", SanitizeUsername("|eng"))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("20240315")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), date)

	_, err = ParseDate("2024-03-15")
	require.Error(t, err)
	require.Contains(t, err.Error(), "YYYYMMDD")
}

func TestWriteAndReadGroups(t *testing.T) {
	groups := []*grouping.Group{
		grouping.NewGroup(grouping.NewMember("alice", "eng"), grouping.NewMember("bob", "sales")),
		grouping.NewGroup(grouping.NewMember("carol", "ops"), grouping.NewMember("dave", "eng")),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGroups(&buf, groups, true))
	require.Equal(t, "alice|eng\tbob|sales\ncarol|ops\tdave|eng\n", buf.String())

	parsed, err := ReadGroups(&buf)
	require.NoError(t, err)
	require.Equal(t, []models.Group{
		{Position: 0, Members: []string{"alice", "bob"}},
		{Position: 1, Members: []string{"carol", "dave"}},
	}, parsed)
	require.Equal(t, parsed, FromGrouping(groups))
}

func TestReadGroups_RejectsDuplicates(t *testing.T) {
	_, err := ReadGroups(strings.NewReader("alice\tbob\ncarol\tAlice|eng\n"))

	require.ErrorIs(t, err, ErrDuplicateMember)
	require.Contains(t, err.Error(), "line 2")
}

func TestReadGroups_RejectsLineWithoutUsernames(t *testing.T) {
	groups, err := ReadGroups(strings.NewReader("alice|eng\tbob|ops\n|eng\t |ops\n"))

	require.ErrorIs(t, err, ErrMalformedLine)
	require.Contains(t, err.Error(), "line 2")
	require.Nil(t, groups)
}

func TestHistoryFromRounds(t *testing.T) {
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	rounds := []models.Round{
		{FormationDate: march, Groups: []models.Group{{Members: []string{"alice", "bob", "carol"}}}},
		{FormationDate: april, Groups: []models.Group{{Members: []string{"alice", "bob"}}, {Members: []string{"carol"}}}},
	}

	history := HistoryFromRounds(rounds)

	require.ElementsMatch(t, []grouping.PreviousMatch{
		{Date: march, Username: "bob"},
		{Date: march, Username: "carol"},
		{Date: april, Username: "bob"},
	}, history["alice"])
	require.Len(t, history["carol"], 2)

	m := grouping.NewMember("alice", "eng")
	m.AddPreviousMatches(history["alice"])
	require.Equal(t, april, m.PreviousMatches["bob"])
}
