package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawbridge/lawbridge/pkg/api"
)

func TestScoreCompletions(t *testing.T) {
	cands := []string{"tenancy-deposit", "contract-nda", "tenancy-repairs"}
	assert.Equal(t, cands, ScoreCompletions("", cands, 1))
	got := ScoreCompletions("tnc", cands, 1)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "tenancy")
	assert.Nil(t, ScoreCompletions("zzz", cands, 5))
}

func TestMatchSummaries(t *testing.T) {
	items := []api.Summary{
		{ID: "1", Title: "Deposit dispute", Bot: "Tenancy Bot"},
		{ID: "2", Title: "NDA review", Bot: "Contract Bot"},
	}
	got := MatchSummaries("nda", items)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	got = MatchSummaries("tenancy", items)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	assert.Len(t, MatchSummaries("", items), 2)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"2h":               now.Add(-2 * time.Hour),
		"3d":               now.AddDate(0, 0, -3),
		"2w":               now.AddDate(0, 0, -14),
		"1mo":              now.AddDate(0, -1, 0),
		"2024-01-02":       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"2024-01-02T08:30": time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseSince(in, now)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s want %s", in, got, want)
	}
	for _, bad := range []string{"", "xd", "soon"} {
		_, err := ParseSince(bad, now)
		assert.Error(t, err, bad)
	}
}
