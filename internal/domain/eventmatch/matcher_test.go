package eventmatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)

func TestScore_LinkedTeamSameFieldFiveMinutesApart(t *testing.T) {
	t.Parallel()

	local := Local{ID: "L1", StartAt: base, TeamName: "U12", Location: "Field 1", LinkedGroupID: "G1"}
	remote := Remote{ID: "R1", StartAt: base.Add(5 * time.Minute), GroupID: "G1", GroupNames: []string{"Club U12"}, Location: "Field 1"}

	res := Score(local, remote, DefaultConfig())

	assert.GreaterOrEqual(t, res.Score, HighConfidence)
	assert.Equal(t, []Reason{ReasonTime, ReasonTeam, ReasonLocation}, res.Reasons)
	assert.Equal(t, BandHigh, res.Band())
}

func TestScore_SubScores(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		local       Local
		remote      Remote
		wantScore   int
		wantReasons []Reason
	}{
		{
			name:        "time decays linearly to half",
			local:       Local{StartAt: base},
			remote:      Remote{StartAt: base.Add(105 * time.Minute)},
			wantScore:   30,
			wantReasons: []Reason{ReasonTime},
		},
		{
			name:      "outside window scores zero",
			local:     Local{StartAt: base},
			remote:    Remote{StartAt: base.Add(3 * time.Hour)},
			wantScore: 0,
		},
		{
			name:        "team name substring",
			local:       Local{StartAt: base, TeamName: "U12"},
			remote:      Remote{StartAt: base, GroupNames: []string{"U12 Girls"}},
			wantScore:   78,
			wantReasons: []Reason{ReasonTime, ReasonTeam},
		},
		{
			name:        "subgroup id linked",
			local:       Local{StartAt: base.Add(-3 * time.Hour), LinkedGroupID: "SUB"},
			remote:      Remote{StartAt: base, GroupID: "G", SubgroupIDs: []string{"SUB"}},
			wantScore:   25,
			wantReasons: []Reason{ReasonTeam},
		},
		{
			name:        "location substring after normalization",
			local:       Local{StartAt: base, Location: "Field-1"},
			remote:      Remote{StartAt: base, Location: "Main FIELD 1, North"},
			wantScore:   72,
			wantReasons: []Reason{ReasonTime, ReasonLocation},
		},
		{
			name:        "empty names never match",
			local:       Local{StartAt: base, Location: ""},
			remote:      Remote{StartAt: base, Location: ""},
			wantScore:   60,
			wantReasons: []Reason{ReasonTime},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := Score(tc.local, tc.remote, DefaultConfig())
			assert.Equal(t, tc.wantScore, res.Score)
			assert.Equal(t, tc.wantReasons, res.Reasons)
		})
	}
}

func TestBands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, BandHigh, BandOf(80))
	assert.Equal(t, BandLikely, BandOf(79))
	assert.Equal(t, BandLikely, BandOf(60))
	assert.Equal(t, BandPossible, BandOf(40))
	assert.Equal(t, BandNone, BandOf(39))
}

func TestBestRemote_TieBreaks(t *testing.T) {
	t.Parallel()

	local := Local{ID: "L1", StartAt: base}
	remotes := []Remote{
		{ID: "R-c", StartAt: base.Add(10 * time.Minute)},
		{ID: "R-b", StartAt: base},
		{ID: "R-a", StartAt: base.Add(-10 * time.Minute)},
		{ID: "R-far", StartAt: base.Add(5 * time.Hour)},
	}

	best, ok := BestRemote(local, remotes, DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, "R-b", best.RemoteID, "smaller delta wins among equal scores")

	remotes[1].StartAt = base.Add(10 * time.Minute)
	best, ok = BestRemote(local, remotes, DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, "R-a", best.RemoteID, "lexical id breaks remaining ties")

	for i := 0; i < 5; i++ {
		again, _ := BestRemote(local, remotes, DefaultConfig())
		assert.Equal(t, best, again)
	}
}

func TestBestLocal_BelowFloorIsNoCandidate(t *testing.T) {
	t.Parallel()

	remote := Remote{ID: "R1", StartAt: base}
	_, ok := BestLocal(remote, []Local{{ID: "L1", StartAt: base.Add(4 * time.Hour)}}, DefaultConfig())
	assert.False(t, ok)

	best, ok := BestLocal(remote, []Local{{ID: "L2", StartAt: base}, {ID: "L1", StartAt: base}}, DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, "L1", best.LocalID)
	assert.Equal(t, BandLikely, best.Band)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "main field 1 north", Normalize("  Main FIELD 1,  North! "))
	assert.Equal(t, "", Normalize("--"))
}
