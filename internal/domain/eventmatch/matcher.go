// Package eventmatch scores how likely a local event and a Spond event
// describe the same real-world occurrence.
package eventmatch

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
)

type Reason string

const (
	ReasonTime     Reason = "time"
	ReasonTeam     Reason = "team"
	ReasonLocation Reason = "location"
)

type Band string

const (
	BandNone     Band = ""
	BandPossible Band = "possible"
	BandLikely   Band = "likely"
	BandHigh     Band = "high"
)

const (
	weightTime     = 60
	weightTeam     = 25
	weightLocation = 15

	fullCreditWindow = 30 * time.Minute
	reasonThreshold  = 0.5

	// Floor is the lowest score reported as a candidate.
	Floor = 40
	// HighConfidence marks a likely duplicate.
	HighConfidence = 80
	likelyScore    = 60
)

type Config struct {
	// TimeWindow is where the time sub-score reaches zero.
	TimeWindow time.Duration
}

func DefaultConfig() Config {
	return Config{TimeWindow: 3 * time.Hour}
}

// Local is the club side of a comparison.
type Local struct {
	ID       string
	StartAt  time.Time
	TeamName string
	Location string
	// LinkedGroupID is the Spond group or subgroup linked to the event's team.
	LinkedGroupID string
}

// Remote is the Spond side of a comparison.
type Remote struct {
	ID          string
	StartAt     time.Time
	GroupID     string
	SubgroupIDs []string
	GroupNames  []string
	Location    string
}

type Result struct {
	Score   int
	Reasons []Reason
}

func (r Result) Band() Band {
	return BandOf(r.Score)
}

func BandOf(score int) Band {
	switch {
	case score >= HighConfidence:
		return BandHigh
	case score >= likelyScore:
		return BandLikely
	case score >= Floor:
		return BandPossible
	default:
		return BandNone
	}
}

type Candidate struct {
	LocalID    string
	RemoteID   string
	Score      int
	Reasons    []Reason
	Band       Band
	StartDelta time.Duration
}

func (c Candidate) HighConfidence() bool {
	return c.Score >= HighConfidence
}

// Score compares one pair. It is pure and deterministic.
func Score(local Local, remote Remote, cfg Config) Result {
	if cfg.TimeWindow <= fullCreditWindow {
		cfg = DefaultConfig()
	}

	timeScore := timeSubScore(absDuration(local.StartAt.Sub(remote.StartAt)), cfg.TimeWindow)
	teamScore := teamSubScore(local, remote)
	locationScore := textSubScore(local.Location, remote.Location, 0.8)

	total := weightTime*timeScore + weightTeam*teamScore + weightLocation*locationScore
	result := Result{Score: clamp(int(math.Round(total)), 0, 100)}
	if timeScore >= reasonThreshold {
		result.Reasons = append(result.Reasons, ReasonTime)
	}
	if teamScore >= reasonThreshold {
		result.Reasons = append(result.Reasons, ReasonTeam)
	}
	if locationScore >= reasonThreshold {
		result.Reasons = append(result.Reasons, ReasonLocation)
	}
	return result
}

// BestRemote returns the strongest remote candidate for local at or above
// Floor. Ties go to the smaller start delta, then the lexically smaller remote id.
func BestRemote(local Local, remotes []Remote, cfg Config) (Candidate, bool) {
	candidates := make([]Candidate, 0, len(remotes))
	for _, r := range remotes {
		if c, ok := candidate(local, r, cfg); ok {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j], candidates[i].RemoteID, candidates[j].RemoteID)
	})
	return candidates[0], true
}

// BestLocal is BestRemote seen from an incoming remote event; the final tie
// break is the local id.
func BestLocal(remote Remote, locals []Local, cfg Config) (Candidate, bool) {
	candidates := make([]Candidate, 0, len(locals))
	for _, l := range locals {
		if c, ok := candidate(l, remote, cfg); ok {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j], candidates[i].LocalID, candidates[j].LocalID)
	})
	return candidates[0], true
}

func candidate(local Local, remote Remote, cfg Config) (Candidate, bool) {
	res := Score(local, remote, cfg)
	if res.Score < Floor {
		return Candidate{}, false
	}
	return Candidate{
		LocalID:    local.ID,
		RemoteID:   remote.ID,
		Score:      res.Score,
		Reasons:    res.Reasons,
		Band:       res.Band(),
		StartDelta: absDuration(local.StartAt.Sub(remote.StartAt)),
	}, true
}

func less(a, b Candidate, aID, bID string) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.StartDelta != b.StartDelta {
		return a.StartDelta < b.StartDelta
	}
	return aID < bID
}

func timeSubScore(delta, window time.Duration) float64 {
	switch {
	case delta <= fullCreditWindow:
		return 1
	case delta >= window:
		return 0
	default:
		return 1 - float64(delta-fullCreditWindow)/float64(window-fullCreditWindow)
	}
}

func teamSubScore(local Local, remote Remote) float64 {
	if local.LinkedGroupID != "" {
		if remote.GroupID == local.LinkedGroupID {
			return 1
		}
		for _, id := range remote.SubgroupIDs {
			if id == local.LinkedGroupID {
				return 1
			}
		}
	}

	best := 0.0
	for _, name := range remote.GroupNames {
		if s := textSubScore(local.TeamName, name, 0.7); s > best {
			best = s
		}
	}
	return best
}

// textSubScore gives 1 for equal normalized text and partial for containment.
func textSubScore(a, b string, partial float64) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return partial
	}
	return 0
}

// Normalize lowercases, drops punctuation and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
