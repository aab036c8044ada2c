package event

import (
	"strings"
	"testing"
	"time"
)

func TestValidateForExport(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		event   Event
		wantErr string
	}{
		{name: "ok", event: Event{Title: "Training", StartAt: start, EndAt: start.Add(time.Hour)}},
		{name: "blank title", event: Event{Title: "   ", StartAt: start, EndAt: start.Add(time.Hour)}, wantErr: "title is required"},
		{name: "long title", event: Event{Title: strings.Repeat("x", 256), StartAt: start, EndAt: start.Add(time.Hour)}, wantErr: "title is too long"},
		{name: "no start", event: Event{Title: "Training", EndAt: start}, wantErr: "start time is required"},
		{name: "no end", event: Event{Title: "Training", StartAt: start}, wantErr: "end time is required"},
		{name: "end equals start", event: Event{Title: "Training", StartAt: start, EndAt: start}, wantErr: "end time must be after start time"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.event.ValidateForExport()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tc.wantErr {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestInferType(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		category, heading string
		want              Type
	}{
		"category match":   {category: "MATCH", heading: "Saturday", want: TypeGame},
		"heading vs":       {category: "EVENT", heading: "U12 vs Rovers", want: TypeGame},
		"heading training": {category: "EVENT", heading: "Tuesday Training", want: TypePractice},
		"heading meeting":  {category: "", heading: "Parents meeting", want: TypeMeeting},
		"fallback":         {category: "EVENT", heading: "Pizza night", want: TypeOther},
		"short v":          {category: "EVENT", heading: "Lions v Rovers", want: TypeGame},
		"no partial words": {category: "EVENT", heading: "Canvas and cupcake sale", want: TypeOther},
		"punctuation":      {category: "", heading: "Cup-final (away)", want: TypeGame},
	}
	for name, tc := range cases {
		if got := InferType(tc.category, tc.heading); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", name, tc.want, got)
		}
	}
}

func TestCategoryRoundTripKeepsType(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{TypeGame, TypePractice, TypeMeeting} {
		category := Category(typ)
		if !TypedCategory(category) {
			t.Fatalf("%s: expected typed category, got %q", typ, category)
		}
		if got := InferType(category, "Pizza night"); got != typ {
			t.Fatalf("%s: round trip returned %s", typ, got)
		}
	}
	if got := Category(TypeOther); got != GenericCategory || TypedCategory(got) {
		t.Fatalf("other must export the generic category, got %q", got)
	}
}

func TestAttendanceSameCountsIgnoresTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := Attendance{Accepted: 3, Declined: 1}
	b := Attendance{Accepted: 3, Declined: 1, SyncedAt: &now}
	if !a.SameCounts(b) {
		t.Fatalf("expected equal counts")
	}
	b.Waiting = 1
	if a.SameCounts(b) {
		t.Fatalf("expected different counts")
	}
}
