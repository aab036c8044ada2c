package event

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type Type string

const (
	TypeGame     Type = "game"
	TypePractice Type = "practice"
	TypeMeeting  Type = "meeting"
	TypeOther    Type = "other"
)

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Attendance is the summary mirrored from Spond responses. It is only
// written by import.
type Attendance struct {
	Accepted   int
	Declined   int
	Unanswered int
	Waiting    int
	SyncedAt   *time.Time
}

// SameCounts ignores SyncedAt.
func (a Attendance) SameCounts(other Attendance) bool {
	return a.Accepted == other.Accepted &&
		a.Declined == other.Declined &&
		a.Unanswered == other.Unanswered &&
		a.Waiting == other.Waiting
}

// Event is a club-owned calendar entry: a game, a practice or a meeting.
type Event struct {
	ID          string
	Title       string
	Description string
	Type        Type
	StartAt     time.Time
	EndAt       time.Time
	TeamID      string
	Location    string
	Status      Status
	SpondID     string
	Attendance  Attendance
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Event) HasTeam() bool {
	return strings.TrimSpace(e.TeamID) != ""
}

// Exported reports whether the event is already bound to a Spond event.
// Such events are never export-eligible again.
func (e Event) Exported() bool {
	return strings.TrimSpace(e.SpondID) != ""
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("event title is required")
	}
	if e.StartAt.IsZero() {
		return fmt.Errorf("event start is required")
	}
	if !e.EndAt.IsZero() && e.EndAt.Before(e.StartAt) {
		return fmt.Errorf("event end must not be before start")
	}
	switch e.Type {
	case TypeGame, TypePractice, TypeMeeting, TypeOther:
	default:
		return fmt.Errorf("invalid event type %q", e.Type)
	}
	switch e.Status {
	case StatusPlanned, StatusConfirmed, StatusCancelled:
	default:
		return fmt.Errorf("invalid event status %q", e.Status)
	}

	return nil
}

type exportCheck struct {
	Title string    `validate:"required,max=255"`
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtfield=Start"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// ValidateForExport checks what Spond needs to accept the event: a title and
// an end strictly after the start.
func (e Event) ValidateForExport() error {
	validateOnce.Do(func() { validate = validator.New() })

	err := validate.Struct(exportCheck{
		Title: strings.TrimSpace(e.Title),
		Start: e.StartAt,
		End:   e.EndAt,
	})
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Title" && fe.Tag() == "required":
		return fmt.Errorf("title is required")
	case fe.Field() == "Title":
		return fmt.Errorf("title is too long")
	case fe.Field() == "Start":
		return fmt.Errorf("start time is required")
	case fe.Tag() == "gtfield":
		return fmt.Errorf("end time must be after start time")
	default:
		return fmt.Errorf("end time is required")
	}
}

// GenericCategory is the Spond category that carries no event type.
const GenericCategory = "EVENT"

var (
	typeCategories = map[Type]string{
		TypeGame:     "MATCH",
		TypePractice: "TRAINING",
		TypeMeeting:  "MEETING",
	}

	categoryTypes = map[string]Type{
		"MATCH":    TypeGame,
		"GAME":     TypeGame,
		"PRACTICE": TypePractice,
		"TRAINING": TypePractice,
		"MEETING":  TypeMeeting,
	}

	headingKeywords = []struct {
		typ   Type
		words []string
	}{
		{TypeGame, []string{"match", "game", "vs", "v", "cup", "tournament", "friendly"}},
		{TypePractice, []string{"practice", "training", "session"}},
		{TypeMeeting, []string{"meeting", "agm"}},
	}
)

// Category is the Spond category written on export. InferType maps it back
// to t, so a round trip keeps the type.
func Category(t Type) string {
	if c, ok := typeCategories[t]; ok {
		return c
	}
	return GenericCategory
}

// TypedCategory reports whether category alone determines an event type.
func TypedCategory(category string) bool {
	_, ok := categoryTypes[normalizeCategory(category)]
	return ok
}

// InferType maps a Spond category and heading onto a local event type.
// Heading keywords match whole words only.
func InferType(category, heading string) Type {
	if t, ok := categoryTypes[normalizeCategory(category)]; ok {
		return t
	}

	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(heading), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	for _, kw := range headingKeywords {
		for _, w := range kw.words {
			if words[w] {
				return kw.typ
			}
		}
	}
	return TypeOther
}

func normalizeCategory(category string) string {
	return strings.ToUpper(strings.TrimSpace(category))
}
