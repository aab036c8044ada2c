package syncsetting

import (
	"fmt"
	"strings"
	"time"
)

// Direction selects which links an operation applies to.
type Direction string

const (
	DirectionImport     Direction = "import"
	DirectionExport     Direction = "export"
	DirectionAttendance Direction = "attendance"
)

// Kind names the timestamp RecordSync updates.
type Kind string

const (
	KindImport     Kind = "import"
	KindExport     Kind = "export"
	KindAttendance Kind = "attendance"
)

func (k Kind) Valid() bool {
	switch k {
	case KindImport, KindExport, KindAttendance:
		return true
	default:
		return false
	}
}

// Link binds one local team to one Spond group or subgroup, together with
// the per-team sync policy.
type Link struct {
	TeamID           string
	SpondGroupID     string
	GroupName        string
	ParentGroupID    string
	ParentGroupName  string
	IsSubgroup       bool
	ImportEvents     bool
	ExportEvents     bool
	ImportAttendance bool
	ImportFields     FieldSet
	Active           bool
	LastImportAt     *time.Time
	LastExportAt     *time.Time
	LastAttendanceAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Policy is the toggle portion of a link.
type Policy struct {
	ImportEvents     bool
	ExportEvents     bool
	ImportAttendance bool
	ImportFields     FieldSet
}

func DefaultPolicy() Policy {
	return Policy{
		ImportEvents: true,
		ImportFields: AllFields,
	}
}

func (l Link) Policy() Policy {
	return Policy{
		ImportEvents:     l.ImportEvents,
		ExportEvents:     l.ExportEvents,
		ImportAttendance: l.ImportAttendance,
		ImportFields:     l.ImportFields,
	}
}

func (l *Link) ApplyPolicy(p Policy) {
	l.ImportEvents = p.ImportEvents
	l.ExportEvents = p.ExportEvents
	l.ImportAttendance = p.ImportAttendance
	l.ImportFields = p.ImportFields
}

// ListGroupID is the group whose event listing contains this link's events.
// Subgroup events are listed under their parent.
func (l Link) ListGroupID() string {
	if l.IsSubgroup && l.ParentGroupID != "" {
		return l.ParentGroupID
	}
	return l.SpondGroupID
}

// Allows reports whether the link takes part in the given direction.
func (l Link) Allows(d Direction) bool {
	if !l.Active {
		return false
	}
	switch d {
	case DirectionImport:
		return l.ImportEvents
	case DirectionExport:
		return l.ExportEvents
	case DirectionAttendance:
		return l.ImportAttendance
	default:
		return false
	}
}

func (l Link) LastSyncAt(k Kind) *time.Time {
	switch k {
	case KindImport:
		return l.LastImportAt
	case KindExport:
		return l.LastExportAt
	case KindAttendance:
		return l.LastAttendanceAt
	default:
		return nil
	}
}

func (l Link) Validate() error {
	if strings.TrimSpace(l.TeamID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(l.SpondGroupID) == "" {
		return fmt.Errorf("spond group id is required")
	}
	if l.IsSubgroup && strings.TrimSpace(l.ParentGroupID) == "" {
		return fmt.Errorf("parent group id is required for a subgroup link")
	}
	if l.ImportFields&^AllFields != 0 {
		return fmt.Errorf("unknown import fields %d", l.ImportFields)
	}

	return nil
}
