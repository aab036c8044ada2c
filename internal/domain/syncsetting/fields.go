package syncsetting

import (
	"sort"
	"strings"
)

// FieldSet selects which event attributes an import may overwrite.
type FieldSet uint8

const (
	FieldTitle FieldSet = 1 << iota
	FieldDescription
	FieldTime
	FieldLocation
	FieldType

	AllFields = FieldTitle | FieldDescription | FieldTime | FieldLocation | FieldType
)

var fieldNames = map[FieldSet]string{
	FieldTitle:       "title",
	FieldDescription: "description",
	FieldTime:        "time",
	FieldLocation:    "location",
	FieldType:        "type",
}

func (f FieldSet) Has(field FieldSet) bool {
	return f&field == field
}

// Names lists the enabled fields in bit order.
func (f FieldSet) Names() []string {
	out := make([]string, 0, len(fieldNames))
	for bit := FieldTitle; bit <= FieldType; bit <<= 1 {
		if f.Has(bit) {
			out = append(out, fieldNames[bit])
		}
	}
	return out
}

// ParseFieldNames is the inverse of Names. Unknown names are returned separately.
func ParseFieldNames(names []string) (FieldSet, []string) {
	var (
		out     FieldSet
		unknown []string
	)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		found := false
		for bit, n := range fieldNames {
			if n == name {
				out |= bit
				found = true
				break
			}
		}
		if !found && name != "" {
			unknown = append(unknown, raw)
		}
	}
	sort.Strings(unknown)
	return out, unknown
}

// Values carries the importable attributes of one event.
type Values struct {
	Title       string
	Description string
	StartAt     int64
	EndAt       int64
	Location    string
	Type        string
}

// Apply copies the enabled fields of remote over local and reports whether
// anything changed.
func (f FieldSet) Apply(local *Values, remote Values) bool {
	changed := false
	set := func(dst *string, src string) {
		if *dst != src {
			*dst = src
			changed = true
		}
	}
	if f.Has(FieldTitle) {
		set(&local.Title, remote.Title)
	}
	if f.Has(FieldDescription) {
		set(&local.Description, remote.Description)
	}
	if f.Has(FieldTime) {
		if local.StartAt != remote.StartAt || local.EndAt != remote.EndAt {
			local.StartAt, local.EndAt = remote.StartAt, remote.EndAt
			changed = true
		}
	}
	if f.Has(FieldLocation) {
		set(&local.Location, remote.Location)
	}
	if f.Has(FieldType) {
		set(&local.Type, remote.Type)
	}
	return changed
}
