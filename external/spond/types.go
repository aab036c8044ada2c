package spond

import (
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/clubsync/internal/usecase"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	LoginToken string `json:"loginToken"`
}

type subGroupDTO struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type groupDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	SubGroups []subGroupDTO `json:"subGroups"`
}

type locationDTO struct {
	Feature string `json:"feature,omitempty"`
	Address string `json:"address,omitempty"`
}

type recipientGroupDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name,omitempty"`
	SubGroups []subGroupDTO `json:"subGroups,omitempty"`
}

type recipientsDTO struct {
	Group recipientGroupDTO `json:"group"`
}

type responsesDTO struct {
	AcceptedIDs    []string `json:"acceptedIds"`
	DeclinedIDs    []string `json:"declinedIds"`
	UnansweredIDs  []string `json:"unansweredIds"`
	WaitinglistIDs []string `json:"waitinglistIds"`
}

type spondDTO struct {
	ID             string        `json:"id"`
	Heading        string        `json:"heading"`
	Description    string        `json:"description"`
	StartTimestamp string        `json:"startTimestamp"`
	EndTimestamp   string        `json:"endTimestamp"`
	Location       *locationDTO  `json:"location"`
	Recipients     recipientsDTO `json:"recipients"`
	Cancelled      bool          `json:"cancelled"`
	Type           string        `json:"type"`
	Responses      *responsesDTO `json:"responses"`
}

// spondWriteDTO is the create/update body. It carries no responses.
type spondWriteDTO struct {
	Heading        string        `json:"heading"`
	Description    string        `json:"description"`
	StartTimestamp string        `json:"startTimestamp"`
	EndTimestamp   string        `json:"endTimestamp"`
	Location       *locationDTO  `json:"location,omitempty"`
	Recipients     recipientsDTO `json:"recipients"`
	Type           string        `json:"type"`
}

type createResponse struct {
	ID string `json:"id"`
}

func mapGroup(dto groupDTO) usecase.RemoteGroup {
	out := usecase.RemoteGroup{
		ID:        strings.TrimSpace(dto.ID),
		Name:      strings.TrimSpace(dto.Name),
		Subgroups: make([]usecase.RemoteSubgroup, 0, len(dto.SubGroups)),
	}
	for _, sub := range dto.SubGroups {
		if strings.TrimSpace(sub.ID) == "" {
			continue
		}
		out.Subgroups = append(out.Subgroups, usecase.RemoteSubgroup{ID: strings.TrimSpace(sub.ID), Name: strings.TrimSpace(sub.Name)})
	}
	return out
}

func mapEvent(dto spondDTO) (usecase.RemoteEvent, bool) {
	start, ok := parseTimestamp(dto.StartTimestamp)
	if !ok || strings.TrimSpace(dto.ID) == "" {
		return usecase.RemoteEvent{}, false
	}
	end, ok := parseTimestamp(dto.EndTimestamp)
	if !ok {
		end = start
	}

	out := usecase.RemoteEvent{
		ID:          strings.TrimSpace(dto.ID),
		Heading:     strings.TrimSpace(dto.Heading),
		Description: strings.TrimSpace(dto.Description),
		StartAt:     start,
		EndAt:       end,
		GroupID:     dto.Recipients.Group.ID,
		GroupName:   dto.Recipients.Group.Name,
		Cancelled:   dto.Cancelled,
		Category:    strings.ToUpper(strings.TrimSpace(dto.Type)),
	}
	if dto.Location != nil {
		out.Location = firstNonEmpty(dto.Location.Feature, dto.Location.Address)
	}
	for _, sub := range dto.Recipients.Group.SubGroups {
		out.SubgroupIDs = append(out.SubgroupIDs, sub.ID)
		if sub.Name != "" {
			out.SubgroupNames = append(out.SubgroupNames, sub.Name)
		}
	}
	return out, true
}

func mapWrite(groupID string, p usecase.RemoteEventPayload) spondWriteDTO {
	out := spondWriteDTO{
		Heading:        strings.TrimSpace(p.Heading),
		Description:    strings.TrimSpace(p.Description),
		StartTimestamp: formatTimestamp(p.StartAt),
		EndTimestamp:   formatTimestamp(p.EndAt),
		Recipients:     recipientsDTO{Group: recipientGroupDTO{ID: groupID}},
		Type:           firstNonEmpty(strings.ToUpper(strings.TrimSpace(p.Category)), "EVENT"),
	}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		out.Location = &locationDTO{Feature: loc}
	}
	for _, id := range p.SubgroupIDs {
		out.Recipients.Group.SubGroups = append(out.Recipients.Group.SubGroups, subGroupDTO{ID: id})
	}
	return out
}

func mapAttendance(r *responsesDTO) usecase.AttendanceMap {
	out := make(usecase.AttendanceMap)
	if r == nil {
		return out
	}
	put := func(ids []string, status usecase.AttendanceStatus) {
		for _, id := range ids {
			if id != "" {
				out[id] = status
			}
		}
	}
	put(r.UnansweredIDs, usecase.AttendanceUnanswered)
	put(r.WaitinglistIDs, usecase.AttendanceWaiting)
	put(r.DeclinedIDs, usecase.AttendanceDeclined)
	put(r.AcceptedIDs, usecase.AttendanceAccepted)
	return out
}

func sortEvents(items []usecase.RemoteEvent) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartAt.Equal(items[j].StartAt) {
			return items[i].StartAt.Before(items[j].StartAt)
		}
		return items[i].ID < items[j].ID
	})
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
