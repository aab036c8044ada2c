package usecase

import (
	"context"
	"time"
)

// RemoteGroup is a Spond group with its subgroups.
type RemoteGroup struct {
	ID        string
	Name      string
	Subgroups []RemoteSubgroup
}

type RemoteSubgroup struct {
	ID   string
	Name string
}

// RemoteEvent is a Spond event as seen by the sync pipelines.
type RemoteEvent struct {
	ID            string
	Heading       string
	Description   string
	StartAt       time.Time
	EndAt         time.Time
	Location      string
	GroupID       string
	GroupName     string
	SubgroupIDs   []string
	SubgroupNames []string
	Cancelled     bool
	Category      string
}

// InSubgroup reports whether the event targets the given subgroup.
func (e RemoteEvent) InSubgroup(id string) bool {
	for _, sub := range e.SubgroupIDs {
		if sub == id {
			return true
		}
	}
	return false
}

type AttendanceStatus string

const (
	AttendanceAccepted   AttendanceStatus = "accepted"
	AttendanceDeclined   AttendanceStatus = "declined"
	AttendanceUnanswered AttendanceStatus = "unanswered"
	AttendanceWaiting    AttendanceStatus = "waiting"
)

// AttendanceMap maps a Spond member id to its response.
type AttendanceMap map[string]AttendanceStatus

// RemoteEventPayload is what export and push send. It has no attendance field.
type RemoteEventPayload struct {
	Heading     string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Location    string
	SubgroupIDs []string
	Category    string
}

// RemoteClient is the contract of the Spond adapter. Implementations return
// errors matching ErrRemoteAuthFailure or ErrRemoteUnavailable where they apply.
type RemoteClient interface {
	Authenticate(ctx context.Context) error
	ListGroups(ctx context.Context) ([]RemoteGroup, error)
	ListEventsInRange(ctx context.Context, groupIDs []string, from, to time.Time) ([]RemoteEvent, error)
	CreateEvent(ctx context.Context, groupID string, payload RemoteEventPayload) (string, error)
	UpdateEvent(ctx context.Context, remoteID string, payload RemoteEventPayload) error
	FetchAttendance(ctx context.Context, eventID string) (AttendanceMap, error)
}

// RemoteClientFactory builds a client for stored credentials.
type RemoteClientFactory func(email, password string) RemoteClient
