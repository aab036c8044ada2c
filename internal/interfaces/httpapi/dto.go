package httpapi

import (
	"time"

	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/usecase"
)

type configureRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type importTeamsRequest struct {
	Groups []importTeamItemRequest `json:"groups" validate:"required,min=1,dive"`
}

type importTeamItemRequest struct {
	GroupID  string `json:"groupId" validate:"required"`
	TeamName string `json:"teamName" validate:"max=100"`
}

type linkTeamRequest struct {
	TeamID  string `json:"teamId" validate:"required"`
	GroupID string `json:"groupId" validate:"required"`
}

type policyRequest struct {
	ImportEvents     *bool    `json:"importEvents"`
	ExportEvents     *bool    `json:"exportEvents"`
	ImportAttendance *bool    `json:"importAttendance"`
	ImportFields     []string `json:"importFields" validate:"omitempty,dive,required"`
}

func (p policyRequest) toInput() usecase.PolicyInput {
	return usecase.PolicyInput{
		ImportEvents:     p.ImportEvents,
		ExportEvents:     p.ExportEvents,
		ImportAttendance: p.ImportAttendance,
		ImportFields:     p.ImportFields,
	}
}

type upsertSyncSettingRequest struct {
	TeamID          string         `json:"teamId" validate:"required"`
	SpondGroupID    string         `json:"spondGroupId" validate:"required"`
	GroupName       string         `json:"groupName"`
	ParentGroupID   string         `json:"parentGroupId"`
	ParentGroupName string         `json:"parentGroupName"`
	IsSubgroup      bool           `json:"isSubgroup"`
	Policy          *policyRequest `json:"policy"`
}

type updateSyncSettingRequest struct {
	policyRequest
	// Reset restores the default policy and ignores the other fields.
	Reset bool `json:"reset"`
}

type syncRequest struct {
	Direction         string `json:"direction" validate:"omitempty,oneof=import export both attendance"`
	From              string `json:"from"`
	To                string `json:"to"`
	IncludeAttendance bool   `json:"includeAttendance"`
}

type syncSettingDTO struct {
	TeamID           string     `json:"teamId"`
	SpondGroupID     string     `json:"spondGroupId"`
	GroupName        string     `json:"groupName"`
	ParentGroupID    string     `json:"parentGroupId,omitempty"`
	ParentGroupName  string     `json:"parentGroupName,omitempty"`
	IsSubgroup       bool       `json:"isSubgroup"`
	ImportEvents     bool       `json:"importEvents"`
	ExportEvents     bool       `json:"exportEvents"`
	ImportAttendance bool       `json:"importAttendance"`
	ImportFields     []string   `json:"importFields"`
	Active           bool       `json:"active"`
	LastImportAt     *time.Time `json:"lastImportAt,omitempty"`
	LastExportAt     *time.Time `json:"lastExportAt,omitempty"`
	LastAttendanceAt *time.Time `json:"lastAttendanceAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func syncSettingToDTO(l syncsetting.Link) syncSettingDTO {
	return syncSettingDTO{
		TeamID:           l.TeamID,
		SpondGroupID:     l.SpondGroupID,
		GroupName:        l.GroupName,
		ParentGroupID:    l.ParentGroupID,
		ParentGroupName:  l.ParentGroupName,
		IsSubgroup:       l.IsSubgroup,
		ImportEvents:     l.ImportEvents,
		ExportEvents:     l.ExportEvents,
		ImportAttendance: l.ImportAttendance,
		ImportFields:     l.ImportFields.Names(),
		Active:           l.Active,
		LastImportAt:     l.LastImportAt,
		LastExportAt:     l.LastExportAt,
		LastAttendanceAt: l.LastAttendanceAt,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

type statusDTO struct {
	Configured       bool                `json:"configured"`
	Email            string              `json:"email,omitempty"`
	Source           string              `json:"source"`
	TotalLinks       int                 `json:"totalLinks"`
	ActiveLinks      int                 `json:"activeLinks"`
	LastImportAt     *time.Time          `json:"lastImportAt,omitempty"`
	LastExportAt     *time.Time          `json:"lastExportAt,omitempty"`
	LastAttendanceAt *time.Time          `json:"lastAttendanceAt,omitempty"`
	RunState         usecase.RunState    `json:"runState"`
	LastRun          *usecase.SyncReport `json:"lastRun,omitempty"`
}

type remoteGroupDTO struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Subgroups []remoteSubgroupDTO `json:"subgroups"`
}

type remoteSubgroupDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func remoteGroupToDTO(g usecase.RemoteGroup) remoteGroupDTO {
	subgroups := make([]remoteSubgroupDTO, 0, len(g.Subgroups))
	for _, sub := range g.Subgroups {
		subgroups = append(subgroups, remoteSubgroupDTO{ID: sub.ID, Name: sub.Name})
	}
	return remoteGroupDTO{ID: g.ID, Name: g.Name, Subgroups: subgroups}
}

type importableGroupDTO struct {
	GroupID         string `json:"groupId"`
	Name            string `json:"name"`
	ParentGroupID   string `json:"parentGroupId,omitempty"`
	ParentGroupName string `json:"parentGroupName,omitempty"`
	IsSubgroup      bool   `json:"isSubgroup"`
	LinkedTeamID    string `json:"linkedTeamId,omitempty"`
	LinkedTeamName  string `json:"linkedTeamName,omitempty"`
}

func importableGroupToDTO(g usecase.ImportableGroup) importableGroupDTO {
	return importableGroupDTO{
		GroupID:         g.GroupID,
		Name:            g.Name,
		ParentGroupID:   g.ParentGroupID,
		ParentGroupName: g.ParentGroupName,
		IsSubgroup:      g.IsSubgroup,
		LinkedTeamID:    g.LinkedTeamID,
		LinkedTeamName:  g.LinkedTeamName,
	}
}

type importTeamResultDTO struct {
	GroupID string              `json:"groupId"`
	TeamID  string              `json:"teamId,omitempty"`
	Status  usecase.OutcomeKind `json:"status"`
	Reason  string              `json:"reason,omitempty"`
}
