package domain

import (
	"github.com/fundwit/go-commons/types"
)

type SkillStatus string

const (
	SkillPending    SkillStatus = "PENDING"
	SkillApproved   SkillStatus = "APPROVED"
	SkillRejected   SkillStatus = "REJECTED"
	SkillCompleted  SkillStatus = "COMPLETED"
	SkillEndedEarly SkillStatus = "ENDED_EARLY"
)

type SkillContribution struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	UserID   types.ID `json:"userId"`
	UserName string   `json:"userName"`

	SkillCategory string `json:"skillCategory"`
	SpecificSkill string `json:"specificSkill"`
	Commitment    string `json:"commitment"`
	Tasks         string `json:"tasks"`
	Proof         string `json:"proof"`

	Status         SkillStatus `json:"status"`
	CompletionNote string      `json:"completionNote"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type SkillApplying struct {
	ProjectID     types.ID `json:"-"`
	SkillCategory string   `json:"skillCategory" binding:"omitempty,lte=60"`
	SpecificSkill string   `json:"specificSkill" binding:"required,lte=60"`
	Commitment    string   `json:"commitment" binding:"lte=120"`
	Tasks         string   `json:"tasks" binding:"required"`
	Proof         string   `json:"proof"`
}

type SkillReview struct {
	ProjectID     types.ID `json:"projectId" binding:"required"`
	ApplicationID types.ID `json:"applicationId"`
	ApplicantID   types.ID `json:"applicantId"`
	Approved      bool     `json:"approved"`
}

type SkillClosing struct {
	ProjectID      types.ID `json:"projectId" binding:"required"`
	ApplicationID  types.ID `json:"applicationId" binding:"required"`
	CompletionNote string   `json:"completionNote" binding:"lte=500"`
	EndedEarly     bool     `json:"endedEarly"`
}
