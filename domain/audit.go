package domain

import (
	"github.com/fundwit/go-commons/types"
)

type AuditAction string

// The closed action taxonomy. Every state transition appends exactly one
// entry tagged with one of these.
const (
	AuditProjectStart    AuditAction = "PROJECT_START"
	AuditMilestoneDone   AuditAction = "MILESTONE_COMPLETE"
	AuditUpdatePosted    AuditAction = "UPDATE_POSTED"
	AuditSkillApproved   AuditAction = "SKILL_APPROVED"
	AuditSkillCompleted  AuditAction = "SKILL_COMPLETED"
	AuditSkillEndedEarly AuditAction = "SKILL_ENDED_EARLY"
	AuditProjectClosed   AuditAction = "PROJECT_CLOSED"
	AuditReputationAdj   AuditAction = "REPUTATION_ADJUST"
	AuditIncentiveAdd    AuditAction = "INCENTIVE_ADD"
	AuditAnchorPending   AuditAction = "CAPITAL_ANCHOR_PENDING"
	AuditAnchorApproved  AuditAction = "CAPITAL_ANCHOR_APPROVED"
	AuditAnchorRejected  AuditAction = "CAPITAL_ANCHOR_REJECTED"
	AuditRevision        AuditAction = "ARCHITECT_REVISION"
	AuditProjectFrozen   AuditAction = "PROJECT_FROZEN_BY_ADMIN"
	AuditProjectUnfrozen AuditAction = "PROJECT_UNFROZEN_BY_ADMIN"
	AuditUserDisabled    AuditAction = "USER_DISABLED_BY_ADMIN"
	AuditUserEnabled     AuditAction = "USER_ENABLED_BY_ADMIN"
)

// AuditLog is append-only: entries are never mutated or removed, and their
// ordering is insertion order.
type AuditLog struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	Action AuditAction `json:"action"`

	ActorID   types.ID `json:"actorId"`
	ActorName string   `json:"actorName"`
	Details   string   `json:"details"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`

	// Synced marks whether the entry has been copied to the search index.
	Synced bool `json:"synced"`
}

func (r *AuditLog) TableName() string {
	return "audit_logs"
}
