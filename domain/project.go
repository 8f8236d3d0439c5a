package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

type ProjectStatus string

const (
	StatusReview      ProjectStatus = "REVIEW"
	StatusActive      ProjectStatus = "ACTIVE"
	StatusStalled     ProjectStatus = "STALLED"
	StatusFailed      ProjectStatus = "FAILED"
	StatusCompleted   ProjectStatus = "COMPLETED"
	StatusUnderReview ProjectStatus = "UNDER_REVIEW"
)

// IsTerminal reports whether no further financial or milestone mutation is permitted.
func (s ProjectStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Title          string `json:"title"`
	OneLineSummary string `json:"oneLineSummary"`
	Category       string `json:"category"`
	ProjectType    string `json:"projectType"`

	CreatorID   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	FundingGoal   float64 `json:"fundingGoal"`
	FundingRaised float64 `json:"fundingRaised"`

	UpiID          string `json:"upiId"`
	UpiDisplayName string `json:"upiDisplayName"`

	SkillsNeeded TextList `json:"skillsNeeded" sql:"type:TEXT"`

	Duration        string `json:"duration"` // e.g. "6 Months"
	UpdateFrequency string `json:"updateFrequency"`

	Status         ProjectStatus `json:"status"`
	PreviousStatus ProjectStatus `json:"previousStatus"`

	LastUpdate types.Timestamp `json:"lastUpdate" sql:"type:DATETIME(6)"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

// ProjectDetail is the whole aggregate: the project row plus every owned collection.
// Mutating operations load it, act on it inside one transaction, and hand the
// refreshed value back to the caller.
type ProjectDetail struct {
	Project

	Milestones         []Milestone         `json:"milestones"`
	FinancialBreakdown []FinancialNode     `json:"financialBreakdown"`
	PendingAnchors     []PendingAnchor     `json:"pendingAnchors"`
	SkillContributors  []SkillContribution `json:"skillContributors"`
	Updates            []ProjectUpdate     `json:"updates"`
	QA                 []ProjectQA         `json:"qa"`
	Incentives         []Incentive         `json:"incentives"`
	BackerIds          []types.ID          `json:"backerIds"`
	AuditHistory       []AuditLog          `json:"auditHistory"`

	// CurrentMilestoneID names the milestone work is (or should be) happening
	// on; ViewerRole is the requesting user's role relative to this project.
	CurrentMilestoneID types.ID   `json:"currentMilestoneId"`
	ViewerRole         ScopedRole `json:"viewerRole"`
}

type ProjectCreating struct {
	Title          string `json:"title" binding:"required,lte=120"`
	OneLineSummary string `json:"oneLineSummary" binding:"lte=240"`
	Category       string `json:"category" binding:"required,lte=60"`
	ProjectType    string `json:"projectType" binding:"required,lte=30"`

	UpiID           string   `json:"upiId"`
	UpiDisplayName  string   `json:"upiDisplayName"`
	SkillsNeeded    []string `json:"skillsNeeded"`
	Duration        string   `json:"duration"`
	UpdateFrequency string   `json:"updateFrequency"`

	FinancialBreakdown []FinancialNodeCreating `json:"financialBreakdown" binding:"required,dive"`
	Milestones         []MilestoneCreating     `json:"milestones" binding:"required,dive"`
}

// ProjectUpdating is a full edit by the architect: base fields and the financial
// breakdown are replaced, and the funding goal is recomputed from the breakdown.
type ProjectUpdating struct {
	Title          string `json:"title" binding:"required,lte=120"`
	OneLineSummary string `json:"oneLineSummary" binding:"lte=240"`
	Category       string `json:"category" binding:"required,lte=60"`

	UpiID           string   `json:"upiId"`
	UpiDisplayName  string   `json:"upiDisplayName"`
	SkillsNeeded    []string `json:"skillsNeeded"`
	Duration        string   `json:"duration"`
	UpdateFrequency string   `json:"updateFrequency"`

	FinancialBreakdown []FinancialNodeCreating `json:"financialBreakdown" binding:"required,dive"`
}

type ProjectQuery struct {
	Category string `form:"category"`
	Status   string `form:"status"`
	Search   string `form:"search"`
}

// ProjectBacker is one row of the backer set. The unique index keeps
// set semantics even when the same user anchors capital more than once.
type ProjectBacker struct {
	ProjectID types.ID `json:"projectId" gorm:"unique_index:backer_unique"`
	UserID    types.ID `json:"userId" gorm:"unique_index:backer_unique"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *ProjectBacker) TableName() string {
	return "project_backers"
}

type ProjectRole struct {
	ProjectID types.ID `json:"projectId"`
	Role      string   `json:"role"`
}

type TextList []string

func (t TextList) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *TextList) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), t)
}
