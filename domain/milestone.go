package domain

import (
	"github.com/fundwit/go-commons/types"
)

type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "PENDING"
	MilestoneActive    MilestoneStatus = "ACTIVE"
	MilestoneCompleted MilestoneStatus = "COMPLETED"
	MilestoneFailed    MilestoneStatus = "FAILED"
)

type Milestone struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	// Ordinal is the position within the project's milestone sequence.
	Ordinal int `json:"ordinal"`

	Title       string `json:"title"`
	Deliverable string `json:"deliverable"`
	TimeWindow  string `json:"timeWindow"`

	Status       MilestoneStatus `json:"status"`
	FundRelease  float64         `json:"fundRelease"`
	EvidenceLink string          `json:"evidenceLink"`
}

type MilestoneCreating struct {
	Title       string  `json:"title" binding:"required,lte=120"`
	Deliverable string  `json:"deliverable"`
	TimeWindow  string  `json:"timeWindow"`
	FundRelease float64 `json:"fundRelease" binding:"gte=0"`
}

// CurrentMilestone resolves the conventional "current" milestone: the first
// ACTIVE one, falling back to the first PENDING, falling back to the last
// element. Returns nil for an empty sequence.
func CurrentMilestone(milestones []Milestone) *Milestone {
	for i := range milestones {
		if milestones[i].Status == MilestoneActive {
			return &milestones[i]
		}
	}
	for i := range milestones {
		if milestones[i].Status == MilestonePending {
			return &milestones[i]
		}
	}
	if len(milestones) > 0 {
		return &milestones[len(milestones)-1]
	}
	return nil
}
