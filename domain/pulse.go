package domain

import (
	"github.com/fundwit/go-commons/types"
)

// ProjectUpdate is a progress pulse posted against a milestone.
type ProjectUpdate struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	MilestoneID types.ID `json:"milestoneId"`

	Summary string `json:"summary"`
	Done    string `json:"done"`
	Changed string `json:"changed"`
	Blocked string `json:"blocked"`

	Evidence TextList `json:"evidence" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type PulseCreating struct {
	ProjectID   types.ID `json:"-"`
	MilestoneID types.ID `json:"milestoneId"`

	Summary string `json:"summary"`
	Done    string `json:"done"`
	Changed string `json:"changed"`
	Blocked string `json:"blocked"`

	Evidence []string `json:"evidence"`
}
