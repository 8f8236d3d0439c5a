package domain

import (
	"github.com/fundwit/go-commons/types"
)

type IncentiveStatus string

const (
	IncentiveUpcoming  IncentiveStatus = "Upcoming"
	IncentiveUnlocked  IncentiveStatus = "Unlocked"
	IncentiveDelivered IncentiveStatus = "Delivered"
)

type Incentive struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Eligible names which contributor kind qualifies: Monetary, Skill or Both.
	Eligible       string `json:"eligible"`
	DeliveryTiming string `json:"deliveryTiming"`

	UnlockedAtMilestoneID types.ID        `json:"unlockedAtMilestoneId"`
	Status                IncentiveStatus `json:"status"`
}

type IncentiveCreating struct {
	Type                  string   `json:"type" binding:"required,lte=60"`
	Title                 string   `json:"title" binding:"required,lte=120"`
	Description           string   `json:"description" binding:"lte=500"`
	Eligible              string   `json:"eligible" binding:"omitempty,oneof=Monetary Skill Both"`
	DeliveryTiming        string   `json:"deliveryTiming" binding:"omitempty,oneof='After Milestone' 'After Project'"`
	UnlockedAtMilestoneID types.ID `json:"unlockedAtMilestoneId"`
}
