package notification

import (
	"github.com/fundwit/go-commons/types"
)

const (
	TypeInquiry          = "INQUIRY"
	TypeSkillApplication = "SKILL_APPLICATION"
	TypeFunding          = "FUNDING"
	TypeMilestone        = "MILESTONE"
	TypeSystem           = "SYSTEM"
	TypeIncentive        = "INCENTIVE"
)

type Notification struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	// UserID is the recipient; only the recipient may mark the entry read.
	UserID types.ID `json:"userId"`

	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	// Link back to the originating project/item so that an approval action
	// can be resolved from the notification alone.
	LinkProjectID types.ID `json:"linkProjectId"`
	LinkItemID    types.ID `json:"linkItemId"`
	ApplicantID   types.ID `json:"applicantId"`

	Read bool `json:"read"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type Notifying struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	LinkProjectID types.ID `json:"linkProjectId"`
	LinkItemID    types.ID `json:"linkItemId"`
	ApplicantID   types.ID `json:"applicantId"`
}

// Notice pairs a recipient with the message to send; mutating operations
// collect notices inside their transaction and dispatch them after commit.
type Notice struct {
	TargetUserID types.ID
	Notifying
}
