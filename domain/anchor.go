package domain

import (
	"github.com/fundwit/go-commons/types"
)

type AnchorStatus string

const (
	AnchorPending  AnchorStatus = "PENDING"
	AnchorApproved AnchorStatus = "APPROVED"
	AnchorRejected AnchorStatus = "REJECTED"
)

// PendingAnchor is a capital contribution claim. The UPI reference id is an
// opaque user-supplied string, never verified against a payment rail.
type PendingAnchor struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	UserID   types.ID `json:"userId"`
	UserName string   `json:"userName"`

	Amount   float64 `json:"amount"`
	UpiRefID string  `json:"upiRefId"`
	ProofURL string  `json:"proofUrl"`

	Status AnchorStatus `json:"status"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type AnchorCreating struct {
	ProjectID types.ID `json:"-"`
	Amount    float64  `json:"amount" binding:"required,gt=0"`
	UpiRefID  string   `json:"upiRefId" binding:"required,lte=64"`
	ProofURL  string   `json:"proofUrl" binding:"omitempty,url"`
}

// AnchorReview identifies the anchor either by its id or, when the inbound
// notification only carried the applicant, by the applicant's user id.
type AnchorReview struct {
	ProjectID   types.ID `json:"projectId" binding:"required"`
	AnchorID    types.ID `json:"anchorId"`
	ApplicantID types.ID `json:"applicantId"`
	Approved    bool     `json:"approved"`
}
