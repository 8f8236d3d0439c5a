package domain

import (
	"github.com/fundwit/go-commons/types"
)

type FinancialNodeStatus string

const (
	FinancialEstimated FinancialNodeStatus = "ESTIMATED"
	FinancialAllocated FinancialNodeStatus = "ALLOCATED"
	FinancialSpent     FinancialNodeStatus = "SPENT"
)

// FinancialNode is one line item of the financial breakdown. Status
// transitions are architect-driven edits; the ledger does not enforce
// ESTIMATED -> ALLOCATED -> SPENT ordering.
type FinancialNode struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	Item        string              `json:"item"`
	Amount      float64             `json:"amount"`
	Description string              `json:"description"`
	Status      FinancialNodeStatus `json:"status"`
}

type FinancialNodeCreating struct {
	Item        string              `json:"item" binding:"required,lte=120"`
	Amount      float64             `json:"amount" binding:"gte=0"`
	Description string              `json:"description"`
	Status      FinancialNodeStatus `json:"status" binding:"omitempty,oneof=ESTIMATED ALLOCATED SPENT"`
}
