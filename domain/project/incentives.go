package project

import (
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/lifecycle"
	"crowdfundx/idgen"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var AddIncentiveFunc = AddIncentive

// AddIncentive registers a new backer incentive in the Upcoming state.
// Incentives unlock when their milestone completes.
func AddIncentive(projectId types.ID, c *domain.IncentiveCreating, sec *session.Session) (*domain.Incentive, error) {
	incentive := domain.Incentive{ID: idgen.NextID(projectIdWorker), ProjectID: projectId,
		Type: c.Type, Title: c.Title, Description: c.Description,
		Eligible: c.Eligible, DeliveryTiming: c.DeliveryTiming,
		UnlockedAtMilestoneID: c.UnlockedAtMilestoneID, Status: domain.IncentiveUpcoming}

	var record *domain.AuditLog
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: projectId}).First(&p).Error; err != nil {
			return err
		}
		if !lifecycle.CanGovern(&p, sec) {
			return bizerror.ErrForbidden
		}
		if err := lifecycle.CheckMutable(p.Status); err != nil {
			return err
		}

		if err := tx.Create(&incentive).Error; err != nil {
			return err
		}
		var err error
		record, err = audit.CreateAudit(projectId, domain.AuditIncentiveAdd,
			fmt.Sprintf("Incentive '%s' added.", incentive.Title), &sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	return &incentive, nil
}
