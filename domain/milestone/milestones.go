package milestone

import (
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/lifecycle"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ActivateMilestoneFunc = ActivateMilestone
	CompleteMilestoneFunc = CompleteMilestone
)

type MilestoneCompleting struct {
	EvidenceLink string `json:"evidenceLink" binding:"omitempty,url"`
}

// ActivateMilestone moves a PENDING milestone to ACTIVE.
func ActivateMilestone(projectId, milestoneId types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Transaction(func(tx *gorm.DB) error {
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

		m := domain.Milestone{}
		if err := tx.Where(&domain.Milestone{ID: milestoneId, ProjectID: projectId}).First(&m).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		if m.Status != domain.MilestonePending {
			return bizerror.ErrInvalidTransition
		}
		return tx.Model(&domain.Milestone{ID: milestoneId}).
			Update("status", domain.MilestoneActive).Error
	})
}

// CompleteMilestone marks the milestone COMPLETED, activates the next PENDING
// one in ordinal order, and unlocks any incentive bound to it. Completing an
// already completed milestone is a no-op.
func CompleteMilestone(projectId, milestoneId types.ID, c *MilestoneCompleting, sec *session.Session) error {
	var record *domain.AuditLog
	notices := []notification.Notice{}
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

		m := domain.Milestone{}
		if err := tx.Where(&domain.Milestone{ID: milestoneId, ProjectID: projectId}).First(&m).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		if m.Status == domain.MilestoneCompleted {
			return nil
		}

		if err := tx.Model(&domain.Milestone{ID: milestoneId}).Updates(map[string]interface{}{
			"status": domain.MilestoneCompleted, "evidence_link": c.EvidenceLink}).Error; err != nil {
			return err
		}

		next := domain.Milestone{}
		err := tx.Where(&domain.Milestone{ProjectID: projectId, Status: domain.MilestonePending}).
			Order("ordinal ASC").First(&next).Error
		if err == nil {
			if err := tx.Model(&domain.Milestone{ID: next.ID}).
				Update("status", domain.MilestoneActive).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		var unlocked []domain.Incentive
		if err := tx.Where(&domain.Incentive{ProjectID: projectId, UnlockedAtMilestoneID: milestoneId,
			Status: domain.IncentiveUpcoming}).Find(&unlocked).Error; err != nil {
			return err
		}
		for _, incentive := range unlocked {
			if err := tx.Model(&domain.Incentive{ID: incentive.ID}).
				Update("status", domain.IncentiveUnlocked).Error; err != nil {
				return err
			}
		}

		record, err = audit.CreateAudit(projectId, domain.AuditMilestoneDone,
			fmt.Sprintf("Milestone '%s' completed, releasing %.2f.", m.Title, m.FundRelease),
			&sec.Identity, tx)
		if err != nil {
			return err
		}

		var backers []domain.ProjectBacker
		if err := tx.Where(&domain.ProjectBacker{ProjectID: projectId}).Find(&backers).Error; err != nil {
			return err
		}
		for _, b := range backers {
			notices = append(notices, notification.Notice{TargetUserID: b.UserID,
				Notifying: notification.Notifying{Type: notification.TypeMilestone,
					Title: "Milestone Completed", LinkProjectID: projectId, LinkItemID: milestoneId,
					Message: fmt.Sprintf("'%s' reached milestone '%s'.", p.Title, m.Title)}})
			for _, incentive := range unlocked {
				notices = append(notices, notification.Notice{TargetUserID: b.UserID,
					Notifying: notification.Notifying{Type: notification.TypeIncentive,
						Title: "Incentive Unlocked", LinkProjectID: projectId, LinkItemID: incentive.ID,
						Message: fmt.Sprintf("Incentive '%s' on '%s' is now unlocked.", incentive.Title, p.Title)}})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if record != nil {
		if audit.InvokeHandlersFunc != nil {
			audit.InvokeHandlersFunc(record)
		}
		notification.DispatchNotices(notices)
	}
	return nil
}
