package skill

import (
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/lifecycle"
	"crowdfundx/idgen"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	skillIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SubmitSkillApplicationFunc = SubmitSkillApplication
	ReviewSkillApplicationFunc = ReviewSkillApplication
	CloseSkillContributionFunc = CloseSkillContribution
)

func SubmitSkillApplication(c *domain.SkillApplying, sec *session.Session) (*domain.SkillContribution, error) {
	if sec == nil || sec.Identity.ID == 0 {
		return nil, bizerror.ErrUnauthenticated
	}

	application := domain.SkillContribution{ID: idgen.NextID(skillIdWorker), ProjectID: c.ProjectID,
		UserID: sec.Identity.ID, UserName: sec.Identity.DisplayName(),
		SkillCategory: c.SkillCategory, SpecificSkill: c.SpecificSkill,
		Commitment: c.Commitment, Tasks: c.Tasks, Proof: c.Proof,
		Status: domain.SkillPending, CreateTime: types.CurrentTimestamp()}

	var creatorId types.ID
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: c.ProjectID}).First(&p).Error; err != nil {
			return err
		}
		if err := lifecycle.CheckMutable(p.Status); err != nil {
			return err
		}
		creatorId = p.CreatorID
		return tx.Create(&application).Error
	})
	if err != nil {
		return nil, err
	}

	notification.NotifyFunc(creatorId, notification.Notifying{Type: notification.TypeSkillApplication,
		Title: "New Skill Application", LinkProjectID: application.ProjectID,
		LinkItemID: application.ID, ApplicantID: application.UserID,
		Message: fmt.Sprintf("%s applied to contribute '%s'.", application.UserName, application.SpecificSkill)})
	return &application, nil
}

// ReviewSkillApplication approves or denies a skill application. The shape
// mirrors the capital review: approval is PENDING-guarded and silently ignores
// an already decided application; denial is unconditional. Neither touches the
// funding ledger, and only an approval leaves an audit entry.
func ReviewSkillApplication(r *domain.SkillReview, sec *session.Session) error {
	var record *domain.AuditLog
	notices := []notification.Notice{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: r.ProjectID}).First(&p).Error; err != nil {
			return err
		}
		if !lifecycle.CanGovern(&p, sec) {
			return bizerror.ErrForbidden
		}
		if err := lifecycle.CheckMutable(p.Status); err != nil {
			return err
		}

		application, err := findApplication(tx, r)
		if err != nil {
			return err
		}

		if r.Approved {
			if application.Status != domain.SkillPending {
				return nil
			}
			if err := tx.Model(&domain.SkillContribution{ID: application.ID}).
				Update("status", domain.SkillApproved).Error; err != nil {
				return err
			}
			record, err = audit.CreateAudit(p.ID, domain.AuditSkillApproved,
				fmt.Sprintf("Approved %s as a skill contributor for '%s'.",
					application.UserName, application.SpecificSkill),
				&sec.Identity, tx)
			if err != nil {
				return err
			}
			notices = append(notices, notification.Notice{TargetUserID: application.UserID,
				Notifying: notification.Notifying{Type: notification.TypeSkillApplication,
					Title: "Application Approved", LinkProjectID: p.ID, LinkItemID: application.ID,
					Message: fmt.Sprintf("Your application to contribute '%s' on '%s' has been approved.",
						application.SpecificSkill, p.Title)}})
			return nil
		}

		if err := tx.Model(&domain.SkillContribution{ID: application.ID}).
			Update("status", domain.SkillRejected).Error; err != nil {
			return err
		}
		notices = append(notices, notification.Notice{TargetUserID: application.UserID,
			Notifying: notification.Notifying{Type: notification.TypeSkillApplication,
				Title: "Application Rejected", LinkProjectID: p.ID, LinkItemID: application.ID,
				Message: fmt.Sprintf("Your application to contribute '%s' on '%s' was rejected.",
					application.SpecificSkill, p.Title)}})
		return nil
	})
	if err != nil {
		return err
	}

	if record != nil && audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	notification.DispatchNotices(notices)
	return nil
}

// CloseSkillContribution ends an approved engagement, either as COMPLETED or
// ENDED_EARLY with the architect's note.
func CloseSkillContribution(c *domain.SkillClosing, sec *session.Session) error {
	var record *domain.AuditLog
	notices := []notification.Notice{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: c.ProjectID}).First(&p).Error; err != nil {
			return err
		}
		if !lifecycle.CanGovern(&p, sec) {
			return bizerror.ErrForbidden
		}
		if err := lifecycle.CheckMutable(p.Status); err != nil {
			return err
		}

		application := domain.SkillContribution{}
		if err := tx.Where(&domain.SkillContribution{ID: c.ApplicationID, ProjectID: c.ProjectID}).
			First(&application).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		if application.Status != domain.SkillApproved {
			return bizerror.ErrInvalidTransition
		}

		status := domain.SkillCompleted
		action := domain.AuditSkillCompleted
		title := "Engagement Completed"
		if c.EndedEarly {
			status = domain.SkillEndedEarly
			action = domain.AuditSkillEndedEarly
			title = "Engagement Ended Early"
		}
		if err := tx.Model(&domain.SkillContribution{ID: application.ID}).Updates(map[string]interface{}{
			"status": status, "completion_note": c.CompletionNote}).Error; err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(p.ID, action,
			fmt.Sprintf("Skill engagement of %s ('%s') closed as %s.",
				application.UserName, application.SpecificSkill, status),
			&sec.Identity, tx)
		if err != nil {
			return err
		}
		notices = append(notices, notification.Notice{TargetUserID: application.UserID,
			Notifying: notification.Notifying{Type: notification.TypeSkillApplication,
				Title: title, LinkProjectID: p.ID, LinkItemID: application.ID,
				Message: fmt.Sprintf("Your engagement on '%s' has been closed. %s", p.Title, c.CompletionNote)}})
		return nil
	})
	if err != nil {
		return err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	notification.DispatchNotices(notices)
	return nil
}

func findApplication(tx *gorm.DB, r *domain.SkillReview) (*domain.SkillContribution, error) {
	application := domain.SkillContribution{}
	if r.ApplicationID != 0 {
		err := tx.Where(&domain.SkillContribution{ID: r.ApplicationID, ProjectID: r.ProjectID}).
			First(&application).Error
		if err == nil {
			return &application, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	if r.ApplicantID != 0 {
		err := tx.Where(&domain.SkillContribution{ProjectID: r.ProjectID, UserID: r.ApplicantID}).
			Order("create_time DESC").First(&application).Error
		if err == nil {
			return &application, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	return nil, domain.ErrNotFound
}
