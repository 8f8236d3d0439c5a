package lifecycle

import (
	"crowdfundx/account"
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	FreezeProjectFunc   = FreezeProject
	UnfreezeProjectFunc = UnfreezeProject
	CloseProjectFunc    = CloseProject
)

type ProjectClosing struct {
	Outcome domain.ProjectStatus `json:"outcome" binding:"required,oneof=COMPLETED FAILED"`
	Note    string               `json:"note" binding:"lte=500"`
}

// CheckMutable is the write guard every mutating operation passes before
// touching the aggregate. Admin freeze/unfreeze bypasses it on purpose.
func CheckMutable(status domain.ProjectStatus) error {
	if status == domain.StatusUnderReview {
		return bizerror.ErrProjectLocked
	}
	if status.IsTerminal() {
		return bizerror.ErrProjectClosed
	}
	return nil
}

// CanGovern reports whether the session may approve applications, edit project
// content or post pulses: the architect (creator) or a system admin.
func CanGovern(p *domain.Project, sec *session.Session) bool {
	role := domain.ResolveScopedRole(sec.Identity.ID,
		sec.Perms.HasRole(account.SystemAdminPermission.ID), &domain.ProjectDetail{Project: *p})
	return role.CanGovern()
}

// FreezeProject records the current status and moves the project to
// UNDER_REVIEW. Freezing an already frozen project is an invalid transition,
// not a silent stack.
func FreezeProject(id types.ID, sec *session.Session) error {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	var record *domain.AuditLog
	var creatorId types.ID
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		project := domain.Project{}
		if err := tx.Where(&domain.Project{ID: id}).First(&project).Error; err != nil {
			return err
		}
		if project.Status == domain.StatusUnderReview {
			return bizerror.ErrInvalidTransition
		}
		if project.Status.IsTerminal() {
			return bizerror.ErrProjectClosed
		}
		creatorId = project.CreatorID

		if err := tx.Model(&domain.Project{ID: id}).Updates(map[string]interface{}{
			"status": domain.StatusUnderReview, "previous_status": project.Status}).Error; err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(id, domain.AuditProjectFrozen,
			fmt.Sprintf("Project '%s' frozen for review.", project.Title), &sec.Identity, tx)
		return err
	})
	if err != nil {
		return err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	notification.NotifyFunc(creatorId, notification.Notifying{Type: notification.TypeSystem,
		Title: "Project Frozen", LinkProjectID: id,
		Message: "Your project has been placed under review by an administrator."})
	return nil
}

// UnfreezeProject restores the status recorded at freeze time, defaulting to
// ACTIVE when no previous status was recorded.
func UnfreezeProject(id types.ID, sec *session.Session) error {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	var record *domain.AuditLog
	var creatorId types.ID
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		project := domain.Project{}
		if err := tx.Where(&domain.Project{ID: id}).First(&project).Error; err != nil {
			return err
		}
		if project.Status != domain.StatusUnderReview {
			return bizerror.ErrInvalidTransition
		}
		creatorId = project.CreatorID

		restored := project.PreviousStatus
		if restored == "" {
			restored = domain.StatusActive
		}
		if err := tx.Model(&domain.Project{ID: id}).Updates(map[string]interface{}{
			"status": restored, "previous_status": ""}).Error; err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(id, domain.AuditProjectUnfrozen,
			fmt.Sprintf("Project '%s' released from review, status restored to %s.", project.Title, restored),
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	notification.NotifyFunc(creatorId, notification.Notifying{Type: notification.TypeSystem,
		Title: "Project Review Lifted", LinkProjectID: id,
		Message: "Your project is no longer under administrative review."})
	return nil
}

// CloseProject moves the project to a terminal state. Terminal states block
// all further financial and milestone mutation.
func CloseProject(id types.ID, c *ProjectClosing, sec *session.Session) error {
	var record *domain.AuditLog
	notices := []notification.Notice{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		project := domain.Project{}
		if err := tx.Where(&domain.Project{ID: id}).First(&project).Error; err != nil {
			return err
		}
		if !CanGovern(&project, sec) {
			return bizerror.ErrForbidden
		}
		if err := CheckMutable(project.Status); err != nil {
			return err
		}

		if err := tx.Model(&domain.Project{ID: id}).Update("status", c.Outcome).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("Project closed as %s.", c.Outcome)
		if c.Note != "" {
			details = details + " " + c.Note
		}
		var err error
		record, err = audit.CreateAudit(id, domain.AuditProjectClosed, details, &sec.Identity, tx)
		if err != nil {
			return err
		}

		var backers []domain.ProjectBacker
		if err := tx.Where(&domain.ProjectBacker{ProjectID: id}).Find(&backers).Error; err != nil {
			return err
		}
		for _, b := range backers {
			notices = append(notices, notification.Notice{TargetUserID: b.UserID,
				Notifying: notification.Notifying{Type: notification.TypeSystem,
					Title: "Project Closed", LinkProjectID: id,
					Message: fmt.Sprintf("'%s' has been closed as %s.", project.Title, c.Outcome)}})
		}
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
