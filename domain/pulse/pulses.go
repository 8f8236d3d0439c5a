package pulse

import (
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/lifecycle"
	"crowdfundx/idgen"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	pulseIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RecordPulseFunc = RecordPulse
	EditPulseFunc   = EditPulse
)

// RecordPulse posts a progress update against a milestone. Summary and done
// are mandatory; posting always refreshes the project's lastUpdate.
func RecordPulse(c *domain.PulseCreating, sec *session.Session) (*domain.ProjectUpdate, error) {
	if strings.TrimSpace(c.Summary) == "" || strings.TrimSpace(c.Done) == "" {
		return nil, bizerror.ErrValidationFailed
	}

	now := types.CurrentTimestamp()
	update := domain.ProjectUpdate{ID: idgen.NextID(pulseIdWorker), ProjectID: c.ProjectID,
		MilestoneID: c.MilestoneID, Summary: c.Summary, Done: c.Done,
		Changed: c.Changed, Blocked: c.Blocked, Evidence: domain.TextList(c.Evidence),
		CreateTime: now}

	var record *domain.AuditLog
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

		if err := tx.Create(&update).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Project{ID: p.ID}).Update("last_update", now).Error; err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(p.ID, domain.AuditUpdatePosted,
			fmt.Sprintf("Progress update posted: %s", c.Summary), &sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	return &update, nil
}

// EditPulse replaces the content of an existing update while preserving its
// original timestamp. The revision is audited as ARCHITECT_REVISION and still
// refreshes the project's lastUpdate.
func EditPulse(projectId, updateId types.ID, c *domain.PulseCreating, sec *session.Session) (*domain.ProjectUpdate, error) {
	if strings.TrimSpace(c.Summary) == "" || strings.TrimSpace(c.Done) == "" {
		return nil, bizerror.ErrValidationFailed
	}

	var record *domain.AuditLog
	update := domain.ProjectUpdate{}
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

		if err := tx.Where(&domain.ProjectUpdate{ID: updateId, ProjectID: projectId}).
			First(&update).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&domain.ProjectUpdate{ID: updateId}).Updates(map[string]interface{}{
			"summary": c.Summary, "done": c.Done, "changed": c.Changed, "blocked": c.Blocked,
			"evidence": domain.TextList(c.Evidence)}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Project{ID: p.ID}).
			Update("last_update", types.CurrentTimestamp()).Error; err != nil {
			return err
		}

		update.Summary, update.Done, update.Changed, update.Blocked = c.Summary, c.Done, c.Changed, c.Blocked
		update.Evidence = domain.TextList(c.Evidence)

		var err error
		record, err = audit.CreateAudit(p.ID, domain.AuditRevision,
			fmt.Sprintf("Progress update revised: %s", c.Summary), &sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	return &update, nil
}
