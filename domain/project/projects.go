package project

import (
	"crowdfundx/account"
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
	"github.com/sony/sonyflake"
)

var (
	projectIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateProjectFunc = CreateProject
	DetailProjectFunc = DetailProject
	QueryProjectsFunc = QueryProjects
	EditProjectFunc   = EditProject
	DeleteProjectFunc = DeleteProject
)

// CreateProject launches a project with its milestone sequence and financial
// breakdown. The funding goal is the sum of the breakdown amounts; the first
// milestone starts ACTIVE, the rest PENDING.
func CreateProject(c *domain.ProjectCreating, sec *session.Session) (*domain.ProjectDetail, error) {
	if sec == nil || sec.Identity.ID == 0 {
		return nil, bizerror.ErrUnauthenticated
	}

	goal := float64(0)
	for _, n := range c.FinancialBreakdown {
		goal += n.Amount
	}

	now := types.CurrentTimestamp()
	p := domain.Project{
		ID: idgen.NextID(projectIdWorker),

		Title:          c.Title,
		OneLineSummary: c.OneLineSummary,
		Category:       c.Category,
		ProjectType:    c.ProjectType,

		CreatorID:   sec.Identity.ID,
		CreatorName: sec.Identity.DisplayName(),

		FundingGoal: goal,

		UpiID:          c.UpiID,
		UpiDisplayName: c.UpiDisplayName,
		SkillsNeeded:   domain.TextList(c.SkillsNeeded),

		Duration:        c.Duration,
		UpdateFrequency: c.UpdateFrequency,

		Status:     domain.StatusActive,
		LastUpdate: now,
		CreateTime: now,
	}

	var record *domain.AuditLog
	detail := domain.ProjectDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		for i, m := range c.Milestones {
			status := domain.MilestonePending
			if i == 0 {
				status = domain.MilestoneActive
			}
			milestone := domain.Milestone{ID: idgen.NextID(projectIdWorker), ProjectID: p.ID,
				Ordinal: i + 1, Title: m.Title, Deliverable: m.Deliverable, TimeWindow: m.TimeWindow,
				Status: status, FundRelease: m.FundRelease}
			if err := tx.Create(&milestone).Error; err != nil {
				return err
			}
		}
		if err := createFinancialNodes(p.ID, c.FinancialBreakdown, tx); err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(p.ID, domain.AuditProjectStart,
			fmt.Sprintf("Project '%s' launched with a funding goal of %.2f.", p.Title, goal),
			&sec.Identity, tx)
		if err != nil {
			return err
		}

		d, err := loadDetail(p.ID, tx)
		if err != nil {
			return err
		}
		detail = *d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	applyViewerRole(&detail, sec)
	return &detail, nil
}

func createFinancialNodes(projectId types.ID, nodes []domain.FinancialNodeCreating, tx *gorm.DB) error {
	for _, n := range nodes {
		status := n.Status
		if status == "" {
			status = domain.FinancialEstimated
		}
		node := domain.FinancialNode{ID: idgen.NextID(projectIdWorker), ProjectID: projectId,
			Item: n.Item, Amount: n.Amount, Description: n.Description, Status: status}
		if err := tx.Create(&node).Error; err != nil {
			return err
		}
	}
	return nil
}

func DetailProject(id types.ID, sec *session.Session) (*domain.ProjectDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	detail, err := loadDetail(id, db)
	if err != nil {
		return nil, err
	}
	applyViewerRole(detail, sec)
	return detail, nil
}

// applyViewerRole resolves the requester's role against the loaded aggregate.
func applyViewerRole(detail *domain.ProjectDetail, sec *session.Session) {
	var viewerId types.ID
	isAdmin := false
	if sec != nil {
		viewerId = sec.Identity.ID
		isAdmin = sec.Perms.HasRole(account.SystemAdminPermission.ID)
	}
	detail.ViewerRole = domain.ResolveScopedRole(viewerId, isAdmin, detail)
}

// loadDetail assembles the whole aggregate: the project row plus every owned
// collection, the backer id set and the ordered audit history.
func loadDetail(id types.ID, db *gorm.DB) (*domain.ProjectDetail, error) {
	detail := domain.ProjectDetail{}
	if err := db.Where(&domain.Project{ID: id}).First(&detail.Project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := db.Where(&domain.Milestone{ProjectID: id}).Order("ordinal ASC").
		Find(&detail.Milestones).Error; err != nil {
		return nil, err
	}
	if current := domain.CurrentMilestone(detail.Milestones); current != nil {
		detail.CurrentMilestoneID = current.ID
	}
	if err := db.Where(&domain.FinancialNode{ProjectID: id}).Order("id ASC").
		Find(&detail.FinancialBreakdown).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&domain.PendingAnchor{ProjectID: id}).Order("create_time ASC").
		Find(&detail.PendingAnchors).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&domain.SkillContribution{ProjectID: id}).Order("create_time ASC").
		Find(&detail.SkillContributors).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&domain.ProjectUpdate{ProjectID: id}).Order("create_time ASC").
		Find(&detail.Updates).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&domain.ProjectQA{ProjectID: id}).Order("create_time ASC").
		Find(&detail.QA).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&domain.Incentive{ProjectID: id}).Order("id ASC").
		Find(&detail.Incentives).Error; err != nil {
		return nil, err
	}

	var backers []domain.ProjectBacker
	if err := db.Where(&domain.ProjectBacker{ProjectID: id}).Order("create_time ASC").
		Find(&backers).Error; err != nil {
		return nil, err
	}
	detail.BackerIds = []types.ID{}
	for _, b := range backers {
		detail.BackerIds = append(detail.BackerIds, b.UserID)
	}

	records, err := audit.LoadProjectAudits(id, db)
	if err != nil {
		return nil, err
	}
	detail.AuditHistory = records
	return &detail, nil
}

func QueryProjects(q *domain.ProjectQuery, sec *session.Session) ([]domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	query := db.Model(&domain.Project{})
	if q.Category != "" {
		query = query.Where(&domain.Project{Category: q.Category})
	}
	if q.Status != "" {
		query = query.Where(&domain.Project{Status: domain.ProjectStatus(q.Status)})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("title LIKE ? OR one_line_summary LIKE ?", pattern, pattern)
	}

	projects := []domain.Project{}
	if err := query.Order("create_time DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// EditProject is a full revision by the architect: base fields and the
// financial breakdown are replaced and the funding goal recomputed.
func EditProject(id types.ID, u *domain.ProjectUpdating, sec *session.Session) (*domain.ProjectDetail, error) {
	goal := float64(0)
	for _, n := range u.FinancialBreakdown {
		goal += n.Amount
	}

	var record *domain.AuditLog
	detail := domain.ProjectDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: id}).First(&p).Error; err != nil {
			return err
		}
		if !lifecycle.CanGovern(&p, sec) {
			return bizerror.ErrForbidden
		}
		if err := lifecycle.CheckMutable(p.Status); err != nil {
			return err
		}

		if err := tx.Model(&domain.Project{ID: id}).Updates(map[string]interface{}{
			"title": u.Title, "one_line_summary": u.OneLineSummary, "category": u.Category,
			"upi_id": u.UpiID, "upi_display_name": u.UpiDisplayName,
			"skills_needed": domain.TextList(u.SkillsNeeded),
			"duration":      u.Duration, "update_frequency": u.UpdateFrequency,
			"funding_goal": goal}).Error; err != nil {
			return err
		}

		if err := tx.Where(&domain.FinancialNode{ProjectID: id}).
			Delete(&domain.FinancialNode{}).Error; err != nil {
			return err
		}
		if err := createFinancialNodes(id, u.FinancialBreakdown, tx); err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(id, domain.AuditRevision,
			"Project details revised by the architect.", &sec.Identity, tx)
		if err != nil {
			return err
		}

		d, err := loadDetail(id, tx)
		if err != nil {
			return err
		}
		detail = *d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	applyViewerRole(&detail, sec)
	return &detail, nil
}

// DeleteProject removes the whole aggregate, owned audit history included.
// Admin only; the normal lifecycle never deletes.
func DeleteProject(id types.ID, sec *session.Session) error {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: id}).First(&p).Error; err != nil {
			return err
		}

		if err := tx.Delete(&domain.Project{ID: id}).Error; err != nil {
			return err
		}
		owned := []interface{}{
			&domain.Milestone{}, &domain.FinancialNode{}, &domain.PendingAnchor{},
			&domain.SkillContribution{}, &domain.ProjectUpdate{}, &domain.ProjectQA{},
			&domain.Incentive{},
		}
		for _, entity := range owned {
			if err := tx.Where("project_id = ?", id).Delete(entity).Error; err != nil {
				return err
			}
		}
		if err := tx.Where(&domain.ProjectBacker{ProjectID: id}).
			Delete(&domain.ProjectBacker{}).Error; err != nil {
			return err
		}
		return tx.Where(&domain.AuditLog{ProjectID: id}).Delete(&domain.AuditLog{}).Error
	})
}
