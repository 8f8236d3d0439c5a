package funding

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
	anchorIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SubmitCapitalAnchorFunc = SubmitCapitalAnchor
	ReviewCapitalAnchorFunc = ReviewCapitalAnchor
)

// SubmitCapitalAnchor records a contributor's claim of an off-platform payment.
// The UPI reference is stored as-is; verification is the architect's review.
func SubmitCapitalAnchor(c *domain.AnchorCreating, sec *session.Session) (*domain.PendingAnchor, error) {
	if sec == nil || sec.Identity.ID == 0 {
		return nil, bizerror.ErrUnauthenticated
	}

	anchor := domain.PendingAnchor{ID: idgen.NextID(anchorIdWorker), ProjectID: c.ProjectID,
		UserID: sec.Identity.ID, UserName: sec.Identity.DisplayName(),
		Amount: c.Amount, UpiRefID: c.UpiRefID, ProofURL: c.ProofURL,
		Status: domain.AnchorPending, CreateTime: types.CurrentTimestamp()}

	var record *domain.AuditLog
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

		if err := tx.Create(&anchor).Error; err != nil {
			return err
		}
		var err error
		record, err = audit.CreateAudit(p.ID, domain.AuditAnchorPending,
			fmt.Sprintf("%s claimed a capital contribution of %.2f.", anchor.UserName, anchor.Amount),
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	notification.NotifyFunc(creatorId, notification.Notifying{Type: notification.TypeFunding,
		Title: "New Capital Anchor", LinkProjectID: anchor.ProjectID, LinkItemID: anchor.ID,
		ApplicantID: anchor.UserID,
		Message:     fmt.Sprintf("%s claims to have contributed %.2f. Review the claim.", anchor.UserName, anchor.Amount)})
	return &anchor, nil
}

// ReviewCapitalAnchor approves or denies a capital claim.
//
// Approval only acts on a PENDING anchor; a stale approval of an already
// decided anchor is a silent no-op. The approval effects are atomic: anchor
// status, raised total, backer set and audit entry commit together.
//
// Denial is unconditional. It marks the anchor REJECTED and records the audit
// entry whatever the current status is, and it never reverses a previously
// applied approval on the ledger.
func ReviewCapitalAnchor(r *domain.AnchorReview, sec *session.Session) error {
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

		anchor, err := findAnchor(tx, r)
		if err != nil {
			return err
		}

		if r.Approved {
			if anchor.Status != domain.AnchorPending {
				return nil
			}
			if err := tx.Model(&domain.PendingAnchor{ID: anchor.ID}).
				Update("status", domain.AnchorApproved).Error; err != nil {
				return err
			}
			if err := tx.Model(&domain.Project{ID: p.ID}).
				Update("funding_raised", p.FundingRaised+anchor.Amount).Error; err != nil {
				return err
			}
			backer := domain.ProjectBacker{}
			if err := tx.Where(domain.ProjectBacker{ProjectID: p.ID, UserID: anchor.UserID}).
				Attrs(domain.ProjectBacker{CreateTime: types.CurrentTimestamp()}).
				FirstOrCreate(&backer).Error; err != nil {
				return err
			}

			record, err = audit.CreateAudit(p.ID, domain.AuditAnchorApproved,
				fmt.Sprintf("Approved capital anchor of %.2f from %s.", anchor.Amount, anchor.UserName),
				&sec.Identity, tx)
			if err != nil {
				return err
			}
			notices = append(notices, notification.Notice{TargetUserID: anchor.UserID,
				Notifying: notification.Notifying{Type: notification.TypeFunding,
					Title: "Contribution Approved", LinkProjectID: p.ID, LinkItemID: anchor.ID,
					Message: fmt.Sprintf("Your contribution of %.2f to '%s' has been approved.",
						anchor.Amount, p.Title)}})
			return nil
		}

		if err := tx.Model(&domain.PendingAnchor{ID: anchor.ID}).
			Update("status", domain.AnchorRejected).Error; err != nil {
			return err
		}
		record, err = audit.CreateAudit(p.ID, domain.AuditAnchorRejected,
			fmt.Sprintf("Rejected capital anchor of %.2f from %s.", anchor.Amount, anchor.UserName),
			&sec.Identity, tx)
		if err != nil {
			return err
		}
		notices = append(notices, notification.Notice{TargetUserID: anchor.UserID,
			Notifying: notification.Notifying{Type: notification.TypeFunding,
				Title: "Contribution Rejected", LinkProjectID: p.ID, LinkItemID: anchor.ID,
				Message: fmt.Sprintf("Your contribution claim of %.2f to '%s' was rejected.",
					anchor.Amount, p.Title)}})
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

// findAnchor matches by anchor id first, then falls back to the applicant's
// user id: an inbound review may carry either, depending on which notification
// it originated from.
func findAnchor(tx *gorm.DB, r *domain.AnchorReview) (*domain.PendingAnchor, error) {
	anchor := domain.PendingAnchor{}
	if r.AnchorID != 0 {
		err := tx.Where(&domain.PendingAnchor{ID: r.AnchorID, ProjectID: r.ProjectID}).
			First(&anchor).Error
		if err == nil {
			return &anchor, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	if r.ApplicantID != 0 {
		err := tx.Where(&domain.PendingAnchor{ProjectID: r.ProjectID, UserID: r.ApplicantID}).
			Order("create_time DESC").First(&anchor).Error
		if err == nil {
			return &anchor, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	return nil, domain.ErrNotFound
}

// AllocationCoverage is the share of the raised amount the breakdown has
// committed (ALLOCATED or SPENT), as a percentage. Zero when nothing is raised.
func AllocationCoverage(raised float64, breakdown []domain.FinancialNode) float64 {
	if raised <= 0 {
		return 0
	}
	allocated := float64(0)
	for _, n := range breakdown {
		if n.Status == domain.FinancialAllocated || n.Status == domain.FinancialSpent {
			allocated += n.Amount
		}
	}
	return allocated / raised * 100
}
