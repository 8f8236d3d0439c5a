package funding_test

import (
	"context"
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/funding"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"crowdfundx/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) (*[]domain.AuditLog, *[]notification.Notice) {
	db := testinfra.StartMysqlTestDatabase("crowdfundx")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&domain.Project{}, &domain.PendingAnchor{},
		&domain.ProjectBacker{}, &domain.AuditLog{}).Error).To(BeNil())

	handledAudits := &[]domain.AuditLog{}
	audit.InvokeHandlersFunc = func(record *domain.AuditLog) []audit.AuditHandleResult {
		*handledAudits = append(*handledAudits, *record)
		return nil
	}
	notices := &[]notification.Notice{}
	notification.NotifyFunc = func(uid types.ID, n notification.Notifying) {
		*notices = append(*notices, notification.Notice{TargetUserID: uid, Notifying: n})
	}
	return handledAudits, notices
}

func buildProject(id, creator types.ID, status domain.ProjectStatus) domain.Project {
	now := types.CurrentTimestamp()
	p := domain.Project{ID: id, Title: "project " + id.String(), Category: "Tech",
		CreatorID: creator, CreatorName: "creator", FundingGoal: 25000,
		Status: status, LastUpdate: now, CreateTime: now}
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Create(&p).Error).To(BeNil())
	return p
}

func TestSubmitCapitalAnchor(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	handledAudits, notices := setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	t.Run("should reject unauthenticated submitter", func(t *testing.T) {
		_, err := funding.SubmitCapitalAnchor(&domain.AnchorCreating{ProjectID: 100, Amount: 100, UpiRefID: "REF-1"},
			&session.Session{Context: context.Background()})
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})

	t.Run("should create a pending anchor with audit entry and architect notification", func(t *testing.T) {
		buildProject(100, 1, domain.StatusActive)
		*handledAudits, *notices = nil, nil

		anchor, err := funding.SubmitCapitalAnchor(
			&domain.AnchorCreating{ProjectID: 100, Amount: 5000, UpiRefID: "UPI-77"}, testinfra.BuildSecCtx(201))
		Expect(err).To(BeNil())
		Expect(anchor.Status).To(Equal(domain.AnchorPending))
		Expect(anchor.Amount).To(Equal(float64(5000)))
		Expect(anchor.UserID).To(Equal(types.ID(201)))

		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditAnchorPending))
		Expect((*handledAudits)[0].ProjectID).To(Equal(types.ID(100)))

		Expect(len(*notices)).To(Equal(1))
		Expect((*notices)[0].TargetUserID).To(Equal(types.ID(1)))
		Expect((*notices)[0].Type).To(Equal(notification.TypeFunding))
		Expect((*notices)[0].ApplicantID).To(Equal(types.ID(201)))
		Expect((*notices)[0].LinkItemID).To(Equal(anchor.ID))
	})

	t.Run("should be blocked on frozen or closed projects", func(t *testing.T) {
		buildProject(101, 1, domain.StatusUnderReview)
		buildProject(102, 1, domain.StatusCompleted)

		_, err := funding.SubmitCapitalAnchor(
			&domain.AnchorCreating{ProjectID: 101, Amount: 10, UpiRefID: "R"}, testinfra.BuildSecCtx(201))
		Expect(err).To(Equal(bizerror.ErrProjectLocked))

		_, err = funding.SubmitCapitalAnchor(
			&domain.AnchorCreating{ProjectID: 102, Amount: 10, UpiRefID: "R"}, testinfra.BuildSecCtx(201))
		Expect(err).To(Equal(bizerror.ErrProjectClosed))
	})
}

func TestReviewCapitalAnchor(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	handledAudits, notices := setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	architect := testinfra.BuildSecCtx(1)

	t.Run("approval applies anchor, ledger, backer set, audit and notification atomically", func(t *testing.T) {
		buildProject(100, 1, domain.StatusActive)
		anchor, err := funding.SubmitCapitalAnchor(
			&domain.AnchorCreating{ProjectID: 100, Amount: 5000, UpiRefID: "UPI-1"}, testinfra.BuildSecCtx(201))
		Expect(err).To(BeNil())
		*handledAudits, *notices = nil, nil

		Expect(funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 100, AnchorID: anchor.ID, Approved: true}, architect)).To(BeNil())

		db := testDatabase.DS.GormDB(context.Background())
		p := domain.Project{}
		Expect(db.Where(&domain.Project{ID: 100}).First(&p).Error).To(BeNil())
		Expect(p.FundingRaised).To(Equal(float64(5000)))

		updated := domain.PendingAnchor{}
		Expect(db.Where(&domain.PendingAnchor{ID: anchor.ID}).First(&updated).Error).To(BeNil())
		Expect(updated.Status).To(Equal(domain.AnchorApproved))

		backers := []domain.ProjectBacker{}
		Expect(db.Where(&domain.ProjectBacker{ProjectID: 100}).Find(&backers).Error).To(BeNil())
		Expect(len(backers)).To(Equal(1))
		Expect(backers[0].UserID).To(Equal(types.ID(201)))

		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditAnchorApproved))

		Expect(len(*notices)).To(Equal(1))
		Expect((*notices)[0].TargetUserID).To(Equal(types.ID(201)))
		Expect((*notices)[0].Type).To(Equal(notification.TypeFunding))
	})

	t.Run("stale approval of a decided anchor is a silent no-op", func(t *testing.T) {
		db := testDatabase.DS.GormDB(context.Background())
		anchor := domain.PendingAnchor{}
		Expect(db.Where(&domain.PendingAnchor{ProjectID: 100, UserID: 201}).First(&anchor).Error).To(BeNil())
		*handledAudits, *notices = nil, nil

		Expect(funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 100, AnchorID: anchor.ID, Approved: true}, architect)).To(BeNil())

		p := domain.Project{}
		Expect(db.Where(&domain.Project{ID: 100}).First(&p).Error).To(BeNil())
		Expect(p.FundingRaised).To(Equal(float64(5000)))
		Expect(len(*handledAudits)).To(Equal(0))
		Expect(len(*notices)).To(Equal(0))
	})

	t.Run("second approved anchor of the same user keeps the backer set unique", func(t *testing.T) {
		anchor, err := funding.SubmitCapitalAnchor(
			&domain.AnchorCreating{ProjectID: 100, Amount: 3000, UpiRefID: "UPI-2"}, testinfra.BuildSecCtx(201))
		Expect(err).To(BeNil())
		Expect(funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 100, AnchorID: anchor.ID, Approved: true}, architect)).To(BeNil())

		db := testDatabase.DS.GormDB(context.Background())
		p := domain.Project{}
		Expect(db.Where(&domain.Project{ID: 100}).First(&p).Error).To(BeNil())
		Expect(p.FundingRaised).To(Equal(float64(8000)))

		backers := []domain.ProjectBacker{}
		Expect(db.Where(&domain.ProjectBacker{ProjectID: 100}).Find(&backers).Error).To(BeNil())
		Expect(len(backers)).To(Equal(1))
	})

	t.Run("denial is unconditional and never reverses an applied approval", func(t *testing.T) {
		db := testDatabase.DS.GormDB(context.Background())
		anchor := domain.PendingAnchor{}
		Expect(db.Where(&domain.PendingAnchor{ProjectID: 100, UpiRefID: "UPI-1"}).First(&anchor).Error).To(BeNil())
		Expect(anchor.Status).To(Equal(domain.AnchorApproved))
		*handledAudits, *notices = nil, nil

		Expect(funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 100, AnchorID: anchor.ID, Approved: false}, architect)).To(BeNil())

		updated := domain.PendingAnchor{}
		Expect(db.Where(&domain.PendingAnchor{ID: anchor.ID}).First(&updated).Error).To(BeNil())
		Expect(updated.Status).To(Equal(domain.AnchorRejected))

		// the ledger keeps the already-applied increment
		p := domain.Project{}
		Expect(db.Where(&domain.Project{ID: 100}).First(&p).Error).To(BeNil())
		Expect(p.FundingRaised).To(Equal(float64(8000)))

		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditAnchorRejected))
		Expect(len(*notices)).To(Equal(1))
	})

	t.Run("review resolves the anchor by applicant id when no anchor id is given", func(t *testing.T) {
		buildProject(110, 1, domain.StatusActive)
		_, err := funding.SubmitCapitalAnchor(
			&domain.AnchorCreating{ProjectID: 110, Amount: 700, UpiRefID: "UPI-9"}, testinfra.BuildSecCtx(333))
		Expect(err).To(BeNil())

		Expect(funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 110, ApplicantID: 333, Approved: true}, architect)).To(BeNil())

		db := testDatabase.DS.GormDB(context.Background())
		p := domain.Project{}
		Expect(db.Where(&domain.Project{ID: 110}).First(&p).Error).To(BeNil())
		Expect(p.FundingRaised).To(Equal(float64(700)))
	})

	t.Run("review of a missing anchor fails with not found", func(t *testing.T) {
		err := funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 110, AnchorID: 99999, Approved: true}, architect)
		Expect(err).To(Equal(domain.ErrNotFound))
	})

	t.Run("only the architect or an admin may review", func(t *testing.T) {
		err := funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 110, ApplicantID: 333, Approved: false}, testinfra.BuildSecCtx(333))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		Expect(funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 110, ApplicantID: 333, Approved: false},
			testinfra.BuildSecCtx(999, "system:admin"))).To(BeNil())
	})

	t.Run("review is blocked while the project is frozen", func(t *testing.T) {
		buildProject(120, 1, domain.StatusUnderReview)
		err := funding.ReviewCapitalAnchor(
			&domain.AnchorReview{ProjectID: 120, AnchorID: 1, Approved: true}, architect)
		Expect(err).To(Equal(bizerror.ErrProjectLocked))
	})
}

func TestAllocationCoverage(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should compute committed share of the raised amount", func(t *testing.T) {
		breakdown := []domain.FinancialNode{
			{Item: "hosting", Amount: 3000, Status: domain.FinancialAllocated},
			{Item: "design", Amount: 1500, Status: domain.FinancialSpent},
			{Item: "reserve", Amount: 4000, Status: domain.FinancialEstimated},
		}
		Expect(funding.AllocationCoverage(5000, breakdown)).To(Equal(float64(90)))
		Expect(funding.AllocationCoverage(0, breakdown)).To(Equal(float64(0)))
		Expect(funding.AllocationCoverage(5000, nil)).To(Equal(float64(0)))
	})
}
