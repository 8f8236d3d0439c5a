package lifecycle_test

import (
	"context"
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/lifecycle"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) (*[]domain.AuditLog, *[]notification.Notice) {
	db := testinfra.StartMysqlTestDatabase("crowdfundx")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&domain.Project{},
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
		CreatorID: creator, CreatorName: "creator", FundingGoal: 10000,
		Status: status, LastUpdate: now, CreateTime: now}
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Create(&p).Error).To(BeNil())
	return p
}

func loadProject(testDatabase *testinfra.TestDatabase, id types.ID) domain.Project {
	p := domain.Project{}
	Expect(testDatabase.DS.GormDB(context.Background()).Where(&domain.Project{ID: id}).First(&p).Error).To(BeNil())
	return p
}

func TestCheckMutable(t *testing.T) {
	RegisterTestingT(t)

	Expect(lifecycle.CheckMutable(domain.StatusActive)).To(BeNil())
	Expect(lifecycle.CheckMutable(domain.StatusReview)).To(BeNil())
	Expect(lifecycle.CheckMutable(domain.StatusStalled)).To(BeNil())
	Expect(lifecycle.CheckMutable(domain.StatusUnderReview)).To(Equal(bizerror.ErrProjectLocked))
	Expect(lifecycle.CheckMutable(domain.StatusCompleted)).To(Equal(bizerror.ErrProjectClosed))
	Expect(lifecycle.CheckMutable(domain.StatusFailed)).To(Equal(bizerror.ErrProjectClosed))
}

func TestFreezeProject(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	handledAudits, notices := setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	admin := testinfra.BuildSecCtx(999, "system:admin")

	t.Run("only an admin may freeze", func(t *testing.T) {
		buildProject(100, 1, domain.StatusActive)
		Expect(lifecycle.FreezeProject(100, testinfra.BuildSecCtx(1))).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("freeze records the previous status and notifies the architect", func(t *testing.T) {
		*handledAudits, *notices = nil, nil

		Expect(lifecycle.FreezeProject(100, admin)).To(BeNil())

		p := loadProject(testDatabase, 100)
		Expect(p.Status).To(Equal(domain.StatusUnderReview))
		Expect(p.PreviousStatus).To(Equal(domain.StatusActive))

		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditProjectFrozen))
		Expect(len(*notices)).To(Equal(1))
		Expect((*notices)[0].TargetUserID).To(Equal(types.ID(1)))
		Expect((*notices)[0].Type).To(Equal(notification.TypeSystem))
	})

	t.Run("freezing a frozen project is an invalid transition", func(t *testing.T) {
		Expect(lifecycle.FreezeProject(100, admin)).To(Equal(bizerror.ErrInvalidTransition))
	})

	t.Run("a closed project can not be frozen", func(t *testing.T) {
		buildProject(103, 1, domain.StatusCompleted)
		buildProject(104, 1, domain.StatusFailed)
		*handledAudits, *notices = nil, nil

		Expect(lifecycle.FreezeProject(103, admin)).To(Equal(bizerror.ErrProjectClosed))
		Expect(lifecycle.FreezeProject(104, admin)).To(Equal(bizerror.ErrProjectClosed))

		p := loadProject(testDatabase, 103)
		Expect(p.Status).To(Equal(domain.StatusCompleted))
		Expect(p.PreviousStatus).To(Equal(domain.ProjectStatus("")))
		Expect(len(*handledAudits)).To(Equal(0))
		Expect(len(*notices)).To(Equal(0))
	})

	t.Run("freeze of an unknown project fails with not found", func(t *testing.T) {
		Expect(lifecycle.FreezeProject(404404, admin)).To(Equal(gorm.ErrRecordNotFound))
	})
}

func TestUnfreezeProject(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	handledAudits, notices := setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	admin := testinfra.BuildSecCtx(999, "system:admin")

	t.Run("unfreeze restores the recorded previous status", func(t *testing.T) {
		buildProject(100, 1, domain.StatusStalled)
		Expect(lifecycle.FreezeProject(100, admin)).To(BeNil())
		*handledAudits, *notices = nil, nil

		Expect(lifecycle.UnfreezeProject(100, admin)).To(BeNil())

		p := loadProject(testDatabase, 100)
		Expect(p.Status).To(Equal(domain.StatusStalled))
		Expect(p.PreviousStatus).To(Equal(domain.ProjectStatus("")))

		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditProjectUnfrozen))
		Expect(len(*notices)).To(Equal(1))
	})

	t.Run("unfreeze falls back to ACTIVE when no previous status is recorded", func(t *testing.T) {
		p := domain.Project{ID: 101, Title: "legacy", Category: "Tech", CreatorID: 1,
			Status: domain.StatusUnderReview, LastUpdate: types.CurrentTimestamp(), CreateTime: types.CurrentTimestamp()}
		Expect(testDatabase.DS.GormDB(context.Background()).Create(&p).Error).To(BeNil())

		Expect(lifecycle.UnfreezeProject(101, admin)).To(BeNil())
		Expect(loadProject(testDatabase, 101).Status).To(Equal(domain.StatusActive))
	})

	t.Run("unfreeze of a project that is not frozen is an invalid transition", func(t *testing.T) {
		Expect(lifecycle.UnfreezeProject(100, admin)).To(Equal(bizerror.ErrInvalidTransition))
	})

	t.Run("only an admin may unfreeze", func(t *testing.T) {
		Expect(lifecycle.UnfreezeProject(100, testinfra.BuildSecCtx(1))).To(Equal(bizerror.ErrForbidden))
	})
}

func TestCloseProject(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	handledAudits, notices := setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	t.Run("architect may close an own project and every backer is notified", func(t *testing.T) {
		buildProject(100, 1, domain.StatusActive)
		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Create(&domain.ProjectBacker{ProjectID: 100, UserID: 201,
			CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&domain.ProjectBacker{ProjectID: 100, UserID: 202,
			CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		*handledAudits, *notices = nil, nil

		Expect(lifecycle.CloseProject(100, &lifecycle.ProjectClosing{Outcome: domain.StatusCompleted, Note: "shipped"},
			testinfra.BuildSecCtx(1))).To(BeNil())

		Expect(loadProject(testDatabase, 100).Status).To(Equal(domain.StatusCompleted))
		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditProjectClosed))

		Expect(len(*notices)).To(Equal(2))
		Expect([]types.ID{(*notices)[0].TargetUserID, (*notices)[1].TargetUserID}).
			To(ConsistOf(types.ID(201), types.ID(202)))
	})

	t.Run("a closed project can not be closed again", func(t *testing.T) {
		err := lifecycle.CloseProject(100, &lifecycle.ProjectClosing{Outcome: domain.StatusFailed},
			testinfra.BuildSecCtx(1))
		Expect(err).To(Equal(bizerror.ErrProjectClosed))
	})

	t.Run("strangers may not close a project", func(t *testing.T) {
		buildProject(110, 1, domain.StatusActive)
		err := lifecycle.CloseProject(110, &lifecycle.ProjectClosing{Outcome: domain.StatusFailed},
			testinfra.BuildSecCtx(55))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}
