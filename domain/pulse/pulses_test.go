package pulse_test

import (
	"context"
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/pulse"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/testinfra"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) *[]domain.AuditLog {
	db := testinfra.StartMysqlTestDatabase("crowdfundx")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&domain.Project{},
		&domain.ProjectUpdate{}, &domain.AuditLog{}).Error).To(BeNil())

	handledAudits := &[]domain.AuditLog{}
	audit.InvokeHandlersFunc = func(record *domain.AuditLog) []audit.AuditHandleResult {
		*handledAudits = append(*handledAudits, *record)
		return nil
	}
	notification.NotifyFunc = func(uid types.ID, n notification.Notifying) {}
	return handledAudits
}

func buildProject(id, creator types.ID, status domain.ProjectStatus) domain.Project {
	past := types.Timestamp(time.Now().Add(-48 * time.Hour))
	p := domain.Project{ID: id, Title: "project " + id.String(), Category: "Tech",
		CreatorID: creator, CreatorName: "creator", FundingGoal: 10000,
		Status: status, LastUpdate: past, CreateTime: past}
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Create(&p).Error).To(BeNil())
	return p
}

func TestRecordPulse(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	handledAudits := setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	architect := testinfra.BuildSecCtx(1)

	t.Run("summary and done are mandatory", func(t *testing.T) {
		buildProject(100, 1, domain.StatusActive)

		_, err := pulse.RecordPulse(&domain.PulseCreating{ProjectID: 100, Summary: "  ", Done: "things"}, architect)
		Expect(err).To(Equal(bizerror.ErrValidationFailed))
		_, err = pulse.RecordPulse(&domain.PulseCreating{ProjectID: 100, Summary: "week 1", Done: ""}, architect)
		Expect(err).To(Equal(bizerror.ErrValidationFailed))
	})

	t.Run("a pulse touches the project heartbeat and records an audit entry", func(t *testing.T) {
		*handledAudits = nil

		update, err := pulse.RecordPulse(&domain.PulseCreating{ProjectID: 100,
			Summary: "week 1", Done: "prototype wired", Blocked: "waiting on vendor",
			Evidence: []string{"https://demo.example.com"}}, architect)
		Expect(err).To(BeNil())
		Expect(update.ID).ToNot(BeZero())
		Expect(update.Blocked).To(Equal("waiting on vendor"))

		p := domain.Project{}
		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Where(&domain.Project{ID: 100}).First(&p).Error).To(BeNil())
		Expect(time.Time(p.LastUpdate).After(time.Now().Add(-time.Minute))).To(BeTrue())

		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditUpdatePosted))
	})

	t.Run("only the architect or an admin may post a pulse", func(t *testing.T) {
		_, err := pulse.RecordPulse(&domain.PulseCreating{ProjectID: 100,
			Summary: "s", Done: "d"}, testinfra.BuildSecCtx(55))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("a frozen project rejects pulses", func(t *testing.T) {
		buildProject(101, 1, domain.StatusUnderReview)
		_, err := pulse.RecordPulse(&domain.PulseCreating{ProjectID: 101,
			Summary: "s", Done: "d"}, architect)
		Expect(err).To(Equal(bizerror.ErrProjectLocked))
	})
}

func TestEditPulse(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	handledAudits := setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	architect := testinfra.BuildSecCtx(1)

	t.Run("revision rewrites the content but keeps the original timestamp", func(t *testing.T) {
		buildProject(100, 1, domain.StatusActive)
		created, err := pulse.RecordPulse(&domain.PulseCreating{ProjectID: 100,
			Summary: "week 1", Done: "prototype wired"}, architect)
		Expect(err).To(BeNil())
		*handledAudits = nil

		edited, err := pulse.EditPulse(100, created.ID, &domain.PulseCreating{ProjectID: 100,
			Summary: "week 1 (amended)", Done: "prototype wired and tested", Blocked: "none"}, architect)
		Expect(err).To(BeNil())
		Expect(edited.Summary).To(Equal("week 1 (amended)"))
		Expect(time.Time(edited.CreateTime).Unix()).To(Equal(time.Time(created.CreateTime).Unix()))

		Expect(len(*handledAudits)).To(Equal(1))
		Expect((*handledAudits)[0].Action).To(Equal(domain.AuditRevision))
	})

	t.Run("revision of a missing pulse fails with not found", func(t *testing.T) {
		_, err := pulse.EditPulse(100, 99999, &domain.PulseCreating{ProjectID: 100,
			Summary: "s", Done: "d"}, architect)
		Expect(err).To(Equal(domain.ErrNotFound))
	})

	t.Run("revision carries the same mandatory fields as creation", func(t *testing.T) {
		_, err := pulse.EditPulse(100, 1, &domain.PulseCreating{ProjectID: 100,
			Summary: "", Done: "d"}, architect)
		Expect(err).To(Equal(bizerror.ErrValidationFailed))
	})
}
