package audit

import (
	"crowdfundx/domain"
	"crowdfundx/idgen"
	"crowdfundx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	auditIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	AuditPersistCreateFunc = auditPersistCreate
)

// CreateAudit appends one audit entry inside the caller's transaction. The
// returned record is handed to InvokeHandlersFunc after the transaction commits.
func CreateAudit(projectId types.ID, action domain.AuditAction, details string,
	identity *session.Identity, db *gorm.DB) (*domain.AuditLog, error) {

	record := domain.AuditLog{
		ID:        idgen.NextID(auditIdWorker),
		ProjectID: projectId,
		Action:    action,

		ActorID:   identity.ID,
		ActorName: identity.Name,
		Details:   details,

		CreateTime: types.CurrentTimestamp(),
		Synced:     false,
	}
	if err := AuditPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}

func auditPersistCreate(record *domain.AuditLog, db *gorm.DB) error {
	return db.Create(record).Error
}

func LoadProjectAudits(projectId types.ID, db *gorm.DB) ([]domain.AuditLog, error) {
	records := []domain.AuditLog{}
	if err := db.Where(&domain.AuditLog{ProjectID: projectId}).Order("create_time ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
