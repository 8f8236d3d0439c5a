package indices

import (
	"context"
	"crowdfundx/audit"
	"crowdfundx/authority"
	"crowdfundx/client/es"
	"crowdfundx/domain"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	AuditIndexName        = "audits"
	AuditIndexHandlerName = "auditIndexer"

	indexRobot = &session.Session{
		Token:    "index-robot",
		Context:  context.Background(),
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{},
	}
)

type AuditDocument struct {
	domain.AuditLog
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

// IndexAudits copies audit entries into the search index and marks the
// successfully indexed rows as synced.
func IndexAudits(records []domain.AuditLog) error {
	errs := BatchActionError{}

	for _, r := range records {
		if err := es.IndexFunc(AuditIndexName, r.ID, AuditDocument{AuditLog: r}, indexRobot); err != nil {
			errs[r.ID] = err
			logrus.Warnf("index audit %d %s %v\n", r.ID, r.Action, err)
			continue
		}
		if err := markAuditSynced(r.ID); err != nil {
			errs[r.ID] = err
			logrus.Warnf("mark audit %d synced %v\n", r.ID, err)
			continue
		}
		logrus.Infof("index audit %d %s successfully\n", r.ID, r.Action)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func markAuditSynced(id types.ID) error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	return db.Model(&domain.AuditLog{}).Where("id = ?", id).Update("synced", true).Error
}

// IndexAuditHandle is registered on the audit handler chain: every committed
// audit entry is pushed to the index right after its transaction commits.
func IndexAuditHandle(r *domain.AuditLog) *audit.AuditHandleResult {
	if err := IndexAudits([]domain.AuditLog{*r}); err != nil {
		return &audit.AuditHandleResult{
			Message:           fmt.Sprintf("index audit %d, %v", r.ID, err),
			HandlerIdentifier: AuditIndexHandlerName,
		}
	}
	return &audit.AuditHandleResult{Success: true, HandlerIdentifier: AuditIndexHandlerName}
}
