package indices

import (
	"context"
	"crowdfundx/account"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	lock    sync.Mutex
	running bool

	SyncBatchSize = 500

	IndicesFullSyncFunc        = IndicesFullSync
	ScheduleNewSyncRunFunc     = ScheduleNewSyncRun
	PendingRecoveryRoutineFunc = RecoverPendingIndexes
)

// ScheduleNewSyncRun starts a full re-index in the background. Only one run is
// allowed at a time; a second request while running is rejected with false.
func ScheduleNewSyncRun(sec *session.Session) (bool, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		records, err := loadAuditPage(page, SyncBatchSize, false)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrive audits(page = %d, pageSize = %d): %v",
				page, SyncBatchSize, err)
			page++
			continue
		}

		if len(records) == 0 {
			logrus.Infof("indices fully sync: there are no more audits to index")
			return nil // loop exit
		}

		if err := IndexAudits(records); err != nil {
			logrus.Warnf("indices fully sync: error on index audits(page = %d, pageSize = %d): %v",
				page, SyncBatchSize, err)
		}
		page++
	}
}

// RecoverPendingIndexes re-indexes only the audit entries whose indexing
// failed after commit (still marked unsynced).
func RecoverPendingIndexes(sec *session.Session) error {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	for {
		records, err := loadAuditPage(1, SyncBatchSize, true)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		if err := IndexAudits(records); err != nil {
			return err
		}
	}
}

func loadAuditPage(page, size int, pendingOnly bool) ([]domain.AuditLog, error) {
	records := []domain.AuditLog{}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	query := db.Order("id ASC").Offset(offset).Limit(size)
	if pendingOnly {
		query = query.Where("synced = ?", false)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
