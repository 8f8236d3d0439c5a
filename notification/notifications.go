package notification

import (
	"context"
	"crowdfundx/bizerror"
	"crowdfundx/idgen"
	"crowdfundx/persistence"
	"crowdfundx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	noticeIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	NotifyFunc = Notify
)

// Notify is fire-and-forget: a delivery failure is logged and swallowed so it
// can never roll back the state mutation that triggered it.
func Notify(targetUserId types.ID, n Notifying) {
	record := Notification{
		ID:     idgen.NextID(noticeIdWorker),
		UserID: targetUserId,

		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,

		LinkProjectID: n.LinkProjectID,
		LinkItemID:    n.LinkItemID,
		ApplicantID:   n.ApplicantID,

		CreateTime: types.CurrentTimestamp(),
	}

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Create(&record).Error; err != nil {
		logrus.Errorf("failed to deliver notification to user %d: %v", targetUserId, err)
	}
}

// DispatchNotices delivers the notices collected during a committed mutation.
func DispatchNotices(notices []Notice) {
	for _, n := range notices {
		NotifyFunc(n.TargetUserID, n.Notifying)
	}
}

func QueryNotifications(sec *session.Session) ([]Notification, error) {
	if sec.Identity.ID == 0 {
		return nil, bizerror.ErrUnauthenticated
	}
	records := []Notification{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&Notification{UserID: sec.Identity.ID}).Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkNotificationRead is the only mutation a notification supports, and only
// by its recipient.
func MarkNotificationRead(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		record := Notification{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		if record.UserID != sec.Identity.ID {
			return bizerror.ErrForbidden
		}
		if record.Read {
			return nil
		}
		return tx.Model(&Notification{ID: id}).Update("read", true).Error
	})
}
