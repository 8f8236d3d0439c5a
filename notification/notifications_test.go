package notification_test

import (
	"context"
	"crowdfundx/bizerror"
	"crowdfundx/notification"
	"crowdfundx/session"
	"crowdfundx/testinfra"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("crowdfundx")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&notification.Notification{}).Error).To(BeNil())
}

func TestNotifyAndQuery(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	t.Run("each user only sees the own inbox, newest first", func(t *testing.T) {
		notification.Notify(201, notification.Notifying{Type: notification.TypeFunding,
			Title: "first", LinkProjectID: 100})
		time.Sleep(10 * time.Millisecond)
		notification.Notify(201, notification.Notifying{Type: notification.TypeSystem,
			Title: "second", LinkProjectID: 100})
		notification.Notify(202, notification.Notifying{Type: notification.TypeInquiry,
			Title: "other inbox"})

		records, err := notification.QueryNotifications(testinfra.BuildSecCtx(201))
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(2))
		Expect(records[0].Title).To(Equal("second"))
		Expect(records[1].Title).To(Equal("first"))
		Expect(records[0].Read).To(BeFalse())

		others, err := notification.QueryNotifications(testinfra.BuildSecCtx(202))
		Expect(err).To(BeNil())
		Expect(len(others)).To(Equal(1))
	})

	t.Run("anonymous queries are rejected", func(t *testing.T) {
		_, err := notification.QueryNotifications(&session.Session{Context: context.Background()})
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})
}

func TestMarkNotificationRead(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	setup(t, &testDatabase)
	defer testinfra.StopMysqlTestDatabase(testDatabase)

	t.Run("only the recipient may mark an entry read, repeats are harmless", func(t *testing.T) {
		notification.Notify(201, notification.Notifying{Type: notification.TypeMilestone, Title: "done"})
		records, err := notification.QueryNotifications(testinfra.BuildSecCtx(201))
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
		id := records[0].ID

		Expect(notification.MarkNotificationRead(id, testinfra.BuildSecCtx(202))).To(Equal(bizerror.ErrForbidden))

		Expect(notification.MarkNotificationRead(id, testinfra.BuildSecCtx(201))).To(BeNil())
		Expect(notification.MarkNotificationRead(id, testinfra.BuildSecCtx(201))).To(BeNil())

		records, err = notification.QueryNotifications(testinfra.BuildSecCtx(201))
		Expect(err).To(BeNil())
		Expect(records[0].Read).To(BeTrue())
	})

	t.Run("unknown ids surface as database not found", func(t *testing.T) {
		Expect(notification.MarkNotificationRead(99999, testinfra.BuildSecCtx(201))).ToNot(BeNil())
	})
}
