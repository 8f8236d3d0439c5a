package indices

import (
	"crowdfundx/bizerror"
	"crowdfundx/session"
	"crowdfundx/testinfra"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

func TestHandleIndexRequest(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterIndicesRestAPI(router)

	t.Run("handle error", func(t *testing.T) {
		ScheduleNewSyncRunFunc = func(sec *session.Session) (bool, error) {
			return false, errors.New("error on schedule new sync run")
		}
		req := httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error", "message":"error on schedule new sync run"}`))
	})

	t.Run("submit index request successfully", func(t *testing.T) {
		ScheduleNewSyncRunFunc = func(sec *session.Session) (bool, error) {
			return true, nil
		}
		req := httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"result": "started"}`))
	})

	t.Run("skip when a sync run is already in flight", func(t *testing.T) {
		ScheduleNewSyncRunFunc = func(sec *session.Session) (bool, error) {
			return false, nil
		}
		req := httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"result": "skipped"}`))
	})
}

func TestHandlePendingIndexRecovery(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterIndicesRestAPI(router)

	t.Run("handle error", func(t *testing.T) {
		indexRecoveryLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
		PendingRecoveryRoutineFunc = func(sec *session.Session) error {
			return errors.New("error on pending index recovery")
		}
		req := httptest.NewRequest(http.MethodPost, PathPendingIndexRecovery, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error", "message":"error on pending index recovery"}`))
	})

	t.Run("create pending index recovery routine with rate limit", func(t *testing.T) {
		indexRecoveryLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
		PendingRecoveryRoutineFunc = func(sec *session.Session) error {
			return nil
		}
		req := httptest.NewRequest(http.MethodPost, PathPendingIndexRecovery, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"result": "started"}`))

		req = httptest.NewRequest(http.MethodPost, PathPendingIndexRecovery, nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusTooManyRequests))
		Expect(body).To(MatchJSON(`{"code":"common.too_many_requests", "message":"index recovery was requested too frequently"}`))

		time.Sleep(101 * time.Millisecond)
		req = httptest.NewRequest(http.MethodPost, PathPendingIndexRecovery, nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"result": "started"}`))
	})
}
