package indices

import (
	"crowdfundx/misc"
	"crowdfundx/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	PathIndexRequests        = "/v1/index-requests"
	PathPendingIndexRecovery = "/v1/index-recoveries"

	// a recovery pass walks the whole unsynced backlog, keep it rare
	indexRecoveryLimiter = rate.NewLimiter(rate.Every(30*time.Second), 1)
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1", middleWares...)
	g.POST("index-requests", handleIndexRequest)
	g.POST("index-recoveries", handlePendingIndexRecovery)
}

func handleIndexRequest(c *gin.Context) {
	started, err := ScheduleNewSyncRunFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	if !started {
		c.JSON(http.StatusOK, gin.H{"result": "skipped"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"result": "started"})
}

func handlePendingIndexRecovery(c *gin.Context) {
	if !indexRecoveryLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, &misc.ErrorBody{Code: "common.too_many_requests",
			Message: "index recovery was requested too frequently"})
		return
	}
	if err := PendingRecoveryRoutineFunc(session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"result": "started"})
}
