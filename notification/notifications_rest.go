package notification

import (
	"crowdfundx/bizerror"
	"crowdfundx/misc"
	"crowdfundx/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathNotifications = "/v1/notifications"

	QueryNotificationsFunc   = QueryNotifications
	MarkNotificationReadFunc = MarkNotificationRead
)

func RegisterNotificationsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathNotifications, middleWares...)
	g.GET("", handleQueryNotifications)
	g.PUT(":id/read", handleMarkNotificationRead)
}

func handleQueryNotifications(c *gin.Context) {
	sec := session.FindSecurityContext(c)
	if sec == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	records, err := QueryNotificationsFunc(sec)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleMarkNotificationRead(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	sec := session.FindSecurityContext(c)
	if sec == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	if err := MarkNotificationReadFunc(id, sec); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
