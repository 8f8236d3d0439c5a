package search

import (
	"crowdfundx/bizerror"
	"crowdfundx/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterAuditSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/audit-search", middleWares...)
	g.GET("", handleSearchAudits)
}

func handleSearchAudits(c *gin.Context) {
	query := AuditQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := SearchAuditsFunc(query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
