package integrity

import (
	"crowdfundx/domain/project"
	"crowdfundx/misc"
	"crowdfundx/session"
	"net/http"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterIntegrityRestAPI(r *gin.Engine) {
	// derived metrics are public, like the project view they score
	r.GET("/v1/projects/:id/integrity", handleProjectIntegrity)
}

func handleProjectIntegrity(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param",
			Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	detail, err := project.DetailProjectFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, Evaluate(detail, time.Now()))
}
