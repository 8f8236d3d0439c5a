package lifecycle

import (
	"crowdfundx/bizerror"
	"crowdfundx/misc"
	"crowdfundx/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterLifecycleRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/projects", middleWares...)
	g.PUT(":id/freeze", handleFreezeProject)
	g.DELETE(":id/freeze", handleUnfreezeProject)
	g.POST(":id/close", handleCloseProject)
}

func parsePathProjectId(c *gin.Context) (types.ID, bool) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param",
			Message: "invalid id '" + c.Param("id") + "'"})
		return 0, false
	}
	return id, true
}

func handleFreezeProject(c *gin.Context) {
	id, ok := parsePathProjectId(c)
	if !ok {
		return
	}
	if err := FreezeProjectFunc(id, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleUnfreezeProject(c *gin.Context) {
	id, ok := parsePathProjectId(c)
	if !ok {
		return
	}
	if err := UnfreezeProjectFunc(id, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleCloseProject(c *gin.Context) {
	id, ok := parsePathProjectId(c)
	if !ok {
		return
	}
	closing := ProjectClosing{}
	if err := c.ShouldBindBodyWith(&closing, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := CloseProjectFunc(id, &closing, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
