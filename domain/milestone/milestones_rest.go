package milestone

import (
	"crowdfundx/bizerror"
	"crowdfundx/misc"
	"crowdfundx/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterMilestonesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/projects", middleWares...)
	g.PUT(":id/milestones/:milestoneId/activation", handleActivateMilestone)
	g.PUT(":id/milestones/:milestoneId/completion", handleCompleteMilestone)
}

func parsePathId(c *gin.Context, name string) (types.ID, bool) {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param",
			Message: "invalid " + name + " '" + c.Param(name) + "'"})
		return 0, false
	}
	return id, true
}

func handleActivateMilestone(c *gin.Context) {
	projectId, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	milestoneId, ok := parsePathId(c, "milestoneId")
	if !ok {
		return
	}
	if err := ActivateMilestoneFunc(projectId, milestoneId, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleCompleteMilestone(c *gin.Context) {
	projectId, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	milestoneId, ok := parsePathId(c, "milestoneId")
	if !ok {
		return
	}
	completing := MilestoneCompleting{}
	if err := c.ShouldBindBodyWith(&completing, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := CompleteMilestoneFunc(projectId, milestoneId, &completing, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
