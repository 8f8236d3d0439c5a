package pulse

import (
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/misc"
	"crowdfundx/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterPulsesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/projects", middleWares...)
	g.POST(":id/updates", handleRecordPulse)
	g.PUT(":id/updates/:updateId", handleEditPulse)
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

func handleRecordPulse(c *gin.Context) {
	projectId, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	creation := domain.PulseCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation.ProjectID = projectId

	update, err := RecordPulseFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, update)
}

func handleEditPulse(c *gin.Context) {
	projectId, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	updateId, ok := parsePathId(c, "updateId")
	if !ok {
		return
	}
	creation := domain.PulseCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation.ProjectID = projectId

	update, err := EditPulseFunc(projectId, updateId, &creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, update)
}
