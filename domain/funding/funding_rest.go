package funding

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

func RegisterFundingRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1", middleWares...)
	g.POST("projects/:id/anchors", handleSubmitCapitalAnchor)
	g.POST("anchor-reviews", handleReviewCapitalAnchor)
}

func handleSubmitCapitalAnchor(c *gin.Context) {
	projectId, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param",
			Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	creation := domain.AnchorCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation.ProjectID = projectId

	anchor, err := SubmitCapitalAnchorFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, anchor)
}

func handleReviewCapitalAnchor(c *gin.Context) {
	review := domain.AnchorReview{}
	if err := c.ShouldBindBodyWith(&review, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := ReviewCapitalAnchorFunc(&review, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
