package skill

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

func RegisterSkillsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1", middleWares...)
	g.POST("projects/:id/skill-applications", handleSubmitSkillApplication)
	g.POST("skill-reviews", handleReviewSkillApplication)
	g.POST("skill-closings", handleCloseSkillContribution)
}

func handleSubmitSkillApplication(c *gin.Context) {
	projectId, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param",
			Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	applying := domain.SkillApplying{}
	if err := c.ShouldBindBodyWith(&applying, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	applying.ProjectID = projectId

	application, err := SubmitSkillApplicationFunc(&applying, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, application)
}

func handleReviewSkillApplication(c *gin.Context) {
	review := domain.SkillReview{}
	if err := c.ShouldBindBodyWith(&review, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := ReviewSkillApplicationFunc(&review, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleCloseSkillContribution(c *gin.Context) {
	closing := domain.SkillClosing{}
	if err := c.ShouldBindBodyWith(&closing, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := CloseSkillContributionFunc(&closing, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
