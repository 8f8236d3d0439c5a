package project

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

var PathProjects = "/v1/projects"

func RegisterProjectsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	// browsing is public
	r.GET(PathProjects, handleQueryProjects)
	r.GET(PathProjects+"/:id", handleDetailProject)

	g := r.Group(PathProjects, middleWares...)
	g.POST("", handleCreateProject)
	g.PUT(":id", handleEditProject)
	g.DELETE(":id", handleDeleteProject)
	g.POST(":id/questions", handlePostQuestion)
	g.PUT(":id/questions/:qaId/answer", handlePostAnswer)
	g.POST(":id/incentives", handleAddIncentive)
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

func handleQueryProjects(c *gin.Context) {
	query := domain.ProjectQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	projects, err := QueryProjectsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, projects)
}

func handleDetailProject(c *gin.Context) {
	id, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	detail, err := DetailProjectFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleCreateProject(c *gin.Context) {
	creation := domain.ProjectCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := CreateProjectFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleEditProject(c *gin.Context) {
	id, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	updating := domain.ProjectUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := EditProjectFunc(id, &updating, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleDeleteProject(c *gin.Context) {
	id, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	if err := DeleteProjectFunc(id, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handlePostQuestion(c *gin.Context) {
	id, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	posting := domain.QuestionPosting{}
	if err := c.ShouldBindBodyWith(&posting, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	qa, err := PostQuestionFunc(id, &posting, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, qa)
}

func handlePostAnswer(c *gin.Context) {
	id, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	qaId, ok := parsePathId(c, "qaId")
	if !ok {
		return
	}
	posting := domain.AnswerPosting{}
	if err := c.ShouldBindBodyWith(&posting, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := PostAnswerFunc(id, qaId, &posting, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleAddIncentive(c *gin.Context) {
	id, ok := parsePathId(c, "id")
	if !ok {
		return
	}
	creation := domain.IncentiveCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	incentive, err := AddIncentiveFunc(id, &creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, incentive)
}
