package avatar

import (
	"crowdfundx/misc"
	"crowdfundx/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterAvatarRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.GET("/v1/avatars/:id", handleDetailAvatar)

	g := r.Group("/v1/avatars", middleWares...)
	g.POST(":id", handleCreateAvatar)
}

func handleDetailAvatar(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param",
			Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	data, err := DetailAvatarFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "image/png", data)
}

func handleCreateAvatar(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param",
			Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	if err := CreateAvatarFunc(id, c.Request.Body, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusCreated)
}
