package testinfra

import (
	"context"
	"crowdfundx/authority"
	"crowdfundx/domain"
	"crowdfundx/session"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds a security context. A perm of the form "role_123" is also
// translated into a project role binding.
func BuildSecCtx(uid types.ID, perms ...string) *session.Session {
	projectRoles := []domain.ProjectRole{}
	for _, perm := range perms {
		idx := strings.Index(perm, "_")
		if idx > 0 {
			role := perm[0:idx]
			projectId, err := types.ParseID(perm[idx+1:])
			if err != nil {
				continue
			}
			projectRoles = append(projectRoles, domain.ProjectRole{ProjectID: projectId, Role: role})
		}
	}

	return &session.Session{Context: context.Background(), Token: "test-token",
		Identity: session.Identity{ID: uid, Name: "user-" + uid.String()},
		Perms:    authority.Permissions(perms), ProjectRoles: projectRoles}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	body, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}
