package project_test

import (
	"bytes"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/project"
	"crowdfundx/session"
	"crowdfundx/testinfra"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestProjectsRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	project.RegisterProjectsRestAPI(router)

	t.Run("query projects with filters", func(t *testing.T) {
		var received *domain.ProjectQuery
		project.QueryProjectsFunc = func(q *domain.ProjectQuery, sec *session.Session) ([]domain.Project, error) {
			received = q
			return []domain.Project{{ID: 100, Title: "Solar Charger"}}, nil
		}
		req := httptest.NewRequest(http.MethodGet, project.PathProjects+"?category=Hardware&search=solar", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"title":"Solar Charger"`))
		Expect(received.Category).To(Equal("Hardware"))
		Expect(received.Search).To(Equal("solar"))
	})

	t.Run("invalid path id yields bad param", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, project.PathProjects+"/abc", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"invalid id 'abc'"}`))
	})

	t.Run("unknown project yields not found", func(t *testing.T) {
		project.DetailProjectFunc = func(id types.ID, sec *session.Session) (*domain.ProjectDetail, error) {
			return nil, domain.ErrNotFound
		}
		req := httptest.NewRequest(http.MethodGet, project.PathProjects+"/404", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found", "message":"record not found"}`))
	})

	t.Run("creation by an anonymous visitor is unauthorized", func(t *testing.T) {
		project.CreateProjectFunc = func(c *domain.ProjectCreating, sec *session.Session) (*domain.ProjectDetail, error) {
			return nil, bizerror.ErrUnauthenticated
		}
		payload := `{"title":"t","category":"Tech","projectType":"Product",
			"financialBreakdown":[{"item":"x","amount":1}],"milestones":[{"title":"m1"}]}`
		req := httptest.NewRequest(http.MethodPost, project.PathProjects, bytes.NewBufferString(payload))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated", "message":"unauthenticated"}`))
	})

	t.Run("deletion by a non-admin is forbidden", func(t *testing.T) {
		project.DeleteProjectFunc = func(id types.ID, sec *session.Session) error {
			return bizerror.ErrForbidden
		}
		req := httptest.NewRequest(http.MethodDelete, project.PathProjects+"/100", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden", "message":"access forbidden"}`))
	})

	t.Run("edit on a frozen project yields conflict", func(t *testing.T) {
		project.EditProjectFunc = func(id types.ID, u *domain.ProjectUpdating, sec *session.Session) (*domain.ProjectDetail, error) {
			return nil, bizerror.ErrProjectLocked
		}
		payload := `{"title":"t","category":"Tech","financialBreakdown":[{"item":"x","amount":1}]}`
		req := httptest.NewRequest(http.MethodPut, project.PathProjects+"/100", bytes.NewBufferString(payload))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"project.locked", "message":"project is frozen for review"}`))
	})
}
