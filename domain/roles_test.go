package domain_test

import (
	"crowdfundx/domain"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestResolveScopedRole(t *testing.T) {
	RegisterTestingT(t)

	detail := &domain.ProjectDetail{
		Project: domain.Project{ID: 100, CreatorID: 1},
		SkillContributors: []domain.SkillContribution{
			{UserID: 301, Status: domain.SkillApproved},
			{UserID: 302, Status: domain.SkillPending},
		},
		BackerIds: []types.ID{201, 301},
	}

	t.Run("admin outranks everything, even the architect", func(t *testing.T) {
		Expect(domain.ResolveScopedRole(1, true, detail)).To(Equal(domain.RoleSystemAdmin))
	})

	t.Run("the creator is the architect", func(t *testing.T) {
		Expect(domain.ResolveScopedRole(1, false, detail)).To(Equal(domain.RoleArchitect))
	})

	t.Run("an approved skill contributor who also backed reads as skill contributor", func(t *testing.T) {
		Expect(domain.ResolveScopedRole(301, false, detail)).To(Equal(domain.RoleSkillContributor))
	})

	t.Run("a pending skill application does not grant the role", func(t *testing.T) {
		Expect(domain.ResolveScopedRole(302, false, detail)).To(Equal(domain.RoleRegistered))
	})

	t.Run("a backer is a capital contributor", func(t *testing.T) {
		Expect(domain.ResolveScopedRole(201, false, detail)).To(Equal(domain.RoleCapitalContributor))
	})

	t.Run("anyone else signed in is merely registered", func(t *testing.T) {
		Expect(domain.ResolveScopedRole(777, false, detail)).To(Equal(domain.RoleRegistered))
	})

	t.Run("the anonymous visitor is public", func(t *testing.T) {
		Expect(domain.ResolveScopedRole(0, false, detail)).To(Equal(domain.RolePublic))
	})

	t.Run("only architect and admin govern", func(t *testing.T) {
		Expect(domain.RoleArchitect.CanGovern()).To(BeTrue())
		Expect(domain.RoleSystemAdmin.CanGovern()).To(BeTrue())
		Expect(domain.RoleCapitalContributor.CanGovern()).To(BeFalse())
		Expect(domain.RoleSkillContributor.CanGovern()).To(BeFalse())
		Expect(domain.RoleRegistered.CanGovern()).To(BeFalse())
		Expect(domain.RolePublic.CanGovern()).To(BeFalse())
	})
}
