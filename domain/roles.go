package domain

import (
	"github.com/fundwit/go-commons/types"
)

// ScopedRole is an actor's role relative to one project, not a global role.
type ScopedRole string

const (
	RolePublic             ScopedRole = "PUBLIC"
	RoleRegistered         ScopedRole = "REGISTERED"
	RoleCapitalContributor ScopedRole = "CAPITAL_CONTRIBUTOR"
	RoleSkillContributor   ScopedRole = "SKILL_CONTRIBUTOR"
	RoleArchitect          ScopedRole = "ARCHITECT"
	RoleSystemAdmin        ScopedRole = "SYSTEM_ADMIN"
)

// ResolveScopedRole evaluates the role predicates in strict precedence order:
// SYSTEM_ADMIN > ARCHITECT > SKILL_CONTRIBUTOR > CAPITAL_CONTRIBUTOR >
// REGISTERED > PUBLIC. The caller resolves admin membership from the session;
// everything else comes from the aggregate itself.
func ResolveScopedRole(actorID types.ID, isSystemAdmin bool, d *ProjectDetail) ScopedRole {
	if isSystemAdmin {
		return RoleSystemAdmin
	}
	if actorID == 0 {
		return RolePublic
	}
	if d.CreatorID == actorID {
		return RoleArchitect
	}
	for _, s := range d.SkillContributors {
		if s.UserID == actorID && s.Status == SkillApproved {
			return RoleSkillContributor
		}
	}
	for _, id := range d.BackerIds {
		if id == actorID {
			return RoleCapitalContributor
		}
	}
	return RoleRegistered
}

// CanGovern reports whether the role may approve or deny applications, edit
// project content, or post milestone pulses.
func (r ScopedRole) CanGovern() bool {
	return r == RoleArchitect || r == RoleSystemAdmin
}
