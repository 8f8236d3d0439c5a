package account

import (
	"context"
	"crowdfundx/authority"
	"crowdfundx/domain"
	"crowdfundx/persistence"

	"github.com/fundwit/go-commons/types"
)

type Permission struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

var (
	SystemAdminPermission = Permission{ID: "system:admin", Title: "System Administration"}

	LoadPermFunc = LoadPerm
)

// UserPermissionBinding grants a user a global permission, e.g. system:admin.
type UserPermissionBinding struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	UserID       types.ID `json:"userId" gorm:"unique_index:user_perm_unique"`
	PermissionID string   `json:"permissionId" gorm:"unique_index:user_perm_unique"`
}

func (r *UserPermissionBinding) TableName() string {
	return "user_permission_bindings"
}

// LoadPerm resolves a user's global permissions and the architect role of
// every project the user created. Project-scoped contributor roles are not
// loaded here; they resolve from the aggregate on each operation.
func LoadPerm(userId types.ID) (authority.Permissions, authority.ProjectRoles) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	perms := authority.Permissions{}
	var bindings []UserPermissionBinding
	if err := db.Where(&UserPermissionBinding{UserID: userId}).Find(&bindings).Error; err == nil {
		for _, b := range bindings {
			perms = append(perms, b.PermissionID)
		}
	}

	projectRoles := authority.ProjectRoles{}
	var created []domain.Project
	if err := db.Model(&domain.Project{}).Where(&domain.Project{CreatorID: userId}).Find(&created).Error; err == nil {
		for _, p := range created {
			projectRoles = append(projectRoles, domain.ProjectRole{ProjectID: p.ID, Role: "architect"})
		}
	}

	return perms, projectRoles
}
