package account

import (
	"crowdfundx/audit"
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/idgen"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc       = CreateUser
	DisableUserFunc      = DisableUser
	EnableUserFunc       = EnableUser
	AdjustReputationFunc = AdjustReputation
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// CreateUser is open signup; administration rights are only granted through
// permission bindings (see BootstrapAdminAccount).
func CreateUser(c *UserCreation) (*UserInfo, error) {
	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Email: c.Email,
		Secret: HashSha256(c.Secret), CreateTime: types.CurrentTimestamp()}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Email: user.Email}, nil
}

// BootstrapAdminAccount creates the admin account named by ADMIN_NAME and
// ADMIN_SECRET when it does not exist yet, and binds system:admin to it.
func BootstrapAdminAccount() error {
	name := os.Getenv("ADMIN_NAME")
	secret := os.Getenv("ADMIN_SECRET")
	if name == "" || secret == "" {
		logrus.Warn("ADMIN_NAME or ADMIN_SECRET is not set, admin account bootstrap skipped")
		return nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(nil)
	return db.Transaction(func(tx *gorm.DB) error {
		user := User{Name: name}
		err := tx.Where(&user).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			user = User{ID: idgen.NextID(userIdWorker), Name: name, Secret: HashSha256(secret),
				CreateTime: types.CurrentTimestamp()}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		binding := UserPermissionBinding{UserID: user.ID, PermissionID: SystemAdminPermission.ID}
		if err := tx.Where(&binding).First(&binding).Error; err == gorm.ErrRecordNotFound {
			binding.ID = idgen.NextID(userIdWorker)
			return tx.Create(&binding).Error
		} else if err != nil {
			return err
		}
		return nil
	})
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}

func QueryUsers(sec *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}

// DisableUser blocks further logins of the target user. Admin only.
func DisableUser(userId types.ID, sec *session.Session) error {
	return setUserDisabled(userId, true, sec)
}

func EnableUser(userId types.ID, sec *session.Session) error {
	return setUserDisabled(userId, false, sec)
}

func setUserDisabled(userId types.ID, disabled bool, sec *session.Session) error {
	if !sec.Perms.HasRole(SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	action := domain.AuditUserEnabled
	details := "Account re-enabled by administrator."
	if disabled {
		action = domain.AuditUserDisabled
		details = "Account disabled by administrator."
	}

	var record *domain.AuditLog
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		if user.Disabled == disabled {
			return nil
		}
		if err := tx.Model(&User{ID: userId}).Update("disabled", disabled).Error; err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(0, action, details, &sec.Identity, tx)
		return err
	})
	if err != nil {
		return err
	}

	if record != nil {
		if audit.InvokeHandlersFunc != nil {
			audit.InvokeHandlersFunc(record)
		}
		notification.NotifyFunc(userId, notification.Notifying{
			Type: notification.TypeSystem, Title: "Account Status Changed", Message: details})
	}
	return nil
}

// AdjustReputation applies an admin correction to a user's reputation score.
func AdjustReputation(userId types.ID, adj *ReputationAdjusting, sec *session.Session) error {
	if !sec.Perms.HasRole(SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	var record *domain.AuditLog
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Model(&User{ID: userId}).Update("reputation", user.Reputation+adj.Delta).Error; err != nil {
			return err
		}

		var err error
		record, err = audit.CreateAudit(0, domain.AuditReputationAdj,
			fmt.Sprintf("Reputation adjusted by %+d: %s", adj.Delta, adj.Reason), &sec.Identity, tx)
		return err
	})
	if err != nil {
		return err
	}

	if audit.InvokeHandlersFunc != nil {
		audit.InvokeHandlersFunc(record)
	}
	notification.NotifyFunc(userId, notification.Notifying{
		Type: notification.TypeSystem, Title: "Reputation Adjusted",
		Message: fmt.Sprintf("An administrator adjusted your reputation by %+d: %s", adj.Delta, adj.Reason)})
	return nil
}
