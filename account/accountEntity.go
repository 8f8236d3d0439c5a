package account

import "github.com/fundwit/go-commons/types"

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name" gorm:"unique_index:name_unique"`
	Secret string   `json:"secret"`

	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	UpiID    string `json:"upiId"`

	Reputation int  `json:"reputation"`
	Disabled   bool `json:"disabled"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Email    string   `json:"email"`
	Bio      string   `json:"bio"`

	Reputation int  `json:"reputation"`
	Disabled   bool `json:"disabled"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6,lte=32"`
}

type UserCreation struct {
	Name     string `json:"name" binding:"required,lte=32"`
	Secret   string `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type ReputationAdjusting struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required,lte=240"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
