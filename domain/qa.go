package domain

import (
	"github.com/fundwit/go-commons/types"
)

type ProjectQA struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId"`

	UserID   types.ID `json:"userId"`
	UserName string   `json:"userName"`

	Question string `json:"question"`
	Answer   string `json:"answer"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type QuestionPosting struct {
	Question string `json:"question" binding:"required,lte=500"`
}

type AnswerPosting struct {
	Answer string `json:"answer" binding:"required,lte=2000"`
}
