package project

import (
	"crowdfundx/bizerror"
	"crowdfundx/domain"
	"crowdfundx/domain/lifecycle"
	"crowdfundx/idgen"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	PostQuestionFunc = PostQuestion
	PostAnswerFunc   = PostAnswer
)

func PostQuestion(projectId types.ID, q *domain.QuestionPosting, sec *session.Session) (*domain.ProjectQA, error) {
	if sec == nil || sec.Identity.ID == 0 {
		return nil, bizerror.ErrUnauthenticated
	}

	qa := domain.ProjectQA{ID: idgen.NextID(projectIdWorker), ProjectID: projectId,
		UserID: sec.Identity.ID, UserName: sec.Identity.DisplayName(),
		Question: q.Question, CreateTime: types.CurrentTimestamp()}

	var creatorId types.ID
	var title string
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: projectId}).First(&p).Error; err != nil {
			return err
		}
		if err := lifecycle.CheckMutable(p.Status); err != nil {
			return err
		}
		creatorId = p.CreatorID
		title = p.Title
		return tx.Create(&qa).Error
	})
	if err != nil {
		return nil, err
	}

	notification.NotifyFunc(creatorId, notification.Notifying{Type: notification.TypeInquiry,
		Title: "New Question", LinkProjectID: projectId, LinkItemID: qa.ID, ApplicantID: qa.UserID,
		Message: fmt.Sprintf("%s asked a question on '%s'.", qa.UserName, title)})
	return &qa, nil
}

func PostAnswer(projectId, qaId types.ID, a *domain.AnswerPosting, sec *session.Session) error {
	var askerId types.ID
	var title string
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := domain.Project{}
		if err := tx.Where(&domain.Project{ID: projectId}).First(&p).Error; err != nil {
			return err
		}
		if !lifecycle.CanGovern(&p, sec) {
			return bizerror.ErrForbidden
		}
		if err := lifecycle.CheckMutable(p.Status); err != nil {
			return err
		}
		title = p.Title

		qa := domain.ProjectQA{}
		if err := tx.Where(&domain.ProjectQA{ID: qaId, ProjectID: projectId}).First(&qa).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		askerId = qa.UserID
		return tx.Model(&domain.ProjectQA{ID: qaId}).Update("answer", a.Answer).Error
	})
	if err != nil {
		return err
	}

	notification.NotifyFunc(askerId, notification.Notifying{Type: notification.TypeInquiry,
		Title: "Question Answered", LinkProjectID: projectId, LinkItemID: qaId,
		Message: fmt.Sprintf("The architect answered your question on '%s'.", title)})
	return nil
}
