package main

import (
	"context"
	"crowdfundx/account"
	"crowdfundx/audit"
	"crowdfundx/avatar"
	"crowdfundx/bizerror"
	"crowdfundx/client/es"
	"crowdfundx/client/s3"
	"crowdfundx/domain"
	"crowdfundx/domain/funding"
	"crowdfundx/domain/integrity"
	"crowdfundx/domain/lifecycle"
	"crowdfundx/domain/milestone"
	"crowdfundx/domain/project"
	"crowdfundx/domain/pulse"
	"crowdfundx/domain/skill"
	"crowdfundx/indices"
	"crowdfundx/indices/search"
	"crowdfundx/infra/tracing"
	"crowdfundx/misc"
	"crowdfundx/notification"
	"crowdfundx/persistence"
	"crowdfundx/servehttp"
	"crowdfundx/session"
	"crowdfundx/sessions"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	tracingCloser, err := tracing.Bootstrap(misc.GetServiceName())
	if err != nil {
		logrus.Fatalf("failed to bootstrap tracing %v\n", err)
	}
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database conneciton failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &account.UserPermissionBinding{},
		&domain.Project{}, &domain.Milestone{}, &domain.FinancialNode{},
		&domain.PendingAnchor{}, &domain.SkillContribution{}, &domain.ProjectUpdate{},
		&domain.ProjectQA{}, &domain.Incentive{}, &domain.ProjectBacker{},
		&domain.AuditLog{}, &notification.Notification{}).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	if err := account.BootstrapAdminAccount(); err != nil {
		logrus.Fatalf("failed to bootstrap admin account %v\n", err)
	}

	es.CreateClientFromEnv()
	s3.Bootstrap()

	audit.AuditHandlers = append(audit.AuditHandlers, indices.IndexAuditHandle)
	indices.StartCron()

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, misc.GetServiceName())
	})

	secured := session.SimpleAuthFilter()

	sessions.RegisterSessionsHandler(engine)
	account.RegisterUsersRestAPI(engine)
	account.RegisterUserAdminRestAPI(engine, secured)
	notification.RegisterNotificationsRestAPI(engine, secured)

	project.RegisterProjectsRestAPI(engine, secured)
	lifecycle.RegisterLifecycleRestAPI(engine, secured)
	funding.RegisterFundingRestAPI(engine, secured)
	skill.RegisterSkillsRestAPI(engine, secured)
	pulse.RegisterPulsesRestAPI(engine, secured)
	milestone.RegisterMilestonesRestAPI(engine, secured)
	integrity.RegisterIntegrityRestAPI(engine)

	indices.RegisterIndicesRestAPI(engine, secured)
	search.RegisterAuditSearchRestAPI(engine, secured)
	avatar.RegisterAvatarRestAPI(engine, secured)

	servehttp.StartHTTPServer(engine)
}
