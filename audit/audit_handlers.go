package audit

import (
	"crowdfundx/domain"

	"github.com/sirupsen/logrus"
)

// AuditHandler returns nil when it does not care about the record.
type AuditHandler func(r *domain.AuditLog) *AuditHandleResult

type AuditHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var AuditHandlers []AuditHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *domain.AuditLog) []AuditHandleResult {
	results := []AuditHandleResult{}
	for _, handler := range AuditHandlers {
		logrus.Debug("pre handle audit record ", record.ID)
		r := handler(record)

		if r == nil {
			continue
		}

		results = append(results, *r)

		if r.Success {
			logrus.Info("post handle audit record. ", r)
		} else {
			logrus.Error("post handler error. ", r)
		}
	}
	return results
}
