package search

import (
	"crowdfundx/client/es"
	"crowdfundx/domain"
	"crowdfundx/indices"
	"crowdfundx/session"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fundwit/go-commons/types"
)

var SearchAuditsFunc = SearchAudits

type AuditQuery struct {
	ProjectID types.ID `form:"projectId"`
	Action    string   `form:"action"`
	Keyword   string   `form:"keyword"`
}

// SearchAudits queries the audit index. Unlike the database view, which is
// always scoped to one project, the index can be filtered across projects by
// action or free text.
func SearchAudits(q AuditQuery, s *session.Session) ([]domain.AuditLog, error) {
	filters := make([]es.H, 0, 3)
	if q.ProjectID != 0 {
		filters = append(filters, es.H{"term": es.H{"projectId": q.ProjectID}})
	}
	if q.Action != "" {
		filters = append(filters, es.H{"term": es.H{"action": q.Action}})
	}
	if q.Keyword != "" {
		filters = append(filters, es.H{"match": es.H{"details": es.H{"query": q.Keyword, "operator": "AND"}}})
	}

	sorts := []es.H{{"createTime": es.H{"order": "desc"}}}
	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.AuditIndexName, es.H{"size": 1000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	records := make([]domain.AuditLog, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		record := domain.AuditLog{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&record); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		records = append(records, record)
	}
	return records, nil
}
