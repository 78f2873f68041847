package queries

import (
	"errors"
	"strings"

	"ctxmemory/application/dispatch"
	"ctxmemory/pkg/auth"
)

const (
	defaultRetrieveLimit = 5
	maxRetrieveLimit     = 100
)

// RetrieveContextQuery is the retrieve_context tool's input, routed
// through the dispatcher and ranker.
type RetrieveContextQuery struct {
	Query          string                 `json:"query" validate:"required"`
	SearchMode     string                 `json:"search_mode"`
	DispatchPolicy string                 `json:"dispatch_policy"`
	Limit          int                    `json:"limit"`
	Filters        map[string]interface{} `json:"filters"`
	SortBy         string                 `json:"sort_by"`
	RankingPolicy  string                 `json:"ranking_policy"`
	Namespace      string                 `json:"namespace"`

	// Warnings accumulates non-fatal validation adjustments (e.g. a
	// clamped limit) so the handler can surface them in the response.
	Warnings []string `json:"-"`
}

func (q *RetrieveContextQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return errors.New("query is required")
	}
	if q.Limit < 0 {
		q.Limit = defaultRetrieveLimit
	}
	if q.Limit > maxRetrieveLimit {
		q.Warnings = append(q.Warnings, "limit exceeded maximum of 100 and was clamped")
		q.Limit = maxRetrieveLimit
	}
	if q.SearchMode == "" {
		q.SearchMode = string(dispatch.ModeAuto)
	}
	if q.DispatchPolicy == "" {
		q.DispatchPolicy = string(dispatch.PolicyParallel)
	}
	if q.SortBy == "" {
		q.SortBy = "timestamp"
	}
	if q.SortBy != "timestamp" && q.SortBy != "relevance" {
		return errors.New("sort_by must be timestamp or relevance")
	}
	return nil
}

func (q *RetrieveContextQuery) RequiredCapability() auth.Capability { return auth.CapRetrieveContext }

// RetrieveContextResultItem is one entry of the result list.
type RetrieveContextResultItem struct {
	ID      string                 `json:"id"`
	Content map[string]interface{} `json:"content"`
	Score   float64                `json:"score"`
	Source  []string               `json:"source"`
}

type RetrieveContextResult struct {
	Results         []RetrieveContextResultItem `json:"results"`
	SourceBreakdown map[string]int              `json:"source_breakdown"`
	BackendsUsed    []string                    `json:"backends_used"`
	Timings         map[string]string           `json:"timings"`
	Warnings        []string                    `json:"warnings"`
}
