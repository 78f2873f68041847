package handlers

import (
	"context"
	"fmt"
	"time"

	querybus "ctxmemory/application/queries/bus"
	"ctxmemory/application/dispatch"
	"ctxmemory/application/queries"
	"ctxmemory/application/ranking"
	"ctxmemory/application/ports"
	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"
	pkgerrors "ctxmemory/pkg/errors"
	"ctxmemory/pkg/tokenbudget"
)

// rewriteTokenBudget bounds a single rewritten query variant.
const rewriteTokenBudget = 64

// RetrieveContextHandler dispatches across backends, hydrates the merged
// hits, and ranks them.
type RetrieveContextHandler struct {
	dispatcher *dispatch.Dispatcher
	graph      ports.GraphStore
	embedder   ports.Embedder
}

func NewRetrieveContextHandler(dispatcher *dispatch.Dispatcher, graph ports.GraphStore, embedder ports.Embedder) *RetrieveContextHandler {
	return &RetrieveContextHandler{dispatcher: dispatcher, graph: graph, embedder: embedder}
}

func (h *RetrieveContextHandler) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	q, ok := query.(*queries.RetrieveContextQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
	}

	if q.Limit == 0 {
		return &queries.RetrieveContextResult{
			Results:         []queries.RetrieveContextResultItem{},
			SourceBreakdown: map[string]int{},
			BackendsUsed:    []string{},
			Timings:         map[string]string{},
			Warnings:        q.Warnings,
		}, nil
	}

	namespace := valueobjects.Global()
	if q.Namespace != "" {
		parsed, err := valueobjects.ParseNamespace(q.Namespace)
		if err != nil {
			return nil, pkgerrors.NewValidationError("invalid namespace: " + err.Error())
		}
		namespace = parsed
	}

	var vector []float32
	if h.embedder != nil {
		v, err := h.embedder.Embed(ctx, q.Query)
		if err == nil {
			vector = v
		}
	}

	queryVariants := append([]string{q.Query}, ranking.RewriteQuery(q.Query, tokenbudget.Fits(rewriteTokenBudget))...)

	merged := map[string]dispatch.Hit{}
	backendsUsed := map[string]bool{}
	timings := map[string]time.Duration{}
	var anyResult bool

	for i, variant := range queryVariants {
		variantVector := vector
		if i > 0 && h.embedder != nil {
			if v, err := h.embedder.Embed(ctx, variant); err == nil {
				variantVector = v
			}
		}
		req := dispatch.SearchRequest{
			QueryText:      variant,
			QueryVector:    variantVector,
			Namespace:      namespace,
			SearchMode:     dispatch.SearchMode(q.SearchMode),
			DispatchPolicy: dispatch.DispatchPolicy(q.DispatchPolicy),
			Limit:          q.Limit,
		}
		result, err := h.dispatcher.Dispatch(ctx, req)
		if err != nil {
			if anyResult {
				continue
			}
			return nil, pkgerrors.NewBackendUnavailableError(err.Error())
		}
		anyResult = true
		for _, hit := range result.Hits {
			existing, ok := merged[hit.ContextID.String()]
			if !ok || hit.Score > existing.Score {
				hit.Sources = mergeSources(existing.Sources, hit.Sources)
				merged[hit.ContextID.String()] = hit
			} else {
				existing.Sources = mergeSources(existing.Sources, hit.Sources)
				merged[hit.ContextID.String()] = existing
			}
		}
		for _, backend := range result.BackendsUsed {
			backendsUsed[backend] = true
		}
		for backend, d := range result.Timings {
			timings[backend] += d
		}
	}

	hits := make([]dispatch.Hit, 0, len(merged))
	for _, hit := range merged {
		hits = append(hits, hit)
	}

	ids := make([]valueobjects.ContextID, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.ContextID)
	}
	contexts, err := h.graph.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.NewBackendUnavailableError("context hydration: " + err.Error())
	}
	byID := make(map[string]*entities.Context, len(contexts))
	for _, c := range contexts {
		if !c.IsVisible() {
			continue
		}
		byID[c.ID().String()] = c
	}

	ranked := ranking.Rank(q.Query, hits, byID, nil, ranking.DefaultWeights(), time.Now())

	if q.SortBy == "timestamp" {
		for i := 1; i < len(ranked); i++ {
			for j := i; j > 0 && ranked[j].Context.CreatedAt().After(ranked[j-1].Context.CreatedAt()); j-- {
				ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
			}
		}
	}

	if len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}

	items := make([]queries.RetrieveContextResultItem, 0, len(ranked))
	sourceBreakdown := make(map[string]int)
	for _, r := range ranked {
		items = append(items, queries.RetrieveContextResultItem{
			ID:      r.Context.ID().String(),
			Content: r.Context.Content(),
			Score:   r.Explanation.FinalScore,
			Source:  r.Hit.Sources,
		})
		// Each surfaced result is attributed to the first source listed in
		// its Hit.Sources (merge order, not rank), so source_breakdown sums
		// to len(results) rather than double-counting hits that multiple
		// backends agreed on.
		if len(r.Hit.Sources) > 0 {
			sourceBreakdown[r.Hit.Sources[0]]++
		}
	}

	timingStrs := make(map[string]string, len(timings))
	for backend, d := range timings {
		timingStrs[backend] = d.String()
	}
	backendsUsedList := make([]string, 0, len(backendsUsed))
	for backend := range backendsUsed {
		backendsUsedList = append(backendsUsedList, backend)
	}

	return &queries.RetrieveContextResult{
		Results:         items,
		SourceBreakdown: sourceBreakdown,
		BackendsUsed:    backendsUsedList,
		Timings:         timingStrs,
		Warnings:        q.Warnings,
	}, nil
}

func mergeSources(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(a, b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
