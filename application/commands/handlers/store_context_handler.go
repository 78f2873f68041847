package handlers

import (
	"context"
	"fmt"
	"time"

	"ctxmemory/application/commands"
	commandbus "ctxmemory/application/commands/bus"
	"ctxmemory/application/namespace"
	"ctxmemory/application/ports"
	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"
	"ctxmemory/domain/services"
	pkgerrors "ctxmemory/pkg/errors"
	"ctxmemory/pkg/observability"
	"ctxmemory/pkg/tokenbudget"
	"go.uber.org/zap"
)

const (
	namespaceLockTTL = 10 * time.Second
	// qaPairTokenBudget bounds a generated Q&A pair so an unusually long
	// narrative cannot produce an oversized stitched vector payload.
	qaPairTokenBudget = 256
)

// StoreContextHandler orchestrates store_context: validate, attribute,
// assign namespace, lock, embed, fan the write out to every backend, run
// fact expansion and relationship detection, release the lock.
type StoreContextHandler struct {
	vector       ports.VectorStore
	graph        ports.GraphStore
	kv           ports.KVStore
	text         ports.TextIndex
	embedder     ports.Embedder
	relDetector  *services.RelationshipDetector
	factExpander *services.FactExpander
	namespaces   *namespace.Manager
	metrics      *observability.Metrics
	logger       *zap.Logger
}

func NewStoreContextHandler(
	vector ports.VectorStore,
	graph ports.GraphStore,
	kv ports.KVStore,
	text ports.TextIndex,
	embedder ports.Embedder,
	relDetector *services.RelationshipDetector,
	factExpander *services.FactExpander,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *StoreContextHandler {
	return &StoreContextHandler{
		vector:       vector,
		graph:        graph,
		kv:           kv,
		text:         text,
		embedder:     embedder,
		relDetector:  relDetector,
		factExpander: factExpander,
		namespaces:   namespace.NewManager(kv),
		metrics:      metrics,
		logger:       logger,
	}
}

func (h *StoreContextHandler) Handle(ctx context.Context, command commandbus.Command) error {
	cmd, ok := command.(*commands.StoreContextCommand)
	if !ok {
		return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", command))
	}

	namespace := valueobjects.AssignNamespace(cmd.Content)
	if cmd.Namespace != "" {
		parsed, err := valueobjects.ParseNamespace(cmd.Namespace)
		if err != nil {
			return pkgerrors.NewValidationError("invalid namespace: " + err.Error())
		}
		namespace = parsed
	}

	ctxEntity, err := entities.NewContext(
		entities.ContextType(cmd.Type), cmd.Content, cmd.Metadata, cmd.Author, cmd.AuthorType, &namespace,
	)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	lock, err := h.namespaces.Acquire(ctx, namespace, namespaceLockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := lock.Release(ctx); releaseErr != nil {
			h.logger.Warn("failed to release namespace lock", zap.String("namespace", namespace.String()), zap.Error(releaseErr))
		}
	}()

	var warnings []string

	embedding, embedErr := h.embedder.Embed(ctx, ctxEntity.Text())
	if embedErr != nil {
		ctxEntity.SetEmbeddingStatus(entities.EmbeddingFailed)
		h.logger.Warn("embedding failed, continuing without vector indexing", zap.Error(embedErr))
		warnings = append(warnings, "embedding failed: "+embedErr.Error())
	} else {
		ctxEntity.SetEmbedding(embedding)
	}

	graphID, err := h.graph.UpsertNode(ctx, ctxEntity)
	if err != nil {
		h.recordBackendOutcome("graph", time.Now(), err)
		return pkgerrors.NewBackendUnavailableError("graph store: " + err.Error())
	}
	ctxEntity.MarkStored(graphID)

	if embedErr == nil {
		start := time.Now()
		if err := h.vector.Store(ctx, ctxEntity.ID(), embedding, namespace, valueobjects.ContextID{}); err != nil {
			h.recordBackendOutcome("vector", start, err)
			h.logger.Warn("vector store write failed", zap.Error(err))
			warnings = append(warnings, "vector store write failed: "+err.Error())
		} else {
			h.recordBackendOutcome("vector", start, nil)
			ctxEntity.MarkIndexed(ctxEntity.ID().String())
		}
	}

	if err := h.text.Index(ctx, ctxEntity); err != nil {
		h.logger.Warn("text index write failed", zap.Error(err))
		warnings = append(warnings, "text index write failed: "+err.Error())
	}

	relationshipsCreated := h.detectRelationships(ctx, ctxEntity, namespace)

	pairs := h.factExpander.Expand(ctxEntity, tokenbudget.Fits(qaPairTokenBudget))
	if len(pairs) > 0 {
		h.logger.Debug("expanded fact pairs", zap.Int("count", len(pairs)), zap.String("context_id", ctxEntity.ID().String()))
		if qaWarnings := h.indexQAPairs(ctx, ctxEntity, pairs, namespace); len(qaWarnings) > 0 {
			warnings = append(warnings, qaWarnings...)
		}
	}

	ctxEntity.MarkEventsAsCommitted()
	cmd.ResultContextID = ctxEntity.ID().String()
	cmd.ResultGraphID = graphID
	cmd.ResultVectorID = ctxEntity.VectorID()
	cmd.ResultEmbeddingStatus = string(ctxEntity.EmbeddingStatus())
	cmd.ResultRelationshipsCreated = relationshipsCreated
	cmd.ResultNamespace = namespace.String()
	cmd.ResultWarnings = warnings

	if h.metrics != nil {
		h.metrics.RecordBusinessMetric(ctx, "contexts_stored_total", 1)
	}
	return nil
}

// indexQAPairs embeds and stores each stitched Q&A unit produced by fact
// expansion, tagging it with the parent context's ID so retrieval can trace
// a hit back to the context it was extracted from. Failures here are
// warnings, matching the store path's partial-failure policy for the
// vector backend.
func (h *StoreContextHandler) indexQAPairs(ctx context.Context, parent *entities.Context, pairs []entities.QAPair, namespace valueobjects.Namespace) []string {
	var warnings []string
	for _, pair := range pairs {
		embedding, err := h.embedder.Embed(ctx, pair.StitchedText())
		if err != nil {
			warnings = append(warnings, "qa pair embedding failed: "+err.Error())
			continue
		}
		if err := h.vector.Store(ctx, pair.ID, embedding, namespace, pair.ParentID); err != nil {
			warnings = append(warnings, "qa pair vector store failed: "+err.Error())
		}
	}
	return warnings
}

func (h *StoreContextHandler) detectRelationships(ctx context.Context, ctxEntity *entities.Context, namespace valueobjects.Namespace) int {
	if h.vector == nil || ctxEntity.Embedding() == nil {
		return 0
	}
	matches, err := h.vector.Search(ctx, ctxEntity.Embedding(), namespace, 10)
	if err != nil {
		h.logger.Debug("candidate search for relationship detection failed", zap.Error(err))
		return 0
	}
	if len(matches) == 0 {
		return 0
	}

	candidateIDs := make([]valueobjects.ContextID, 0, len(matches))
	for _, m := range matches {
		candidateIDs = append(candidateIDs, m.ContextID)
	}
	candidates, err := h.graph.FetchByIDs(ctx, candidateIDs)
	if err != nil {
		h.logger.Debug("candidate hydration for relationship detection failed", zap.Error(err))
		return 0
	}

	edges := h.relDetector.Detect(ctxEntity, candidates, nil)
	created := 0
	for _, edge := range edges {
		if err := h.graph.UpsertEdge(ctx, edge); err != nil {
			h.logger.Warn("failed to persist detected relationship", zap.String("type", string(edge.Type)), zap.Error(err))
			continue
		}
		created++
	}
	return created
}

func (h *StoreContextHandler) recordBackendOutcome(backend string, start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.metrics.RecordBackendCall(backend, outcome, time.Since(start))
}
