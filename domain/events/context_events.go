package events

const (
	SourceCtxMemory = "ctxmemory.store"

	TypeContextDrafted      = "context.drafted"
	TypeContextStored       = "context.stored"
	TypeContextIndexed      = "context.indexed"
	TypeContextSoftDeleted  = "context.soft_deleted"
	TypeContextPurged       = "context.purged"
	TypeContextRejected     = "context.rejected"
	TypeRelationshipDetected = "context.relationship_detected"

	DetailContextID   = "context_id"
	DetailNamespace   = "namespace"
	DetailActor       = "actor"
	DetailOutcome     = "outcome"
	DetailGraphID     = "graph_id"
	DetailVectorID    = "vector_id"
	DetailEdgeType    = "edge_type"
	DetailTargetID    = "target_id"
)

// ContextStored is emitted once the graph write (the commit point) succeeds.
type ContextStored struct {
	BaseEvent
	Namespace string
	GraphID   string
}

func NewContextStored(contextID, userID, namespace, graphID string) ContextStored {
	return ContextStored{
		BaseEvent: NewBaseEvent(TypeContextStored, contextID, userID, 1, map[string]interface{}{
			DetailContextID: contextID,
			DetailNamespace: namespace,
			DetailGraphID:   graphID,
		}),
		Namespace: namespace,
		GraphID:   graphID,
	}
}

// ContextIndexed is emitted once the vector write succeeds (optional, may
// never fire for a given context if the embedding service is unavailable).
type ContextIndexed struct {
	BaseEvent
	VectorID string
}

func NewContextIndexed(contextID, userID, vectorID string) ContextIndexed {
	return ContextIndexed{
		BaseEvent: NewBaseEvent(TypeContextIndexed, contextID, userID, 1, map[string]interface{}{
			DetailContextID: contextID,
			DetailVectorID:  vectorID,
		}),
		VectorID: vectorID,
	}
}

// ContextSoftDeleted is emitted by forget_context.
type ContextSoftDeleted struct {
	BaseEvent
	PurgeAt string
}

func NewContextSoftDeleted(contextID, userID, purgeAt string) ContextSoftDeleted {
	return ContextSoftDeleted{
		BaseEvent: NewBaseEvent(TypeContextSoftDeleted, contextID, userID, 1, map[string]interface{}{
			DetailContextID: contextID,
			"purge_at":      purgeAt,
		}),
		PurgeAt: purgeAt,
	}
}

// ContextPurged is emitted by delete_context (hard delete).
type ContextPurged struct {
	BaseEvent
}

func NewContextPurged(contextID, userID string) ContextPurged {
	return ContextPurged{
		BaseEvent: NewBaseEvent(TypeContextPurged, contextID, userID, 1, map[string]interface{}{
			DetailContextID: contextID,
		}),
	}
}

// RelationshipDetected describes one detected relationship edge. The
// relationship detector returns edges to its caller and does not publish
// this event; nothing in this module constructs it.
type RelationshipDetected struct {
	BaseEvent
	EdgeType string
	TargetID string
}

func NewRelationshipDetected(sourceID, userID, edgeType, targetID string) RelationshipDetected {
	return RelationshipDetected{
		BaseEvent: NewBaseEvent(TypeRelationshipDetected, sourceID, userID, 1, map[string]interface{}{
			DetailContextID: sourceID,
			DetailEdgeType:  edgeType,
			DetailTargetID:  targetID,
		}),
		EdgeType: edgeType,
		TargetID: targetID,
	}
}
