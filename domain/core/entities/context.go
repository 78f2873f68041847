package entities

import (
	"strings"
	"time"

	"ctxmemory/domain/core/valueobjects"
	"ctxmemory/domain/events"
	pkgerrors "ctxmemory/pkg/errors"
)

// ContextType is the small closed set of context kinds. Unknown types are
// rejected at validation, never remapped.
type ContextType string

const (
	ContextTypeDesign   ContextType = "design"
	ContextTypeDecision ContextType = "decision"
	ContextTypeTrace    ContextType = "trace"
	ContextTypeSprint   ContextType = "sprint"
	ContextTypeLog      ContextType = "log"
	// ContextTypeTest is accepted at the same call sites the source used it
	// informally; see DESIGN.md open-question decisions.
	ContextTypeTest ContextType = "test"
)

func (t ContextType) IsValid() bool {
	switch t {
	case ContextTypeDesign, ContextTypeDecision, ContextTypeTrace, ContextTypeSprint, ContextTypeLog, ContextTypeTest:
		return true
	default:
		return false
	}
}

// LifecycleState is the context lifecycle state machine: Draft -> Stored
// -> Indexed (optional) -> SoftDeleted -> Purged, with
// Rejected as a terminal branch off Draft. Transitions are monotonic; there
// is no resurrection from Purged.
type LifecycleState string

const (
	LifecycleDraft        LifecycleState = "draft"
	LifecycleStored       LifecycleState = "stored"
	LifecycleIndexed      LifecycleState = "indexed"
	LifecycleSoftDeleted  LifecycleState = "soft_deleted"
	LifecyclePurged       LifecycleState = "purged"
	LifecycleRejected     LifecycleState = "rejected"
)

// EmbeddingStatus is the tri-state report of whether a vector was
// produced for a stored context.
type EmbeddingStatus string

const (
	EmbeddingCompleted  EmbeddingStatus = "completed"
	EmbeddingFailed     EmbeddingStatus = "failed"
	EmbeddingUnavailable EmbeddingStatus = "unavailable"
)

// Context is the atomic stored unit: a rich aggregate root with
// encapsulated state transitions and an uncommitted-domain-events
// accumulator, mirroring the entity shape used throughout this domain
// layer.
type Context struct {
	id          valueobjects.ContextID
	typ         ContextType
	content     map[string]interface{}
	metadata    map[string]interface{}
	author      string
	authorType  string // "human" | "agent"
	namespace   valueobjects.Namespace
	createdAt   time.Time
	embedding   []float32
	vectorID    string
	graphID     string
	deletedAt   *time.Time
	purgeAt     *time.Time
	state       LifecycleState
	embedStatus EmbeddingStatus
	version     int

	events []events.DomainEvent
}

// NewContext validates and constructs a new Context in Draft state. The
// namespace is either caller-supplied or derived from content per the fixed
// precedence in valueobjects.AssignNamespace.
func NewContext(typ ContextType, content, metadata map[string]interface{}, author, authorType string, namespace *valueobjects.Namespace) (*Context, error) {
	if !typ.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown context type " + string(typ))
	}
	if len(content) == 0 {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	if strings.TrimSpace(author) == "" {
		return nil, pkgerrors.NewValidationError("author cannot be empty")
	}
	if authorType != "human" && authorType != "agent" {
		return nil, pkgerrors.NewValidationError("author_type must be \"human\" or \"agent\"")
	}

	ns := valueobjects.AssignNamespace(content)
	if namespace != nil {
		ns = *namespace
	}

	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	now := time.Now().UTC()
	ctx := &Context{
		id:          valueobjects.NewContextID(),
		typ:         typ,
		content:     content,
		metadata:    metadata,
		author:      author,
		authorType:  authorType,
		namespace:   ns,
		createdAt:   now,
		state:       LifecycleDraft,
		embedStatus: EmbeddingUnavailable,
		version:     1,
		events:      []events.DomainEvent{},
	}

	return ctx, nil
}

// ReconstructContext rebuilds a Context from persisted data, preserving
// identity and timestamps, without re-emitting lifecycle events.
func ReconstructContext(
	id valueobjects.ContextID,
	typ ContextType,
	content, metadata map[string]interface{},
	author, authorType string,
	namespace valueobjects.Namespace,
	createdAt time.Time,
	vectorID, graphID string,
	deletedAt, purgeAt *time.Time,
	state LifecycleState,
	embedStatus EmbeddingStatus,
) *Context {
	return &Context{
		id:          id,
		typ:         typ,
		content:     content,
		metadata:    metadata,
		author:      author,
		authorType:  authorType,
		namespace:   namespace,
		createdAt:   createdAt,
		vectorID:    vectorID,
		graphID:     graphID,
		deletedAt:   deletedAt,
		purgeAt:     purgeAt,
		state:       state,
		embedStatus: embedStatus,
		version:     1,
		events:      []events.DomainEvent{},
	}
}

func (c *Context) ID() valueobjects.ContextID      { return c.id }
func (c *Context) Type() ContextType               { return c.typ }
func (c *Context) Content() map[string]interface{} { return c.content }
func (c *Context) Metadata() map[string]interface{} { return c.metadata }
func (c *Context) Author() string                  { return c.author }
func (c *Context) AuthorType() string              { return c.authorType }
func (c *Context) Namespace() valueobjects.Namespace { return c.namespace }
func (c *Context) CreatedAt() time.Time            { return c.createdAt }
func (c *Context) VectorID() string                { return c.vectorID }
func (c *Context) GraphID() string                  { return c.graphID }
func (c *Context) State() LifecycleState            { return c.state }
func (c *Context) EmbeddingStatus() EmbeddingStatus { return c.embedStatus }
func (c *Context) Embedding() []float32             { return c.embedding }
func (c *Context) DeletedAt() *time.Time            { return c.deletedAt }
func (c *Context) PurgeAt() *time.Time              { return c.purgeAt }

// Text returns the recognized free-text body used for indexing, falling
// back to an empty string when content carries no "text" key.
func (c *Context) Text() string {
	if v, ok := c.content["text"].(string); ok {
		return v
	}
	return ""
}

// Title returns the recognized "title" key, if present.
func (c *Context) Title() string {
	if v, ok := c.content["title"].(string); ok {
		return v
	}
	return ""
}

// Reject moves a Draft context to the terminal Rejected state: a
// validation failure caught before any side effects.
func (c *Context) Reject(reason string) error {
	if c.state != LifecycleDraft {
		return pkgerrors.NewValidationError("can only reject a context in draft state")
	}
	c.state = LifecycleRejected
	c.addEvent(events.NewBaseEvent(events.TypeContextRejected, c.id.String(), c.author, 1, map[string]interface{}{
		"reason": reason,
	}))
	return nil
}

// MarkStored records a successful graph write — the commit point per spec
// §4.9 — and advances Draft -> Stored.
func (c *Context) MarkStored(graphID string) error {
	if c.state != LifecycleDraft {
		return pkgerrors.NewValidationError("can only mark a draft context as stored")
	}
	c.graphID = graphID
	c.state = LifecycleStored
	c.addEvent(events.NewContextStored(c.id.String(), c.author, c.namespace.String(), graphID))
	return nil
}

// MarkIndexed records a successful vector write; optional, and skipped
// entirely when the embedding service is unavailable.
func (c *Context) MarkIndexed(vectorID string) error {
	if c.state != LifecycleStored && c.state != LifecycleIndexed {
		return pkgerrors.NewValidationError("cannot mark indexed before a context is stored")
	}
	c.vectorID = vectorID
	c.state = LifecycleIndexed
	c.embedStatus = EmbeddingCompleted
	c.addEvent(events.NewContextIndexed(c.id.String(), c.author, vectorID))
	return nil
}

// SetEmbeddingStatus records the embedding outcome without requiring a
// successful vector write (used for "failed"/"unavailable" outcomes).
func (c *Context) SetEmbeddingStatus(status EmbeddingStatus) {
	c.embedStatus = status
}

// SetEmbedding attaches the raw vector, used by the orchestrator before the
// vector-store write is attempted.
func (c *Context) SetEmbedding(vec []float32) {
	c.embedding = vec
}

// SoftDelete hides the context from retrieval while keeping it in the graph
// until purgeAt (forget_context).
func (c *Context) SoftDelete(purgeAt time.Time) error {
	if c.state == LifecyclePurged || c.state == LifecycleRejected {
		return pkgerrors.NewValidationError("cannot soft-delete a purged or rejected context")
	}
	now := time.Now().UTC()
	c.deletedAt = &now
	c.purgeAt = &purgeAt
	c.state = LifecycleSoftDeleted
	c.addEvent(events.NewContextSoftDeleted(c.id.String(), c.author, purgeAt.Format(time.RFC3339)))
	return nil
}

// Purge performs the hard-delete state transition. Only reachable via a
// human-authenticated principal at the application layer; the entity
// itself does not know about principals, only about monotonic state.
func (c *Context) Purge() error {
	if c.state == LifecyclePurged {
		return nil // idempotent
	}
	if c.state == LifecycleRejected {
		return pkgerrors.NewValidationError("cannot purge a rejected context")
	}
	c.state = LifecyclePurged
	c.addEvent(events.NewContextPurged(c.id.String(), c.author))
	return nil
}

func (c *Context) IsVisible() bool {
	return c.state != LifecycleSoftDeleted && c.state != LifecyclePurged && c.state != LifecycleRejected
}

// Keywords returns the significant lowercase words of the title and text:
// the keyword set the similarity calculator compares when the relationship
// detector looks for lexical overlap.
func (c *Context) Keywords() []string {
	return extractContextKeywords(c)
}

func (c *Context) GetUncommittedEvents() []events.DomainEvent { return c.events }

func (c *Context) MarkEventsAsCommitted() { c.events = []events.DomainEvent{} }

func (c *Context) addEvent(event events.DomainEvent) { c.events = append(c.events, event) }
