package services

import (
	"testing"
	"time"

	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelContext(t *testing.T, typ entities.ContextType, content map[string]interface{}, createdAt time.Time) *entities.Context {
	t.Helper()
	ns := valueobjects.Global()
	ctx, err := entities.NewContext(typ, content, nil, "agent-1", "agent", &ns)
	require.NoError(t, err)
	return entities.ReconstructContext(
		ctx.ID(), typ, content, map[string]interface{}{}, "agent-1", "agent", ns, createdAt,
		"", "", nil, nil, entities.LifecycleDraft, entities.EmbeddingUnavailable,
	)
}

func TestDetectTemporalLinksSameTypeWithinWindow(t *testing.T) {
	detector := NewRelationshipDetector(nil)
	base := time.Now().UTC()
	earlier := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "first log"}, base.Add(-time.Hour))
	later := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "second log"}, base)

	edges := detector.Detect(later, []*entities.Context{earlier}, nil)

	require.NotEmpty(t, edges)
	found := false
	for _, e := range edges {
		if e.Type == entities.RelationshipFollowedBy && e.SourceID == later.ID().String() && e.TargetID == earlier.ID().String() {
			found = true
		}
	}
	assert.True(t, found, "a later context of the same type within the window should follow the earlier one")
}

func TestDetectTemporalSkipsOutsideWindow(t *testing.T) {
	detector := NewRelationshipDetector(&RelationshipDetectorConfig{TemporalWindow: time.Hour})
	base := time.Now().UTC()
	old := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "ancient log"}, base.Add(-48*time.Hour))
	recent := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "recent log"}, base)

	edges := detector.Detect(recent, []*entities.Context{old}, nil)
	assert.Empty(t, edges)
}

func TestDetectHierarchicalSharedProjectID(t *testing.T) {
	detector := NewRelationshipDetector(nil)
	now := time.Now().UTC()
	parent := newRelContext(t, entities.ContextTypeSprint, map[string]interface{}{"text": "sprint plan", "project_id": "42"}, now)
	child := newRelContext(t, entities.ContextTypeDesign, map[string]interface{}{"text": "design doc", "project_id": "42"}, now)

	edges := detector.Detect(child, []*entities.Context{parent}, nil)

	require.NotEmpty(t, edges)
	assert.Equal(t, entities.RelationshipPartOf, edges[0].Type)
}

func TestDetectReferencesPRNumberSetsFixesType(t *testing.T) {
	detector := NewRelationshipDetector(nil)
	now := time.Now().UTC()
	other := newRelContext(t, entities.ContextTypeTrace, map[string]interface{}{"text": "PR #123 touched the auth module"}, now)
	ctx := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "fixes PR #123 after review"}, now)

	edges := detector.Detect(ctx, []*entities.Context{other}, nil)

	found := false
	for _, e := range edges {
		if e.Type == entities.RelationshipFixes {
			found = true
		}
	}
	assert.True(t, found, "a \"fixes\" mention paired with a PR reference should produce a FIXES edge")
}

func TestDetectReferencesImplementsPattern(t *testing.T) {
	detector := NewRelationshipDetector(nil)
	now := time.Now().UTC()
	other := newRelContext(t, entities.ContextTypeDesign, map[string]interface{}{"text": "issue #7 describes the retry policy"}, now)
	ctx := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "implements issue #7"}, now)

	edges := detector.Detect(ctx, []*entities.Context{other}, nil)

	found := false
	for _, e := range edges {
		if e.Type == entities.RelationshipImplements {
			found = true
		}
	}
	assert.True(t, found, "an \"implements\" mention paired with an issue reference should produce an IMPLEMENTS edge")
}

func TestDetectIsIdempotentAgainstExistingEdges(t *testing.T) {
	detector := NewRelationshipDetector(nil)
	now := time.Now().UTC()
	earlier := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "first log"}, now.Add(-time.Minute))
	later := newRelContext(t, entities.ContextTypeLog, map[string]interface{}{"text": "second log"}, now)

	first := detector.Detect(later, []*entities.Context{earlier}, nil)
	require.NotEmpty(t, first)

	second := detector.Detect(later, []*entities.Context{earlier}, first)
	assert.Empty(t, second, "edges already present must not be re-detected")
}
