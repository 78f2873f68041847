package services

import (
	"regexp"
	"strings"
	"time"

	"ctxmemory/domain/core/entities"
)

// RelationshipDetectorConfig tunes the temporal/hierarchical detection
// rules. Structurally a template carried over from the edge-discovery
// threshold config this detector replaces.
type RelationshipDetectorConfig struct {
	// TemporalWindow bounds how close in time two same-type,
	// same-namespace contexts must be to count as "consecutive".
	TemporalWindow time.Duration
}

func DefaultRelationshipDetectorConfig() *RelationshipDetectorConfig {
	return &RelationshipDetectorConfig{TemporalWindow: 24 * time.Hour}
}

var (
	prRefPattern    = regexp.MustCompile(`(?i)\bPR\s*#(\d+)\b`)
	issueRefPattern = regexp.MustCompile(`(?i)\bissue\s*#(\d+)\b`)
	fixesPattern    = regexp.MustCompile(`(?i)\bfix(?:es|ed|ing)?\b`)
	implementsPattern = regexp.MustCompile(`(?i)\bimplement(?:s|ed|ing)?\b`)
)

// RelationshipDetector scans a newly written context against the set of
// existing contexts in its namespace and proposes relationship edges. It
// never fails the write: callers count per-edge errors as statistics
// rather than aborting.
type RelationshipDetector struct {
	config *RelationshipDetectorConfig
}

func NewRelationshipDetector(config *RelationshipDetectorConfig) *RelationshipDetector {
	if config == nil {
		config = DefaultRelationshipDetectorConfig()
	}
	return &RelationshipDetector{config: config}
}

// Detect returns the set of edges this context should gain, given the other
// contexts already present in its namespace. existingEdges is used purely
// for idempotence: an edge whose (source, target, type) triple is already
// present is skipped (no-op), never duplicated.
func (d *RelationshipDetector) Detect(ctx *entities.Context, candidates []*entities.Context, existingEdges []entities.RelationshipEdge) []entities.RelationshipEdge {
	if ctx == nil {
		return nil
	}

	seen := make(map[string]bool, len(existingEdges))
	for _, e := range existingEdges {
		seen[e.Key()] = true
	}

	var out []entities.RelationshipEdge
	add := func(edge entities.RelationshipEdge) {
		if seen[edge.Key()] {
			return
		}
		seen[edge.Key()] = true
		out = append(out, edge)
	}

	for _, other := range candidates {
		if other == nil || other.ID().Equals(ctx.ID()) {
			continue
		}
		if !other.Namespace().Equals(ctx.Namespace()) {
			continue
		}

		d.detectTemporal(ctx, other, add)
		d.detectHierarchical(ctx, other, add)
	}

	d.detectReferences(ctx, candidates, add)

	return out
}

func (d *RelationshipDetector) detectTemporal(ctx, other *entities.Context, add func(entities.RelationshipEdge)) {
	if ctx.Type() != other.Type() {
		return
	}
	delta := ctx.CreatedAt().Sub(other.CreatedAt())
	if delta <= 0 || delta > d.config.TemporalWindow {
		return
	}
	add(entities.RelationshipEdge{
		SourceID: ctx.ID().String(), TargetID: other.ID().String(),
		Type: entities.RelationshipFollowedBy, Reason: "consecutive in time, same type/namespace", AutoDetected: true,
	})
	add(entities.RelationshipEdge{
		SourceID: other.ID().String(), TargetID: ctx.ID().String(),
		Type: entities.RelationshipPrecededBy, Reason: "consecutive in time, same type/namespace", AutoDetected: true,
	})
}

func (d *RelationshipDetector) detectHierarchical(ctx, other *entities.Context, add func(entities.RelationshipEdge)) {
	ctxProject, _ := ctx.Content()["project_id"].(string)
	ctxSprint, _ := ctx.Content()["sprint_number"].(string)
	otherProject, _ := other.Content()["project_id"].(string)
	otherSprint, _ := other.Content()["sprint_number"].(string)

	if ctxProject != "" && ctxProject == otherProject && other.Type() != ctx.Type() {
		add(entities.RelationshipEdge{
			SourceID: ctx.ID().String(), TargetID: other.ID().String(),
			Type: entities.RelationshipPartOf, Reason: "shares project_id " + ctxProject, AutoDetected: true,
		})
	}
	if ctxSprint != "" && ctxSprint == otherSprint {
		add(entities.RelationshipEdge{
			SourceID: ctx.ID().String(), TargetID: other.ID().String(),
			Type: entities.RelationshipPartOf, Reason: "shares sprint_number " + ctxSprint, AutoDetected: true,
		})
	}
}

func (d *RelationshipDetector) detectReferences(ctx *entities.Context, candidates []*entities.Context, add func(entities.RelationshipEdge)) {
	text := ctx.Text() + " " + ctx.Title()

	edgeType := entities.RelationshipReferences
	switch {
	case fixesPattern.MatchString(text):
		edgeType = entities.RelationshipFixes
	case implementsPattern.MatchString(text):
		edgeType = entities.RelationshipImplements
	}

	for _, m := range prRefPattern.FindAllStringSubmatch(text, -1) {
		add(entities.RelationshipEdge{
			SourceID: ctx.ID().String(), TargetID: "pr:" + m[1],
			Type: edgeType, Reason: "mentions PR #" + m[1], AutoDetected: true,
		})
	}
	for _, m := range issueRefPattern.FindAllStringSubmatch(text, -1) {
		add(entities.RelationshipEdge{
			SourceID: ctx.ID().String(), TargetID: "issue:" + m[1],
			Type: edgeType, Reason: "mentions issue #" + m[1], AutoDetected: true,
		})
	}

	// Explicit context-id mentions among candidates already in scope.
	for _, other := range candidates {
		if other == nil || other.ID().Equals(ctx.ID()) {
			continue
		}
		if strings.Contains(text, other.ID().String()) {
			add(entities.RelationshipEdge{
				SourceID: ctx.ID().String(), TargetID: other.ID().String(),
				Type: edgeType, Reason: "mentions context id directly", AutoDetected: true,
			})
		}
	}
}
