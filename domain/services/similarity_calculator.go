package services

import (
	"math"
	"strings"

	"ctxmemory/domain/core/entities"
)

// SimilarityCalculator calculates similarity between contexts. A domain
// service that encapsulates similarity algorithms independent of any single
// aggregate.
type SimilarityCalculator interface {
	Calculate(a, b *entities.Context) float64
	CalculateBatch(source *entities.Context, candidates []*entities.Context) map[string]float64
}

// SimilarityAlgorithm defines the algorithm to use.
type SimilarityAlgorithm string

const (
	AlgorithmJaccard SimilarityAlgorithm = "jaccard"
	AlgorithmCosine  SimilarityAlgorithm = "cosine"
	AlgorithmHybrid  SimilarityAlgorithm = "hybrid"
)

// SimilarityConfig configures the similarity calculation.
type SimilarityConfig struct {
	Algorithm     SimilarityAlgorithm
	TagWeight     float64
	KeywordWeight float64
	MinWordLength int
}

func DefaultSimilarityConfig() *SimilarityConfig {
	return &SimilarityConfig{
		Algorithm:     AlgorithmHybrid,
		TagWeight:     0.3,
		KeywordWeight: 0.7,
		MinWordLength: 3,
	}
}

// DefaultSimilarityCalculator provides similarity calculation using
// configurable algorithms.
type DefaultSimilarityCalculator struct {
	config *SimilarityConfig
}

func NewDefaultSimilarityCalculator(config *SimilarityConfig) *DefaultSimilarityCalculator {
	if config == nil {
		config = DefaultSimilarityConfig()
	}
	return &DefaultSimilarityCalculator{config: config}
}

func (sc *DefaultSimilarityCalculator) Calculate(a, b *entities.Context) float64 {
	if a == nil || b == nil {
		return 0.0
	}

	keywordSim := sc.calculateSetSimilarity(toSet(a.Keywords()), toSet(b.Keywords()))
	tagSim := sc.calculateSetSimilarity(toSet(extractTags(a)), toSet(extractTags(b)))

	total := (keywordSim * sc.config.KeywordWeight) + (tagSim * sc.config.TagWeight)
	return math.Min(total, 1.0)
}

func (sc *DefaultSimilarityCalculator) CalculateBatch(source *entities.Context, candidates []*entities.Context) map[string]float64 {
	results := make(map[string]float64)
	if source == nil {
		return results
	}
	for _, candidate := range candidates {
		if candidate == nil || candidate.ID().Equals(source.ID()) {
			continue
		}
		results[candidate.ID().String()] = sc.Calculate(source, candidate)
	}
	return results
}

func extractTags(c *entities.Context) []string {
	raw, ok := c.Metadata()["tags"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, strings.ToLower(strings.TrimSpace(s)))
			}
		}
		return out
	default:
		return nil
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func (sc *DefaultSimilarityCalculator) calculateSetSimilarity(set1, set2 map[string]bool) float64 {
	if len(set1) == 0 && len(set2) == 0 {
		return 0.0
	}
	switch sc.config.Algorithm {
	case AlgorithmJaccard:
		return jaccardSimilarity(set1, set2)
	case AlgorithmCosine:
		return cosineSimilarity(set1, set2)
	case AlgorithmHybrid:
		return (jaccardSimilarity(set1, set2) + cosineSimilarity(set1, set2)) / 2.0
	default:
		return jaccardSimilarity(set1, set2)
	}
}

func jaccardSimilarity(set1, set2 map[string]bool) float64 {
	intersection := 0
	union := make(map[string]bool)
	for key := range set1 {
		union[key] = true
		if set2[key] {
			intersection++
		}
	}
	for key := range set2 {
		union[key] = true
	}
	if len(union) == 0 {
		return 0.0
	}
	return float64(intersection) / float64(len(union))
}

func cosineSimilarity(set1, set2 map[string]bool) float64 {
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}
	dotProduct := 0
	for key := range set1 {
		if set2[key] {
			dotProduct++
		}
	}
	magnitude1 := math.Sqrt(float64(len(set1)))
	magnitude2 := math.Sqrt(float64(len(set2)))
	if magnitude1 == 0 || magnitude2 == 0 {
		return 0.0
	}
	return float64(dotProduct) / (magnitude1 * magnitude2)
}
