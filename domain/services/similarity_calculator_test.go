package services

import (
	"testing"

	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimContext(t *testing.T, text string) *entities.Context {
	t.Helper()
	ns := valueobjects.Global()
	ctx, err := entities.NewContext(entities.ContextTypeLog, map[string]interface{}{"text": text}, nil, "agent-1", "agent", &ns)
	require.NoError(t, err)
	return ctx
}

func TestCalculateIdenticalTextScoresHigh(t *testing.T) {
	calc := NewDefaultSimilarityCalculator(&SimilarityConfig{Algorithm: AlgorithmHybrid, KeywordWeight: 1.0})
	a := newSimContext(t, "deploying the worker to staging cluster")
	b := newSimContext(t, "deploying the worker to staging cluster")

	assert.Equal(t, 1.0, calc.Calculate(a, b))
}

func TestCalculateDisjointTextScoresZero(t *testing.T) {
	calc := NewDefaultSimilarityCalculator(&SimilarityConfig{Algorithm: AlgorithmHybrid, KeywordWeight: 1.0})
	a := newSimContext(t, "deploying the worker to staging cluster")
	b := newSimContext(t, "baking sourdough bread this weekend")

	assert.Equal(t, 0.0, calc.Calculate(a, b))
}

func TestCalculateNilContextsScoreZero(t *testing.T) {
	calc := NewDefaultSimilarityCalculator(nil)
	a := newSimContext(t, "anything")

	assert.Equal(t, 0.0, calc.Calculate(nil, a))
	assert.Equal(t, 0.0, calc.Calculate(a, nil))
}

func TestCalculateBatchSkipsSourceItself(t *testing.T) {
	calc := NewDefaultSimilarityCalculator(nil)
	source := newSimContext(t, "deploying the worker to staging cluster")
	other := newSimContext(t, "deploying the worker to production cluster")

	results := calc.CalculateBatch(source, []*entities.Context{source, other})

	_, sourcePresent := results[source.ID().String()]
	assert.False(t, sourcePresent, "the source must not be scored against itself")
	assert.Contains(t, results, other.ID().String())
	assert.Greater(t, results[other.ID().String()], 0.0)
}

func TestAlgorithmSelectionAffectsScore(t *testing.T) {
	jaccard := NewDefaultSimilarityCalculator(&SimilarityConfig{Algorithm: AlgorithmJaccard, KeywordWeight: 1.0})
	cosine := NewDefaultSimilarityCalculator(&SimilarityConfig{Algorithm: AlgorithmCosine, KeywordWeight: 1.0})

	a := newSimContext(t, "alpha bravo charlie")
	b := newSimContext(t, "alpha bravo delta echo")

	jScore := jaccard.Calculate(a, b)
	cScore := cosine.Calculate(a, b)

	assert.NotEqual(t, jScore, cScore, "jaccard and cosine must diverge on a partial, asymmetric overlap")
}
