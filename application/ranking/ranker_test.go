package ranking

import (
	"testing"
	"time"

	"ctxmemory/application/dispatch"
	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIntent(t *testing.T) {
	intent, conf := ClassifyIntent("how do I configure the timeout setting?")
	assert.Equal(t, IntentConfiguration, intent)
	assert.Greater(t, conf, 0.0)
}

func TestClassifyIntentUnknownFallsThrough(t *testing.T) {
	intent, _ := ClassifyIntent("asdlkj qwoeiru")
	assert.Equal(t, IntentUnknown, intent)
}

func TestRewriteQueryRespectsTokenBudget(t *testing.T) {
	rewrites := RewriteQuery("what's the config for this?", Fits(0))
	assert.Empty(t, rewrites, "a zero token budget must admit no rewrites")
}

func Fits(maxTokens int) func(string) bool {
	return func(text string) bool { return len(text) <= maxTokens }
}

func TestRankOrdersByFinalScoreDescending(t *testing.T) {
	ns := valueobjects.Global()
	older, err := entities.NewContext(entities.ContextTypeLog, map[string]interface{}{"text": "old log entry"}, nil, "agent-1", "agent", &ns)
	require.NoError(t, err)
	newer, err := entities.NewContext(entities.ContextTypeDesign, map[string]interface{}{"text": "design doc about timeouts"}, nil, "agent-1", "agent", &ns)
	require.NoError(t, err)

	hits := []dispatch.Hit{
		{ContextID: older.ID(), Score: 0.5},
		{ContextID: newer.ID(), Score: 0.5},
	}
	contexts := map[string]*entities.Context{
		older.ID().String(): older,
		newer.ID().String(): newer,
	}

	ranked := Rank("how do I configure timeouts", hits, contexts, nil, DefaultWeights(), time.Now())
	require.Len(t, ranked, 2)
	assert.GreaterOrEqual(t, ranked[0].Explanation.FinalScore, ranked[1].Explanation.FinalScore)
}

func TestRankSkipsHitsWithoutHydratedContext(t *testing.T) {
	hits := []dispatch.Hit{{ContextID: valueobjects.NewContextID(), Score: 1.0}}
	ranked := Rank("anything", hits, map[string]*entities.Context{}, nil, DefaultWeights(), time.Now())
	assert.Empty(t, ranked)
}
