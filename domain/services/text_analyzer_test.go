package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeWordsLowercasesAndSplits(t *testing.T) {
	analyzer := NewDefaultTextAnalyzer()
	words := analyzer.TokenizeWords("Deploying the Worker to Staging-Cluster!")

	assert.True(t, words["deploying"])
	assert.True(t, words["staging"])
	assert.True(t, words["cluster"])
	assert.True(t, words["to"], "stop-word filtering happens in ExtractKeywords, not tokenization; only single characters are dropped here")
}

func TestTokenizeWordsDropsSingleCharacters(t *testing.T) {
	analyzer := NewDefaultTextAnalyzer()
	words := analyzer.TokenizeWords("a b go")

	assert.False(t, words["a"])
	assert.False(t, words["b"])
	assert.True(t, words["go"])
}

func TestExtractKeywordsSkipsStopWordsAndShortWords(t *testing.T) {
	analyzer := NewDefaultTextAnalyzer()
	keywords := analyzer.ExtractKeywords("the worker will deploy to the staging cluster")

	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "to")
	assert.Contains(t, keywords, "worker")
	assert.Contains(t, keywords, "staging")
	assert.Contains(t, keywords, "cluster")
}

func TestExtractSignificantWordsRespectsMinLength(t *testing.T) {
	analyzer := NewDefaultTextAnalyzer()
	words := analyzer.ExtractSignificantWords("deploy the api to staging now", 5)

	assert.Contains(t, words, "deploy")
	assert.Contains(t, words, "staging")
	assert.NotContains(t, words, "api", "api is shorter than the 5-char threshold")
}
