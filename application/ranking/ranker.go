// Package ranking implements the ranker and query rewriter: intent
// classification, bounded rewrite generation, and weighted multi-component
// scoring with an explanation trail.
package ranking

import (
	"math"
	"regexp"
	"strings"
	"time"

	"ctxmemory/application/dispatch"
	"ctxmemory/domain/core/entities"
)

type Intent string

const (
	IntentConfiguration   Intent = "configuration"
	IntentTroubleshooting Intent = "troubleshooting"
	IntentHowTo           Intent = "howto"
	IntentConceptual      Intent = "conceptual"
	IntentLookup          Intent = "lookup"
	IntentUnknown         Intent = "unknown"
)

// intentPatterns is checked in order; the first match wins, so a query that
// matches several patterns gets the earliest one.
var intentPatterns = []struct {
	intent  Intent
	pattern *regexp.Regexp
}{
	{IntentConfiguration, regexp.MustCompile(`(?i)\b(config|configure|setting|env var|\.yaml|\.env)\b`)},
	{IntentTroubleshooting, regexp.MustCompile(`(?i)\b(error|fail|broken|bug|crash|exception)\b`)},
	{IntentHowTo, regexp.MustCompile(`(?i)\bhow (do|to|can)\b`)},
	{IntentConceptual, regexp.MustCompile(`(?i)\b(why|what is|explain)\b`)},
}

const intentConfidenceThreshold = 0.5

// ClassifyIntent runs the lightweight regex+keyword classifier.
func ClassifyIntent(query string) (Intent, float64) {
	for _, p := range intentPatterns {
		if p.pattern.MatchString(query) {
			return p.intent, 0.8
		}
	}
	if strings.Contains(query, "?") {
		return IntentLookup, 0.6
	}
	return IntentUnknown, 0.0
}

// RewriteQuery produces up to maxVariants alternative phrasings, bounded by
// fitsTokenBudget (backed by tiktoken-go at the call site), only when the
// classified intent clears the confidence threshold.
func RewriteQuery(query string, fitsTokenBudget func(string) bool) []string {
	intent, confidence := ClassifyIntent(query)
	if confidence < intentConfidenceThreshold {
		return nil
	}

	var variants []string
	switch intent {
	case IntentHowTo:
		variants = append(variants, strings.TrimPrefix(query, "How do I "))
	case IntentTroubleshooting:
		variants = append(variants, query+" error")
	case IntentConfiguration:
		variants = append(variants, query+" configuration")
	}
	variants = append(variants, expandContractions(query))

	const maxVariants = 3
	filtered := make([]string, 0, maxVariants)
	for _, v := range variants {
		if v == "" || v == query {
			continue
		}
		if fitsTokenBudget != nil && !fitsTokenBudget(v) {
			continue
		}
		filtered = append(filtered, v)
		if len(filtered) >= maxVariants {
			break
		}
	}
	return filtered
}

var contractions = map[string]string{
	"don't": "do not", "can't": "cannot", "won't": "will not", "it's": "it is",
}

func expandContractions(s string) string {
	out := s
	for contraction, expansion := range contractions {
		out = strings.ReplaceAll(out, contraction, expansion)
	}
	return out
}

// Weights is a policy-selected weight vector for the score components.
type Weights struct {
	Dense     float64
	Lexical   float64
	Graph     float64
	FactPrior float64
	RecencyTau float64
	ExactMatchBoost float64
	TechnicalBoost  float64
}

func DefaultWeights() Weights {
	return Weights{
		Dense: 0.45, Lexical: 0.25, Graph: 0.15, FactPrior: 0.15,
		RecencyTau: 30, ExactMatchBoost: 1.5, TechnicalBoost: 1.2,
	}
}

// Explanation documents how a hit's final score was derived.
type Explanation struct {
	OriginalScore float64
	Boosts        map[string]float64
	FinalScore    float64
}

// Scored is one ranked candidate with its component scores and explanation.
type Scored struct {
	Hit         dispatch.Hit
	Context     *entities.Context
	Explanation Explanation
}

// Rank scores and sorts hits against their hydrated contexts using weights,
// the query's classified intent, and graph hop distance where known.
func Rank(query string, hits []dispatch.Hit, contexts map[string]*entities.Context, hopDistance map[string]int, weights Weights, now time.Time) []Scored {
	intent, _ := ClassifyIntent(query)
	out := make([]Scored, 0, len(hits))

	for _, hit := range hits {
		ctxEntity, ok := contexts[hit.ContextID.String()]
		if !ok {
			continue
		}

		dense := hit.Score
		lexical := hit.Score
		graphScore := 0.0
		if hops, ok := hopDistance[hit.ContextID.String()]; ok {
			graphScore = 1.0 / (float64(hops) + 0.5)
		}
		factPrior := factPriorFor(ctxEntity, intent)

		base := weights.Dense*dense + weights.Lexical*lexical + weights.Graph*graphScore + weights.FactPrior*factPrior

		boosts := make(map[string]float64)
		final := base

		if exactMatch(query, ctxEntity) {
			boosts["exact_match"] = weights.ExactMatchBoost
			final *= weights.ExactMatchBoost
		}

		ageDays := now.Sub(ctxEntity.CreatedAt()).Hours() / 24
		decay := math.Exp(-ageDays / weights.RecencyTau)
		if decay < 0.1 {
			decay = 0.1
		}
		boosts["recency_decay"] = decay
		final *= decay

		if intent == IntentConfiguration || intent == IntentTroubleshooting {
			boosts["technical_boost"] = weights.TechnicalBoost
			final *= weights.TechnicalBoost
		}

		out = append(out, Scored{
			Hit:     hit,
			Context: ctxEntity,
			Explanation: Explanation{
				OriginalScore: base,
				Boosts:        boosts,
				FinalScore:    final,
			},
		})
	}

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Explanation.FinalScore > out[j-1].Explanation.FinalScore; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func factPriorFor(ctxEntity *entities.Context, intent Intent) float64 {
	score := 0.3
	if ctxEntity.Type() == entities.ContextTypeDesign && (intent == IntentConfiguration || intent == IntentTroubleshooting) {
		score += 0.3
	}
	if ctxEntity.Type() == entities.ContextTypeLog {
		score -= 0.1
	}
	return score
}

func exactMatch(query string, ctxEntity *entities.Context) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(ctxEntity.Title()), q) {
		return true
	}
	return strings.Contains(strings.ToLower(ctxEntity.ID().String()), q)
}
