package services

import (
	"fmt"
	"regexp"
	"strings"

	"ctxmemory/domain/core/entities"
)

// FactExpanderConfig bounds the pair generator's fanout: a hard cap so an
// unbounded narrative cannot produce unbounded stitched units.
type FactExpanderConfig struct {
	MaxPairsPerContext int
}

func DefaultFactExpanderConfig() *FactExpanderConfig {
	return &FactExpanderConfig{MaxPairsPerContext: 8}
}

type factTemplate struct {
	factType string
	pattern  *regexp.Regexp
	question func(match []string) string
	answer   func(match []string) string
	confidence float64
}

var factTemplates = []factTemplate{
	{
		factType: "name",
		pattern:  regexp.MustCompile(`(?i)my name is ([A-Z][a-zA-Z'\-]+(?: [A-Z][a-zA-Z'\-]+)?)`),
		question: func(m []string) string { return "What's my name?" },
		answer:   func(m []string) string { return fmt.Sprintf("Your name is %s.", m[1]) },
		confidence: 0.95,
	},
	{
		factType: "email",
		pattern:  regexp.MustCompile(`(?i)my email is ([\w.+-]+@[\w-]+\.[\w.-]+)`),
		question: func(m []string) string { return "What's my email?" },
		answer:   func(m []string) string { return fmt.Sprintf("Your email is %s.", m[1]) },
		confidence: 0.95,
	},
	{
		factType: "preference",
		pattern:  regexp.MustCompile(`(?i)I prefer ([^.]+)\.?`),
		question: func(m []string) string { return "What do I prefer?" },
		answer:   func(m []string) string { return fmt.Sprintf("You prefer %s.", strings.TrimSpace(m[1])) },
		confidence: 0.7,
	},
	{
		factType: "configuration",
		pattern:  regexp.MustCompile(`(?i)(?:set|configured?) ([\w.\-]+) to ([^.]+)\.?`),
		question: func(m []string) string { return fmt.Sprintf("What is %s set to?", m[1]) },
		answer:   func(m []string) string { return fmt.Sprintf("%s is set to %s.", m[1], strings.TrimSpace(m[2])) },
		confidence: 0.8,
	},
	{
		factType: "sprint_goal",
		pattern:  regexp.MustCompile(`(?i)sprint goal(?:\s+is)?:?\s+([^.]+)\.?`),
		question: func(m []string) string { return "What is the sprint goal?" },
		answer:   func(m []string) string { return fmt.Sprintf("The sprint goal is %s.", strings.TrimSpace(m[1])) },
		confidence: 0.75,
	},
}

// FactExpander is a pure function over (Context) -> []QAPair: re-running it
// on the same context produces identical pairs, so re-indexing is always
// idempotent.
type FactExpander struct {
	config *FactExpanderConfig
}

func NewFactExpander(config *FactExpanderConfig) *FactExpander {
	if config == nil {
		config = DefaultFactExpanderConfig()
	}
	return &FactExpander{config: config}
}

// Expand generates zero or more Q&A pairs from a context's narrative text.
// tokenBudget bounds (via an injected counter) how long a generated
// question/answer may be before stitching; the caller passes a function so
// this domain service stays free of tokenizer-library imports.
func (f *FactExpander) Expand(ctx *entities.Context, fitsTokenBudget func(string) bool) []entities.QAPair {
	text := ctx.Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var pairs []entities.QAPair
	for _, tmpl := range factTemplates {
		if len(pairs) >= f.config.MaxPairsPerContext {
			break
		}
		matches := tmpl.pattern.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			if len(pairs) >= f.config.MaxPairsPerContext {
				break
			}
			question := tmpl.question(m)
			answer := tmpl.answer(m)
			if fitsTokenBudget != nil && !fitsTokenBudget(question+" "+answer) {
				continue
			}
			pairs = append(pairs, entities.NewQAPair(ctx.ID(), question, answer, tmpl.confidence, tmpl.factType))
		}
	}
	return pairs
}
