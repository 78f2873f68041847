package entities

import "strings"

var entityStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
}

// extractContextKeywords pulls significant lowercase words out of a
// context's title+text for lexical similarity matching (mirrors
// domain/services.ExtractKeywords; kept local to avoid a services->entities
// import cycle, since domain/services already depends on entities).
func extractContextKeywords(c *Context) []string {
	text := strings.ToLower(c.Title() + " " + c.Text())
	words := strings.Fields(text)
	keywords := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))

	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]{}#")
		if len(word) > 2 && !entityStopWords[word] && !seen[word] {
			keywords = append(keywords, word)
			seen[word] = true
		}
	}
	return keywords
}
