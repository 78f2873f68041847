// Package tokenbudget provides a shared, cached token counter so the fact
// expander and query rewriter can bound generated text without each
// constructing their own tiktoken encoding.
package tokenbudget

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
	errInit error
)

func encoder() (*tiktoken.Tiktoken, error) {
	once.Do(func() {
		enc, errInit = tiktoken.GetEncoding(defaultEncoding)
	})
	return enc, errInit
}

// Count returns the token count of text, or len(text) as a conservative
// fallback if the encoder failed to load.
func Count(text string) int {
	e, err := encoder()
	if err != nil {
		return len(text)
	}
	return len(e.Encode(text, nil, nil))
}

// Fits returns a predicate bound to maxTokens, suitable for passing directly
// as the fitsTokenBudget callback the domain services expect.
func Fits(maxTokens int) func(string) bool {
	return func(text string) bool {
		return Count(text) <= maxTokens
	}
}
