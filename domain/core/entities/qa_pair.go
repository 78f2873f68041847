package entities

import (
	"ctxmemory/domain/core/valueobjects"

	"github.com/google/uuid"
)

// QAPair is a derived Q&A unit produced by the fact/Q&A expander at write
// time. It is stored as its own vectorized "stitched unit" (question
// plus answer) so paraphrased queries hit it directly, and carries a
// pointer back to its parent context.
type QAPair struct {
	ID         valueobjects.ContextID
	ParentID   valueobjects.ContextID
	Question   string
	Answer     string
	Confidence float64 // in [0,1], used later as a ranking prior
	FactType   string  // e.g. "name", "email", "preference", "configuration"
}

// StitchedText is the question⊕answer unit submitted to the vector adapter.
func (p QAPair) StitchedText() string {
	return p.Question + " " + p.Answer
}

// NewQAPair derives the pair's ID from its parent, question and answer, so
// the same inputs always produce the same ID.
func NewQAPair(parentID valueobjects.ContextID, question, answer string, confidence float64, factType string) QAPair {
	seed := parentID.String() + "\x00" + question + "\x00" + answer
	id, _ := valueobjects.NewContextIDFromString(uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String())
	return QAPair{
		ID:         id,
		ParentID:   parentID,
		Question:   question,
		Answer:     answer,
		Confidence: confidence,
		FactType:   factType,
	}
}
