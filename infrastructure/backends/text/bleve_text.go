// Package text adapts application/ports.TextIndex onto an in-process bleve
// index: lexical/full-text search over stored content, namespace-scoped by
// a stored field rather than a separate index per namespace.
package text

import (
	"context"
	"time"

	"ctxmemory/application/ports"
	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"
	"github.com/blevesearch/bleve/v2"
)

type indexedDoc struct {
	Namespace string `json:"namespace"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

type BleveText struct {
	index bleve.Index
}

func NewBleveText() (*BleveText, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}
	return &BleveText{index: idx}, nil
}

func (b *BleveText) Index(ctx context.Context, ctxEntity *entities.Context) error {
	doc := indexedDoc{
		Namespace: ctxEntity.Namespace().String(),
		Title:     ctxEntity.Title(),
		Text:      ctxEntity.Text(),
	}
	return b.index.Index(ctxEntity.ID().String(), doc)
}

func (b *BleveText) Search(ctx context.Context, q string, namespace valueobjects.Namespace, limit int) ([]ports.TextMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	textQuery := bleve.NewMatchQuery(q)
	nsQuery := bleve.NewMatchQuery(namespace.String())
	nsQuery.SetField("namespace")

	conjunct := bleve.NewConjunctionQuery(textQuery, nsQuery)
	req := bleve.NewSearchRequest(conjunct)
	req.Size = limit

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	matches := make([]ports.TextMatch, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := valueobjects.NewContextIDFromString(hit.ID)
		if err != nil {
			continue
		}
		matches = append(matches, ports.TextMatch{ContextID: id, Score: hit.Score})
	}
	return matches, nil
}

func (b *BleveText) Delete(ctx context.Context, id valueobjects.ContextID) error {
	return b.index.Delete(id.String())
}

func (b *BleveText) Health(ctx context.Context) ports.BackendHealth {
	start := time.Now()
	_, err := b.index.DocCount()
	latency := time.Since(start)
	if err != nil {
		return ports.BackendHealth{Available: false, Latency: latency, Detail: err.Error()}
	}
	return ports.BackendHealth{Available: true, Latency: latency}
}
