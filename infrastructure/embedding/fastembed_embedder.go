// Package embedding adapts application/ports.Embedder onto fastembed-go, a
// local ONNX-backed embedding runtime: no network round trip per embed call.
package embedding

import (
	"context"
	"sync/atomic"

	"ctxmemory/application/ports"
	"github.com/anush008/fastembed-go"
)

const selfTestProbe = "ctxmemory self-test probe"

// Status is the process-wide self-test snapshot the health endpoint
// surfaces verbatim.
type Status struct {
	BackendConnected bool
	ServiceLoaded    bool
	CollectionOK     bool
	SelfTestOK       bool
	Error            string
}

type FastEmbedder struct {
	model      *fastembed.FlagEmbedding
	dimensions int
	status     atomic.Pointer[Status]
}

// NewFastEmbedder loads the configured model and runs a self-test embed over
// a fixed probe string. A model that fails to load is returned as an error;
// a failed self-test is only recorded into the status snapshot, so a
// degraded embedder is still constructed.
func NewFastEmbedder(modelName string, dimensions int) (*FastEmbedder, error) {
	e := &FastEmbedder{dimensions: dimensions}

	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model: fastembed.EmbeddingModel(modelName),
	})
	if err != nil {
		e.status.Store(&Status{ServiceLoaded: false, Error: err.Error()})
		return e, err
	}
	e.model = model
	e.status.Store(&Status{ServiceLoaded: true, BackendConnected: true, CollectionOK: true})

	e.selfTest()
	return e, nil
}

func (e *FastEmbedder) selfTest() {
	current := *e.status.Load()
	vecs, err := e.model.Embed([]string{selfTestProbe}, 1)
	if err != nil || len(vecs) == 0 {
		current.SelfTestOK = false
		if err != nil {
			current.Error = err.Error()
		}
		e.status.Store(&current)
		return
	}
	if len(vecs[0]) != e.dimensions {
		current.SelfTestOK = false
		current.Error = "embedding dimension mismatch at self-test"
		e.status.Store(&current)
		return
	}
	current.SelfTestOK = true
	e.status.Store(&current)
}

// Embed returns a dense vector of Dimensions(), or an error the caller must
// translate into embedding_status=failed rather than abort the write.
func (e *FastEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.model == nil {
		return nil, errUnavailable("embedding model not loaded")
	}
	vecs, err := e.model.Embed([]string{text}, 1)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, errUnavailable("embedding produced no output")
	}
	return vecs[0], nil
}

func (e *FastEmbedder) Dimensions() int { return e.dimensions }

func (e *FastEmbedder) Health(ctx context.Context) ports.BackendHealth {
	status := e.status.Load()
	if status == nil {
		return ports.BackendHealth{Available: false, Detail: "embedder not initialized"}
	}
	return ports.BackendHealth{
		Available: status.ServiceLoaded && status.SelfTestOK,
		Detail:    status.Error,
	}
}

// Status returns the live self-test snapshot for the detailed health query.
func (e *FastEmbedder) Status() Status {
	if s := e.status.Load(); s != nil {
		return *s
	}
	return Status{}
}

type unavailableError struct{ msg string }

func (e *unavailableError) Error() string { return e.msg }

func errUnavailable(msg string) error { return &unavailableError{msg: msg} }
