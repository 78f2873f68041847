package commands

import (
	"errors"

	"ctxmemory/pkg/auth"
)

// StoreContextCommand is the store_context tool's command shape.
type StoreContextCommand struct {
	Type       string                 `json:"type" validate:"required"`
	Content    map[string]interface{} `json:"content" validate:"required"`
	Metadata   map[string]interface{} `json:"metadata"`
	Author     string                 `json:"author" validate:"required"`
	AuthorType string                 `json:"author_type" validate:"required,oneof=human agent"`
	Namespace  string                 `json:"namespace"`

	// Result fields, populated by the handler for callers assembling the
	// store_context response.
	ResultContextID            string   `json:"-"`
	ResultVectorID             string   `json:"-"`
	ResultGraphID              string   `json:"-"`
	ResultEmbeddingStatus      string   `json:"-"`
	ResultRelationshipsCreated int      `json:"-"`
	ResultNamespace            string   `json:"-"`
	ResultWarnings             []string `json:"-"`
}

// StoreContextResult is the store_context tool's response shape.
type StoreContextResult struct {
	ID                   string   `json:"id"`
	VectorID             *string  `json:"vector_id,omitempty"`
	GraphID              string   `json:"graph_id,omitempty"`
	EmbeddingStatus      string   `json:"embedding_status"`
	RelationshipsCreated int      `json:"relationships_created"`
	Namespace            string   `json:"namespace"`
	Warnings             []string `json:"warnings"`
}

func (cmd *StoreContextCommand) Validate() error {
	if cmd.Type == "" {
		return errors.New("type is required")
	}
	if len(cmd.Content) == 0 {
		return errors.New("content must not be empty")
	}
	if cmd.Author == "" {
		return errors.New("author is required")
	}
	if cmd.AuthorType != "human" && cmd.AuthorType != "agent" {
		return errors.New("author_type must be human or agent")
	}
	return nil
}

func (cmd *StoreContextCommand) RequiredCapability() auth.Capability { return auth.CapStoreContext }
