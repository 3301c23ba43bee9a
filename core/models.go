package core

import (
	"encoding/binary"
	"maps"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash returns the dedup key for a passage: the content ID of its
// whitespace-trimmed text.
func ContentHash(content string) ID {
	return IDFromContent(strings.TrimSpace(content))
}

// Role identifies the author of a conversation turn.
type Role int

const (
	// RoleUser is the person asking questions.
	RoleUser Role = iota + 1
	// RoleAssistant is the chatbot.
	RoleAssistant
)

// String returns the lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Turn is a single message in a conversation. Turns are values and are
// never modified after creation.
type Turn struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

// NewTurn creates a turn stamped with the current UTC time.
func NewTurn(role Role, text string) Turn {
	return Turn{Role: role, Text: text, Timestamp: time.Now().UTC()}
}

// Metadata keys written by ingestion and read by the response integrator.
const (
	MetaSource       = "source"
	MetaTitle        = "title"
	MetaURL          = "url"
	MetaArticleID    = "article_id"
	MetaDocumentType = "document_type"
	MetaCrawledAt    = "crawled_at"
	MetaChunk        = "chunk"
)

// Document is a passage stored in the embedding index.
type Document struct {
	Id          ID
	ContentHash ID // ContentHash(Content), used for dedup
	Content     string
	Metadata    map[string]string // source, title, url, article_id, ...
	Vector      []float32         // Embedding vector (populated during ingestion)
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Clone returns a read-only copy of the document without its vector.
func (d *Document) Clone() Document {
	return Document{
		Id:          d.Id,
		ContentHash: d.ContentHash,
		Content:     d.Content,
		Metadata:    maps.Clone(d.Metadata),
		InsertedAt:  d.InsertedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Meta returns a metadata value or the empty string.
func (d *Document) Meta(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// Neighbor is a nearest-neighbor hit with its raw distance to the query vector.
type Neighbor struct {
	Document Document
	Distance float64
}

// ScoredDocument is a retrieved document with a similarity score in [0,1].
type ScoredDocument struct {
	Document   Document
	Similarity float64
}
