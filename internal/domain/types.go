package domain

import "time"

// Message roles for conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single message in a conversation.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Sources    []Source  `json:"sources,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Source identifies a chunk that grounded an answer. Chunks are referenced by
// identifier only; deleting a document makes past citations unresolvable but
// never corrupts them.
type Source struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Page       int     `json:"page,omitempty"`
	Score      float64 `json:"score"`
}
