package document

import "fmt"

// ChunkMetadata is attached to a chunk at creation and never mutated
// afterwards.
type ChunkMetadata struct {
	SectionPath  []string `json:"section_path,omitempty"` // heading texts, outermost first
	Page         int      `json:"page,omitempty"`
	HeadingLevel int      `json:"heading_level,omitempty"`
	Strategy     string   `json:"strategy"`
}

// Chunk is a contiguous span of document text treated as one retrieval
// unit. Start and End are byte offsets into the source document's text,
// Start inclusive and End exclusive.
type Chunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Index      int           `json:"index"`
	Text       string        `json:"text"`
	TokenCount int           `json:"token_count"`
	Start      int           `json:"start"`
	End        int           `json:"end"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// ChunkID builds the identifier for a chunk: document id plus ordinal index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s:%d", documentID, index)
}
