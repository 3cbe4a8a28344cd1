package document

import "time"

// Status represents the state of a processing task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result is the artifact of one processing task. It is owned by the
// caller once returned; the processor retains only the status tracker's
// terminal record.
type Result struct {
	TaskID      string        `json:"task_id"`
	DocumentID  string        `json:"document_id"`
	Status      Status        `json:"status"`
	Chunks      []Chunk       `json:"chunks,omitempty"`
	ChunkCount  int           `json:"chunk_count"`
	TotalTokens int           `json:"total_tokens"`
	Strategy    string        `json:"strategy"`
	Duration    time.Duration `json:"duration"`
	Reason      string        `json:"reason,omitempty"` // machine-readable failure code
	Detail      string        `json:"detail,omitempty"` // human-readable failure detail
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt time.Time     `json:"completed_at,omitzero"`
}
