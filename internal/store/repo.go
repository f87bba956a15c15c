package store

import (
	"context"
	"time"
)

// SessionMeta is the listing row for a stored session.
type SessionMeta struct {
	ID        string
	Context   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionRepo persists sessions as opaque JSON documents keyed by id.
// The engine owns the document layout; the repository never inspects it.
type SessionRepo interface {
	// Get returns the stored document, or (nil, nil) if absent.
	Get(ctx context.Context, id string) ([]byte, error)

	// Put inserts or replaces the document for meta.ID.
	Put(ctx context.Context, meta SessionMeta, doc []byte) error

	// Delete removes a session. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns all sessions, most recently updated first.
	List(ctx context.Context) ([]SessionMeta, error)
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int // max results (0 = unlimited)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStat aggregates token usage for one purpose label.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event by id, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates successful calls per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)

	// LLMUsageByModel aggregates successful calls per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
