// Package model defines the entities stored by the memory store: sessions,
// prompts, observations, summaries, digests and the task queue, together with
// the deterministic, AI-free derivation logic that fills in an observation's
// descriptive fields from its raw tool payload.
package model

import "time"

// UnixMilli returns the current time as unsigned milliseconds since the
// epoch, the timestamp representation used throughout the store.
func UnixMilli() uint64 {
	return uint64(time.Now().UnixMilli())
}

// SessionStatus enumerates the lifecycle states of a Session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionArchived  SessionStatus = "archived"
)

// Session is a bounded conversation between one agent and one user.
type Session struct {
	SessionID        string
	Project          string
	Prompt           string
	StartedAt        uint64
	EndedAt          *uint64
	ObservationCount int
	Summary          *string
	Status           SessionStatus
	ParentSessionID  *string
}

// UserPrompt is one user prompt recorded within a session.
type UserPrompt struct {
	ID           int64
	SessionID    string
	PromptNumber int
	PromptText   string
	ContentHash  string
	CreatedAt    uint64
	Embedding    []float32
}

// ObservationType classifies a tool invocation for display and retrieval.
type ObservationType string

const (
	ObsRead    ObservationType = "read"
	ObsWrite   ObservationType = "write"
	ObsExecute ObservationType = "execute"
	ObsSearch  ObservationType = "search"
	ObsOther   ObservationType = "other"
)

// Observation is one record of one tool invocation performed during a session.
type Observation struct {
	ID                string
	SessionID         string
	Project           string
	ToolName          string
	ToolInput         string
	ToolResponse      string
	Cwd               string
	Timestamp         uint64
	Type              ObservationType
	Title             string
	Subtitle          string
	Narrative         string
	Facts             []string
	Concepts          []string
	PromptNumber      *int
	FilesRead         []string
	FilesModified     []string
	ContentHash       string
	CompressedSummary *string
	IsCompressed      bool
	Embedding         []float32
}

// SessionSummary aggregates the activity of a session at a point in time.
type SessionSummary struct {
	ID            int64
	SessionID     string
	Project       string
	Request       string
	Completed     string
	FilesRead     []string
	FilesModified []string
	NextSteps     string
	Notes         string
	Decisions     []string
	Errors        []string
	PromptNumber  int
	CreatedAt     uint64
	Embedding     []float32
}

// SessionDigest is the single AI-produced condensation of a whole session.
type SessionDigest struct {
	ID               int64
	SessionID        string
	Project          string
	Digest           string
	ObservationCount int
	CreatedAt        uint64
	Embedding        []float32
}

// TaskType enumerates the kinds of deferred work the queue carries.
type TaskType string

const (
	TaskEmbed    TaskType = "embed"
	TaskEnrich   TaskType = "enrich"
	TaskCompress TaskType = "compress"
)

// TaskStatus enumerates the lifecycle states of a queued task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskFailed     TaskStatus = "failed"
)

// MaxRetries is the terminal retry count after which a task is marked failed
// and never reclaimed.
const MaxRetries = 3

// Task is one row in the durable task queue.
type Task struct {
	ID          int64
	TaskType    TaskType
	TargetTable string
	TargetID    string
	CreatedAt   uint64
	Status      TaskStatus
	RetryCount  int
}

// MemoryEntryType enumerates the kinds of first-class memory entries.
type MemoryEntryType string

const (
	MemorySemantic  MemoryEntryType = "semantic"
	MemoryEpisodic  MemoryEntryType = "episodic"
	MemoryProcedural MemoryEntryType = "procedural"
	MemoryWorking   MemoryEntryType = "working"
	MemoryCache     MemoryEntryType = "cache"
)

// MemoryEntry is an agent-facing fact saved directly (outside the
// observation pipeline) that participates in the same retrieval index.
type MemoryEntry struct {
	ID             string
	Key            string
	Content        string
	Type           MemoryEntryType
	Namespace      string
	Tags           []string
	Metadata       map[string]any
	Embedding      []float32
	AccessCount    int
	LastAccessedAt uint64
	Version        int
	Importance     float64
	DecayRate      float64
	CreatedAt      uint64
}
