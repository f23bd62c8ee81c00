package storage

import "time"

// Student is a campus student record. StudentID is the public identifier
// used by administrators and tools; ID is the internal row key.
type Student struct {
	ID         string    `json:"-" db:"id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	Name       string    `json:"name" db:"name"`
	Department string    `json:"department" db:"department"`
	Email      string    `json:"email" db:"email"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type Event struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	Location    string    `json:"location,omitempty" db:"location"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type ActivityLog struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Action    string    `json:"action" db:"action"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Thread is the durable header of a conversation keyed by (user, thread).
type Thread struct {
	UserID     string    `json:"user_id" db:"user_id"`
	ThreadID   string    `json:"thread_id" db:"thread_id"`
	Attachment string    `json:"attachment" db:"attachment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type ThreadMessage struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ThreadID  string    `json:"thread_id" db:"thread_id"`
	Seq       int       `json:"seq" db:"seq"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type UsageRecord struct {
	ID               string    `json:"id" db:"id"`
	Model            string    `json:"model" db:"model"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	UserID           string    `json:"user_id" db:"user_id"`
	ThreadID         string    `json:"thread_id" db:"thread_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// UsageSummary aggregates usage records for one model.
type UsageSummary struct {
	Model            string `json:"model" db:"model"`
	Requests         int    `json:"requests" db:"requests"`
	PromptTokens     int    `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens" db:"completion_tokens"`
}

// DepartmentCount is one row of the per-department breakdown.
type DepartmentCount struct {
	Department string `json:"department" db:"department"`
	Count      int    `json:"count" db:"count"`
}
