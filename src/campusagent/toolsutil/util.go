package toolsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/elee1766/campusadmin/src/storage"
)

// Package-level logger for tools
var logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
	Level: slog.LevelError, // Default to only showing errors
}))

// SetLogger allows setting a custom logger for the tools package
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// GetLogger returns the package-level logger
func GetLogger() *slog.Logger {
	return logger
}

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidParams = errors.New("invalid parameters")
)

// ToolError represents an error with additional context
type ToolError struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *ToolError) Error() string {
	return e.Message
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// NewToolError creates a new tool error with context
func NewToolError(errorType, message, code string, cause error) *ToolError {
	return &ToolError{
		Type:    errorType,
		Message: message,
		Code:    code,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// StudentNotFound is the error tools report for an unknown student ID.
func StudentNotFound(studentID string) *ToolError {
	e := NewToolError("not_found", fmt.Sprintf("Student with ID %s not found", studentID), "student_not_found", ErrNotFound)
	e.Details["student_id"] = studentID
	return e
}

// EventNotFound is the error tools report for an unknown event ID.
func EventNotFound(id string) *ToolError {
	e := NewToolError("not_found", fmt.Sprintf("Event %s not found", id), "event_not_found", ErrNotFound)
	e.Details["event_id"] = id
	return e
}

// InvalidParams wraps ErrInvalidParams with the message shown to the model.
func InvalidParams(format string, args ...any) *ToolError {
	return NewToolError("invalid_params", fmt.Sprintf(format, args...), "invalid_params", ErrInvalidParams)
}

// RecordActivity appends an activity log entry for studentID. Failures are
// logged and swallowed; the tool's own result stands.
func RecordActivity(ctx context.Context, db storage.Execer, studentID, action, detail string) {
	entry := &storage.ActivityLog{
		StudentID: studentID,
		Action:    action,
		Detail:    detail,
	}
	if err := storage.CreateActivityLog(ctx, db, entry); err != nil {
		logger.Warn("failed to record activity", "student_id", studentID, "action", action, "error", err)
	}
}

// Cancelled reports ctx's error in the form tools surface it.
func Cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("operation cancelled: %w", ctx.Err())
	default:
		return nil
	}
}

// DateLayouts are the accepted event date formats, tried in order.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses an event date in any of DateLayouts. Dates without a zone
// are read in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, InvalidParams("invalid date %q, expected YYYY-MM-DD or RFC3339", value)
}
