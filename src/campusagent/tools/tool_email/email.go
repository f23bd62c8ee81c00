package tool_email

import (
	"context"
	"fmt"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/campusagent/toolsutil"
	"github.com/elee1766/campusadmin/src/storage"
)

const Name = "send_email"

const sendEmailPrompt = `Send an email to a student.

Usage:
- The message is delivered to the email address on the student's record.
- Delivery is recorded in the student's activity log.`

type Input struct {
	StudentID string `json:"student_id" required:"true" description:"The student's ID"`
	Message   string `json:"message" required:"true" description:"The message body"`
}

// Sender delivers a message. The default sender only logs it.
type Sender interface {
	Send(ctx context.Context, to, name, message string) error
}

// LogSender is a Sender that records the message in the tool log.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, name, message string) error {
	toolsutil.GetLogger().Info("mock email sent", "to", to, "name", name, "message", message)
	return nil
}

// Tool returns the send_email tool. A nil sender means LogSender.
func Tool(db *storage.DB, sender Sender) (agent.Tool, error) {
	if sender == nil {
		sender = LogSender{}
	}
	return agent.NewGenericTool(Name, sendEmailPrompt, makeHandler(db, sender), agent.Suspending())
}

func makeHandler(db *storage.DB, sender Sender) func(ctx context.Context, input Input) (string, error) {
	return func(ctx context.Context, input Input) (string, error) {
		student, err := storage.GetStudent(ctx, db.DB(), input.StudentID)
		if err != nil {
			return "", fmt.Errorf("error sending email: %w", err)
		}
		if student == nil {
			return "", toolsutil.StudentNotFound(input.StudentID)
		}

		if err := sender.Send(ctx, student.Email, student.Name, input.Message); err != nil {
			toolsutil.GetLogger().Error("failed to send email", "student_id", student.StudentID, "error", err)
			return "", fmt.Errorf("error sending email: %w", err)
		}
		toolsutil.RecordActivity(ctx, db.DB(), student.StudentID, "email_sent", input.Message)

		return fmt.Sprintf("Email sent to %s (%s): %s", student.Name, student.Email, input.Message), nil
	}
}
