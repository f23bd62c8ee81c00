package tool_events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/campusagent/toolsutil"
	"github.com/elee1766/campusadmin/src/storage"
)

const (
	AddName    = "add_event"
	UpdateName = "update_event"
	DeleteName = "delete_event"
	ListName   = "list_events"
)

const addPrompt = `Schedule a campus event.

Usage:
- date accepts YYYY-MM-DD, "YYYY-MM-DD HH:MM" or RFC3339.
- Returns the new event's ID, which update_event and delete_event take.`

const updatePrompt = `Update one field of a campus event.

Usage:
- field must be one of: title, event_date, location, description.
- event_date values use the same formats as add_event.`

type AddInput struct {
	Title       string `json:"title" required:"true" description:"Event title"`
	Date        string `json:"date" required:"true" description:"Event date, e.g. 2025-04-01 or 2025-04-01 18:00"`
	Location    string `json:"location,omitempty" description:"Where the event takes place"`
	Description string `json:"description,omitempty" description:"Short description"`
}

type AddOutput struct {
	Message string `json:"message"`
	EventID string `json:"event_id"`
}

type UpdateInput struct {
	EventID  string `json:"event_id" required:"true" description:"The event's ID"`
	Field    string `json:"field" required:"true" enum:"title,event_date,location,description" description:"Field to change"`
	NewValue string `json:"new_value" required:"true" description:"The new value"`
}

type DeleteInput struct {
	EventID string `json:"event_id" required:"true" description:"The event's ID"`
}

type ListInput struct {
	UpcomingOnly bool `json:"upcoming_only,omitempty" description:"Only return events that have not started yet"`
}

// Options configures the event tools.
type Options struct {
	// Location interprets dates given without a zone. Defaults to UTC.
	Location *time.Location
	// Now is the clock used by upcoming_only. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Tools returns every event tool bound to db.
func Tools(db *storage.DB, opts Options) ([]agent.Tool, error) {
	opts = opts.withDefaults()
	add, err := agent.NewGenericTool(AddName, addPrompt, makeAddHandler(db, opts), agent.Suspending())
	if err != nil {
		return nil, err
	}
	update, err := agent.NewGenericTool(UpdateName, updatePrompt, makeUpdateHandler(db, opts), agent.Suspending())
	if err != nil {
		return nil, err
	}
	del, err := agent.NewGenericTool(DeleteName, "Cancel a campus event by ID.", makeDeleteHandler(db), agent.Suspending())
	if err != nil {
		return nil, err
	}
	list, err := agent.NewGenericTool(ListName, "List campus events ordered by date.", makeListHandler(db, opts), agent.Suspending())
	if err != nil {
		return nil, err
	}
	return []agent.Tool{add, update, del, list}, nil
}

func makeAddHandler(db *storage.DB, opts Options) func(ctx context.Context, input AddInput) (AddOutput, error) {
	return func(ctx context.Context, input AddInput) (AddOutput, error) {
		date, err := toolsutil.ParseDate(input.Date, opts.Location)
		if err != nil {
			return AddOutput{}, err
		}
		event := &storage.Event{
			Title:       input.Title,
			EventDate:   date,
			Location:    input.Location,
			Description: input.Description,
		}
		if err := storage.CreateEvent(ctx, db.DB(), event); err != nil {
			toolsutil.GetLogger().Error("failed to add event", "title", input.Title, "error", err)
			return AddOutput{}, fmt.Errorf("error adding event: %w", err)
		}
		toolsutil.GetLogger().Info("event added", "event_id", event.ID, "title", event.Title)
		return AddOutput{
			Message: fmt.Sprintf("Event %s scheduled for %s", event.Title, date.In(opts.Location).Format("2006-01-02 15:04")),
			EventID: event.ID,
		}, nil
	}
}

func makeUpdateHandler(db *storage.DB, opts Options) func(ctx context.Context, input UpdateInput) (string, error) {
	return func(ctx context.Context, input UpdateInput) (string, error) {
		var value any = input.NewValue
		if input.Field == "event_date" {
			date, err := toolsutil.ParseDate(input.NewValue, opts.Location)
			if err != nil {
				return "", err
			}
			value = date
		}
		updated, err := storage.UpdateEventField(ctx, db.DB(), input.EventID, input.Field, value)
		if errors.Is(err, storage.ErrInvalidField) {
			return "", toolsutil.InvalidParams("Invalid field '%s'. Allowed fields: %v", input.Field, storage.EventFields)
		}
		if err != nil {
			return "", fmt.Errorf("error updating event: %w", err)
		}
		if !updated {
			return "", toolsutil.EventNotFound(input.EventID)
		}
		return fmt.Sprintf("Event %s updated successfully", input.EventID), nil
	}
}

func makeDeleteHandler(db *storage.DB) func(ctx context.Context, input DeleteInput) (string, error) {
	return func(ctx context.Context, input DeleteInput) (string, error) {
		deleted, err := storage.DeleteEvent(ctx, db.DB(), input.EventID)
		if err != nil {
			return "", fmt.Errorf("error deleting event: %w", err)
		}
		if !deleted {
			return "", toolsutil.EventNotFound(input.EventID)
		}
		toolsutil.GetLogger().Info("event deleted", "event_id", input.EventID)
		return fmt.Sprintf("Event %s deleted successfully", input.EventID), nil
	}
}

func makeListHandler(db *storage.DB, opts Options) func(ctx context.Context, input ListInput) ([]storage.Event, error) {
	return func(ctx context.Context, input ListInput) ([]storage.Event, error) {
		var from time.Time
		if input.UpcomingOnly {
			from = opts.Now()
		}
		events, err := storage.ListEvents(ctx, db.DB(), from)
		if err != nil {
			return nil, fmt.Errorf("error listing events: %w", err)
		}
		return events, nil
	}
}
