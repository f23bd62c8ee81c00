package tool_campusinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/storage"
)

const (
	CafeteriaName = "get_cafeteria_timings"
	LibraryName   = "get_library_hours"
	ScheduleName  = "get_event_schedule"
)

// Timing is one row of an opening-hours table.
type Timing struct {
	Label string `json:"label" yaml:"label" toml:"label"`
	Hours string `json:"hours" yaml:"hours" toml:"hours"`
}

// Info is the static campus information served by the tools.
type Info struct {
	Cafeteria []Timing
	Library   []Timing
}

type NoInput struct{}

type ScheduleInput struct {
	Days int `json:"days,omitempty" minimum:"1" default:"30" description:"How many days ahead to include"`
}

// Tools returns the campus information tools. now is the clock used by the
// event schedule; nil means time.Now.
func Tools(db *storage.DB, info Info, now func() time.Time) ([]agent.Tool, error) {
	if now == nil {
		now = time.Now
	}
	cafeteria, err := agent.NewGenericTool(CafeteriaName, "Get the cafeteria opening hours.", table(info.Cafeteria, "cafeteria"))
	if err != nil {
		return nil, err
	}
	library, err := agent.NewGenericTool(LibraryName, "Get the library opening hours.", table(info.Library, "library"))
	if err != nil {
		return nil, err
	}
	schedule, err := agent.NewGenericTool(ScheduleName, "Get the schedule of upcoming campus events.", makeScheduleHandler(db, now), agent.Suspending())
	if err != nil {
		return nil, err
	}
	return []agent.Tool{cafeteria, library, schedule}, nil
}

func table(rows []Timing, what string) func(ctx context.Context, input NoInput) ([]Timing, error) {
	return func(ctx context.Context, input NoInput) ([]Timing, error) {
		if len(rows) == 0 {
			return nil, fmt.Errorf("no %s hours configured", what)
		}
		return rows, nil
	}
}

func makeScheduleHandler(db *storage.DB, now func() time.Time) func(ctx context.Context, input ScheduleInput) ([]storage.Event, error) {
	return func(ctx context.Context, input ScheduleInput) ([]storage.Event, error) {
		days := input.Days
		if days <= 0 {
			days = 30
		}
		start := now()
		end := start.AddDate(0, 0, days)

		events, err := storage.ListEvents(ctx, db.DB(), start)
		if err != nil {
			return nil, fmt.Errorf("error loading event schedule: %w", err)
		}
		out := events[:0]
		for _, e := range events {
			if e.EventDate.Before(end) {
				out = append(out, e)
			}
		}
		return out, nil
	}
}
