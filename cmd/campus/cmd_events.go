package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/campusagent/tools"
	tool_events "github.com/elee1766/campusadmin/src/campusagent/tools/tool_events"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/elee1766/campusadmin/src/theme"
)

// EventsCmd manages campus events
type EventsCmd struct {
	List   EventsListCmd   `cmd:"" help:"List events"`
	Add    EventsAddCmd    `cmd:"" help:"Schedule an event"`
	Delete EventsDeleteCmd `cmd:"" help:"Delete an event"`
}

type EventsListCmd struct {
	Upcoming bool   `help:"Only show events that have not started yet"`
	Format   string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *EventsListCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	var from time.Time
	if c.Upcoming {
		from = a.Now()
	}
	events, err := storage.ListEvents(ctx, a.DB.DB(), from)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if c.Format == formatJSON {
		return printJSON(cli.out(), events)
	}
	loc := a.Config.Campus.Location()
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.ID,
			e.Title,
			e.EventDate.In(loc).Format("2006-01-02 15:04"),
			e.Location,
			e.Description,
		})
	}
	printTable(cli.out(), []string{"ID", "Title", "When", "Where", "Description"}, rows)
	return nil
}

type EventsAddCmd struct {
	Title       string `arg:"" help:"Event title"`
	Date        string `arg:"" help:"Event date, e.g. 2025-04-01 or \"2025-04-01 18:00\""`
	Location    string `short:"l" help:"Where the event takes place"`
	Description string `short:"d" help:"Short description"`
}

func (c *EventsAddCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	text, err := callTool(ctx, a, tools.AddEventName, tool_events.AddInput{
		Title:       c.Title,
		Date:        c.Date,
		Location:    c.Location,
		Description: c.Description,
	})
	if err != nil {
		return err
	}

	var added tool_events.AddOutput
	if err := json.Unmarshal([]byte(text), &added); err != nil {
		return fmt.Errorf("unexpected %s result: %w", tools.AddEventName, err)
	}
	fmt.Fprintln(cli.out(), theme.Success(added.Message))
	fmt.Fprintln(cli.out(), theme.Muted("id: "+added.EventID))
	return nil
}

type EventsDeleteCmd struct {
	ID string `arg:"" help:"Event ID"`
}

func (c *EventsDeleteCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	e, err := storage.GetEvent(ctx, a.DB.DB(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if e == nil {
		return fmt.Errorf("event %s: %w", c.ID, errNotFound)
	}

	msg, err := callTool(ctx, a, tools.DeleteEventName, tool_events.DeleteInput{EventID: c.ID})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out(), theme.Success(msg))
	return nil
}
