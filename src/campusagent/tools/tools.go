package tools

// This file provides barrel-style re-exports for all campus tools, so callers
// can register the full set from one place.

import (
	"fmt"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	tool_analytics "github.com/elee1766/campusadmin/src/campusagent/tools/tool_analytics"
	tool_campusinfo "github.com/elee1766/campusadmin/src/campusagent/tools/tool_campusinfo"
	tool_email "github.com/elee1766/campusadmin/src/campusagent/tools/tool_email"
	tool_events "github.com/elee1766/campusadmin/src/campusagent/tools/tool_events"
	tool_students "github.com/elee1766/campusadmin/src/campusagent/tools/tool_students"
	"github.com/elee1766/campusadmin/src/storage"
)

// Tool name constants - re-exported from individual packages
const (
	AddStudentName       = tool_students.AddName
	GetStudentName       = tool_students.GetName
	UpdateStudentName    = tool_students.UpdateName
	DeleteStudentName    = tool_students.DeleteName
	ListStudentsName     = tool_students.ListName
	TotalStudentsName    = tool_analytics.TotalName
	DepartmentsName      = tool_analytics.DepartmentsName
	RecentStudentsName   = tool_analytics.RecentName
	ActiveLastWeekName   = tool_analytics.ActiveLastWeekName
	AddEventName         = tool_events.AddName
	UpdateEventName      = tool_events.UpdateName
	DeleteEventName      = tool_events.DeleteName
	ListEventsName       = tool_events.ListName
	SendEmailName        = tool_email.Name
	CafeteriaTimingsName = tool_campusinfo.CafeteriaName
	LibraryHoursName     = tool_campusinfo.LibraryName
	EventScheduleName    = tool_campusinfo.ScheduleName
)

type (
	Timing     = tool_campusinfo.Timing
	CampusInfo = tool_campusinfo.Info
	Sender     = tool_email.Sender
)

// Deps carries what the campus tools need.
type Deps struct {
	DB       *storage.DB
	Info     CampusInfo
	Sender   Sender
	Location *time.Location
	Now      func() time.Time
}

// All builds every campus tool.
func All(deps Deps) ([]agent.Tool, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("campus tools need a database")
	}

	var out []agent.Tool
	add := func(tools []agent.Tool, err error) error {
		if err != nil {
			return err
		}
		out = append(out, tools...)
		return nil
	}

	email, err := tool_email.Tool(deps.DB, deps.Sender)
	if err != nil {
		return nil, err
	}
	for _, err := range []error{
		add(tool_students.Tools(deps.DB)),
		add(tool_analytics.Tools(deps.DB, deps.Now)),
		add(tool_events.Tools(deps.DB, tool_events.Options{Location: deps.Location, Now: deps.Now})),
		add(tool_campusinfo.Tools(deps.DB, deps.Info, deps.Now)),
		add([]agent.Tool{email}, nil),
	} {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Register adds every campus tool to toolbox.
func Register(toolbox *agent.DefaultToolbox, deps Deps) error {
	all, err := All(deps)
	if err != nil {
		return err
	}
	for _, tool := range all {
		if err := toolbox.RegisterTool(tool); err != nil {
			return fmt.Errorf("register %s: %w", tool.GetName(), err)
		}
	}
	return nil
}
