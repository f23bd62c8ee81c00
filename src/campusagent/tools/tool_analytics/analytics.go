package tool_analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/campusagent/toolsutil"
	"github.com/elee1766/campusadmin/src/storage"
)

const (
	TotalName          = "get_total_students"
	DepartmentsName    = "get_students_by_department"
	RecentName         = "get_recent_onboarded_students"
	ActiveLastWeekName = "get_active_students_last_7_days"
)

// ActiveWindow is how far back get_active_students_last_7_days looks.
const ActiveWindow = 7 * 24 * time.Hour

type NoInput struct{}

type RecentInput struct {
	Limit int `json:"limit,omitempty" minimum:"1" maximum:"50" default:"5" description:"Maximum number of students to return"`
}

// Tools returns every analytics tool bound to db. now is the clock used for
// the activity window; nil means time.Now.
func Tools(db *storage.DB, now func() time.Time) ([]agent.Tool, error) {
	if now == nil {
		now = time.Now
	}
	total, err := agent.NewGenericTool(TotalName, "Get the total number of active students.", makeTotalHandler(db), agent.Suspending())
	if err != nil {
		return nil, err
	}
	departments, err := agent.NewGenericTool(DepartmentsName, "Get the number of active students in each department.", makeDepartmentsHandler(db), agent.Suspending())
	if err != nil {
		return nil, err
	}
	recent, err := agent.NewGenericTool(RecentName, "Get the most recently enrolled active students, newest first.", makeRecentHandler(db), agent.Suspending())
	if err != nil {
		return nil, err
	}
	active, err := agent.NewGenericTool(ActiveLastWeekName, "Get the number of distinct students with recorded activity in the last 7 days.", makeActiveHandler(db, now), agent.Suspending())
	if err != nil {
		return nil, err
	}
	return []agent.Tool{total, departments, recent, active}, nil
}

func makeTotalHandler(db *storage.DB) func(ctx context.Context, input NoInput) (int, error) {
	return func(ctx context.Context, input NoInput) (int, error) {
		count, err := storage.CountActiveStudents(ctx, db.DB())
		if err != nil {
			return 0, fmt.Errorf("error counting students: %w", err)
		}
		toolsutil.GetLogger().Debug("total students", "count", count)
		return count, nil
	}
}

func makeDepartmentsHandler(db *storage.DB) func(ctx context.Context, input NoInput) (map[string]int, error) {
	return func(ctx context.Context, input NoInput) (map[string]int, error) {
		rows, err := storage.CountStudentsByDepartment(ctx, db.DB())
		if err != nil {
			return nil, fmt.Errorf("error getting students by department: %w", err)
		}
		counts := make(map[string]int, len(rows))
		for _, row := range rows {
			counts[row.Department] = row.Count
		}
		return counts, nil
	}
}

func makeRecentHandler(db *storage.DB) func(ctx context.Context, input RecentInput) ([]storage.Student, error) {
	return func(ctx context.Context, input RecentInput) ([]storage.Student, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 5
		}
		if limit > 50 {
			return nil, toolsutil.InvalidParams("limit must be at most 50, got %d", limit)
		}
		students, err := storage.RecentStudents(ctx, db.DB(), limit)
		if err != nil {
			return nil, fmt.Errorf("error getting recent students: %w", err)
		}
		return students, nil
	}
}

func makeActiveHandler(db *storage.DB, now func() time.Time) func(ctx context.Context, input NoInput) (int, error) {
	return func(ctx context.Context, input NoInput) (int, error) {
		count, err := storage.CountActiveStudentsSince(ctx, db.DB(), now().Add(-ActiveWindow))
		if err != nil {
			return 0, fmt.Errorf("error getting active students: %w", err)
		}
		return count, nil
	}
}
