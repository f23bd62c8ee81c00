package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"
	tool_analytics "github.com/elee1766/campusadmin/src/campusagent/tools/tool_analytics"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/elee1766/campusadmin/src/theme"
)

// AnalyticsCmd prints the same figures the analytics tools report.
type AnalyticsCmd struct {
	Recent int    `default:"5" help:"Number of recently enrolled students to show"`
	Format string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

type analyticsReport struct {
	TotalStudents  int                       `json:"total_students"`
	ActiveLastWeek int                       `json:"active_last_7_days"`
	Departments    []storage.DepartmentCount `json:"departments"`
	Recent         []storage.Student         `json:"recent"`
}

func (c *AnalyticsCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}
	db := a.DB.DB()

	var report analyticsReport
	if report.TotalStudents, err = storage.CountActiveStudents(ctx, db); err != nil {
		return fmt.Errorf("failed to count students: %w", err)
	}
	since := a.Now().Add(-tool_analytics.ActiveWindow)
	if report.ActiveLastWeek, err = storage.CountActiveStudentsSince(ctx, db, since); err != nil {
		return fmt.Errorf("failed to count active students: %w", err)
	}
	if report.Departments, err = storage.CountStudentsByDepartment(ctx, db); err != nil {
		return fmt.Errorf("failed to count departments: %w", err)
	}
	if report.Recent, err = storage.RecentStudents(ctx, db, c.Recent); err != nil {
		return fmt.Errorf("failed to list recent students: %w", err)
	}

	if c.Format == formatJSON {
		return printJSON(cli.out(), report)
	}

	out := cli.out()
	fmt.Fprintf(out, "%s %d\n", theme.Heading("Total students:"), report.TotalStudents)
	fmt.Fprintf(out, "%s %d\n\n", theme.Heading("Active in the last 7 days:"), report.ActiveLastWeek)

	fmt.Fprintln(out, theme.Heading("By department"))
	rows := make([][]string, 0, len(report.Departments))
	for _, d := range report.Departments {
		rows = append(rows, []string{d.Department, strconv.Itoa(d.Count)})
	}
	printTable(out, []string{"Department", "Students"}, rows)

	fmt.Fprintln(out, theme.Heading("Recently enrolled"))
	rows = rows[:0]
	for _, s := range report.Recent {
		rows = append(rows, studentRow(s))
	}
	printTable(out, studentHeaders, rows)
	return nil
}
