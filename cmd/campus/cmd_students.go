package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/elee1766/campusadmin/src/campusagent/tools"
	tool_students "github.com/elee1766/campusadmin/src/campusagent/tools/tool_students"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/elee1766/campusadmin/src/theme"
)

// StudentsCmd manages student records. Mutations go through the same tools
// the assistant uses, so they are validated and logged the same way.
type StudentsCmd struct {
	List   StudentsListCmd   `cmd:"" help:"List all students"`
	Get    StudentsGetCmd    `cmd:"" help:"Show one student"`
	Add    StudentsAddCmd    `cmd:"" help:"Add a student"`
	Update StudentsUpdateCmd `cmd:"" help:"Change one field of a student"`
	Delete StudentsDeleteCmd `cmd:"" help:"Delete a student"`
}

type StudentsListCmd struct {
	Format string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *StudentsListCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	students, err := storage.ListStudents(ctx, a.DB.DB())
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	if c.Format == formatJSON {
		return printJSON(cli.out(), students)
	}
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, studentRow(s))
	}
	printTable(cli.out(), studentHeaders, rows)
	return nil
}

var studentHeaders = []string{"ID", "Name", "Department", "Email", "Active", "Enrolled"}

func studentRow(s storage.Student) []string {
	return []string{
		s.StudentID,
		s.Name,
		s.Department,
		s.Email,
		strconv.FormatBool(s.IsActive),
		s.CreatedAt.Local().Format("2006-01-02"),
	}
}

// lookupStudent fails with errNotFound for unknown IDs.
func lookupStudent(ctx context.Context, db *storage.DB, id string) (*storage.Student, error) {
	s, err := storage.GetStudent(ctx, db.DB(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("student %s: %w", id, errNotFound)
	}
	return s, nil
}

type StudentsGetCmd struct {
	ID     string `arg:"" help:"Student ID"`
	Format string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *StudentsGetCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	s, err := lookupStudent(ctx, a.DB, c.ID)
	if err != nil {
		return err
	}
	if c.Format == formatJSON {
		return printJSON(cli.out(), s)
	}
	printTable(cli.out(), studentHeaders, [][]string{studentRow(*s)})

	activity, err := storage.ListActivity(ctx, a.DB.DB(), s.StudentID, 10)
	if err != nil {
		return fmt.Errorf("failed to list activity: %w", err)
	}
	if len(activity) > 0 {
		fmt.Fprintln(cli.out(), theme.Heading("Recent activity"))
		rows := make([][]string, 0, len(activity))
		for _, entry := range activity {
			rows = append(rows, []string{entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.Action})
		}
		printTable(cli.out(), []string{"When", "Action"}, rows)
	}
	return nil
}

type StudentsAddCmd struct {
	ID         string `arg:"" help:"Student ID, e.g. STU006"`
	Name       string `short:"n" required:"" help:"Full name"`
	Department string `short:"d" required:"" help:"Department"`
	Email      string `short:"e" required:"" help:"Email address"`
}

func (c *StudentsAddCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	msg, err := callTool(ctx, a, tools.AddStudentName, tool_students.AddInput{
		Name:       c.Name,
		StudentID:  c.ID,
		Department: c.Department,
		Email:      c.Email,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out(), theme.Success(msg))
	return nil
}

type StudentsUpdateCmd struct {
	ID    string `arg:"" help:"Student ID"`
	Field string `arg:"" enum:"name,department,email" help:"Field to change (name, department, email)"`
	Value string `arg:"" help:"New value"`
}

func (c *StudentsUpdateCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	before, err := lookupStudent(ctx, a.DB, c.ID)
	if err != nil {
		return err
	}

	msg, err := callTool(ctx, a, tools.UpdateStudentName, tool_students.UpdateInput{
		StudentID: c.ID,
		Field:     c.Field,
		NewValue:  c.Value,
	})
	if err != nil {
		return err
	}

	out := cli.out()
	fmt.Fprintln(out, theme.Success(msg))
	fmt.Fprintf(out, "%s: %s\n", c.Field, fieldChange(studentField(before, c.Field), c.Value, isTerminal(out)))
	return nil
}

func studentField(s *storage.Student, field string) string {
	switch field {
	case "name":
		return s.Name
	case "department":
		return s.Department
	case "email":
		return s.Email
	default:
		return ""
	}
}

type StudentsDeleteCmd struct {
	ID string `arg:"" help:"Student ID"`
}

func (c *StudentsDeleteCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	a, err := cli.open(ctx)
	if err != nil {
		return err
	}

	if _, err := lookupStudent(ctx, a.DB, c.ID); err != nil {
		return err
	}
	msg, err := callTool(ctx, a, tools.DeleteStudentName, tool_students.DeleteInput{StudentID: c.ID})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out(), theme.Success(msg))
	return nil
}
